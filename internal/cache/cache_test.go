package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKey_IsDeterministic(t *testing.T) {

	a := Key("adzuna", map[string]string{"query": "golang", "page": "1", "country": "de"})
	b := Key("adzuna", map[string]string{"country": "de", "page": "1", "query": "golang"})

	assert.Equal(t, a, b)
	assert.Equal(t, "adzuna|country=de|page=1|query=golang", a)
}

func TestKey_DiffersPerProviderAndParams(t *testing.T) {

	base := Key("adzuna", map[string]string{"query": "golang"})

	assert.NotEqual(t, base, Key("jsearch", map[string]string{"query": "golang"}))
	assert.NotEqual(t, base, Key("adzuna", map[string]string{"query": "rust"}))
}

func TestMemoryStore_SetAndGet(t *testing.T) {

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	err := store.Set(ctx, "k", []byte(`{"v":1}`), time.Minute, "jobs")
	assert.NoError(t, err)

	entry, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.NotNil(t, entry)
	assert.JSONEq(t, `{"v":1}`, string(entry.Data))
	assert.Contains(t, entry.Tags, "jobs")
}

func TestMemoryStore_MissReturnsNil(t *testing.T) {

	store := NewMemoryStore(time.Minute)

	entry, err := store.Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryStore_EntryExpires(t *testing.T) {

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	assert.NoError(t, store.Set(ctx, "k", []byte(`1`), 20*time.Millisecond))

	time.Sleep(50 * time.Millisecond)

	entry, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryStore_InvalidateTag(t *testing.T) {

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	assert.NoError(t, store.Set(ctx, "jobs1", []byte(`1`), time.Minute, "jobs", "adzuna"))
	assert.NoError(t, store.Set(ctx, "jobs2", []byte(`2`), time.Minute, "jobs", "jsearch"))
	assert.NoError(t, store.Set(ctx, "offers1", []byte(`3`), time.Minute, "products"))

	assert.NoError(t, store.InvalidateTag(ctx, "jobs"))

	entry, _ := store.Get(ctx, "jobs1")
	assert.Nil(t, entry)
	entry, _ = store.Get(ctx, "jobs2")
	assert.Nil(t, entry)

	entry, _ = store.Get(ctx, "offers1")
	assert.NotNil(t, entry)
}

func TestWrap_ProducerCalledOnceThenCached(t *testing.T) {

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	calls := 0
	producer := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	value, fromCache, err := Wrap(ctx, store, "k", time.Minute, []string{"jobs"}, producer)
	assert.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, []string{"a", "b"}, value)

	value, fromCache, err = Wrap(ctx, store, "k", time.Minute, []string{"jobs"}, producer)
	assert.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, []string{"a", "b"}, value)
	assert.Equal(t, 1, calls)
}

func TestWrap_ProducerErrorNotCached(t *testing.T) {

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	calls := 0
	producer := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("upstream down")
		}
		return 42, nil
	}

	_, _, err := Wrap(ctx, store, "k", time.Minute, nil, producer)
	assert.Error(t, err)

	value, fromCache, err := Wrap(ctx, store, "k", time.Minute, nil, producer)
	assert.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 42, value)
}
