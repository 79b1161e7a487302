package translation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslationServer(t *testing.T, hits *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, "/get", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		assert.Equal(t, "en|de", r.URL.Query().Get("langpair"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData": {"translatedText": "Hallo Welt"}, "responseStatus": 200}`))
	}))
}

func TestTranslate_ReturnsTranslatedText(t *testing.T) {

	hits := 0
	server := newTranslationServer(t, &hits)
	defer server.Close()

	client := NewClient(server.URL, cache.NewMemoryStore(time.Minute))

	result, err := client.Translate(context.Background(), "Hello World", "en", "de")
	require.NoError(t, err)
	assert.False(t, result.RateLimited)
	assert.Equal(t, "Hallo Welt", result.Translation)
	assert.Equal(t, 1, hits)
}

func TestTranslate_IdenticalRequestServedFromCache(t *testing.T) {

	hits := 0
	server := newTranslationServer(t, &hits)
	defer server.Close()

	client := NewClient(server.URL, cache.NewMemoryStore(time.Minute))

	_, err := client.Translate(context.Background(), "Hello World", "en", "de")
	require.NoError(t, err)

	result, err := client.Translate(context.Background(), "Hello World", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", result.Translation)
	assert.Equal(t, 1, hits, "repeated input must not burn quota")
}

func TestTranslate_DayQuotaRefusesInsteadOfBlocking(t *testing.T) {

	hits := 0
	server := newTranslationServer(t, &hits)
	defer server.Close()

	client := NewClient(server.URL, cache.NewMemoryStore(time.Minute))
	client.SetDayRateLimit(1)

	result, err := client.Translate(context.Background(), "first text", "en", "de")
	require.NoError(t, err)
	assert.False(t, result.RateLimited)

	result, err = client.Translate(context.Background(), "second text", "en", "de")
	require.NoError(t, err)
	assert.True(t, result.RateLimited)
	assert.Equal(t, 1, hits)
}

func TestTranslate_EmptyTextIsNoop(t *testing.T) {

	hits := 0
	server := newTranslationServer(t, &hits)
	defer server.Close()

	client := NewClient(server.URL, cache.NewMemoryStore(time.Minute))

	result, err := client.Translate(context.Background(), "", "en", "de")
	require.NoError(t, err)
	assert.Empty(t, result.Translation)
	assert.Equal(t, 0, hits)
}
