package retry

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func fastOptions() Options {
	opts := DefaultOptions()
	opts.InitialDelay = time.Millisecond
	opts.MaxDelay = 10 * time.Millisecond
	return opts
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {

	calls := 0
	err := Do(context.Background(), fastOptions(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientStatusUntilExhausted(t *testing.T) {

	calls := 0
	err := Do(context.Background(), fastOptions(), func() error {
		calls++
		return &HTTPError{StatusCode: 429}
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {

	calls := 0
	err := Do(context.Background(), fastOptions(), func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 503}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableStatusFailsImmediately(t *testing.T) {

	for _, status := range []int{400, 401, 403, 404, 422} {
		calls := 0
		err := Do(context.Background(), fastOptions(), func() error {
			calls++
			return &HTTPError{StatusCode: status}
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls, "status %d must not be retried", status)
	}
}

func TestDo_DelaysGrowExponentially(t *testing.T) {

	opts := DefaultOptions()
	opts.InitialDelay = 10 * time.Millisecond
	opts.MaxDelay = time.Second

	var timestamps []time.Time
	_ = Do(context.Background(), opts, func() error {
		timestamps = append(timestamps, time.Now())
		return &HTTPError{StatusCode: 500}
	})

	assert.Len(t, timestamps, 3)
	first := timestamps[1].Sub(timestamps[0])
	second := timestamps[2].Sub(timestamps[1])
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.GreaterOrEqual(t, second, 20*time.Millisecond)
}

func TestDo_DelayCappedAtMax(t *testing.T) {

	opts := Options{MaxAttempts: 4, InitialDelay: 10 * time.Millisecond, MaxDelay: 15 * time.Millisecond, Multiplier: 10}

	var timestamps []time.Time
	_ = Do(context.Background(), opts, func() error {
		timestamps = append(timestamps, time.Now())
		return &HTTPError{StatusCode: 502}
	})

	assert.Len(t, timestamps, 4)
	last := timestamps[3].Sub(timestamps[2])
	assert.Less(t, last, 100*time.Millisecond)
}

func TestDo_ContextCancelStopsRetrying(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, DefaultOptions(), func() error {
		calls++
		cancel()
		return &HTTPError{StatusCode: 500}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallbackFires(t *testing.T) {

	retries := 0
	opts := fastOptions()
	opts.OnRetry = func(attempt int, err error) {
		retries++
	}

	_ = Do(context.Background(), opts, func() error {
		return &HTTPError{StatusCode: 504}
	})

	assert.Equal(t, 2, retries)
}

func TestIsRetryable(t *testing.T) {

	assert.True(t, IsRetryable(&HTTPError{StatusCode: 408}))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: 429}))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: 503}))
	assert.False(t, IsRetryable(&HTTPError{StatusCode: 404}))
	assert.False(t, IsRetryable(nil))

	assert.True(t, IsRetryable(syscall.ECONNRESET))
	assert.True(t, IsRetryable(errors.Wrap(syscall.ECONNREFUSED, "dial failed")))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(errors.New("malformed response")))
}
