package retry

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// HTTPError carries a non-2xx response through the retry decision.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

var retryableStatuses = map[int]struct{}{
	408: {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// OnRetry is called before each re-attempt with the attempt number
	// (1-based) and the error that triggered it. It must not alter control
	// flow; it exists for logging.
	OnRetry func(attempt int, err error)
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

// IsRetryable reports whether an error is a transient remote condition:
// a retryable HTTP status or a timeout/connection-class network error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		_, ok := retryableStatuses[httpErr.StatusCode]
		return ok
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	for _, errno := range []syscall.Errno{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.EHOSTUNREACH, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}

	return false
}

// Do runs fn with exponential backoff: delays follow
// InitialDelay * Multiplier^attempt, capped at MaxDelay. Non-retryable
// errors propagate on first failure.
func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	delay := opts.InitialDelay
	var err error

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if opts.OnRetry != nil {
				opts.OnRetry(attempt, err)
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}

			delay = time.Duration(float64(delay) * opts.Multiplier)
			if opts.MaxDelay > 0 && delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}

		if err = fn(); err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}
	}

	return errors.Wrapf(err, "retries exhausted after %d attempts", opts.MaxAttempts)
}
