package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig is the retry policy for remote datasets. The delay doubles
// after every failed attempt and is capped at MaxInterval when that is set.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (b BackoffConfig) validate() error {
	if b.MaxRetries < 0 || b.InitialInterval <= 0 {
		return errInvalidBackoff
	}
	return nil
}

func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval << attempt
	if b.MaxInterval > 0 && (d > b.MaxInterval || d <= 0) {
		return b.MaxInterval
	}
	return d
}

// StatusError reports a download that ended with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

var (
	errCircuitOpen    = errors.New("circuit breaker open")
	errNoHTTPClient   = errors.New("http client not configured")
	errInvalidBackoff = errors.New("invalid backoff configuration")
)

// download runs GET requests through the breaker until one returns 2xx, the
// failure is permanent, or the retries are used up. The caller closes the body.
func download(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	backoff BackoffConfig,
	newRequest func(context.Context) (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}
	if err := backoff.validate(); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := newRequest(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := attemptOnce(client, cb, req)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, err
		}
		if attempt >= backoff.MaxRetries {
			return nil, err
		}

		timer := time.NewTimer(backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func attemptOnce(client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	result, err := cb.Execute(func() (any, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}
