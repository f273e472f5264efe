package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/bike-rental-dashboard/internal/common"
)

// Source abstracts where the raw CSV bytes come from (local file or HTTP URL).
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// NewSource picks an HTTPSource for http(s) locations and a FileSource otherwise.
func NewSource(location string, client *http.Client) Source {
	if common.IsRemote(location) {
		return NewHTTPSource(client, location)
	}
	return FileSource{Path: location}
}

// FileSource reads the dataset from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return s.Path
}

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	return f, nil
}

// HTTPSource downloads the dataset with retries and a circuit breaker.
// Client errors other than 429 fail at once; they also count against the breaker.
type HTTPSource struct {
	url     string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

func NewHTTPSource(client *http.Client, url string) *HTTPSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dataset-http",
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &HTTPSource{
		url:    url,
		client: client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// WithBackoff overrides the retry policy.
func (s *HTTPSource) WithBackoff(b BackoffConfig) *HTTPSource {
	s.backoff = b
	return s
}

func (s *HTTPSource) Name() string {
	return s.url
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	newRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")
		return req, nil
	}

	resp, err := download(ctx, s.client, s.circuit, s.backoff, newRequest)
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	return resp.Body, nil
}
