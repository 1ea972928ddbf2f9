package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const userAgent = "digilib-importer/1.0"

// Fetcher downloads documents, retrying transient failures. Client errors
// (4xx) are not retried.
type Fetcher struct {
	Client   *http.Client
	Attempts uint
	Delay    time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 20 * time.Second},
		Attempts: 3,
		Delay:    time.Second,
	}
}

func (f *Fetcher) client() *http.Client {
	if f == nil || f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// Get returns the body of url.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	attempts, delay := uint(1), time.Duration(0)
	if f != nil {
		attempts, delay = max(f.Attempts, 1), f.Delay
	}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", userAgent)
			resp, err := f.client().Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				err := fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
				if resp.StatusCode >= 400 && resp.StatusCode < 500 {
					return retry.Unrecoverable(err)
				}
				return err
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
