package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/AgentOS/workspace/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/shared/paths"
	"github.com/GriffinCanCode/AgentOS/workspace/internal/types"
)

// HTTPFetcher reads client sources from <base>/js/<name>
type HTTPFetcher struct {
	client  *resty.Client
	breaker *resilience.Breaker
}

// NewHTTPFetcher creates a fetcher for the client served at baseURL
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetTransport(retryClient.HTTPClient.Transport).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})

	return &HTTPFetcher{
		client: client,
		breaker: resilience.New("seed-sources", resilience.Settings{
			ShouldTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 3 },
		}),
	}
}

// Fetch downloads one source file
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) (string, error) {
	if err := paths.ValidateName(name); err != nil {
		return "", fmt.Errorf("fetch %q: %w", name, err)
	}

	var body string
	err := f.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := f.client.R().SetContext(ctx).Get("/js/" + name)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", name, err)
		}
		switch {
		case resp.StatusCode() == 404:
			return fmt.Errorf("fetch %s: %w", name, types.ErrNotFound)
		case resp.IsError():
			return fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode())
		}
		body = resp.String()
		return nil
	})
	return body, err
}

// DirFetcher reads client sources from a local directory
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a fetcher reading <dir>/<name>
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch reads one source file
func (f *DirFetcher) Fetch(ctx context.Context, name string) (string, error) {
	if err := paths.ValidateName(name); err != nil {
		return "", fmt.Errorf("fetch %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("fetch %s: %w", name, types.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}
	return string(data), nil
}
