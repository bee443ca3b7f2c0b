// Package remote fetches descriptor payloads from an HTTP server.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DescriptorSource = (*Source)(nil)

// MaxPayloadSize caps a single descriptor download.
const MaxPayloadSize = 64 << 20

// ErrBadBaseURL is returned by New for unusable base URLs.
var ErrBadBaseURL = errors.New("remote: base URL must be absolute http(s)")

// Source fetches descriptors with GET requests against a base URL.
type Source struct {
	base    *url.URL
	client  *http.Client
	limiter *RateLimiter
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithRateLimit sets the sustained request rate.
func WithRateLimit(rps float64) Option {
	return func(s *Source) {
		s.limiter = NewRateLimiter(rps)
	}
}

// New creates a source rooted at baseURL.
func New(baseURL string, opts ...Option) (*Source, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadBaseURL, baseURL)
	}

	s := &Source{
		base:    u,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: NewRateLimiter(DefaultRequestsPerSecond),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the configured base URL.
func (s *Source) BaseURL() string {
	return s.base.String()
}

// URL resolves a locator against the base URL.
func (s *Source) URL(locator string) string {
	u := *s.base
	u.Path = s.base.Path + "/" + strings.TrimLeft(locator, "/")
	return u.String()
}

// Fetch downloads the payload at locator.
func (s *Source) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}

	target := s.URL(locator)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}

	logger.Debug("GET %s", target)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s: HTTP 404: %w", domain.ErrFetchFailed, locator, domain.ErrDescriptorMissing)
	case resp.StatusCode == http.StatusTooManyRequests:
		s.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("%w: %s: rate limited", domain.ErrFetchFailed, locator)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s: HTTP %d", domain.ErrFetchFailed, locator, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %s: payload exceeds %d bytes", domain.ErrFetchFailed, locator, MaxPayloadSize)
	}
	return data, nil
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
