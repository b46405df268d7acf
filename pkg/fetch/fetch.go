// Package fetch downloads remote image bytes with a single fallback attempt.
//
// A Fetcher tries its primary transport (a net/http client) first and, on any
// failure, tries its fallback transport (a hand-driven HTTP/1.1 exchange)
// exactly once. When both fail the failure is absorbed into a Result that
// carries no bytes; Fetch never returns an error.
package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds each transport attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "image-convert/0.1"

	// DefaultMaxRedirects is the number of redirects the fallback transport follows.
	DefaultMaxRedirects = 5
)

// Transport performs a single GET and returns the response body.
// Implementations must treat non-2xx responses as errors.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, url string) ([]byte, error)

// Get calls f(ctx, url).
func (f TransportFunc) Get(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Result is the outcome of a fetch: either the downloaded bytes or no result.
//
// The zero value is NoResult.
type Result struct {
	data []byte
	ok   bool
}

// Found wraps successfully fetched bytes.
func Found(data []byte) Result {
	return Result{data: data, ok: true}
}

// NoResult is the outcome of a fetch whose attempts all failed.
func NoResult() Result {
	return Result{}
}

// Bytes returns the fetched bytes and whether the fetch succeeded.
func (r Result) Bytes() ([]byte, bool) {
	return r.data, r.ok
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.ok
}

type settings struct {
	timeout      time.Duration
	userAgent    string
	maxRedirects int
}

// Fetcher downloads URLs using a primary and a fallback transport.
// It holds no per-call state and is safe for concurrent use.
type Fetcher struct {
	primary  Transport
	fallback Transport
	logger   *zap.Logger
	settings settings
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPrimary replaces the primary transport.
func WithPrimary(t Transport) Option {
	return func(f *Fetcher) { f.primary = t }
}

// WithFallback replaces the fallback transport.
func WithFallback(t Transport) Option {
	return func(f *Fetcher) { f.fallback = t }
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTimeout bounds each attempt of the default transports.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.settings.timeout = d }
}

// WithUserAgent sets the User-Agent of the default transports.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.settings.userAgent = ua }
}

// WithMaxRedirects sets how many redirects the default fallback transport follows.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) { f.settings.maxRedirects = n }
}

// New creates a Fetcher. Transports not supplied through options are built
// from the timeout, user agent and redirect settings.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		logger: zap.NewNop(),
		settings: settings{
			timeout:      DefaultTimeout,
			userAgent:    DefaultUserAgent,
			maxRedirects: DefaultMaxRedirects,
		},
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.primary == nil {
		f.primary = NewHTTPTransport(f.settings.timeout, f.settings.userAgent)
	}
	if f.fallback == nil {
		f.fallback = NewRawTransport(f.settings.timeout, f.settings.userAgent, f.settings.maxRedirects)
	}
	return f
}

// Fetch downloads url. The fallback transport runs at most once, and only
// after the primary transport failed.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	data, err := f.primary.Get(ctx, url)
	if err == nil {
		return Found(data)
	}
	f.logger.Debug("primary fetch failed, trying fallback",
		zap.String("url", url),
		zap.Error(err),
	)

	data, err = f.fallback.Get(ctx, url)
	if err == nil {
		return Found(data)
	}
	f.logger.Warn("fetch failed",
		zap.String("url", url),
		zap.Error(err),
	)
	return NoResult()
}

var defaultFetcher = New()

// Fetch downloads url with a Fetcher using default settings.
func Fetch(ctx context.Context, url string) Result {
	return defaultFetcher.Fetch(ctx, url)
}
