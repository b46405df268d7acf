package fetch

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

// HTTPTransport is the primary transport: a net/http client with HTTP/2
// enabled on its transport.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
}

// NewHTTPTransport creates a primary transport whose requests are bounded
// by timeout.
func NewHTTPTransport(timeout time.Duration, userAgent string) *HTTPTransport {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// A fresh transport only fails here if h2 is already registered, in
	// which case HTTP/1.1 keeps working.
	_ = http2.ConfigureTransport(tr)

	return &HTTPTransport{
		client:    &http.Client{Transport: tr, Timeout: timeout},
		userAgent: userAgent,
	}
}

// NewHTTPTransportWithClient wraps an existing client.
func NewHTTPTransportWithClient(client *http.Client, userAgent string) *HTTPTransport {
	return &HTTPTransport{client: client, userAgent: userAgent}
}

// Get performs a GET request and returns the body of a 2xx response.
func (t *HTTPTransport) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return body, nil
}

// RawTransport is the fallback transport. It writes an HTTP/1.1 request
// directly onto a TCP (or TLS) connection and parses the response, with no
// connection pooling, proxy support or HTTP/2.
type RawTransport struct {
	// TLSConfig is cloned for https connections; ServerName is filled in
	// from the URL when empty.
	TLSConfig *tls.Config

	timeout      time.Duration
	userAgent    string
	maxRedirects int
	dialer       *net.Dialer
}

// NewRawTransport creates a fallback transport.
func NewRawTransport(timeout time.Duration, userAgent string, maxRedirects int) *RawTransport {
	return &RawTransport{
		timeout:      timeout,
		userAgent:    userAgent,
		maxRedirects: maxRedirects,
		dialer:       &net.Dialer{KeepAlive: -1},
	}
}

// Get performs a GET request, following up to maxRedirects redirects, and
// returns the body of the final 2xx response.
func (t *RawTransport) Get(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid url")
	}

	for redirects := 0; ; redirects++ {
		resp, body, err := t.roundTrip(ctx, target)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode <= 299:
			return body, nil
		case isRedirect(resp.StatusCode):
			if redirects >= t.maxRedirects {
				return nil, errors.Errorf("stopped after %d redirects", t.maxRedirects)
			}
			loc, err := resp.Location()
			if err != nil {
				return nil, errors.Wrapf(err, "redirect %s without usable location", resp.Status)
			}
			target = loc
		default:
			return nil, errors.Errorf("unexpected status %s", resp.Status)
		}
	}
}

func (t *RawTransport) roundTrip(ctx context.Context, target *url.URL) (*http.Response, []byte, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	conn, err := t.dial(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create request")
	}
	req.Close = true
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if err := req.Write(conn); err != nil {
		return nil, nil, errors.Wrap(err, "failed to write request")
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read response")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read response body")
	}
	return resp, body, nil
}

func (t *RawTransport) dial(ctx context.Context, target *url.URL) (net.Conn, error) {
	port := target.Port()
	switch target.Scheme {
	case "http":
		if port == "" {
			port = "80"
		}
	case "https":
		if port == "" {
			port = "443"
		}
	default:
		return nil, errors.Errorf("unsupported scheme %q", target.Scheme)
	}
	addr := net.JoinHostPort(target.Hostname(), port)

	if target.Scheme == "http" {
		conn, err := t.dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to connect to %s", addr)
		}
		return conn, nil
	}

	cfg := &tls.Config{}
	if t.TLSConfig != nil {
		cfg = t.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = target.Hostname()
	}
	td := &tls.Dialer{NetDialer: t.dialer, Config: cfg}
	conn, err := td.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	return conn, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
