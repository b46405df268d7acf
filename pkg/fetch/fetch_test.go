package fetch

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testURL = "https://example.com/image.jpg"

// countingTransport returns data or err and counts its calls.
func countingTransport(data []byte, err error, calls *int32) Transport {
	return TransportFunc(func(ctx context.Context, url string) ([]byte, error) {
		atomic.AddInt32(calls, 1)
		return data, err
	})
}

func TestResult(t *testing.T) {
	found := Found([]byte("fake image data"))
	data, ok := found.Bytes()
	assert.True(t, ok)
	assert.True(t, found.OK())
	assert.Equal(t, []byte("fake image data"), data)

	none := NoResult()
	data, ok = none.Bytes()
	assert.False(t, ok)
	assert.False(t, none.OK())
	assert.Nil(t, data)

	assert.Equal(t, NoResult(), Result{})
}

func TestResult_EmptyBodyIsStillFound(t *testing.T) {
	r := Found(nil)
	assert.True(t, r.OK())
}

func TestFetch_PrimarySucceeds(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	f := New(
		WithPrimary(countingTransport([]byte("fake image data"), nil, &primaryCalls)),
		WithFallback(countingTransport(nil, errors.New("unused"), &fallbackCalls)),
	)

	res := f.Fetch(context.Background(), testURL)

	data, ok := res.Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte("fake image data"), data)
	assert.EqualValues(t, 1, primaryCalls)
	assert.EqualValues(t, 0, fallbackCalls)
}

func TestFetch_FallbackAfterPrimaryFailure(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	f := New(
		WithPrimary(countingTransport(nil, errors.New("request failed"), &primaryCalls)),
		WithFallback(countingTransport([]byte("fallback image data"), nil, &fallbackCalls)),
	)

	res := f.Fetch(context.Background(), testURL)

	data, ok := res.Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte("fallback image data"), data)
	assert.EqualValues(t, 1, primaryCalls)
	assert.EqualValues(t, 1, fallbackCalls)
}

func TestFetch_BothFail(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	core, logs := observer.New(zap.DebugLevel)
	f := New(
		WithPrimary(countingTransport(nil, errors.New("request failed"), &primaryCalls)),
		WithFallback(countingTransport(nil, errors.New("fallback failed"), &fallbackCalls)),
		WithLogger(zap.New(core)),
	)

	res := f.Fetch(context.Background(), testURL)

	assert.False(t, res.OK())
	assert.Equal(t, NoResult(), res)
	assert.EqualValues(t, 1, primaryCalls)
	assert.EqualValues(t, 1, fallbackCalls)

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, testURL, entries[1].ContextMap()["url"])
}

func TestFetch_DefaultTransportsAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("server image data"))
	}))
	defer srv.Close()

	res := New().Fetch(context.Background(), srv.URL+"/image.png")

	data, ok := res.Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte("server image data"), data)
}

func TestFetch_ServerErrorFallsBackThenNoResult(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := New(WithTimeout(5*time.Second)).Fetch(context.Background(), srv.URL)

	assert.False(t, res.OK())
	// one request per transport
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestFetch_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res := New(WithTimeout(2*time.Second)).Fetch(context.Background(), addr)
	assert.False(t, res.OK())
}

func TestFetch_PackageLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, ok := Fetch(context.Background(), srv.URL).Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte("ok"), data)
}

func TestHTTPTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(5*time.Second, "test").Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPTransport_InvalidURL(t *testing.T) {
	_, err := NewHTTPTransport(time.Second, "").Get(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestRawTransport_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image.png", r.URL.Path)
		assert.Equal(t, "raw-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("raw image data"))
	}))
	defer srv.Close()

	data, err := NewRawTransport(5*time.Second, "raw-agent", 0).Get(context.Background(), srv.URL+"/image.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw image data"), data)
}

func TestRawTransport_ChunkedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("part one "))
		w.(http.Flusher).Flush()
		w.Write([]byte("part two"))
	}))
	defer srv.Close()

	data, err := NewRawTransport(5*time.Second, "", 0).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", string(data))
}

func TestRawTransport_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/middle", http.StatusFound)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("final image data"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	data, err := NewRawTransport(5*time.Second, "", DefaultMaxRedirects).Get(context.Background(), srv.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, []byte("final image data"), data)

	_, err = NewRawTransport(5*time.Second, "", 1).Get(context.Background(), srv.URL+"/start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirects")
}

func TestRawTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewRawTransport(5*time.Second, "", 0).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestRawTransport_UnsupportedScheme(t *testing.T) {
	_, err := NewRawTransport(time.Second, "", 0).Get(context.Background(), "ftp://example.com/a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestRawTransport_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secure image data"))
	}))
	defer srv.Close()

	rt := NewRawTransport(5*time.Second, "", 0)
	rt.TLSConfig = &tls.Config{RootCAs: srv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs}

	data, err := rt.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("secure image data"), data)
}

func TestRawTransport_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRawTransport(5*time.Second, "", 0).Get(ctx, srv.URL)
	assert.Error(t, err)
}
