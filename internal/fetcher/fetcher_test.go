package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

const sample = "<html><body><h1>第一章 開始</h1><p>天元戰爭結束，大陸迎來了和平。</p></body></html>"

func quick() Options {
	return Options{Retries: 3, Backoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}
}

func mustEncode(t *testing.T, s string) []byte {
	t.Helper()

	b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)

	return b
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	res, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL+"/c/1", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, sample, res.Text)
	assert.Equal(t, "utf-8", res.Charset)
}

func TestFetchPersistentServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL, nil)

	var herr *HTTPError
	require.True(t, errors.As(err, &herr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, herr.Status)
	assert.Equal(t, 4, herr.Attempts)
	assert.Equal(t, int32(4), calls.Load())
}

func TestFetchNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL, nil)

	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusNotFound, herr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchTooManyRequestsIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	opts := quick()
	opts.Retries = 1

	_, err := New(nil, opts).Fetch(context.Background(), addr, nil)

	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr), "got %v", err)
	assert.Equal(t, 2, nerr.Attempts)
}

func TestFetchLegacyEncodingMatchesUTF8(t *testing.T) {
	gbk := mustEncode(t, sample)

	mux := http.NewServeMux()
	mux.HandleFunc("/utf8", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sample))
	})
	mux.HandleFunc("/gbk-header", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		_, _ = w.Write(gbk)
	})
	mux.HandleFunc("/gbk-meta", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(append([]byte(`<meta http-equiv="Content-Type" content="text/html; charset=gb2312">`), gbk...))
	})
	mux.HandleFunc("/gbk-bare", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(gbk)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(srv.Client(), quick())
	ctx := context.Background()

	want, err := f.Fetch(ctx, srv.URL+"/utf8", nil)
	require.NoError(t, err)

	got, err := f.Fetch(ctx, srv.URL+"/gbk-header", nil)
	require.NoError(t, err)
	assert.Equal(t, want.Text, got.Text)
	assert.Equal(t, "gbk", got.Charset)

	got, err = f.Fetch(ctx, srv.URL+"/gbk-meta", nil)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "天元戰爭結束")

	got, err = f.Fetch(ctx, srv.URL+"/gbk-bare", simplifiedchinese.GBK)
	require.NoError(t, err)
	assert.Equal(t, want.Text, got.Text)
}

func TestFetchInvalidUTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("\xc3\x28"))
	}))
	defer srv.Close()

	_, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL, nil)

	var eerr *EncodingError
	require.True(t, errors.As(err, &eerr), "got %v", err)
	assert.Equal(t, "utf-8", eerr.Charset)
}

func TestFetchMislabelledGBKUsesHint(t *testing.T) {
	gbk := mustEncode(t, sample)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(gbk)
	}))
	defer srv.Close()

	f := New(srv.Client(), quick())

	res, err := f.Fetch(context.Background(), srv.URL, simplifiedchinese.GBK)
	require.NoError(t, err)
	assert.Equal(t, sample, res.Text)
	assert.Equal(t, "gbk", res.Charset)

	_, err = f.Fetch(context.Background(), srv.URL, nil)
	var eerr *EncodingError
	require.True(t, errors.As(err, &eerr), "got %v", err)
	assert.Equal(t, "utf-8", eerr.Charset)
}

func TestFetchNormalizesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("\xef\xbb\xbf第一行\r\n第二行\r\n"))
	}))
	defer srv.Close()

	res, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "第一行\n第二行\n", res.Text)
}

func TestFetchSendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := New(srv.Client(), quick()).Fetch(context.Background(), srv.URL+"/book/1.html", nil)
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/", got.Get("Referer"))
	assert.Contains(t, got.Get("Accept-Language"), "zh-TW")
	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("Cookie"))
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.Client(), quick()).Fetch(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	base := 500 * time.Millisecond

	assert.Equal(t, 500*time.Millisecond, backoff(1, base, 8*time.Second))
	assert.Equal(t, time.Second, backoff(2, base, 8*time.Second))
	assert.Equal(t, 2*time.Second, backoff(3, base, 8*time.Second))
	assert.Equal(t, 3*time.Second, backoff(4, base, 3*time.Second))
}

func TestLookupDetectorNames(t *testing.T) {
	e, name := lookup("GB-18030")
	require.NotNil(t, e)
	assert.Equal(t, "gb18030", name)

	e, _ = lookup("Big5")
	assert.Equal(t, traditionalchinese.Big5, e)

	e, _ = lookup("no-such-charset")
	assert.Nil(t, e)
}
