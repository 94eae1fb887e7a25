package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fastClient(opts ...ClientOption) *Client {
	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	opts = append([]ClientOption{
		WithHTTPClient(hc),
		WithRetries(2, time.Millisecond, 5*time.Millisecond),
	}, opts...)
	return NewClient(opts...)
}

func TestClient_FetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := fastClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", body)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestClient_FetchRetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fastClient().Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestClient_FetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := fastClient().Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.False(t, statusErr.Retryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_FetchHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient().Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_RecordsFromMultiplePages(t *testing.T) {
	pages := map[string]string{
		"/a": page(row("wikipedia (English)", "en", "1 MB", "wp", "https://x/wp.zim")),
		"/b": page(row("gentoo (English)", "en", "2 MB", "gentoo", "https://x/gentoo.zim")),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pages[r.URL.Path]))
	}))
	defer srv.Close()

	src := New(fastClient(), 2, nil)
	records, err := src.Records(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "wikipedia", records[0].Category, "records keep page order")
	assert.Equal(t, "gentoo", records[1].Category)
}

func TestSource_FetchAllFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_, _ = w.Write([]byte("fine"))
	}))
	defer srv.Close()

	_, err := New(fastClient(), 1, nil).FetchAll(context.Background(), []string{srv.URL + "/ok", srv.URL + "/bad"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusGone, statusErr.StatusCode)
}

func TestSource_NoRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := New(fastClient(), 1, nil).Records(context.Background(), []string{srv.URL})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestSource_RecordsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.html")
	require.NoError(t, os.WriteFile(path, []byte(page(row("phet (English)", "en", "4 KB", "phet_en", "https://x/phet.zim"))), 0o644))

	records, err := New(nil, 1, nil).RecordsFromFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(4096), records[0].Size)

	_, err = New(nil, 1, nil).RecordsFromFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSource_CollectReportsSkippedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page(
			row("ted (English)", "en", "1 MB", "ted_en", "https://x/ted.zim"),
			row("phet (English)", "en", "huge MB", "phet_en", "https://x/phet.zim"),
		)))
	}))
	defer srv.Close()

	res, err := New(fastClient(), 1, nil).Collect(context.Background(), []string{srv.URL})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "phet_en", res.Skipped[0].Name)
	assert.ErrorIs(t, res.Skipped[0], ErrInvalidSize)
}
