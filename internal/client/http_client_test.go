package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-reporting/internal/config"
)

func newClient(attempts int) *HTTPClient {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHTTPClient(&config.Config{HTTPTimeout: time.Second, RetryAttempts: attempts}, logger)
}

func TestPostSignedSendsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "sha256=abc", r.Header.Get("X-Signature"))
		assert.Equal(t, `{"ok":true}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newClient(1).PostSigned(context.Background(), srv.URL, []byte(`{"ok":true}`), "sha256=abc"))
}

func TestPostSignedGivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newClient(3).WithBackoffUnit(time.Millisecond).PostSigned(context.Background(), srv.URL, []byte(`{}`), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostSignedStopsWhenContextEnds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := newClient(5).WithBackoffUnit(time.Minute).PostSigned(ctx, srv.URL, []byte(`{}`), "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
