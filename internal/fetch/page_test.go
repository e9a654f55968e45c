package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollyPage(t *testing.T, maxBytes int64) *CollyPage {
	t.Helper()
	f, err := NewCollyPage(PageConfig{
		UserAgent: "campusmatch-bot/1.0",
		Timeout:   5 * time.Second,
		MaxBytes:  maxBytes,
	}, zap.NewNop())
	require.NoError(t, err)
	return f
}

func TestCollyPageFetch(t *testing.T) {
	page := "<html><head><title>Example</title></head><body>hello</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	f := newTestCollyPage(t, 1<<20)
	body, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, page, string(body))
}

func TestCollyPageFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestCollyPage(t, 1<<20)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestCollyPageFetchRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>" + strings.Repeat("x", 4096) + "</html>"))
	}))
	defer srv.Close()

	f := newTestCollyPage(t, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "exceeds cap")
}

func TestCollyPageFetchSameURLTwice(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := newTestCollyPage(t, 1<<20)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}
