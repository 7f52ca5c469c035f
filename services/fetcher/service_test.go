package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchFallsBackToHttp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		http.SetCookie(w, &http.Cookie{Name: "hubspotutk", Value: "abc"})
		http.SetCookie(w, &http.Cookie{Name: "_ga", Value: "GA1.2"})
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	// the test server only answers plain http, so https must fail first
	host := strings.TrimPrefix(server.URL, "http://")
	f := NewHttpFetcher(2 * time.Second)

	body, headers, err := f.Fetch(context.Background(), host)
	require.NoError(t, err)
	require.Contains(t, body, "hello")

	require.Contains(t, headers["Set-Cookie"], "hubspotutk")
	require.Contains(t, headers["Set-Cookie"], "_ga")
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	f := NewHttpFetcher(2 * time.Second)

	_, _, err := f.Fetch(context.Background(), host)
	require.Error(t, err)
}

func TestFetchUnreachableDomain(t *testing.T) {
	f := NewHttpFetcher(500 * time.Millisecond)

	_, _, err := f.Fetch(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
}
