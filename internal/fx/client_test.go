package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vestDate = time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)

func newTestClient(url string) *Client {
	return NewClient(url, 2*time.Second, 0, zerolog.Nop())
}

func TestClientFetch(t *testing.T) {
	var gotDate, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		gotKey = r.URL.Query().Get("access_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "historical": true, "date": "2023-01-15", "source": "USD", "quotes": {"USDEUR": 0.92345}}`))
	}))
	defer srv.Close()

	quote, err := newTestClient(srv.URL + "/historical").Fetch(context.Background(), vestDate, "secret")
	require.NoError(t, err)
	assert.InDelta(t, 0.92345, quote, 1e-12)
	assert.Equal(t, "2023-01-15", gotDate)
	assert.Equal(t, "secret", gotKey)
}

func TestClientFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"server error", http.StatusInternalServerError, `{}`, "provider returned 500"},
		{"not json", http.StatusOK, `<html>`, "decoding response"},
		{"missing quote", http.StatusOK, `{"quotes": {"USDGBP": 0.8}}`, "quotes.USDEUR"},
		{"quote not a number", http.StatusOK, `{"quotes": {"USDEUR": "0.9"}}`, "not a number"},
		{"zero quote", http.StatusOK, `{"quotes": {"USDEUR": 0}}`, "not positive"},
		{"provider error", http.StatusOK, `{"success": false, "error": {"code": 101, "info": "invalid access key"}}`, "invalid access key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Fetch(context.Background(), vestDate, "k")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRateFetch)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestClientFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Fetch(context.Background(), vestDate, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateFetch)
}

func TestClientFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond, 0, zerolog.Nop())
	_, err := c.Fetch(context.Background(), vestDate, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateFetch)
}
