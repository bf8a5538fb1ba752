package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLookupService(apiURL string) *LookupService {
	return &LookupService{
		accessToken: "test-token",
		apiURL:      apiURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestExtractShortcode(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"post url", "https://www.instagram.com/p/ABC123/", "ABC123"},
		{"reel url", "https://www.instagram.com/reel/Xy_z-9/", "Xy_z-9"},
		{"tv url", "https://instagram.com/tv/Qwerty/", "Qwerty"},
		{"query string kept", "https://www.instagram.com/p/ABC123/?igshid=foo", "ABC123"},
		{"profile url", "https://www.instagram.com/someuser/", ""},
		{"unrelated url", "https://example.com/p/ABC123/", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractShortcode(tt.url))
		})
	}
}

func TestLookupSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://www.instagram.com/p/ABC123/", r.URL.Query().Get("url"))
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title": "Pasta recipe", "thumbnail_url": "https://cdn.example.com/thumb.jpg"}`))
	}))
	defer srv.Close()

	svc := newTestLookupService(srv.URL)
	meta, err := svc.Lookup(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", meta.MediaID)
	assert.Equal(t, "Pasta recipe", meta.Caption)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", meta.ThumbnailURL)
}

func TestLookupPostNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := newTestLookupService(srv.URL)
	_, err := svc.Lookup(context.Background(), "https://www.instagram.com/p/GONE/")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestLookupUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	}))
	defer srv.Close()

	svc := newTestLookupService(srv.URL)
	_, err := svc.Lookup(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestLookupRejectsUnrecognizedURL(t *testing.T) {
	svc := newTestLookupService("http://unused.invalid")
	_, err := svc.Lookup(context.Background(), "https://example.com/not-a-post")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidInput))
}

func TestLookupBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	svc := newTestLookupService(srv.URL)
	_, err := svc.Lookup(context.Background(), "https://www.instagram.com/p/ABC123/")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindParse))
}
