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

func newTestMediaService(apiURL string) *MediaService {
	return &MediaService{
		apiToken: "test-token",
		apiURL:   apiURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestResolveVideoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ABC123/info", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"items": [{"video_versions": [{"url": "https://cdn.example.com/video.mp4"}]}]}`))
	}))
	defer srv.Close()

	svc := newTestMediaService(srv.URL)
	videoURL, err := svc.ResolveVideo(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/video.mp4", videoURL)
}

func TestResolveVideoFromCarousel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"carousel_media": [
			{"video_versions": []},
			{"video_versions": [{"url": "https://cdn.example.com/slide2.mp4"}]}
		]}]}`))
	}))
	defer srv.Close()

	svc := newTestMediaService(srv.URL)
	videoURL, err := svc.ResolveVideo(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/slide2.mp4", videoURL)
}

func TestResolveVideoNoPlayableAsset(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"items": []}`,
		`{"items": [{}]}`,
		`{"items": [{"video_versions": []}]}`,
		`{"items": [{"carousel_media": [{"video_versions": []}]}]}`,
	}
	for _, payload := range payloads {
		payload := payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(payload))
		}))

		svc := newTestMediaService(srv.URL)
		_, err := svc.ResolveVideo(context.Background(), "ABC123")
		srv.Close()
		require.Error(t, err, "payload %s", payload)
		assert.True(t, IsKind(err, KindNotFound), "payload %s", payload)
	}
}

func TestResolveVideoUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestMediaService(srv.URL)
	_, err := svc.ResolveVideo(context.Background(), "ABC123")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestResolveVideoRequiresMediaID(t *testing.T) {
	svc := newTestMediaService("http://unused.invalid")
	_, err := svc.ResolveVideo(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidInput))
}
