package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookify-app/backend/internal/types"
)

func newTestOCRService(apiURL string) *OCRService {
	return &OCRService{
		apiKey: "test-key",
		apiURL: apiURL,
		model:  "gpt-4o",
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestExtractTextBatchesImagesInOneCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL *struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 1)

		var imageParts int
		for _, part := range req.Messages[0].Content {
			if part.Type == "image_url" {
				require.NotNil(t, part.ImageURL)
				assert.Contains(t, part.ImageURL.URL, "data:image/png;base64,")
				imageParts++
			}
		}
		assert.Equal(t, 3, imageParts)

		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "Chocolate cake\n200g flour"}}]}`))
	}))
	defer srv.Close()

	svc := newTestOCRService(srv.URL)
	images := []types.ImageInput{
		{Data: []byte("one"), MimeType: "image/png"},
		{Data: []byte("two"), MimeType: "image/png"},
		{Data: []byte("three"), MimeType: "image/png"},
	}
	text, err := svc.ExtractText(context.Background(), images)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate cake\n200g flour", text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExtractTextRequiresImages(t *testing.T) {
	svc := newTestOCRService("http://unused.invalid")
	_, err := svc.ExtractText(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidInput))
}

func TestExtractTextUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newTestOCRService(srv.URL)
	_, err := svc.ExtractText(context.Background(), []types.ImageInput{{Data: []byte("x")}})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestExtractTextEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	svc := newTestOCRService(srv.URL)
	_, err := svc.ExtractText(context.Background(), []types.ImageInput{{Data: []byte("x")}})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindParse))
}
