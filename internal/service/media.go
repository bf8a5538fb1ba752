package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

// MediaService is the video resolver adapter. It asks the media-resolution
// provider for the playable assets behind a media identifier. The provider's
// response shape is not contractually guaranteed, so every field access is
// validated before use.
type MediaService struct {
	apiToken string
	apiURL   string
	client   *http.Client
}

// NewMediaService creates a new MediaService instance.
func NewMediaService() (*MediaService, error) {
	apiToken := os.Getenv("MEDIA_API_TOKEN")
	if apiToken == "" {
		tokenFile := os.Getenv("MEDIA_API_TOKEN_FILE")
		if tokenFile == "" {
			return nil, fmt.Errorf("MEDIA_API_TOKEN or MEDIA_API_TOKEN_FILE must be set")
		}
		tokenBytes, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API token file: %w", err)
		}
		apiToken = string(tokenBytes)
	}

	apiURL := os.Getenv("MEDIA_API_URL")
	if apiURL == "" {
		apiURL = "https://api.mediaresolver.io/v1/media"
	}

	return &MediaService{
		apiToken: apiToken,
		apiURL:   apiURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// mediaInfoResponse mirrors the provider payload. Any of these arrays may be
// missing or empty.
type mediaInfoResponse struct {
	Items []struct {
		VideoVersions []struct {
			URL string `json:"url"`
		} `json:"video_versions"`
		CarouselMedia []struct {
			VideoVersions []struct {
				URL string `json:"url"`
			} `json:"video_versions"`
		} `json:"carousel_media"`
	} `json:"items"`
}

// ResolveVideo resolves a media identifier to a direct video URL. It fails
// with a not-found error when the payload carries no playable asset.
func (s *MediaService) ResolveVideo(ctx context.Context, mediaID string) (string, error) {
	if mediaID == "" {
		return "", NewInvalidInput("media id is required")
	}

	reqURL := fmt.Sprintf("%s/%s/info", s.apiURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", NewNotFound("media not found")
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[MediaService] media info request failed with status %d: %s", resp.StatusCode, string(body))
		return "", NewUpstream("media info request failed", resp.StatusCode, string(body))
	}

	var info mediaInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return "", NewParse("failed to decode media info response", err)
	}

	if videoURL := firstVideoURL(&info); videoURL != "" {
		return videoURL, nil
	}
	return "", NewNotFound("no playable video in media info")
}

func firstVideoURL(info *mediaInfoResponse) string {
	if len(info.Items) == 0 {
		return ""
	}
	item := info.Items[0]
	if len(item.VideoVersions) > 0 && item.VideoVersions[0].URL != "" {
		return item.VideoVersions[0].URL
	}
	for _, cm := range item.CarouselMedia {
		if len(cm.VideoVersions) > 0 && cm.VideoVersions[0].URL != "" {
			return cm.VideoVersions[0].URL
		}
	}
	return ""
}
