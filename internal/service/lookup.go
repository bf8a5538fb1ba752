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
	"regexp"
	"time"

	"github.com/cookify-app/backend/internal/types"
)

// Matches single-post and short-video post URLs, e.g.
// https://www.instagram.com/p/CpAbCdEfGhI/ and .../reel/CpAbCdEfGhI/.
var postURLPattern = regexp.MustCompile(`instagram\.com/(p|reel|tv)/([A-Za-z0-9_-]+)`)

// ExtractShortcode pulls the platform shortcode out of a post URL. Returns
// an empty string when the URL is not a recognized post shape.
func ExtractShortcode(postURL string) string {
	m := postURLPattern.FindStringSubmatch(postURL)
	if m == nil {
		return ""
	}
	return m[2]
}

// LookupService is the post lookup adapter. It proxies the oEmbed endpoint
// and returns the post caption, thumbnail and media identifier. The client
// is stateless and safe for concurrent use.
type LookupService struct {
	accessToken string
	apiURL      string
	client      *http.Client
}

// NewLookupService creates a new LookupService instance.
func NewLookupService() (*LookupService, error) {
	accessToken := os.Getenv("INSTAGRAM_ACCESS_TOKEN")
	if accessToken == "" {
		return nil, fmt.Errorf("INSTAGRAM_ACCESS_TOKEN must be set")
	}

	apiURL := os.Getenv("INSTAGRAM_OEMBED_URL")
	if apiURL == "" {
		apiURL = "https://graph.instagram.com/oembed"
	}

	return &LookupService{
		accessToken: accessToken,
		apiURL:      apiURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Lookup resolves a post URL to {mediaID, caption, thumbnailURL}.
func (s *LookupService) Lookup(ctx context.Context, postURL string) (*types.PostMetadata, error) {
	shortcode := ExtractShortcode(postURL)
	if shortcode == "" {
		return nil, NewInvalidInput("not a recognized post URL")
	}

	reqURL := fmt.Sprintf("%s?url=%s&access_token=%s",
		s.apiURL, url.QueryEscape(postURL), url.QueryEscape(s.accessToken))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewNotFound("post not found")
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[LookupService] oEmbed request failed with status %d: %s", resp.StatusCode, string(body))
		return nil, NewUpstream("oEmbed lookup failed", resp.StatusCode, string(body))
	}

	var payload struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewParse("failed to decode oEmbed response", err)
	}

	return &types.PostMetadata{
		MediaID:      shortcode,
		Caption:      payload.Title,
		ThumbnailURL: payload.ThumbnailURL,
	}, nil
}
