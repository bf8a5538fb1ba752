package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/cookify-app/backend/config"
)

// Illustration generation is non-essential to recipe correctness, so this
// adapter never surfaces an error: any failure falls back to a generic
// category-based placeholder URL.

// maxPromptIngredients caps how many ingredients go into the image prompt.
const maxPromptIngredients = 8

// ImageGenerationRequest represents a request to the image generation API.
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the image generation API.
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL string `json:"url,omitempty"`
	} `json:"data"`
}

// ImageService generates recipe illustrations and re-hosts them on S3.
type ImageService struct {
	apiKey   string
	apiURL   string
	s3Config *config.S3Config
	client   *http.Client
}

// NewImageService creates a new ImageService instance. s3Config may be nil,
// in which case generated images are served from the provider's URL.
func NewImageService(s3Config *config.S3Config) (*ImageService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("OPENAI_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_API_KEY_FILE must be set")
		}
		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}
		apiKey = strings.TrimSpace(string(apiKeyBytes))
	}

	apiURL := os.Getenv("OPENAI_IMAGES_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/images/generations"
	}

	return &ImageService{
		apiKey:   apiKey,
		apiURL:   apiURL,
		s3Config: s3Config,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Illustrate returns an illustration URL for the recipe. It never fails;
// the placeholder URL is the worst case.
func (s *ImageService) Illustrate(ctx context.Context, title string, ingredients []string, category string) string {
	prompt := buildIllustrationPrompt(title, ingredients)

	imageURL, err := s.generateImage(ctx, prompt)
	if err != nil {
		log.Printf("[ImageService] Falling back to placeholder for %q: %v", title, err)
		return PlaceholderIllustration(title, category)
	}

	if s.s3Config != nil {
		if s3URL, err := s.downloadAndUploadToS3(ctx, imageURL); err == nil {
			return s3URL
		} else {
			log.Printf("[ImageService] Failed to upload to S3, returning original URL: %v", err)
		}
	}
	return imageURL
}

// PlaceholderIllustration builds the generic fallback image URL.
func PlaceholderIllustration(title, category string) string {
	term := title
	if term == "" {
		term = category
	}
	return fmt.Sprintf("https://source.unsplash.com/featured/?%s,food", url.QueryEscape(term))
}

func buildIllustrationPrompt(title string, ingredients []string) string {
	if len(ingredients) > maxPromptIngredients {
		ingredients = ingredients[:maxPromptIngredients]
	}
	return fmt.Sprintf("A minimalistic abstract watercolor drawing of %s, inspired by recipe book illustrations. "+
		"The dish is depicted in a delicate, airy watercolor style with gentle brushstrokes. "+
		"The main ingredients are the following: %s. They are arranged artistically in a bowl or a plate, "+
		"with steam subtly rising. The color palette is earthy and inviting, featuring golden tones, "+
		"deep greens for vegetables and herbs, and soft browns. The background is light and textured. "+
		"No text included.", title, strings.Join(ingredients, ", "))
}

func (s *ImageService) generateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := ImageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewUpstream("image generation failed", resp.StatusCode, string(body))
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", NewParse("failed to decode image response", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", NewParse("no image URL in API response", nil)
	}

	return result.Data[0].URL, nil
}

// downloadAndUploadToS3 downloads a generated image and re-hosts it so the
// illustration outlives the provider's short-lived URL.
func (s *ImageService) downloadAndUploadToS3(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	fileName := fmt.Sprintf("illustrations/%s.png", uuid.New().String())

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName), nil
}
