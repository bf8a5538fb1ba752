package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cookify-app/backend/internal/types"
)

// OCRService extracts readable text from photographed recipes using the
// vision chat endpoint. All images of one request go into a single batched
// call to bound cost and latency.
type OCRService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewOCRService creates a new OCRService instance.
func NewOCRService() (*OCRService, error) {
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

	apiURL := os.Getenv("OPENAI_CHAT_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}

	model := os.Getenv("OPENAI_VISION_MODEL")
	if model == "" {
		model = "gpt-4o"
	}

	return &OCRService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type visionContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type visionMessage struct {
	Role    string              `json:"role"`
	Content []visionContentPart `json:"content"`
}

// ExtractText reads all text across the given images in one call.
func (s *OCRService) ExtractText(ctx context.Context, images []types.ImageInput) (string, error) {
	if len(images) == 0 {
		return "", NewInvalidInput("at least one image is required")
	}

	parts := []visionContentPart{{
		Type: "text",
		Text: "Please read and extract all text from these images. Return the combined text only.",
	}}
	for _, img := range images {
		mime := img.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data))
		parts = append(parts, visionContentPart{
			Type: "image_url",
			ImageURL: &struct {
				URL string `json:"url"`
			}{URL: dataURL},
		})
	}

	reqBody := struct {
		Model     string          `json:"model"`
		Messages  []visionMessage `json:"messages"`
		MaxTokens int             `json:"max_tokens"`
	}{
		Model:     s.model,
		Messages:  []visionMessage{{Role: "user", Content: parts}},
		MaxTokens: 500,
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
		log.Printf("[OCRService] API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", NewUpstream("OCR request failed", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", NewParse("failed to decode OCR response", err)
	}
	if len(result.Choices) == 0 {
		return "", NewParse("no choices in OCR response", nil)
	}

	return result.Choices[0].Message.Content, nil
}
