package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServingsCount tolerates the model returning servings as a number, a
// numeric string or something unusable. Unusable input decodes to zero and
// is defaulted later; a sloppy servings value must never sink the draft.
type ServingsCount int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *ServingsCount) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = ServingsCount(int(num))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			*s = ServingsCount(n)
			return nil
		}
	}

	*s = 0
	return nil
}

// RecipeDraft is the structured output of the recipe structuring adapter,
// before defaults are applied.
type RecipeDraft struct {
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []string      `json:"instructions"`
	PrepTime     string        `json:"prepTime"`
	CookTime     string        `json:"cookTime"`
	TotalTime    string        `json:"totalTime"`
	Servings     ServingsCount `json:"servings"`
}

// LLMService is the recipe structuring adapter over the Mistral chat
// completions API.
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewLLMService creates a new LLMService instance.
func NewLLMService() (*LLMService, error) {
	apiKey := os.Getenv("MISTRAL_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("MISTRAL_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("MISTRAL_API_KEY or MISTRAL_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("MISTRAL_API_URL")
	if apiURL == "" {
		apiURL = "https://api.mistral.ai/v1/chat/completions"
	}

	model := os.Getenv("MISTRAL_MODEL")
	if model == "" {
		model = "mistral-tiny"
	}

	return &LLMService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Message represents a message in the chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat completion request.
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

const structuringPrompt = `Analyze this Instagram recipe caption and extract a structured recipe from it.
Caption: %q
Transcription: %q
Please format the response as a JSON object with these fields:
- title: A concise recipe title
- category: Must be one of ["Dessert", "Soup", "Main Course", "Starter", "Baby"]
- ingredients: An array of strings, each containing one ingredient with measurement
- instructions: An array of strings, each containing one step
- prepTime: Time it takes to prepare the recipe
- cookTime: Time it takes to cook the recipe
- totalTime: Total time it takes to prepare and cook the recipe
- servings: Number of people the recipe is for (default to 4 if not specified)

Only return the JSON object, no additional text.`

// Structure turns caption and transcription text into a recipe draft. A
// response the system cannot interpret is a hard failure of the synthesis
// step; no defaults are substituted for it.
func (s *LLMService) Structure(ctx context.Context, caption, transcription string) (*RecipeDraft, error) {
	reqBody := Request{
		Model: s.model,
		Messages: []Message{
			{Role: "user", Content: fmt.Sprintf(structuringPrompt, caption, transcription)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMService] API request failed with status %d: %s", resp.StatusCode, string(body))
		return nil, NewUpstream("structuring request failed", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewParse("failed to decode structuring response", err)
	}
	if len(result.Choices) == 0 {
		return nil, NewParse("no choices in structuring response", nil)
	}

	content := stripJSONFences(result.Choices[0].Message.Content)

	var draft RecipeDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, NewParse("failed to parse recipe from model output", err)
	}
	if draft.Title == "" {
		return nil, NewParse("model output is missing a title", nil)
	}

	return &draft, nil
}

// stripJSONFences removes markdown code fences that chat models sometimes
// wrap around JSON output.
func stripJSONFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
