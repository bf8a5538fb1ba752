package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// TranscriptionService is the speech-to-text adapter. Rate limiting from the
// upstream is absorbed here: HTTP 429 triggers an exponential backoff retry,
// and an exhausted retry budget degrades to an empty transcription instead
// of failing the pipeline. Any other upstream failure aborts immediately.
type TranscriptionService struct {
	apiKey      string
	apiURL      string
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
}

// NewTranscriptionService creates a new TranscriptionService instance.
func NewTranscriptionService() (*TranscriptionService, error) {
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

	apiURL := os.Getenv("OPENAI_AUDIO_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/audio/transcriptions"
	}

	return &TranscriptionService{
		apiKey:      apiKey,
		apiURL:      apiURL,
		client:      &http.Client{Timeout: 120 * time.Second},
		maxAttempts: 3,
		baseDelay:   time.Second,
	}, nil
}

// TranscribeURL fetches the remote asset into scratch storage, submits it
// for transcription and removes the scratch file on every exit path.
func (s *TranscriptionService) TranscribeURL(ctx context.Context, mediaURL string) (string, error) {
	if mediaURL == "" {
		return "", NewInvalidInput("media URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", NewUpstream("failed to fetch media", resp.StatusCode, string(body))
	}

	tmp, err := os.CreateTemp("", "cookify-media-*.mp4")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close scratch file: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to reopen scratch file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.Transcribe(ctx, f, "media.mp4")
}

// Transcribe submits an audio/video stream for transcription, retrying only
// on upstream throttling.
func (s *TranscriptionService) Transcribe(ctx context.Context, media io.Reader, filename string) (string, error) {
	payload, contentType, err := buildTranscriptionForm(media, filename)
	if err != nil {
		return "", err
	}

	delay := s.baseDelay
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		text, err := s.transcribeAttempt(ctx, payload, contentType)
		if err == nil {
			return text, nil
		}
		if !IsKind(err, KindRateLimited) {
			return "", err
		}
		log.Printf("[TranscriptionService] Rate limited on attempt %d/%d", attempt, s.maxAttempts)
		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}

	// Retry budget exhausted on throttling alone. A recipe without a
	// transcription is still usable, so degrade instead of failing.
	log.Printf("[TranscriptionService] Giving up after %d rate-limited attempts, returning empty transcription", s.maxAttempts)
	return "", nil
}

func buildTranscriptionForm(media io.Reader, filename string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, media); err != nil {
		return nil, "", fmt.Errorf("failed to copy media into form: %w", err)
	}
	if err := w.WriteField("model", "whisper-1"); err != nil {
		return nil, "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (s *TranscriptionService) transcribeAttempt(ctx context.Context, payload []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
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

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", NewRateLimited("transcription throttled")
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[TranscriptionService] API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", NewUpstream("transcription request failed", resp.StatusCode, string(body))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", NewParse("failed to decode transcription response", err)
	}
	return result.Text, nil
}
