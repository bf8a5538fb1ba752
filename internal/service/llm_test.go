package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLMService(apiURL string) *LLMService {
	return &LLMService{
		apiKey: "test-key",
		apiURL: apiURL,
		model:  "mistral-tiny",
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func chatResponse(content string) string {
	payload := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestStructureSuccess(t *testing.T) {
	draftJSON := `{
		"title": "Tomato Soup",
		"category": "Soup",
		"ingredients": ["4 tomatoes", "1 onion"],
		"instructions": ["Chop", "Simmer"],
		"prepTime": "10 min",
		"cookTime": "20 min",
		"totalTime": "30 min",
		"servings": 2
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req Request
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "mistral-tiny", req.Model)
		assert.Equal(t, map[string]string{"type": "json_object"}, req.ResponseFormat)
		assert.InDelta(t, 0.7, req.Temperature, 0.001)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "soup caption")

		_, _ = w.Write([]byte(chatResponse(draftJSON)))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	draft, err := svc.Structure(context.Background(), "soup caption", "soup transcription")
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", draft.Title)
	assert.Equal(t, "Soup", draft.Category)
	assert.Equal(t, []string{"4 tomatoes", "1 onion"}, draft.Ingredients)
	assert.Equal(t, []string{"Chop", "Simmer"}, draft.Instructions)
	assert.Equal(t, ServingsCount(2), draft.Servings)
}

func TestStructureStripsCodeFences(t *testing.T) {
	fenced := "```json\n{\"title\": \"Cake\", \"category\": \"Dessert\"}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(fenced)))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	draft, err := svc.Structure(context.Background(), "caption", "")
	require.NoError(t, err)
	assert.Equal(t, "Cake", draft.Title)
}

func TestStructureUnparseableOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("I could not find a recipe in that caption, sorry!")))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	_, err := svc.Structure(context.Background(), "caption", "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindParse))
}

func TestStructureMissingTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{"category": "Soup"}`)))
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	_, err := svc.Structure(context.Background(), "caption", "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindParse))
}

func TestStructureUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := newTestLLMService(srv.URL)
	_, err := svc.Structure(context.Background(), "caption", "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestServingsCountTolerantDecoding(t *testing.T) {
	tests := []struct {
		input string
		want  ServingsCount
	}{
		{`4`, 4},
		{`4.9`, 4},
		{`"6"`, 6},
		{`" 2 "`, 2},
		{`"a few"`, 0},
		{`null`, 0},
		{`[1]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s ServingsCount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.want, s)
		})
	}

	var draft RecipeDraft
	raw := fmt.Sprintf(`{"title": "T", "servings": %q}`, "not a number")
	require.NoError(t, json.Unmarshal([]byte(raw), &draft))
	assert.Equal(t, ServingsCount(0), draft.Servings)
}
