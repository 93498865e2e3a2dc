package persistence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptrefiner/internal/app"
	"promptrefiner/internal/domain"
)

func testInferenceRepo(t *testing.T, handler http.HandlerFunc) InferenceRepo {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return InferenceRepo{
		BaseUrl:     server.URL,
		BaseHeaders: []string{"Authorization: Bearer test-key"},
		Client:      server.Client(),
	}
}

func TestChatCompletion(t *testing.T) {
	var captured chatCompletionProto
	repo := testInferenceRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "optimized prompt"}}],
			"usage": {"completion_tokens": 24, "prompt_tokens": 120}
		}`))
	})

	completion, err := repo.ChatCompletion(context.Background(), app.CompletionProto{
		Model:       "test-model",
		System:      "rewrite instruction",
		User:        "write a blog post",
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, "optimized prompt", completion.Content)
	assert.Equal(t, 24, completion.CompletionTokens)
	assert.Equal(t, 120, completion.PromptTokens)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Nil(t, captured.ResponseFormat)
}

func TestChatCompletionJSONMode(t *testing.T) {
	var captured chatCompletionProto
	repo := testInferenceRepo(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{}"}}], "usage": {"completion_tokens": 1, "prompt_tokens": 1}}`))
	})

	_, err := repo.ChatCompletion(context.Background(), app.CompletionProto{Model: "test-model", JSONMode: true})

	require.NoError(t, err)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestChatCompletionNon2xx(t *testing.T) {
	repo := testInferenceRepo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", 503)
	})

	_, err := repo.ChatCompletion(context.Background(), app.CompletionProto{Model: "test-model"})

	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.UpstreamError{})
}

func TestChatCompletionEmptyChoices(t *testing.T) {
	repo := testInferenceRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {"completion_tokens": 0, "prompt_tokens": 0}}`))
	})

	_, err := repo.ChatCompletion(context.Background(), app.CompletionProto{Model: "test-model"})

	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.UpstreamError{})
}

func TestChatCompletionUnparsablePayload(t *testing.T) {
	repo := testInferenceRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := repo.ChatCompletion(context.Background(), app.CompletionProto{Model: "test-model"})

	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.UpstreamError{})
}
