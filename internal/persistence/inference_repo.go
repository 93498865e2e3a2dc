package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"promptrefiner/internal/app"
	"promptrefiner/internal/domain"
)

// InferenceRepo talks to an OpenAI-compatible chat-completions endpoint.
// It is safe to share across concurrent calls: all per-call state arrives
// through the proto, never on the handle.
type InferenceRepo struct {
	BaseUrl     string
	BaseHeaders []string
	Client      *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionProto struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	CompletionTokens int `json:"completion_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
}

type chatCompletion struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

func (r InferenceRepo) ChatCompletion(ctx context.Context, proto app.CompletionProto) (*app.Completion, error) {
	reqProto := chatCompletionProto{
		Model: proto.Model,
		Messages: []chatMessage{
			{Role: "system", Content: proto.System},
			{Role: "user", Content: proto.User},
		},
		Temperature: proto.Temperature,
	}
	if proto.JSONMode {
		reqProto.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqProto)

	if err != nil {
		return nil, err
	}

	completion, err := request[chatCompletion](ctx, r.Client, reqConfig{
		Method:  "POST",
		Url:     fmt.Sprintf("%s/chat/completions", r.BaseUrl),
		Body:    body,
		Headers: append(r.BaseHeaders, "Content-Type:application/json")},
		200)

	if err != nil {
		return nil, domain.UpstreamError{Msg: "inference request failed", Err: err}
	}

	if len(completion.Choices) == 0 {
		return nil, domain.UpstreamError{Msg: "inference reply contains no choices"}
	}

	return &app.Completion{
		Content:          completion.Choices[0].Message.Content,
		CompletionTokens: completion.Usage.CompletionTokens,
		PromptTokens:     completion.Usage.PromptTokens,
	}, nil
}
