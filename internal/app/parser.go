package app

import (
	"context"
	"encoding/json"
	"fmt"

	"promptrefiner/internal/domain"
)

const parseInstruction = `You are a Senior Prompt Engineer. Your task is dividing the given prompt in terms of Task, Role, Style, Output, Rules and Context, then scoring each aspect out of 10 based on how well it is constructed.
Scoring rubric: 0 = the aspect is missing entirely; 1-4 = present but vague; 5-7 = clear but generic; 8-10 = specific and constraint-driven.
DO NOT FORGET ANY ASPECT AND SCORE. DO NOT CHANGE THE PROMPT WHEN DIVIDING IT.
If any aspect is missing in the user's prompt, give 0 score for that aspect and leave the field empty or null.

Output strictly in JSON format:
{
    "task": "extracted task aspect or null",
    "task_score": 0-10,
    "role": "extracted role aspect or null",
    "role_score": 0-10,
    "style": "extracted style aspect or null",
    "style_score": 0-10,
    "output": "extracted output format aspect or null",
    "output_score": 0-10,
    "rules": "extracted rules/constraints aspect or null",
    "rules_score": 0-10,
    "context": "extracted context aspect or null",
    "context_score": 0-10
}`

type Usage struct {
	CompletionTokens int
	PromptTokens     int
}

// AspectParser turns a free-form prompt into a validated six-aspect set via
// one inference round trip. It persists nothing itself.
type AspectParser struct {
	Inference InferenceRepo
}

func (p AspectParser) Parse(ctx context.Context, promptText string, modelId string) (*domain.AspectSet, Usage, error) {
	completion, err := p.Inference.ChatCompletion(ctx, CompletionProto{
		Model:       modelId,
		System:      parseInstruction,
		User:        fmt.Sprintf("Analyze this prompt: %s", promptText),
		Temperature: 0.1,
		JSONMode:    true,
	})

	if err != nil {
		return nil, Usage{}, err
	}

	aspects, err := decodeAspects([]byte(completion.Content))

	if err != nil {
		return nil, Usage{}, err
	}

	usage := Usage{CompletionTokens: completion.CompletionTokens, PromptTokens: completion.PromptTokens}
	return aspects, usage, nil
}

// decodeAspects validates the backend reply against the twelve-field schema.
// A null aspect value is legitimate (empty text, zero score); a missing key
// is a contract violation by the backend and is never silently defaulted.
func decodeAspects(content []byte) (*domain.AspectSet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, domain.ParseError{Msg: "backend reply is not a JSON object", Err: err}
	}

	var aspects domain.AspectSet
	for _, name := range domain.AspectNames {
		rawText, ok := fields[name]
		if !ok {
			return nil, domain.ParseError{Msg: fmt.Sprintf("backend reply is missing the %q field", name)}
		}
		rawScore, ok := fields[name+"_score"]
		if !ok {
			return nil, domain.ParseError{Msg: fmt.Sprintf("backend reply is missing the %q field", name+"_score")}
		}

		var text *string
		if err := json.Unmarshal(rawText, &text); err != nil {
			return nil, domain.ParseError{Msg: fmt.Sprintf("backend reply has a malformed %q field", name), Err: err}
		}
		var score *float64
		if err := json.Unmarshal(rawScore, &score); err != nil {
			return nil, domain.ParseError{Msg: fmt.Sprintf("backend reply has a malformed %q field", name+"_score"), Err: err}
		}

		aspect := domain.Aspect{}
		if text != nil {
			aspect.Text = *text
		}
		if score != nil {
			aspect.Score = clampScore(*score)
		}
		aspects.SetAspect(name, aspect)
	}

	return &aspects, nil
}

// Scores outside [0,10] are clamped, not rejected.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
