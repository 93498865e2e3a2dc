package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"promptrefiner/internal/domain"
)

const rewriteInstruction = `You are a Senior Prompt Engineering Expert.
Your task is to rewrite the user's request into a highly optimized, professional prompt.
The rewritten prompt must integrate all six aspects: task, role, style, output format, rules and context.
Give the aspects attention in this order of priority: %s.
Output ONLY the rewritten prompt text, nothing else.`

// VariantGenerator produces one optimized rewrite per call. The variant id
// is assigned locally before returning, so concurrent calls against the same
// record can never collide even if the backend returns identical text.
type VariantGenerator struct {
	Inference InferenceRepo
}

func (g VariantGenerator) Generate(ctx context.Context, promptText string, weights domain.AspectWeights, modelId string) (*domain.Variant, error) {
	if weights == nil {
		weights = domain.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	completion, err := g.Inference.ChatCompletion(ctx, CompletionProto{
		Model:       modelId,
		System:      fmt.Sprintf(rewriteInstruction, strings.Join(weights.ByEmphasis(), ", ")),
		User:        fmt.Sprintf("Optimize this prompt:\n\n\"\"\"%s\"\"\"", promptText),
		Temperature: 0.7,
	})

	if err != nil {
		return nil, err
	}

	tokenCount := completion.CompletionTokens
	if tokenCount <= 0 {
		tokenCount = estimateTokens(completion.Content)
	}

	return &domain.Variant{
		Id:         uuid.New().String(),
		Text:       completion.Content,
		TokenCount: tokenCount,
		Model:      modelId,
	}, nil
}

// estimateTokens is the degraded-mode fallback when the backend reports no
// usage. Four characters per token is rough but serviceable.
func estimateTokens(text string) int {
	return len(text) / 4
}
