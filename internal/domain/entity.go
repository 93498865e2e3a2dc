package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// The six aspects every prompt is decomposed into, in canonical order.
var AspectNames = []string{"task", "role", "style", "output", "rules", "context"}

type Aspect struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type AspectSet struct {
	Task    Aspect `json:"task"`
	Role    Aspect `json:"role"`
	Style   Aspect `json:"style"`
	Output  Aspect `json:"output"`
	Rules   Aspect `json:"rules"`
	Context Aspect `json:"context"`
}

// Aspect returns the aspect stored under one of the six canonical names.
func (s AspectSet) Aspect(name string) (Aspect, bool) {
	switch name {
	case "task":
		return s.Task, true
	case "role":
		return s.Role, true
	case "style":
		return s.Style, true
	case "output":
		return s.Output, true
	case "rules":
		return s.Rules, true
	case "context":
		return s.Context, true
	default:
		return Aspect{}, false
	}
}

func (s *AspectSet) SetAspect(name string, aspect Aspect) {
	switch name {
	case "task":
		s.Task = aspect
	case "role":
		s.Role = aspect
	case "style":
		s.Style = aspect
	case "output":
		s.Output = aspect
	case "rules":
		s.Rules = aspect
	case "context":
		s.Context = aspect
	}
}

type Variant struct {
	Id         string   `json:"id"`
	Text       string   `json:"text"`
	TokenCount int      `json:"token_count"`
	Model      string   `json:"model"`
	LatencyMs  *float64 `json:"latency_ms"`
	Rating     *int     `json:"rating"`
}

type PromptRecord struct {
	Id                string     `json:"id"`
	OwnerId           string     `json:"owner_id"`
	ProjectId         string     `json:"project_id"`
	InputPrompt       string     `json:"input_prompt"`
	Aspects           *AspectSet `json:"aspects"`
	OverallScore      *float64   `json:"overall_score"`
	InitialTokenCount int        `json:"initial_token_count"`
	Variants          []Variant  `json:"variants"`
	IsFavorite        bool       `json:"is_favorite"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewPromptRecord creates a record holding only the input prompt and its
// identity fields. Aspects and score stay unset until a parse succeeds.
func NewPromptRecord(ownerId string, projectId string, inputPrompt string) *PromptRecord {
	return &PromptRecord{
		Id:          uuid.New().String(),
		OwnerId:     ownerId,
		ProjectId:   projectId,
		InputPrompt: inputPrompt,
		Variants:    []Variant{},
		CreatedAt:   time.Now().UTC(),
	}
}

// SetAnalysis overwrites the record's parse-track state. Re-parsing the same
// record is allowed and replaces a prior analysis wholesale.
func (r *PromptRecord) SetAnalysis(aspects AspectSet, overallScore float64, initialTokenCount int) {
	r.Aspects = &aspects
	r.OverallScore = &overallScore
	r.InitialTokenCount = initialTokenCount
}

// Variant looks a variant up by id. Variants keep insertion order for display
// but are identified by id only.
func (r *PromptRecord) Variant(id string) (*Variant, bool) {
	for i := range r.Variants {
		if r.Variants[i].Id == id {
			return &r.Variants[i], true
		}
	}
	return nil, false
}

// AddVariant appends a variant. Ids are never reused within a record, so a
// duplicate id is rejected rather than overwritten.
func (r *PromptRecord) AddVariant(variant Variant) error {
	if variant.Id == "" {
		return ValidationError{Msg: "variant id must not be empty"}
	}
	if _, ok := r.Variant(variant.Id); ok {
		return ValidationError{Msg: fmt.Sprintf("variant id %s already exists", variant.Id)}
	}
	r.Variants = append(r.Variants, variant)
	return nil
}

// SetLatency records the measured generation latency of an existing variant.
func (r *PromptRecord) SetLatency(variantId string, latencyMs float64) error {
	if latencyMs < 0 {
		return ValidationError{Msg: "latency must not be negative"}
	}
	variant, ok := r.Variant(variantId)
	if !ok {
		return NotFoundError{Kind: "variant", Id: variantId}
	}
	variant.LatencyMs = &latencyMs
	return nil
}

// SetRating records user feedback on an existing variant. Ratings live in
// [1,5]; an out-of-range value leaves any prior rating untouched.
func (r *PromptRecord) SetRating(variantId string, rating int) error {
	if rating < 1 || rating > 5 {
		return ValidationError{Msg: fmt.Sprintf("rating %d out of range [1,5]", rating)}
	}
	variant, ok := r.Variant(variantId)
	if !ok {
		return NotFoundError{Kind: "variant", Id: variantId}
	}
	variant.Rating = &rating
	return nil
}
