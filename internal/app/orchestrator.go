package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"promptrefiner/internal/domain"
)

const defaultHistoryLimit = 50

// Orchestrator owns the record lifecycle: parse-track and variant-track
// operations, each followed by an explicit store write. Concurrent writers
// on one record are serialized per record id with a keyed mutex, so two
// racing generate calls cannot drop each other's variant in the
// read-modify-write cycle.
type Orchestrator struct {
	records        RecordRepo
	parser         AspectParser
	generator      VariantGenerator
	defaultModel   string
	defaultWeights domain.AspectWeights

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(records RecordRepo, inference InferenceRepo, defaultModel string, defaultWeights domain.AspectWeights) *Orchestrator {
	if defaultWeights == nil {
		defaultWeights = domain.DefaultWeights()
	}
	return &Orchestrator{
		records:        records,
		parser:         AspectParser{Inference: inference},
		generator:      VariantGenerator{Inference: inference},
		defaultModel:   defaultModel,
		defaultWeights: defaultWeights,
		locks:          map[string]*sync.Mutex{},
	}
}

func (o *Orchestrator) lock(id string) func() {
	o.mu.Lock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	o.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (o *Orchestrator) model(modelId string) string {
	if modelId == "" {
		return o.defaultModel
	}
	return modelId
}

// weights returns the caller's weights or a fresh copy of the defaults, so
// no caller ever mutates shared default state.
func (o *Orchestrator) weights(w domain.AspectWeights) domain.AspectWeights {
	if w != nil {
		return w
	}
	fresh := make(domain.AspectWeights, len(o.defaultWeights))
	for name, weight := range o.defaultWeights {
		fresh[name] = weight
	}
	return fresh
}

type ParseResult struct {
	Record         *domain.PromptRecord
	Usage          Usage
	ParseLatencyMs float64
}

type OptimizeResult struct {
	Record            *domain.PromptRecord
	Variant           *domain.Variant
	OptimizeLatencyMs float64
}

type CombinedResult struct {
	Record            *domain.PromptRecord
	Variant           *domain.Variant
	ParseLatencyMs    float64
	OptimizeLatencyMs float64
	TotalLatencyMs    float64
}

// ParseOnly creates a record for the prompt, derives its aspects and overall
// score, and persists it.
func (o *Orchestrator) ParseOnly(ctx context.Context, ownerId string, projectId string, promptText string, weights domain.AspectWeights, modelId string) (*ParseResult, error) {
	if promptText == "" {
		return nil, domain.ValidationError{Msg: "prompt text must not be empty"}
	}
	weights = o.weights(weights)
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	record := domain.NewPromptRecord(ownerId, projectId, promptText)

	start := time.Now()
	aspects, usage, err := o.parser.Parse(ctx, promptText, o.model(modelId))

	if err != nil {
		return nil, err
	}

	overall, err := domain.AggregateScore(*aspects, weights)

	if err != nil {
		return nil, err
	}

	record.SetAnalysis(*aspects, overall, usage.CompletionTokens)
	result := &ParseResult{Record: record, Usage: usage, ParseLatencyMs: msSince(start)}

	if err := o.records.Upsert(ctx, *record); err != nil {
		return result, domain.PersistenceError{Op: "parsed record", Err: err}
	}

	return result, nil
}

// OptimizeExisting appends one freshly generated variant to a stored record.
// It does not require the parse track to have run.
func (o *Orchestrator) OptimizeExisting(ctx context.Context, recordId string, weights domain.AspectWeights, modelId string) (*OptimizeResult, error) {
	weights = o.weights(weights)
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	unlock := o.lock(recordId)
	defer unlock()

	record, err := o.records.Read(ctx, recordId)

	if err != nil {
		return nil, err
	}

	start := time.Now()
	variant, err := o.generator.Generate(ctx, record.InputPrompt, weights, o.model(modelId))

	if err != nil {
		return nil, err
	}

	latency := msSince(start)

	if err := record.AddVariant(*variant); err != nil {
		return nil, err
	}
	if err := record.SetLatency(variant.Id, latency); err != nil {
		return nil, err
	}

	result := &OptimizeResult{Record: record, Variant: variant, OptimizeLatencyMs: latency}

	if err := o.records.Upsert(ctx, *record); err != nil {
		return result, domain.PersistenceError{Op: "optimized record", Err: err}
	}

	return result, nil
}

// CombinedParseAndOptimize runs the parse track and one variant generation
// against a fresh record. The two inference calls are independent, so they
// fan out concurrently; the record is assembled and persisted once both are
// back.
func (o *Orchestrator) CombinedParseAndOptimize(ctx context.Context, ownerId string, projectId string, promptText string, weights domain.AspectWeights, modelId string) (*CombinedResult, error) {
	if promptText == "" {
		return nil, domain.ValidationError{Msg: "prompt text must not be empty"}
	}
	weights = o.weights(weights)
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	record := domain.NewPromptRecord(ownerId, projectId, promptText)
	model := o.model(modelId)

	var (
		aspects         *domain.AspectSet
		usage           Usage
		variant         *domain.Variant
		parseLatency    float64
		optimizeLatency float64
	)

	start := time.Now()
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		parseStart := time.Now()
		var err error
		aspects, usage, err = o.parser.Parse(groupCtx, promptText, model)
		parseLatency = msSince(parseStart)
		return err
	})

	group.Go(func() error {
		optimizeStart := time.Now()
		var err error
		variant, err = o.generator.Generate(groupCtx, promptText, weights, model)
		optimizeLatency = msSince(optimizeStart)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	overall, err := domain.AggregateScore(*aspects, weights)

	if err != nil {
		return nil, err
	}

	record.SetAnalysis(*aspects, overall, usage.CompletionTokens)

	if err := record.AddVariant(*variant); err != nil {
		return nil, err
	}
	if err := record.SetLatency(variant.Id, optimizeLatency); err != nil {
		return nil, err
	}

	result := &CombinedResult{
		Record:            record,
		Variant:           variant,
		ParseLatencyMs:    parseLatency,
		OptimizeLatencyMs: optimizeLatency,
		TotalLatencyMs:    msSince(start),
	}

	if err := o.records.Upsert(ctx, *record); err != nil {
		return result, domain.PersistenceError{Op: "combined record", Err: err}
	}

	return result, nil
}

// RecordRating attaches user feedback to an existing variant.
func (o *Orchestrator) RecordRating(ctx context.Context, recordId string, variantId string, rating int) error {
	if rating < 1 || rating > 5 {
		return domain.ValidationError{Msg: "rating must be between 1 and 5"}
	}

	unlock := o.lock(recordId)
	defer unlock()

	record, err := o.records.Read(ctx, recordId)

	if err != nil {
		return err
	}

	if err := record.SetRating(variantId, rating); err != nil {
		return err
	}

	if err := o.records.Upsert(ctx, *record); err != nil {
		return domain.PersistenceError{Op: "rating", Err: err}
	}

	return nil
}

// RecordLatency attaches a caller-measured generation latency to an existing
// variant. Latency may arrive later than the variant itself.
func (o *Orchestrator) RecordLatency(ctx context.Context, recordId string, variantId string, latencyMs float64) error {
	unlock := o.lock(recordId)
	defer unlock()

	record, err := o.records.Read(ctx, recordId)

	if err != nil {
		return err
	}

	if err := record.SetLatency(variantId, latencyMs); err != nil {
		return err
	}

	if err := o.records.Upsert(ctx, *record); err != nil {
		return domain.PersistenceError{Op: "latency", Err: err}
	}

	return nil
}

func (o *Orchestrator) ToggleFavorite(ctx context.Context, recordId string, favorite bool) error {
	unlock := o.lock(recordId)
	defer unlock()

	record, err := o.records.Read(ctx, recordId)

	if err != nil {
		return err
	}

	record.IsFavorite = favorite

	if err := o.records.Upsert(ctx, *record); err != nil {
		return domain.PersistenceError{Op: "favorite", Err: err}
	}

	return nil
}

// DeleteRecord removes a record. Deleting an absent id is not an error.
func (o *Orchestrator) DeleteRecord(ctx context.Context, recordId string) error {
	unlock := o.lock(recordId)
	defer unlock()

	err := o.records.Delete(ctx, recordId)

	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		err = nil
	}

	if err == nil {
		// Drop the per-record mutex so the lock table does not grow with
		// every record ever touched. A writer racing the delete simply
		// recreates the entry; the entry is cheap, correctness comes from
		// the store.
		o.mu.Lock()
		delete(o.locks, recordId)
		o.mu.Unlock()
	}

	return err
}

func (o *Orchestrator) GetRecord(ctx context.Context, recordId string) (*domain.PromptRecord, error) {
	return o.records.Read(ctx, recordId)
}

// History lists an owner's records newest first. The store does not
// guarantee ordering, so the sort happens here.
func (o *Orchestrator) History(ctx context.Context, ownerId string, limit int) ([]domain.PromptRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := o.records.List(ctx, ownerId, limit)

	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
