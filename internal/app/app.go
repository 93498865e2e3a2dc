package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"promptrefiner/internal/domain"
)

type Config struct {
	Port           string
	DefaultModel   string
	DefaultWeights domain.AspectWeights
}

// CompletionProto describes one chat-completion request to the inference
// backend. All per-call state travels here, never on the shared handle.
type CompletionProto struct {
	Model       string
	System      string
	User        string
	Temperature float64
	JSONMode    bool
}

type Completion struct {
	Content          string
	CompletionTokens int
	PromptTokens     int
}

type InferenceRepo interface {
	ChatCompletion(ctx context.Context, proto CompletionProto) (*Completion, error)
}

type RecordRepo interface {
	Upsert(ctx context.Context, record domain.PromptRecord) error
	Read(ctx context.Context, id string) (*domain.PromptRecord, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerId string, limit int) ([]domain.PromptRecord, error)
}

// TokenVerifier checks a bearer token and returns the subject it belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type App struct {
	RecordRepo    RecordRepo
	InferenceRepo InferenceRepo
	Verifier      TokenVerifier
	Config        Config

	orchestrator *Orchestrator
	limiter      *rate.Limiter
}

func (a *App) Start() error {
	a.orchestrator = NewOrchestrator(a.RecordRepo, a.InferenceRepo, a.Config.DefaultModel, a.Config.DefaultWeights)
	a.limiter = rate.NewLimiter(rate.Limit(10), 25)

	mux := a.routes()

	slog.Info(fmt.Sprintf("App running on %s...", a.Config.Port))
	return http.ListenAndServe(fmt.Sprintf(":%s", a.Config.Port), mux)
}

func (a *App) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/parse", a.protected(a.handleParse))
	mux.Handle("POST /api/v1/optimize", a.protected(a.handleOptimize))
	mux.Handle("POST /api/v1/optimize-existing", a.protected(a.handleOptimizeExisting))
	mux.Handle("POST /api/v1/feedback", a.protected(a.handleFeedback))
	mux.Handle("POST /api/v1/latency", a.protected(a.handleLatency))
	mux.Handle("PUT /api/v1/prompt/{id}/favorite", a.protected(a.handleFavorite))
	mux.Handle("GET /api/v1/prompt/{id}", a.protected(a.handleGetRecord))
	mux.Handle("DELETE /api/v1/prompt/{id}", a.protected(a.handleDeleteRecord))
	mux.Handle("GET /api/v1/history/{ownerId}", a.protected(a.handleHistory))
	mux.Handle("GET /", AppHandler(handleRoot))

	return mux
}

func (a *App) protected(next AppHandler) AppHandler {
	return a.limited(a.authenticated(next))
}

func handleRoot(w http.ResponseWriter, r *http.Request) *AppError {
	writeJSON(w, 200, map[string]string{"status": "operational"})
	return nil
}
