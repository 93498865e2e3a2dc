package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testApp(t *testing.T, repo RecordRepo, inference InferenceRepo) *App {
	t.Helper()

	a := &App{
		RecordRepo:    repo,
		InferenceRepo: inference,
		Config:        Config{Port: "0", DefaultModel: "test-model"},
	}
	a.orchestrator = NewOrchestrator(repo, inference, "test-model", nil)
	a.limiter = rate.NewLimiter(rate.Inf, 1)
	return a
}

func TestOptimizeRoute(t *testing.T) {
	repo := newMemRecordRepo()
	inference := &fakeInference{fn: func(ctx context.Context, proto CompletionProto) (*Completion, error) {
		if proto.JSONMode {
			return &Completion{Content: vaguePromptReply, CompletionTokens: 64}, nil
		}
		return &Completion{Content: "optimized", CompletionTokens: 24}, nil
	}}
	a := testApp(t, repo, inference)

	body := `{"ownerID": "owner-1", "projectID": "project-1", "inputPrompt": "write a blog post"}`
	r := httptest.NewRequest("POST", "/api/v1/optimize", strings.NewReader(body))
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	require.Equal(t, 200, w.Code)

	var resp optimizeResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.PromptId)
	assert.Equal(t, "optimized", resp.OptimizedPrompt)
	assert.Equal(t, 64, resp.InitialTokenSize)
	assert.Equal(t, 24, resp.FinalTokenSize)
	require.NotNil(t, resp.ParsedData)
	assert.Equal(t, 6.0, resp.ParsedData.Task.Score)
}

func TestOptimizeExistingRouteUnknownRecord(t *testing.T) {
	a := testApp(t, newMemRecordRepo(), inferenceReturning("optimized", 24))

	body := `{"promptID": "missing-record"}`
	r := httptest.NewRequest("POST", "/api/v1/optimize-existing", strings.NewReader(body))
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	assert.Equal(t, 404, w.Code)
}

func TestFeedbackRouteRejectsOutOfRangeRating(t *testing.T) {
	a := testApp(t, newMemRecordRepo(), inferenceReturning("optimized", 24))

	body := `{"promptID": "r1", "variantID": "v1", "rating": 7}`
	r := httptest.NewRequest("POST", "/api/v1/feedback", strings.NewReader(body))
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	assert.Equal(t, 400, w.Code)
}

func TestDeleteRouteIsIdempotent(t *testing.T) {
	a := testApp(t, newMemRecordRepo(), inferenceReturning("optimized", 24))

	r := httptest.NewRequest("DELETE", "/api/v1/prompt/missing-record", nil)
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	assert.Equal(t, 204, w.Code)
}

func TestFavoriteRouteUnknownRecord(t *testing.T) {
	a := testApp(t, newMemRecordRepo(), inferenceReturning("optimized", 24))

	r := httptest.NewRequest("PUT", "/api/v1/prompt/missing-record/favorite", strings.NewReader(`{"isFavorite": true}`))
	w := httptest.NewRecorder()
	a.routes().ServeHTTP(w, r)

	assert.Equal(t, 404, w.Code)
}

func TestHistoryRouteRejectsBadLimit(t *testing.T) {
	a := testApp(t, newMemRecordRepo(), inferenceReturning("optimized", 24))

	// Parseable-but-non-positive limits go down the same rejection path as
	// unparseable ones; none of them may take the handler down.
	for _, limit := range []string{"nope", "0", "-3"} {
		r := httptest.NewRequest("GET", "/api/v1/history/owner-1?limit="+limit, nil)
		w := httptest.NewRecorder()
		a.routes().ServeHTTP(w, r)

		assert.Equal(t, 400, w.Code, "limit=%s", limit)
	}
}
