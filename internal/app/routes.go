package app

import (
	"fmt"
	"net/http"
	"strconv"

	"promptrefiner/internal/domain"
)

type parseReq struct {
	OwnerId      string               `json:"ownerID"`
	ProjectId    string               `json:"projectID"`
	InputPrompt  string               `json:"inputPrompt"`
	ScoreWeights domain.AspectWeights `json:"scoreWeights"`
	Model        string               `json:"model"`
}

type parseResp struct {
	Status           string            `json:"status"`
	PromptId         string            `json:"promptID"`
	ParsedData       *domain.AspectSet `json:"parsedData"`
	OverallScore     *float64          `json:"overallScore"`
	CompletionTokens int               `json:"completionTokens"`
	PromptTokens     int               `json:"promptTokens"`
	ParseLatencyMs   float64           `json:"parseLatencyMs"`
}

type optimizeResp struct {
	Status            string            `json:"status"`
	PromptId          string            `json:"promptID"`
	ParsedData        *domain.AspectSet `json:"parsedData"`
	OverallScore      *float64          `json:"overallScore"`
	OptimizedPromptId string            `json:"optimizedPromptID"`
	OptimizedPrompt   string            `json:"optimizedPrompt"`
	InitialTokenSize  int               `json:"initialTokenSize"`
	FinalTokenSize    int               `json:"finalTokenSize"`
	UsedLLM           string            `json:"usedLLM"`
	ParseLatencyMs    float64           `json:"parseLatencyMs"`
	OptimizeLatencyMs float64           `json:"optimizeLatencyMs"`
	TotalLatencyMs    float64           `json:"totalLatencyMs"`
}

type optimizeExistingReq struct {
	PromptId     string               `json:"promptID"`
	ScoreWeights domain.AspectWeights `json:"scoreWeights"`
	Model        string               `json:"model"`
}

type optimizeExistingResp struct {
	Status            string  `json:"status"`
	PromptId          string  `json:"promptID"`
	OptimizedPromptId string  `json:"optimizedPromptID"`
	OptimizedPrompt   string  `json:"optimizedPrompt"`
	FinalTokenSize    int     `json:"finalTokenSize"`
	UsedLLM           string  `json:"usedLLM"`
	OptimizeLatencyMs float64 `json:"optimizeLatencyMs"`
}

type feedbackReq struct {
	PromptId  string `json:"promptID"`
	VariantId string `json:"variantID"`
	Rating    int    `json:"rating"`
}

type latencyReq struct {
	PromptId  string  `json:"promptID"`
	VariantId string  `json:"variantID"`
	LatencyMs float64 `json:"latencyMs"`
}

type favoriteReq struct {
	IsFavorite bool `json:"isFavorite"`
}

type statusResp struct {
	Status string `json:"status"`
}

func readBody[T any](r *http.Request) (*T, *AppError) {
	body, err := Read(r.Body)

	if err != nil {
		return nil, &AppError{Error: err, Message: "Could not read request body.", Code: 400}
	}

	req, err := ReadJSON[T](body)

	if err != nil {
		return nil, &AppError{Error: err, Message: "Request body is not valid JSON.", Code: 400}
	}

	return req, nil
}

func (a *App) handleParse(w http.ResponseWriter, r *http.Request) *AppError {
	req, appErr := readBody[parseReq](r)

	if appErr != nil {
		return appErr
	}

	result, err := a.orchestrator.ParseOnly(r.Context(), req.OwnerId, req.ProjectId, req.InputPrompt, req.ScoreWeights, req.Model)

	if err != nil {
		return appError(err)
	}

	writeJSON(w, 200, parseResp{
		Status:           "success",
		PromptId:         result.Record.Id,
		ParsedData:       result.Record.Aspects,
		OverallScore:     result.Record.OverallScore,
		CompletionTokens: result.Usage.CompletionTokens,
		PromptTokens:     result.Usage.PromptTokens,
		ParseLatencyMs:   result.ParseLatencyMs,
	})
	return nil
}

func (a *App) handleOptimize(w http.ResponseWriter, r *http.Request) *AppError {
	req, appErr := readBody[parseReq](r)

	if appErr != nil {
		return appErr
	}

	result, err := a.orchestrator.CombinedParseAndOptimize(r.Context(), req.OwnerId, req.ProjectId, req.InputPrompt, req.ScoreWeights, req.Model)

	if err != nil {
		return appError(err)
	}

	writeJSON(w, 200, optimizeResp{
		Status:            "success",
		PromptId:          result.Record.Id,
		ParsedData:        result.Record.Aspects,
		OverallScore:      result.Record.OverallScore,
		OptimizedPromptId: result.Variant.Id,
		OptimizedPrompt:   result.Variant.Text,
		InitialTokenSize:  result.Record.InitialTokenCount,
		FinalTokenSize:    result.Variant.TokenCount,
		UsedLLM:           result.Variant.Model,
		ParseLatencyMs:    result.ParseLatencyMs,
		OptimizeLatencyMs: result.OptimizeLatencyMs,
		TotalLatencyMs:    result.TotalLatencyMs,
	})
	return nil
}

func (a *App) handleOptimizeExisting(w http.ResponseWriter, r *http.Request) *AppError {
	req, appErr := readBody[optimizeExistingReq](r)

	if appErr != nil {
		return appErr
	}

	result, err := a.orchestrator.OptimizeExisting(r.Context(), req.PromptId, req.ScoreWeights, req.Model)

	if err != nil {
		return appError(err)
	}

	writeJSON(w, 200, optimizeExistingResp{
		Status:            "success",
		PromptId:          result.Record.Id,
		OptimizedPromptId: result.Variant.Id,
		OptimizedPrompt:   result.Variant.Text,
		FinalTokenSize:    result.Variant.TokenCount,
		UsedLLM:           result.Variant.Model,
		OptimizeLatencyMs: result.OptimizeLatencyMs,
	})
	return nil
}

func (a *App) handleFeedback(w http.ResponseWriter, r *http.Request) *AppError {
	req, appErr := readBody[feedbackReq](r)

	if appErr != nil {
		return appErr
	}

	if err := a.orchestrator.RecordRating(r.Context(), req.PromptId, req.VariantId, req.Rating); err != nil {
		return appError(err)
	}

	writeJSON(w, 200, statusResp{Status: "success"})
	return nil
}

func (a *App) handleLatency(w http.ResponseWriter, r *http.Request) *AppError {
	req, appErr := readBody[latencyReq](r)

	if appErr != nil {
		return appErr
	}

	if err := a.orchestrator.RecordLatency(r.Context(), req.PromptId, req.VariantId, req.LatencyMs); err != nil {
		return appError(err)
	}

	writeJSON(w, 200, statusResp{Status: "success"})
	return nil
}

func (a *App) handleFavorite(w http.ResponseWriter, r *http.Request) *AppError {
	req, appErr := readBody[favoriteReq](r)

	if appErr != nil {
		return appErr
	}

	if err := a.orchestrator.ToggleFavorite(r.Context(), r.PathValue("id"), req.IsFavorite); err != nil {
		return appError(err)
	}

	writeJSON(w, 200, statusResp{Status: "success"})
	return nil
}

func (a *App) handleGetRecord(w http.ResponseWriter, r *http.Request) *AppError {
	record, err := a.orchestrator.GetRecord(r.Context(), r.PathValue("id"))

	if err != nil {
		return appError(err)
	}

	writeJSON(w, 200, record)
	return nil
}

func (a *App) handleDeleteRecord(w http.ResponseWriter, r *http.Request) *AppError {
	if err := a.orchestrator.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		return appError(err)
	}

	w.WriteHeader(204)
	return nil
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) *AppError {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return &AppError{Error: fmt.Errorf("invalid history limit %q", raw), Message: "limit must be a positive integer.", Code: 400}
		}
		limit = parsed
	}

	records, err := a.orchestrator.History(r.Context(), r.PathValue("ownerId"), limit)

	if err != nil {
		return appError(err)
	}

	writeJSON(w, 200, records)
	return nil
}
