package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"promptrefiner/internal/app"
	"promptrefiner/internal/config"
	"promptrefiner/internal/persistence"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}

	// One shared handle per external dependency, reused across all calls.
	client := &http.Client{Timeout: 90 * time.Second}

	dbHeaders := []string{
		fmt.Sprintf("apikey: %s", cfg.DBApiKey),
		fmt.Sprintf("Authorization: Bearer %s", cfg.DBApiKey)}

	recordRepo := persistence.RecordRepo{
		BaseUrl:     fmt.Sprintf("%s/prompt_record", cfg.DBUrl),
		BaseHeaders: dbHeaders,
		Client:      client,
	}

	inferenceRepo := persistence.InferenceRepo{
		BaseUrl:     cfg.InferenceUrl,
		BaseHeaders: []string{fmt.Sprintf("Authorization: Bearer %s", cfg.InferenceApiKey)},
		Client:      client,
	}

	var verifier app.TokenVerifier
	if cfg.AuthUrl != "" {
		verifier = persistence.AuthRepo{
			BaseUrl:     cfg.AuthUrl,
			BaseHeaders: []string{fmt.Sprintf("apikey: %s", cfg.DBApiKey)},
			Client:      client,
		}
	} else {
		slog.Info("AUTH_URL not set, running without token verification")
	}

	a := app.App{
		RecordRepo:    recordRepo,
		InferenceRepo: inferenceRepo,
		Verifier:      verifier,
		Config: app.Config{
			Port:           cfg.Port,
			DefaultModel:   cfg.Model,
			DefaultWeights: cfg.Weights,
		},
	}

	if err := a.Start(); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}
}
