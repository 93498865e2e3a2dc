package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptrefiner/internal/domain"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INFERENCE_API_KEY", "test-inference-key")
	t.Setenv("DB_URL", "https://db.example.com/rest/v1")
	t.Setenv("DB_API_KEY", "test-db-key")
	t.Setenv("PROMPTREFINER_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOPORT", "")
	t.Setenv("INFERENCE_URL", "")
	t.Setenv("INFERENCE_MODEL", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultInferenceUrl, cfg.InferenceUrl)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, domain.DefaultWeights(), cfg.Weights)
}

func TestLoadAppliesOverrides(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "promptrefiner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: some/other-model\nweights:\n  task: 4\n  context: 2\n"), 0644))
	t.Setenv("PROMPTREFINER_CONFIG", path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "some/other-model", cfg.Model)
	assert.Equal(t, 4.0, cfg.Weights["task"])
	assert.Equal(t, 2.0, cfg.Weights["context"])
	assert.Equal(t, 2.0, cfg.Weights["role"])
}

func TestLoadRejectsInvalidWeightOverride(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "promptrefiner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights:\n  task: -1\n"), 0644))
	t.Setenv("PROMPTREFINER_CONFIG", path)

	_, err := Load()

	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.ConfigError{})
}

func TestLoadRejectsUnknownAspectOverride(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "promptrefiner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights:\n  tone: 3\n"), 0644))
	t.Setenv("PROMPTREFINER_CONFIG", path)

	_, err := Load()

	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.ConfigError{})
}
