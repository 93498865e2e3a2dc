package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsAreFreshPerCall(t *testing.T) {
	first := DefaultWeights()
	first["task"] = 99

	second := DefaultWeights()

	assert.Equal(t, 2.0, second["task"])
}

func TestDefaultWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
}

func TestByEmphasisOrdersByDescendingWeight(t *testing.T) {
	weights := AspectWeights{"task": 4, "role": 1, "style": 1, "output": 1, "rules": 1, "context": 2}

	assert.Equal(t, []string{"task", "context", "role", "style", "output", "rules"}, weights.ByEmphasis())
}

func TestByEmphasisTiesKeepCanonicalOrder(t *testing.T) {
	assert.Equal(t, AspectNames, DefaultWeights().ByEmphasis())
}
