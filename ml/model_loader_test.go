package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModelFailures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("not json"), 0o600))

	tree := writeArtifact(t, decisionTreeArtifact{
		ModelType: ModelTypeDecisionTree,
		Schema:    FeatureSchema(),
		Nodes:     []TreeNode{{IsLeaf: true, Distribution: []float64{1, 1}}},
	})
	noSchema := writeArtifact(t, decisionTreeArtifact{
		ModelType: ModelTypeDecisionTree,
		Nodes:     []TreeNode{{IsLeaf: true, Distribution: []float64{1, 1}}},
	})
	noNodes := writeArtifact(t, decisionTreeArtifact{
		ModelType: ModelTypeDecisionTree,
		Schema:    FeatureSchema(),
	})

	tests := []struct {
		name      string
		modelType string
		path      string
	}{
		{"missing file", ModelTypeDecisionTree, filepath.Join(dir, "missing.json")},
		{"corrupt file", ModelTypeDecisionTree, garbage},
		{"type mismatch", ModelTypeLogisticRegression, tree},
		{"unsupported type", "random_forest", tree},
		{"missing schema", ModelTypeDecisionTree, noSchema},
		{"no nodes", ModelTypeDecisionTree, noNodes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := LoadModel(tt.modelType, tt.path)
			assert.Nil(t, model)
			assert.ErrorIs(t, err, ErrArtifactLoad)
		})
	}
}

func TestLoadModelSingleLeaf(t *testing.T) {
	path := writeArtifact(t, decisionTreeArtifact{
		ModelType: ModelTypeDecisionTree,
		Schema:    FeatureSchema(),
		Nodes:     []TreeNode{{IsLeaf: true, Distribution: []float64{1, 3}}},
	})
	model, err := LoadModel(ModelTypeDecisionTree, path)
	require.NoError(t, err)

	features, err := NewFeatureTransformer().Transform(DefaultRawRecord())
	require.NoError(t, err)
	proba, err := model.(ProbabilityEstimator).PredictProba(features)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, proba)
}

func TestLoadBundledModel(t *testing.T) {
	model, err := LoadModel(ModelTypeDecisionTree, filepath.Join("..", "models", "model.json"))
	require.NoError(t, err)
	assert.NoError(t, model.InputSchema().Compatible(FeatureSchema()))
}
