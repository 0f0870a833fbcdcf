package ml

import (
	"encoding/json"
	"os"
)

const (
	ModelTypeDecisionTree       = "decision_tree"
	ModelTypeLogisticRegression = "logistic_regression"
)

type artifactHeader struct {
	ModelType string `json:"model_type"`
	Schema    Schema `json:"schema"`
}

// LoadModel reads a classifier artifact from path. Every failure wraps
// ErrArtifactLoad.
func LoadModel(modelType, path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, artifactError(path, "%v", err)
	}

	var header artifactHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, artifactError(path, "decode header: %v", err)
	}
	if header.ModelType != "" && header.ModelType != modelType {
		return nil, artifactError(path, "artifact is %q, configured model type is %q", header.ModelType, modelType)
	}
	if err := header.Schema.validate(); err != nil {
		return nil, artifactError(path, "%v", err)
	}

	switch modelType {
	case ModelTypeDecisionTree:
		model := &DecisionTree{}
		if err := model.decode(payload); err != nil {
			return nil, artifactError(path, "%v", err)
		}
		return model, nil
	case ModelTypeLogisticRegression:
		model := &LogisticRegression{}
		if err := model.decode(payload); err != nil {
			return nil, artifactError(path, "%v", err)
		}
		return model, nil
	default:
		return nil, artifactError(path, "unsupported model type %q", modelType)
	}
}
