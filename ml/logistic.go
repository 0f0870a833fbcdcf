package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const defaultDecisionThreshold = 0.5

// LogisticRegression scores numeric features linearly and one-hot encodes
// categorical ones. Categories without a weight contribute nothing.
type LogisticRegression struct {
	schema          Schema
	intercept       float64
	coefficients    map[string]float64
	categoryWeights map[string]map[string]float64
	threshold       float64
}

type logisticArtifact struct {
	ModelType       string                        `json:"model_type"`
	Schema          Schema                        `json:"schema"`
	Intercept       float64                       `json:"intercept"`
	Coefficients    map[string]float64            `json:"coefficients"`
	CategoryWeights map[string]map[string]float64 `json:"category_weights"`
	Threshold       *float64                      `json:"threshold,omitempty"`
}

func (lr *LogisticRegression) InputSchema() Schema {
	return lr.schema
}

func (lr *LogisticRegression) Predict(features FeatureRecord) (int, error) {
	p, err := lr.positive(features)
	if err != nil {
		return 0, err
	}
	if p >= lr.threshold {
		return 1, nil
	}
	return 0, nil
}

func (lr *LogisticRegression) PredictProba(features FeatureRecord) ([]float64, error) {
	p, err := lr.positive(features)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

// positive sums weights in schema order so repeated calls on the same
// features return the same probability.
func (lr *LogisticRegression) positive(features FeatureRecord) (float64, error) {
	if lr.coefficients == nil && lr.categoryWeights == nil {
		return 0, errors.New("model not loaded")
	}
	z := lr.intercept
	for _, spec := range lr.schema.Features {
		weight, numericOK := lr.coefficients[spec.Name]
		weights, categoricalOK := lr.categoryWeights[spec.Name]
		if !numericOK && !categoricalOK {
			continue
		}
		value, ok := features.Lookup(spec.Name)
		if !ok {
			return 0, fmt.Errorf("feature %s missing from input", spec.Name)
		}
		if numericOK {
			if value.Kind != KindNumeric {
				return 0, fmt.Errorf("feature %s is not numeric", spec.Name)
			}
			z += weight * value.Number
		}
		if categoricalOK {
			if value.Kind != KindCategorical {
				return 0, fmt.Errorf("feature %s is not categorical", spec.Name)
			}
			z += weights[value.Category]
		}
	}
	return sigmoid(z), nil
}

func (lr *LogisticRegression) decode(payload []byte) error {
	var artifact logisticArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	if len(artifact.Coefficients) == 0 && len(artifact.CategoryWeights) == 0 {
		return errors.New("logistic regression has no weights")
	}
	for name := range artifact.Coefficients {
		spec, ok := artifact.Schema.Field(name)
		if !ok || spec.Kind != KindNumeric {
			return fmt.Errorf("coefficient for %q does not match a numeric schema field", name)
		}
	}
	for name := range artifact.CategoryWeights {
		spec, ok := artifact.Schema.Field(name)
		if !ok || spec.Kind != KindCategorical {
			return fmt.Errorf("category weights for %q do not match a categorical schema field", name)
		}
	}
	threshold := defaultDecisionThreshold
	if artifact.Threshold != nil {
		threshold = *artifact.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", threshold)
	}

	lr.schema = artifact.Schema
	lr.intercept = artifact.Intercept
	lr.coefficients = artifact.Coefficients
	lr.categoryWeights = artifact.CategoryWeights
	lr.threshold = threshold
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
