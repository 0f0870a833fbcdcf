package ml

import (
	"encoding/json"
	"errors"
	"fmt"
)

type DecisionTree struct {
	schema Schema
	nodes  []TreeNode
}

// TreeNode is either a split or a leaf. Numeric splits send values <= Threshold
// left; categorical splits send values listed in Categories left.
type TreeNode struct {
	Feature      string    `json:"feature,omitempty"`
	Threshold    float64   `json:"threshold"`
	Categories   []string  `json:"categories,omitempty"`
	LeftChild    int       `json:"left_child"`
	RightChild   int       `json:"right_child"`
	IsLeaf       bool      `json:"is_leaf"`
	Distribution []float64 `json:"distribution,omitempty"`
}

type decisionTreeArtifact struct {
	ModelType string     `json:"model_type"`
	Schema    Schema     `json:"schema"`
	Nodes     []TreeNode `json:"nodes"`
}

func (dt *DecisionTree) InputSchema() Schema {
	return dt.schema
}

func (dt *DecisionTree) Predict(features FeatureRecord) (int, error) {
	dist, err := dt.leafDistribution(features)
	if err != nil {
		return 0, err
	}
	if dist[1] > dist[0] {
		return 1, nil
	}
	return 0, nil
}

func (dt *DecisionTree) PredictProba(features FeatureRecord) ([]float64, error) {
	dist, err := dt.leafDistribution(features)
	if err != nil {
		return nil, err
	}
	total := dist[0] + dist[1]
	return []float64{dist[0] / total, dist[1] / total}, nil
}

func (dt *DecisionTree) decode(payload []byte) error {
	var artifact decisionTreeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	dt.schema = artifact.Schema
	dt.nodes = artifact.Nodes
	return dt.validate()
}

func (dt *DecisionTree) leafDistribution(features FeatureRecord) ([]float64, error) {
	if len(dt.nodes) == 0 {
		return nil, errors.New("model not loaded")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.Distribution, nil
		}
		left, err := node.goesLeft(features)
		if err != nil {
			return nil, err
		}
		if left {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return nil, errors.New("invalid tree state")
		}
	}
}

func (n TreeNode) goesLeft(features FeatureRecord) (bool, error) {
	value, ok := features.Lookup(n.Feature)
	if !ok {
		return false, fmt.Errorf("feature %s missing from input", n.Feature)
	}
	if len(n.Categories) > 0 {
		if value.Kind != KindCategorical {
			return false, fmt.Errorf("feature %s is not categorical", n.Feature)
		}
		return oneOf(value.Category, n.Categories), nil
	}
	if value.Kind != KindNumeric {
		return false, fmt.Errorf("feature %s is not numeric", n.Feature)
	}
	return value.Number <= n.Threshold, nil
}

// validate checks node references so that Predict always terminates: children
// must come after their parent.
func (dt *DecisionTree) validate() error {
	if len(dt.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if len(node.Distribution) != 2 {
				return fmt.Errorf("leaf %d: distribution must have 2 entries, got %d", i, len(node.Distribution))
			}
			if node.Distribution[0] < 0 || node.Distribution[1] < 0 || node.Distribution[0]+node.Distribution[1] <= 0 {
				return fmt.Errorf("leaf %d: invalid distribution %v", i, node.Distribution)
			}
			continue
		}
		spec, ok := dt.schema.Field(node.Feature)
		if !ok {
			return fmt.Errorf("node %d: feature %q not in schema", i, node.Feature)
		}
		if spec.Kind == KindCategorical && len(node.Categories) == 0 {
			return fmt.Errorf("node %d: categorical feature %s needs categories", i, node.Feature)
		}
		if spec.Kind == KindNumeric && len(node.Categories) > 0 {
			return fmt.Errorf("node %d: numeric feature %s cannot split on categories", i, node.Feature)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}
