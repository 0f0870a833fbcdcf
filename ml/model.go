package ml

// Classifier is a frozen binary classifier loaded from an artifact. Label 1
// is the positive class.
type Classifier interface {
	Predict(features FeatureRecord) (int, error)
	InputSchema() Schema
}

// ProbabilityEstimator is implemented by classifiers that can report class
// probabilities as [p(class0), p(class1)].
type ProbabilityEstimator interface {
	PredictProba(features FeatureRecord) ([]float64, error)
}
