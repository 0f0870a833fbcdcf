// Package inference wraps a frozen classifier behind the feature transform.
package inference

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/language"

	"bankpredict/ml"
)

// Predictor is built once at startup and shared by every request. It holds no
// mutable state apart from the optional result cache, which is synchronised.
type Predictor struct {
	classifier  ml.Classifier
	estimator   ml.ProbabilityEstimator
	transformer *ml.FeatureTransformer
	formatter   *PercentFormatter
	cache       *lru.Cache[ml.RawRecord, *Result]
}

type Option func(*Predictor) error

// WithCacheSize enables an LRU cache of results keyed by the raw record.
// Zero disables caching.
func WithCacheSize(size int) Option {
	return func(p *Predictor) error {
		if size < 0 {
			return fmt.Errorf("cache size must not be negative, got %d", size)
		}
		if size == 0 {
			p.cache = nil
			return nil
		}
		cache, err := lru.New[ml.RawRecord, *Result](size)
		if err != nil {
			return err
		}
		p.cache = cache
		return nil
	}
}

func WithLocale(tag language.Tag) Option {
	return func(p *Predictor) error {
		p.formatter = NewPercentFormatter(tag)
		return nil
	}
}

// New checks that the classifier expects exactly the fields the transformer
// produces and returns a ready Predictor.
func New(classifier ml.Classifier, opts ...Option) (*Predictor, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is nil", ml.ErrArtifactLoad)
	}
	transformer := ml.NewFeatureTransformer()
	if err := transformer.Schema().Compatible(classifier.InputSchema()); err != nil {
		return nil, fmt.Errorf("%w: %v", ml.ErrArtifactLoad, err)
	}
	if err := transformer.Fit(); err != nil {
		return nil, err
	}

	p := &Predictor{
		classifier:  classifier,
		transformer: transformer,
		formatter:   NewPercentFormatter(language.English),
	}
	if estimator, ok := classifier.(ml.ProbabilityEstimator); ok {
		p.estimator = estimator
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Predictor) Predict(ctx context.Context, record ml.RawRecord) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.cache != nil {
		if cached, ok := p.cache.Get(record); ok {
			hit := cached.clone()
			hit.Cached = true
			return hit, nil
		}
	}

	features, err := p.transformer.Transform(record)
	if err != nil {
		return nil, err
	}

	label, err := p.classifier.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("%w: predict: %v", ml.ErrClassifierInvocation, err)
	}
	if label != 0 && label != 1 {
		return nil, fmt.Errorf("%w: unexpected label %d", ml.ErrClassifierInvocation, label)
	}

	result := &Result{
		Label:      label,
		Subscribes: label == 1,
		Outcome:    OutcomeNotSubscribes,
		Input:      record,
		Features:   features.Map(),
	}
	if result.Subscribes {
		result.Outcome = OutcomeSubscribes
	}

	if p.estimator != nil {
		proba, err := p.estimator.PredictProba(features)
		if err != nil {
			return nil, fmt.Errorf("%w: predict_proba: %v", ml.ErrClassifierInvocation, err)
		}
		if len(proba) != 2 {
			return nil, fmt.Errorf("%w: expected 2 class probabilities, got %d", ml.ErrClassifierInvocation, len(proba))
		}
		if math.IsNaN(proba[1]) {
			return nil, fmt.Errorf("%w: positive class probability is NaN", ml.ErrClassifierInvocation)
		}
		positive := clamp01(proba[1])
		result.Probability = &positive
		result.ProbabilityDisplay = p.formatter.Format(positive)
	}

	if p.cache != nil {
		p.cache.Add(record, result.clone())
	}
	return result, nil
}

// FeatureNames returns the ordered field names the classifier receives.
func (p *Predictor) FeatureNames() []string {
	return p.transformer.FeatureNamesOut()
}

func (p *Predictor) Schema() ml.Schema {
	return p.transformer.Schema()
}

func (p *Predictor) SupportsProbability() bool {
	return p.estimator != nil
}

// CacheLen reports how many results are cached.
func (p *Predictor) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
