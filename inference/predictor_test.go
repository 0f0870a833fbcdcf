package inference

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"bankpredict/ml"
)

type stubClassifier struct {
	label  int
	err    error
	schema ml.Schema
	calls  atomic.Int32
}

func (s *stubClassifier) Predict(ml.FeatureRecord) (int, error) {
	s.calls.Add(1)
	return s.label, s.err
}

func (s *stubClassifier) InputSchema() ml.Schema {
	return s.schema
}

type stubEstimator struct {
	stubClassifier
	proba    []float64
	probaErr error
}

func (s *stubEstimator) PredictProba(ml.FeatureRecord) ([]float64, error) {
	return s.proba, s.probaErr
}

func newEstimator(label int, positive float64) *stubEstimator {
	return &stubEstimator{
		stubClassifier: stubClassifier{label: label, schema: ml.FeatureSchema()},
		proba:          []float64{1 - positive, positive},
	}
}

func validRecord() ml.RawRecord {
	return ml.RawRecord{
		Age:       35,
		Job:       "technician",
		Marital:   "single",
		Education: "tertiary",
		Default:   "no",
		Balance:   1500,
		Housing:   "yes",
		Loan:      "no",
		Contact:   "cellular",
		Day:       15,
		Month:     "may",
		Campaign:  2,
		Pdays:     -1,
		Previous:  0,
		Poutcome:  "unknown",
	}
}

func TestPredictPositiveWithProbability(t *testing.T) {
	predictor, err := New(newEstimator(1, 0.73))
	require.NoError(t, err)

	result, err := predictor.Predict(context.Background(), validRecord())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Label)
	assert.True(t, result.Subscribes)
	assert.Equal(t, OutcomeSubscribes, result.Outcome)
	require.NotNil(t, result.Probability)
	assert.InDelta(t, 0.73, *result.Probability, 1e-12)
	assert.Equal(t, "73.00%", result.ProbabilityDisplay)
	assert.Equal(t, validRecord(), result.Input)
	assert.False(t, result.Cached)
	assert.NotContains(t, result.Features, "month")
	assert.Equal(t, 1.0, result.Features["new_client"])
}

func TestPredictNegativeWithoutEstimator(t *testing.T) {
	predictor, err := New(&stubClassifier{label: 0, schema: ml.FeatureSchema()})
	require.NoError(t, err)
	assert.False(t, predictor.SupportsProbability())

	result, err := predictor.Predict(context.Background(), validRecord())
	require.NoError(t, err)
	assert.False(t, result.Subscribes)
	assert.Equal(t, OutcomeNotSubscribes, result.Outcome)
	assert.Nil(t, result.Probability)
	assert.Empty(t, result.ProbabilityDisplay)
}

func TestNewRejectsIncompatibleSchema(t *testing.T) {
	schema := ml.FeatureSchema()
	schema.Features = schema.Features[:len(schema.Features)-1]

	_, err := New(&stubClassifier{schema: schema})
	assert.ErrorIs(t, err, ml.ErrArtifactLoad)

	_, err = New(nil)
	assert.ErrorIs(t, err, ml.ErrArtifactLoad)

	_, err = New(newEstimator(1, 0.5), WithCacheSize(-1))
	assert.Error(t, err)
}

func TestPredictInvalidInput(t *testing.T) {
	stub := newEstimator(1, 0.9)
	predictor, err := New(stub)
	require.NoError(t, err)

	record := validRecord()
	record.Month = "june"
	_, err = predictor.Predict(context.Background(), record)

	var invalid *ml.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "month", invalid.Field)
	assert.Zero(t, stub.calls.Load())
}

func TestPredictClassifierFailures(t *testing.T) {
	tests := map[string]*stubEstimator{
		"predict error": {
			stubClassifier: stubClassifier{err: errors.New("boom"), schema: ml.FeatureSchema()},
			proba:          []float64{0.5, 0.5},
		},
		"unexpected label": {
			stubClassifier: stubClassifier{label: 2, schema: ml.FeatureSchema()},
			proba:          []float64{0.5, 0.5},
		},
		"proba error": {
			stubClassifier: stubClassifier{label: 1, schema: ml.FeatureSchema()},
			probaErr:       errors.New("boom"),
		},
		"wrong proba length": {
			stubClassifier: stubClassifier{label: 1, schema: ml.FeatureSchema()},
			proba:          []float64{1},
		},
		"nan proba": {
			stubClassifier: stubClassifier{label: 1, schema: ml.FeatureSchema()},
			proba:          []float64{0, math.NaN()},
		},
	}
	for name, stub := range tests {
		t.Run(name, func(t *testing.T) {
			predictor, err := New(stub)
			require.NoError(t, err)
			_, err = predictor.Predict(context.Background(), validRecord())
			assert.ErrorIs(t, err, ml.ErrClassifierInvocation)
		})
	}
}

func TestPredictClampsProbability(t *testing.T) {
	stub := newEstimator(1, 1)
	stub.proba = []float64{-0.0000001, 1.0000001}
	predictor, err := New(stub)
	require.NoError(t, err)

	result, err := predictor.Predict(context.Background(), validRecord())
	require.NoError(t, err)
	assert.Equal(t, 1.0, *result.Probability)
	assert.Equal(t, "100.00%", result.ProbabilityDisplay)
}

func TestPredictCancelledContext(t *testing.T) {
	predictor, err := New(newEstimator(1, 0.5))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = predictor.Predict(ctx, validRecord())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictCache(t *testing.T) {
	stub := newEstimator(1, 0.73)
	predictor, err := New(stub, WithCacheSize(8))
	require.NoError(t, err)

	first, err := predictor.Predict(context.Background(), validRecord())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	*first.Probability = 0
	first.Features["age"] = -1.0

	second, err := predictor.Predict(context.Background(), validRecord())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.InDelta(t, 0.73, *second.Probability, 1e-12)
	assert.Equal(t, 35.0, second.Features["age"])
	assert.EqualValues(t, 1, stub.calls.Load())
	assert.Equal(t, 1, predictor.CacheLen())

	other := validRecord()
	other.Age = 60
	_, err = predictor.Predict(context.Background(), other)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stub.calls.Load())
	assert.Equal(t, 2, predictor.CacheLen())
}

func TestPredictConcurrent(t *testing.T) {
	predictor, err := New(newEstimator(0, 0.2), WithCacheSize(4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			record := validRecord()
			record.Day = day
			result, err := predictor.Predict(context.Background(), record)
			assert.NoError(t, err)
			assert.Equal(t, "20.00%", result.ProbabilityDisplay)
		}(i%8 + 1)
	}
	wg.Wait()
}

func TestFeatureNames(t *testing.T) {
	predictor, err := New(newEstimator(0, 0.1))
	require.NoError(t, err)
	assert.Equal(t, ml.FeatureSchema().Names(), predictor.FeatureNames())
	assert.Equal(t, ml.SchemaVersion, predictor.Schema().Version)
}

func TestPercentFormatter(t *testing.T) {
	f := NewPercentFormatter(language.English)
	assert.Equal(t, "73.00%", f.Format(0.73))
	assert.Equal(t, "0.00%", f.Format(0))
	assert.Equal(t, "50.00%", f.Format(0.5))
}
