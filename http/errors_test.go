package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankpredict/ml"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"invalid input", &ml.InvalidInputError{Field: "job", Value: "x"}, http.StatusBadRequest, ErrCodeInvalidInput},
		{"wrapped invalid input", fmt.Errorf("form: %w", &ml.InvalidInputError{Field: "age"}), http.StatusBadRequest, ErrCodeInvalidInput},
		{"malformed", fmt.Errorf("%w: empty body", errMalformedRequest), http.StatusBadRequest, ErrCodeMalformedRequest},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge},
		{"classifier", fmt.Errorf("%w: boom", ml.ErrClassifierInvocation), http.StatusInternalServerError, ErrCodePredictionFailed},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, ErrCodeRequestCancelled},
		{"deadline", fmt.Errorf("predict: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, ErrCodeRequestCancelled},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := classifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestParseForm(t *testing.T) {
	values := url.Values{}
	for k, v := range validPayload() {
		values.Set(k, " "+jsonScalar(v)+" ")
	}
	record, err := parseForm(values)
	require.NoError(t, err)
	assert.Equal(t, 35, record.Age)
	assert.Equal(t, -1, record.Pdays)
	assert.Equal(t, "technician", record.Job)
	assert.NoError(t, record.Validate())

	values.Set("pdays", "")
	_, err = parseForm(values)
	var invalid *ml.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "pdays", invalid.Field)
}
