package http

import (
	"context"
	"errors"
	"net/http"

	"bankpredict/ml"
)

// ErrorCode 错误码
type ErrorCode string

const (
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"
	ErrCodePredictionFailed ErrorCode = "PREDICTION_FAILED"
	ErrCodeRequestCancelled ErrorCode = "REQUEST_CANCELLED"
	ErrCodeRequestTooLarge  ErrorCode = "REQUEST_TOO_LARGE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

const genericPredictionFailure = "prediction failed"

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Value   interface{} `json:"value,omitempty"`
}

// classifyError 将领域错误映射为HTTP状态码和错误响应
func classifyError(err error) (int, ErrorResponse) {
	var invalid *ml.InvalidInputError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeInvalidInput,
			Message: invalid.Error(),
			Field:   invalid.Field,
			Value:   invalid.Value,
		}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Code: ErrCodeRequestTooLarge, Message: "request body too large"}
	case errors.Is(err, errMalformedRequest):
		return http.StatusBadRequest, ErrorResponse{Code: ErrCodeMalformedRequest, Message: err.Error()}
	case errors.Is(err, ml.ErrClassifierInvocation):
		// 分类器的内部细节不返回给用户
		return http.StatusInternalServerError, ErrorResponse{Code: ErrCodePredictionFailed, Message: genericPredictionFailure}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorResponse{Code: ErrCodeRequestCancelled, Message: "request cancelled"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: ErrCodeInternal, Message: "internal server error"}
	}
}
