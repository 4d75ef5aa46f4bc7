package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodePayloadTooLarge   ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeParseFailure      ErrorCode = "PARSE_FAILURE"
	CodeEmptyDataset      ErrorCode = "EMPTY_DATASET"
	CodeConfiguration     ErrorCode = "CONFIGURATION_ERROR"
	CodeRemoteAnalysis    ErrorCode = "REMOTE_ANALYSIS_ERROR"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	CodeInvalidContract   ErrorCode = "INVALID_CONTRACT"
	CodeRateLimit         ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeCancelled         ErrorCode = "REQUEST_CANCELLED"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError is an error that knows how it should be reported over HTTP.
type AppError struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Details    string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		StatusCode: statusFor(code),
		Code:       code,
		Message:    message,
	}
}

// Wrap attaches cause and, unless details is empty, a client-facing detail line.
func Wrap(err error, code ErrorCode, message, details string) *AppError {
	e := NewAppError(code, message)
	e.Cause = err
	e.Details = details
	return e
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message)
}

func NewPayloadTooLargeError(message string) *AppError {
	return NewAppError(CodePayloadTooLarge, message)
}

func NewUnsupportedFormatError(message string) *AppError {
	return NewAppError(CodeUnsupportedFormat, message)
}

func NewInternalError(message string) *AppError {
	return NewAppError(CodeInternal, message)
}

func statusFor(code ErrorCode) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeParseFailure, CodeEmptyDataset:
		return http.StatusUnprocessableEntity
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
