package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeSeriesNotFound, http.StatusNotFound},
		{ErrCodeSeriesForbidden, http.StatusForbidden},
		{ErrCodeChronologyViolation, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyCertified, http.StatusConflict},
		{ErrCodeImmutableDocument, http.StatusUnprocessableEntity},
		{ErrCodeInvalidCancellationTarget, http.StatusUnprocessableEntity},
		{ErrCodeInvalidLiquidationSource, http.StatusUnprocessableEntity},
		{ErrCodeSideEffectFailure, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestGetHTTPStatus_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_SOMETHING_NEW"))
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		domainCode string
		expected   string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"SERIES_NOT_FOUND", ErrCodeSeriesNotFound},
		{"SERIES_FORBIDDEN", ErrCodeSeriesForbidden},
		{"CHRONOLOGY_VIOLATION", ErrCodeChronologyViolation},
		{"ALREADY_CERTIFIED", ErrCodeAlreadyCertified},
		{"IMMUTABLE_DOCUMENT", ErrCodeImmutableDocument},
		{"SIDE_EFFECT_POSTING_FAILURE", ErrCodeSideEffectFailure},
		{"INVALID_AMOUNT", ErrCodeInvalidInput},
		{"INVALID_PAYMENT_METHOD", ErrCodeInvalidInput},
		{"EXCEEDS_TOTAL", ErrCodeBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.domainCode))
		})
	}
}

func TestNormalizeErrorCode_PassThrough(t *testing.T) {
	// Codes already in the API format are returned untouched
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	assert.Equal(t, "SOME_CUSTOM_CODE", NormalizeErrorCode("SOME_CUSTOM_CODE"))
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "series_id", Message: "This field is required"}}
	resp := NewValidationErrorResponse("Request validation failed", "req-1", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
