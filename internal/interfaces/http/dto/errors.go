package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when a conditional update loses a race
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Fiscal lifecycle error codes
const (
	// ErrCodeSeriesNotFound is used when the referenced numbering series does not exist
	ErrCodeSeriesNotFound = "ERR_SERIES_NOT_FOUND"
	// ErrCodeSeriesForbidden is used when a user may not issue documents in a series
	ErrCodeSeriesForbidden = "ERR_SERIES_FORBIDDEN"
	// ErrCodeInvalidDocumentType is used for document types with no numbering prefix
	ErrCodeInvalidDocumentType = "ERR_INVALID_DOCUMENT_TYPE"
	// ErrCodeChronologyViolation is used when a document is dated before the latest certified one
	ErrCodeChronologyViolation = "ERR_CHRONOLOGY_VIOLATION"
	// ErrCodeAlreadyCertified is used when certifying a document a second time
	ErrCodeAlreadyCertified = "ERR_ALREADY_CERTIFIED"
	// ErrCodeNotCertified is used when an operation requires a certified document
	ErrCodeNotCertified = "ERR_NOT_CERTIFIED"
	// ErrCodeInvalidCancellationTarget is used when cancelling an already-cancelled document
	ErrCodeInvalidCancellationTarget = "ERR_INVALID_CANCELLATION_TARGET"
	// ErrCodeImmutableDocument is used when mutating or deleting a certified document
	ErrCodeImmutableDocument = "ERR_IMMUTABLE_DOCUMENT"
	// ErrCodeInvalidNumber is used for malformed or misplaced document numbers
	ErrCodeInvalidNumber = "ERR_INVALID_NUMBER"
	// ErrCodeInvalidLiquidationSource is used when a receipt targets a non-liquidatable document
	ErrCodeInvalidLiquidationSource = "ERR_INVALID_LIQUIDATION_SOURCE"
	// ErrCodeSideEffectFailure is used when a cash or stock posting failed after certification
	ErrCodeSideEffectFailure = "ERR_SIDE_EFFECT_FAILURE"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Fiscal lifecycle errors
	ErrCodeSeriesNotFound:            http.StatusNotFound,
	ErrCodeSeriesForbidden:           http.StatusForbidden,
	ErrCodeInvalidDocumentType:       http.StatusBadRequest,
	ErrCodeChronologyViolation:       http.StatusUnprocessableEntity,
	ErrCodeAlreadyCertified:          http.StatusConflict,
	ErrCodeNotCertified:              http.StatusUnprocessableEntity,
	ErrCodeInvalidCancellationTarget: http.StatusUnprocessableEntity,
	ErrCodeImmutableDocument:         http.StatusUnprocessableEntity,
	ErrCodeInvalidNumber:             http.StatusBadRequest,
	ErrCodeInvalidLiquidationSource:  http.StatusUnprocessableEntity,
	ErrCodeSideEffectFailure:         http.StatusInternalServerError,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized codes.
// Domain errors carry short codes; the API surface uses the ERR_ prefix.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"SERIES_NOT_FOUND":            ErrCodeSeriesNotFound,
	"SERIES_FORBIDDEN":            ErrCodeSeriesForbidden,
	"INVALID_DOCUMENT_TYPE":       ErrCodeInvalidDocumentType,
	"CHRONOLOGY_VIOLATION":        ErrCodeChronologyViolation,
	"ALREADY_CERTIFIED":           ErrCodeAlreadyCertified,
	"NOT_CERTIFIED":               ErrCodeNotCertified,
	"INVALID_CANCELLATION_TARGET": ErrCodeInvalidCancellationTarget,
	"IMMUTABLE_DOCUMENT":          ErrCodeImmutableDocument,
	"INVALID_NUMBER":              ErrCodeInvalidNumber,
	"INVALID_LIQUIDATION_SOURCE":  ErrCodeInvalidLiquidationSource,
	"SIDE_EFFECT_POSTING_FAILURE": ErrCodeSideEffectFailure,

	"INVALID_AMOUNT":         ErrCodeInvalidInput,
	"INVALID_REASON":         ErrCodeInvalidInput,
	"INVALID_LINE":           ErrCodeInvalidInput,
	"INVALID_LINES":          ErrCodeInvalidInput,
	"INVALID_SERIES":         ErrCodeInvalidInput,
	"INVALID_SERIES_CODE":    ErrCodeInvalidInput,
	"INVALID_SERIES_KIND":    ErrCodeInvalidInput,
	"INVALID_FISCAL_YEAR":    ErrCodeInvalidInput,
	"INVALID_DATE":           ErrCodeInvalidInput,
	"INVALID_CURRENCY":       ErrCodeInvalidInput,
	"INVALID_EXCHANGE_RATE":  ErrCodeInvalidInput,
	"INVALID_CUSTOMER":       ErrCodeInvalidInput,
	"INVALID_CUSTOMER_NAME":  ErrCodeInvalidInput,
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidInput,
	"INVALID_DISCOUNT":       ErrCodeInvalidInput,
	"INVALID_WITHHOLDING":    ErrCodeInvalidInput,
	"INVALID_HASH":           ErrCodeInvalidInput,
	"EXCEEDS_TOTAL":          ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
