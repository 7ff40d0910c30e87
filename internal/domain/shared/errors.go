package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Fiscal lifecycle errors
var (
	// ErrChronologyViolation is returned when a candidate document is dated earlier
	// than the most recently certified document of the same series and type.
	ErrChronologyViolation = NewDomainError("CHRONOLOGY_VIOLATION", "Document date precedes the latest certified document of this series and type")

	// ErrSeriesNotFound is returned when the referenced numbering series does not exist.
	ErrSeriesNotFound = NewDomainError("SERIES_NOT_FOUND", "Document series not found")

	// ErrInvalidDocumentType is returned for document types with no configured numbering prefix.
	ErrInvalidDocumentType = NewDomainError("INVALID_DOCUMENT_TYPE", "Document type has no configured numbering prefix")

	// ErrAlreadyCertified is returned on an attempt to certify a document a second time.
	ErrAlreadyCertified = NewDomainError("ALREADY_CERTIFIED", "Document is already certified")

	// ErrInvalidCancellationTarget is returned when cancelling an already-cancelled document.
	ErrInvalidCancellationTarget = NewDomainError("INVALID_CANCELLATION_TARGET", "Document is already cancelled")

	// ErrImmutableDocument is returned on any attempt to mutate or delete the frozen
	// core of a certified document outside the cancellation path.
	ErrImmutableDocument = NewDomainError("IMMUTABLE_DOCUMENT", "Certified documents cannot be modified or deleted")

	// ErrSideEffectPostingFailure flags a cash or stock posting that failed after the
	// fiscal transition was committed. The transition is not rolled back.
	ErrSideEffectPostingFailure = NewDomainError("SIDE_EFFECT_POSTING_FAILURE", "Cash or stock posting failed; document remains certified pending reconciliation")
)
