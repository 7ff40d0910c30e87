package billing

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SeriesKind distinguishes certifying series from manual ones
type SeriesKind string

const (
	// SeriesKindNormal numbers and fingerprints documents at certification
	SeriesKindNormal SeriesKind = "NORMAL"
	// SeriesKindManual keeps externally assigned numbers and computes no fingerprint
	SeriesKindManual SeriesKind = "MANUAL"
)

// IsValid checks if the series kind is valid
func (k SeriesKind) IsValid() bool {
	return k == SeriesKindNormal || k == SeriesKindManual
}

// String returns the string representation of SeriesKind
func (k SeriesKind) String() string {
	return string(k)
}

// DocumentSeries is a named numbering scope. Sequence counters are kept per
// document type and are monotonically non-decreasing; a number is never
// reused within a (series, type, year) scope.
type DocumentSeries struct {
	shared.BaseAggregateRoot
	Code           string                 `json:"code"`
	FiscalYear     int                    `json:"fiscal_year"`
	Kind           SeriesKind             `json:"kind"`
	Sequences      map[DocumentType]int64 `json:"sequences"`
	AllowedUserIDs []uuid.UUID            `json:"allowed_user_ids,omitempty"` // Empty = unrestricted
	BankDetails    string                 `json:"bank_details,omitempty"`
	FooterText     string                 `json:"footer_text,omitempty"`
}

// NewDocumentSeries creates a numbering series with all counters at zero
func NewDocumentSeries(code string, fiscalYear int, kind SeriesKind) (*DocumentSeries, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_SERIES_CODE", "Series code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewDomainError("INVALID_SERIES_CODE", "Series code cannot exceed 20 characters")
	}
	if fiscalYear < 2000 || fiscalYear > 2200 {
		return nil, shared.NewDomainError("INVALID_FISCAL_YEAR", "Fiscal year is out of range")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SERIES_KIND", "Series kind must be NORMAL or MANUAL")
	}

	return &DocumentSeries{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		FiscalYear:        fiscalYear,
		Kind:              kind,
		Sequences:         make(map[DocumentType]int64),
	}, nil
}

// IsManual returns true for manual series
func (s *DocumentSeries) IsManual() bool {
	return s.Kind == SeriesKindManual
}

// LastSequence returns the last issued sequence for a document type (0 if none)
func (s *DocumentSeries) LastSequence(docType DocumentType) int64 {
	return s.Sequences[docType]
}

// NextSequence issues the next sequence number for a document type.
// The caller is responsible for persisting the counter with an atomic
// conditional update before using the number.
func (s *DocumentSeries) NextSequence(docType DocumentType) (int64, error) {
	if _, err := PrefixFor(docType); err != nil {
		return 0, err
	}
	if s.Sequences == nil {
		s.Sequences = make(map[DocumentType]int64)
	}
	next := s.Sequences[docType] + 1
	s.Sequences[docType] = next
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return next, nil
}

// FastForward advances the counter to at least seq, so numbers issued after
// ingesting legacy records never collide with pre-existing ones.
// Returns true if the counter moved.
func (s *DocumentSeries) FastForward(docType DocumentType, seq int64) bool {
	if s.Sequences == nil {
		s.Sequences = make(map[DocumentType]int64)
	}
	if seq <= s.Sequences[docType] {
		return false
	}
	s.Sequences[docType] = seq
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return true
}

// PermitsUser returns true if the user may issue documents in this series.
// An empty access list means the series is unrestricted.
func (s *DocumentSeries) PermitsUser(userID uuid.UUID) bool {
	if len(s.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range s.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// RestrictTo replaces the access-control list
func (s *DocumentSeries) RestrictTo(userIDs []uuid.UUID) {
	s.AllowedUserIDs = userIDs
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
