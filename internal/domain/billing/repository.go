package billing

import (
	"context"
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter defines filtering options for document queries
type DocumentFilter struct {
	shared.Filter
	Type      *DocumentType   // Filter by document type
	Status    *DocumentStatus // Filter by status
	SeriesID  *uuid.UUID      // Filter by numbering series
	Certified *bool           // Filter by certification state
	FromDate  *time.Time      // Filter by issue date range start
	ToDate    *time.Time      // Filter by issue date range end
}

// DocumentRepository defines the interface for fiscal document persistence
type DocumentRepository interface {
	// FindByID finds a document by ID
	FindByID(ctx context.Context, id uuid.UUID) (*FiscalDocument, error)

	// FindByNumber finds a document by its formatted number
	FindByNumber(ctx context.Context, number string) (*FiscalDocument, error)

	// FindAll finds documents with filtering
	FindAll(ctx context.Context, filter DocumentFilter) ([]FiscalDocument, error)

	// FindBySeriesAndType finds documents in a series of a given type
	FindBySeriesAndType(ctx context.Context, seriesID uuid.UUID, docType DocumentType, filter DocumentFilter) ([]FiscalDocument, error)

	// FindBySource finds all documents derived from the given source document
	FindBySource(ctx context.Context, sourceID uuid.UUID) ([]FiscalDocument, error)

	// FindDescendants finds the transitive closure of documents derived from
	// the given root, for chain assembly
	FindDescendants(ctx context.Context, rootID uuid.UUID) ([]FiscalDocument, error)

	// LatestCertified returns the most recently certified document of the
	// given series and type, or nil if none exists. Used for the chronology
	// gate and for fingerprint chaining.
	LatestCertified(ctx context.Context, seriesID uuid.UUID, docType DocumentType) (*FiscalDocument, error)

	// Save creates or updates a document
	Save(ctx context.Context, doc *FiscalDocument) error

	// Delete removes a document. The store must reject deletes of certified
	// documents as a defense-in-depth check.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts documents matching the filter
	Count(ctx context.Context, filter DocumentFilter) (int64, error)
}

// SeriesRepository defines the interface for numbering series persistence
type SeriesRepository interface {
	// FindByID finds a series by ID
	FindByID(ctx context.Context, id uuid.UUID) (*DocumentSeries, error)

	// FindByCode finds a series by code and fiscal year
	FindByCode(ctx context.Context, code string, fiscalYear int) (*DocumentSeries, error)

	// FindAll lists all series
	FindAll(ctx context.Context, filter shared.Filter) ([]DocumentSeries, error)

	// Save creates or updates a series
	Save(ctx context.Context, series *DocumentSeries) error

	// UpdateSequence conditionally advances the counter for one document type:
	// it succeeds only if the stored value still equals oldValue, and returns
	// shared.ErrConcurrencyConflict otherwise. This is the serializing step
	// that keeps allocation collision-free under concurrent certification.
	UpdateSequence(ctx context.Context, seriesID uuid.UUID, docType DocumentType, oldValue, newValue int64) error
}
