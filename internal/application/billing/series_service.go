package billing

import (
	"context"
	"fmt"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeriesService manages numbering series configuration and legacy bootstrap
type SeriesService struct {
	seriesRepo billing.SeriesRepository
	allocator  *SequenceAllocator
	logger     *zap.Logger
}

// NewSeriesService creates a SeriesService
func NewSeriesService(seriesRepo billing.SeriesRepository, allocator *SequenceAllocator, logger *zap.Logger) *SeriesService {
	return &SeriesService{
		seriesRepo: seriesRepo,
		allocator:  allocator,
		logger:     logger,
	}
}

// Create registers a new numbering series
func (s *SeriesService) Create(ctx context.Context, code string, fiscalYear int, kind billing.SeriesKind) (*billing.DocumentSeries, error) {
	existing, err := s.seriesRepo.FindByCode(ctx, code, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing series: %w", err)
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	series, err := billing.NewDocumentSeries(code, fiscalYear, kind)
	if err != nil {
		return nil, err
	}
	if err := s.seriesRepo.Save(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to save series: %w", err)
	}

	s.logger.Info("document series created",
		zap.String("series_id", series.ID.String()),
		zap.String("code", code),
		zap.Int("fiscal_year", fiscalYear),
		zap.String("kind", kind.String()),
	)
	return series, nil
}

// Get loads a series by ID
func (s *SeriesService) Get(ctx context.Context, seriesID uuid.UUID) (*billing.DocumentSeries, error) {
	series, err := s.seriesRepo.FindByID(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	if series == nil {
		return nil, shared.ErrSeriesNotFound
	}
	return series, nil
}

// List returns all series
func (s *SeriesService) List(ctx context.Context, filter shared.Filter) ([]billing.DocumentSeries, error) {
	series, err := s.seriesRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return series, nil
}

// RestrictTo replaces the access-control list of a series
func (s *SeriesService) RestrictTo(ctx context.Context, seriesID uuid.UUID, userIDs []uuid.UUID) (*billing.DocumentSeries, error) {
	series, err := s.Get(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	series.RestrictTo(userIDs)
	if err := s.seriesRepo.Save(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to save series: %w", err)
	}
	return series, nil
}

// Bootstrap ingests a legacy formatted number and fast-forwards the series
// counter so future allocations never collide with it. Returns the counter
// value after ingestion.
func (s *SeriesService) Bootstrap(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType, formattedNumber string) (int64, error) {
	return s.allocator.Bootstrap(ctx, seriesID, docType, formattedNumber)
}
