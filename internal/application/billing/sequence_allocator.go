package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allocateRetries bounds the compare-and-swap retry loop under contention
const allocateRetries = 5

// SequenceAllocator issues collision-free document numbers per
// (series, document type, year). The read-increment-write on the stored
// counter is serialized through the repository's conditional update; the
// allocator never holds a lock across storage I/O, so a storage stall on one
// series cannot block allocation on unrelated series.
type SequenceAllocator struct {
	seriesRepo billing.SeriesRepository
	logger     *zap.Logger
}

// NewSequenceAllocator creates a SequenceAllocator
func NewSequenceAllocator(seriesRepo billing.SeriesRepository, logger *zap.Logger) *SequenceAllocator {
	return &SequenceAllocator{
		seriesRepo: seriesRepo,
		logger:     logger,
	}
}

// Allocate issues the next sequence number and formatted document number for
// the given series and type. On a concurrent allocation the conditional
// update fails and the read-increment-write is retried against the fresh
// counter value, so two callers can never obtain the same number.
func (a *SequenceAllocator) Allocate(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType) (int64, string, error) {
	if _, err := billing.PrefixFor(docType); err != nil {
		return 0, "", err
	}

	for attempt := 1; attempt <= allocateRetries; attempt++ {
		series, err := a.seriesRepo.FindByID(ctx, seriesID)
		if err != nil {
			return 0, "", fmt.Errorf("failed to load series: %w", err)
		}
		if series == nil {
			return 0, "", shared.ErrSeriesNotFound
		}

		current := series.LastSequence(docType)
		next := current + 1

		err = a.seriesRepo.UpdateSequence(ctx, seriesID, docType, current, next)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			a.logger.Debug("sequence allocation contended, retrying",
				zap.String("series_id", seriesID.String()),
				zap.String("document_type", docType.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return 0, "", fmt.Errorf("failed to advance sequence: %w", err)
		}

		number, err := billing.FormatNumber(docType, series.Code, series.FiscalYear, next)
		if err != nil {
			return 0, "", err
		}
		return next, number, nil
	}

	return 0, "", fmt.Errorf("sequence allocation for series %s type %s: %w", seriesID, docType, shared.ErrConcurrencyConflict)
}

// Bootstrap fast-forwards a series counter past the sequence embedded in a
// legacy or external formatted number, so subsequently issued numbers never
// collide with pre-existing ones. Returns the counter value after ingestion.
func (a *SequenceAllocator) Bootstrap(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType, formattedNumber string) (int64, error) {
	if _, err := billing.PrefixFor(docType); err != nil {
		return 0, err
	}
	seq, err := billing.ParseSequence(formattedNumber)
	if err != nil {
		return 0, err
	}

	for attempt := 1; attempt <= allocateRetries; attempt++ {
		series, err := a.seriesRepo.FindByID(ctx, seriesID)
		if err != nil {
			return 0, fmt.Errorf("failed to load series: %w", err)
		}
		if series == nil {
			return 0, shared.ErrSeriesNotFound
		}

		current := series.LastSequence(docType)
		if seq <= current {
			return current, nil
		}

		err = a.seriesRepo.UpdateSequence(ctx, seriesID, docType, current, seq)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to fast-forward sequence: %w", err)
		}

		a.logger.Info("series counter fast-forwarded from legacy number",
			zap.String("series_id", seriesID.String()),
			zap.String("document_type", docType.String()),
			zap.String("number", formattedNumber),
			zap.Int64("sequence", seq),
		)
		return seq, nil
	}

	return 0, fmt.Errorf("sequence bootstrap for series %s type %s: %w", seriesID, docType, shared.ErrConcurrencyConflict)
}
