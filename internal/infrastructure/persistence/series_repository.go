package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSeriesRepository implements SeriesRepository using GORM
type GormSeriesRepository struct {
	db *gorm.DB
}

// NewGormSeriesRepository creates a new GormSeriesRepository
func NewGormSeriesRepository(db *gorm.DB) *GormSeriesRepository {
	return &GormSeriesRepository{db: db}
}

// FindByID finds a series by ID. Returns nil without error when no series
// exists.
func (r *GormSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.DocumentSeries, error) {
	var model models.DocumentSeriesModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	series := model.ToDomain()
	if err := r.loadSequences(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}

// FindByCode finds a series by code and fiscal year
func (r *GormSeriesRepository) FindByCode(ctx context.Context, code string, fiscalYear int) (*billing.DocumentSeries, error) {
	var model models.DocumentSeriesModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND fiscal_year = ?", code, fiscalYear).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	series := model.ToDomain()
	if err := r.loadSequences(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}

// FindAll lists all series
func (r *GormSeriesRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.DocumentSeries, error) {
	var seriesModels []models.DocumentSeriesModel
	query := r.db.WithContext(ctx).Model(&models.DocumentSeriesModel{})

	if filter.Search != "" {
		query = query.Where("code LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if column, ok := sortableSeriesColumns[filter.OrderBy]; ok {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(column + " " + orderDir)
	} else {
		query = query.Order("fiscal_year DESC, code ASC")
	}

	if err := query.Find(&seriesModels).Error; err != nil {
		return nil, err
	}

	series := make([]billing.DocumentSeries, len(seriesModels))
	for i, model := range seriesModels {
		s := model.ToDomain()
		if err := r.loadSequences(ctx, s); err != nil {
			return nil, err
		}
		series[i] = *s
	}
	return series, nil
}

// sortableSeriesColumns whitelists the columns a caller may sort by.
// Unknown columns fall back to the default ordering.
var sortableSeriesColumns = map[string]string{
	"code":        "code",
	"fiscal_year": "fiscal_year",
	"status":      "status",
	"created_at":  "created_at",
}

// Save creates or updates a series. Sequence counters are owned by
// UpdateSequence and are never written here.
func (r *GormSeriesRepository) Save(ctx context.Context, series *billing.DocumentSeries) error {
	model := models.DocumentSeriesModelFromDomain(series)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateSequence conditionally advances the counter for one document type.
// The update succeeds only if the stored value still equals oldValue; a lost
// race returns shared.ErrConcurrencyConflict and the caller retries against
// the fresh counter. This single conditional write is what keeps number
// allocation collision-free without row locks held across the allocation.
func (r *GormSeriesRepository) UpdateSequence(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType, oldValue, newValue int64) error {
	if oldValue == 0 {
		// First allocation for this (series, type): the counter row does not
		// exist yet. A concurrent first allocation surfaces as a conflicting
		// insert, which the unique index turns into zero affected rows.
		row := models.SeriesSequenceModel{
			SeriesID:     seriesID,
			DocumentType: docType,
			Counter:      newValue,
			UpdatedAt:    time.Now(),
		}
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.SeriesSequenceModel{}).
		Where("series_id = ? AND document_type = ? AND counter = ?", seriesID, docType, oldValue).
		Updates(map[string]interface{}{
			"counter":    newValue,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// loadSequences populates the per-type counters of a series
func (r *GormSeriesRepository) loadSequences(ctx context.Context, series *billing.DocumentSeries) error {
	var rows []models.SeriesSequenceModel
	if err := r.db.WithContext(ctx).
		Where("series_id = ?", series.ID).
		Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		series.Sequences[row.DocumentType] = row.Counter
	}
	return nil
}

// Ensure GormSeriesRepository implements SeriesRepository
var _ billing.SeriesRepository = (*GormSeriesRepository)(nil)
