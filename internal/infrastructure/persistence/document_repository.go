package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID. Returns nil without error when no
// document exists, so callers can map absence to their own domain error.
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FiscalDocument, error) {
	var model models.FiscalDocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document by its formatted number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, number string) (*billing.FiscalDocument, error) {
	var model models.FiscalDocumentModel
	if err := r.db.WithContext(ctx).
		Where("number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds documents with filtering
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter billing.DocumentFilter) ([]billing.FiscalDocument, error) {
	var documentModels []models.FiscalDocumentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.FiscalDocumentModel{}), filter)

	if err := query.Find(&documentModels).Error; err != nil {
		return nil, err
	}
	return toDomainDocuments(documentModels), nil
}

// FindBySeriesAndType finds documents in a series of a given type
func (r *GormDocumentRepository) FindBySeriesAndType(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType, filter billing.DocumentFilter) ([]billing.FiscalDocument, error) {
	filter.SeriesID = &seriesID
	filter.Type = &docType
	return r.FindAll(ctx, filter)
}

// FindBySource finds all documents derived from the given source document
func (r *GormDocumentRepository) FindBySource(ctx context.Context, sourceID uuid.UUID) ([]billing.FiscalDocument, error) {
	var documentModels []models.FiscalDocumentModel
	if err := r.db.WithContext(ctx).
		Where("source_document_id = ?", sourceID).
		Order("created_at ASC").
		Find(&documentModels).Error; err != nil {
		return nil, err
	}
	return toDomainDocuments(documentModels), nil
}

// FindDescendants finds the transitive closure of documents derived from the
// given root. Derivation chains are short (an invoice, its receipts and notes),
// so a breadth-first walk with one query per level is sufficient.
func (r *GormDocumentRepository) FindDescendants(ctx context.Context, rootID uuid.UUID) ([]billing.FiscalDocument, error) {
	frontier := []uuid.UUID{rootID}
	seen := map[uuid.UUID]bool{rootID: true}
	var out []billing.FiscalDocument

	for len(frontier) > 0 {
		var levelModels []models.FiscalDocumentModel
		if err := r.db.WithContext(ctx).
			Where("source_document_id IN ?", frontier).
			Order("created_at ASC").
			Find(&levelModels).Error; err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, model := range levelModels {
			if seen[model.ID] {
				continue
			}
			seen[model.ID] = true
			frontier = append(frontier, model.ID)
			out = append(out, *model.ToDomain())
		}
	}
	return out, nil
}

// LatestCertified returns the most recently certified document of the given
// series and type, or nil if none exists
func (r *GormDocumentRepository) LatestCertified(ctx context.Context, seriesID uuid.UUID, docType billing.DocumentType) (*billing.FiscalDocument, error) {
	var model models.FiscalDocumentModel
	if err := r.db.WithContext(ctx).
		Where("series_id = ? AND type = ? AND certified = ?", seriesID, docType, true).
		Order("processed_at DESC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *billing.FiscalDocument) error {
	model := models.FiscalDocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a document. Certified documents are rejected as a
// defense-in-depth check behind the service-level guard.
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.FiscalDocumentModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if model.Certified {
			return shared.ErrImmutableDocument
		}
		return tx.Delete(&models.FiscalDocumentModel{}, "id = ?", id).Error
	})
}

// Count counts documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter billing.DocumentFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.FiscalDocumentModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter billing.DocumentFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if column, ok := sortableDocumentColumns[filter.OrderBy]; ok {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(column + " " + orderDir)
	} else {
		query = query.Order("issue_date DESC, created_at DESC")
	}

	return query
}

// sortableDocumentColumns whitelists the columns a caller may sort by.
// Anything else falls back to the default ordering, so filter input never
// reaches the ORDER BY clause verbatim.
var sortableDocumentColumns = map[string]string{
	"number":        "number",
	"type":          "type",
	"status":        "status",
	"issue_date":    "issue_date",
	"due_date":      "due_date",
	"total":         "total",
	"customer_name": "customer_name",
	"created_at":    "created_at",
	"processed_at":  "processed_at",
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.DocumentFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR customer_name LIKE ? OR customer_tax_id LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SeriesID != nil {
		query = query.Where("series_id = ?", *filter.SeriesID)
	}
	if filter.Certified != nil {
		query = query.Where("certified = ?", *filter.Certified)
	}
	if filter.FromDate != nil {
		query = query.Where("issue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issue_date <= ?", *filter.ToDate)
	}

	return query
}

func toDomainDocuments(documentModels []models.FiscalDocumentModel) []billing.FiscalDocument {
	documents := make([]billing.FiscalDocument, len(documentModels))
	for i, model := range documentModels {
		documents[i] = *model.ToDomain()
	}
	return documents
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ billing.DocumentRepository = (*GormDocumentRepository)(nil)
