package persistence

import (
	"context"

	"github.com/angofact/backend/internal/domain/treasury"
	"github.com/angofact/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashPostingRepository implements CashPostingRepository using GORM.
// The ledger is append-only: postings are only ever created, never updated.
type GormCashPostingRepository struct {
	db *gorm.DB
}

// NewGormCashPostingRepository creates a new GormCashPostingRepository
func NewGormCashPostingRepository(db *gorm.DB) *GormCashPostingRepository {
	return &GormCashPostingRepository{db: db}
}

// Record appends a posting to the ledger
func (r *GormCashPostingRepository) Record(ctx context.Context, posting *treasury.CashPosting) error {
	model := models.CashPostingModelFromDomain(posting)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByDocument returns all postings that reference a document number
func (r *GormCashPostingRepository) FindByDocument(ctx context.Context, documentNumber string) ([]treasury.CashPosting, error) {
	var postingModels []models.CashPostingModel
	if err := r.db.WithContext(ctx).
		Where("document_number = ?", documentNumber).
		Order("posted_at ASC").
		Find(&postingModels).Error; err != nil {
		return nil, err
	}
	return toDomainPostings(postingModels), nil
}

// FindByRegister returns all postings for a register
func (r *GormCashPostingRepository) FindByRegister(ctx context.Context, registerID uuid.UUID) ([]treasury.CashPosting, error) {
	var postingModels []models.CashPostingModel
	if err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("posted_at ASC").
		Find(&postingModels).Error; err != nil {
		return nil, err
	}
	return toDomainPostings(postingModels), nil
}

func toDomainPostings(postingModels []models.CashPostingModel) []treasury.CashPosting {
	postings := make([]treasury.CashPosting, len(postingModels))
	for i, model := range postingModels {
		postings[i] = *model.ToDomain()
	}
	return postings
}

// Ensure GormCashPostingRepository implements CashPostingRepository
var _ treasury.CashPostingRepository = (*GormCashPostingRepository)(nil)
