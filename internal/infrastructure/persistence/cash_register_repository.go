package persistence

import (
	"context"
	"errors"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/treasury"
	"github.com/angofact/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashRegisterRepository implements CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByID finds a cash register by ID
func (r *GormCashRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.CashRegister, error) {
	var model models.CashRegisterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a cash register
func (r *GormCashRegisterRepository) Save(ctx context.Context, register *treasury.CashRegister) error {
	model := models.CashRegisterModelFromDomain(register)
	return r.db.WithContext(ctx).Save(model).Error
}

// AdjustBalance applies a signed delta to the stored balance as a single
// atomic update, never read-then-write
func (r *GormCashRegisterRepository) AdjustBalance(ctx context.Context, registerID uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.CashRegisterModel{}).
		Where("id = ?", registerID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCashRegisterRepository implements CashRegisterRepository
var _ treasury.CashRegisterRepository = (*GormCashRegisterRepository)(nil)
