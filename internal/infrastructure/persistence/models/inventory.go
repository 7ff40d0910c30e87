package models

import (
	"time"

	"github.com/angofact/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementModel is the persistence model for the append-only movement ledger
type StockMovementModel struct {
	BaseModel
	Kind           inventory.MovementKind `gorm:"type:varchar(10);not null"`
	ProductID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	Quantity       decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	WarehouseID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	DocumentNumber string                 `gorm:"type:varchar(50);not null;index"`
	MovedAt        time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:     m.baseEntity(),
		Kind:           m.Kind,
		ProductID:      m.ProductID,
		Quantity:       m.Quantity,
		WarehouseID:    m.WarehouseID,
		DocumentNumber: m.DocumentNumber,
		MovedAt:        m.MovedAt,
	}
}

// FromDomain populates the persistence model from a domain StockMovement
func (m *StockMovementModel) FromDomain(movement *inventory.StockMovement) {
	m.setBaseEntity(movement.BaseEntity)
	m.Kind = movement.Kind
	m.ProductID = movement.ProductID
	m.Quantity = movement.Quantity
	m.WarehouseID = movement.WarehouseID
	m.DocumentNumber = movement.DocumentNumber
	m.MovedAt = movement.MovedAt
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement
func StockMovementModelFromDomain(movement *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(movement)
	return m
}
