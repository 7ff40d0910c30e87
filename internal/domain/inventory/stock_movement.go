package inventory

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind represents the direction of a stock movement
type MovementKind string

const (
	// MovementKindEntry is stock coming into a warehouse
	MovementKindEntry MovementKind = "ENTRY"
	// MovementKindExit is stock leaving a warehouse
	MovementKindExit MovementKind = "EXIT"
)

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	return k == MovementKindEntry || k == MovementKindExit
}

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// StockMovement is an immutable record of one physical stock posting produced
// by document certification. Once created it is never modified; corrections
// are opposite-signed movements from corrective documents.
type StockMovement struct {
	shared.BaseEntity
	Kind           MovementKind    `json:"kind"`
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	DocumentNumber string          `json:"document_number"`
	MovedAt        time.Time       `json:"moved_at"`
}

// NewStockMovement creates a stock movement record
func NewStockMovement(kind MovementKind, productID uuid.UUID, quantity decimal.Decimal, warehouseID uuid.UUID, documentNumber string) (*StockMovement, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Movement kind must be ENTRY or EXIT")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Movement must reference a document number")
	}
	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		Kind:           kind,
		ProductID:      productID,
		Quantity:       quantity,
		WarehouseID:    warehouseID,
		DocumentNumber: documentNumber,
		MovedAt:        time.Now(),
	}, nil
}
