package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockMovementRepository defines the interface for the append-only movement ledger
type StockMovementRepository interface {
	// Record appends a movement to the ledger
	Record(ctx context.Context, movement *StockMovement) error

	// FindByDocument returns all movements that reference a document number
	FindByDocument(ctx context.Context, documentNumber string) ([]StockMovement, error)

	// FindByWarehouse returns all movements for a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]StockMovement, error)
}
