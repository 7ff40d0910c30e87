package treasury

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegisterRepository defines the interface for cash register persistence
type CashRegisterRepository interface {
	// FindByID finds a cash register by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CashRegister, error)

	// Save creates or updates a cash register
	Save(ctx context.Context, register *CashRegister) error

	// AdjustBalance applies a signed delta to the stored balance as a single
	// atomic update (balance = balance + delta), never read-then-write.
	AdjustBalance(ctx context.Context, registerID uuid.UUID, delta decimal.Decimal) error
}

// CashPostingRepository defines the interface for the append-only cash ledger
type CashPostingRepository interface {
	// Record appends a posting to the ledger
	Record(ctx context.Context, posting *CashPosting) error

	// FindByDocument returns all postings that reference a document number
	FindByDocument(ctx context.Context, documentNumber string) ([]CashPosting, error)

	// FindByRegister returns all postings for a register
	FindByRegister(ctx context.Context, registerID uuid.UUID) ([]CashPosting, error)
}
