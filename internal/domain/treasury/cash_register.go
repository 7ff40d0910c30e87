package treasury

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CashRegister is a point-of-sale cash drawer or till whose balance is
// adjusted by postings from certified documents.
type CashRegister struct {
	shared.BaseAggregateRoot
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

// NewCashRegister creates a cash register with a zero balance
func NewCashRegister(name string) (*CashRegister, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_REGISTER_NAME", "Cash register name cannot be empty")
	}
	return &CashRegister{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Balance:           decimal.Zero,
		Active:            true,
	}, nil
}

// Apply adjusts the balance by a signed delta. Persistence must perform the
// equivalent adjustment as a single transactional step, never read-then-write.
func (r *CashRegister) Apply(delta decimal.Decimal) {
	r.Balance = r.Balance.Add(delta)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Deactivate takes the register out of service
func (r *CashRegister) Deactivate() {
	r.Active = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
