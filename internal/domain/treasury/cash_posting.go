package treasury

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingKind represents the direction of a cash posting
type PostingKind string

const (
	// PostingKindEntry is money into the register
	PostingKindEntry PostingKind = "ENTRY"
	// PostingKindExit is money out of the register
	PostingKindExit PostingKind = "EXIT"
)

// IsValid returns true if the posting kind is valid
func (k PostingKind) IsValid() bool {
	return k == PostingKindEntry || k == PostingKindExit
}

// String returns the string representation of PostingKind
func (k PostingKind) String() string {
	return string(k)
}

// CashPosting is an immutable ledger entry recording one balance adjustment,
// tagged with the originating document number. The ledger is append-only:
// corrections are new postings with the opposite sign, never edits.
type CashPosting struct {
	shared.BaseEntity
	RegisterID     uuid.UUID       `json:"register_id"`
	Kind           PostingKind     `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	DocumentNumber string          `json:"document_number"`
	PostedAt       time.Time       `json:"posted_at"`
}

// NewCashPosting creates a cash posting
func NewCashPosting(registerID uuid.UUID, kind PostingKind, amount decimal.Decimal, documentNumber string) (*CashPosting, error) {
	if registerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REGISTER", "Register ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_POSTING_KIND", "Posting kind must be ENTRY or EXIT")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Posting must reference a document number")
	}
	return &CashPosting{
		BaseEntity:     shared.NewBaseEntity(),
		RegisterID:     registerID,
		Kind:           kind,
		Amount:         amount,
		DocumentNumber: documentNumber,
		PostedAt:       time.Now(),
	}, nil
}

// SignedAmount returns the amount with the sign implied by the posting kind
func (p *CashPosting) SignedAmount() decimal.Decimal {
	if p.Kind == PostingKindExit {
		return p.Amount.Neg()
	}
	return p.Amount
}
