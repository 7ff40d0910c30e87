package models

import (
	"time"

	"github.com/angofact/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegisterModel is the persistence model for the CashRegister aggregate root
type CashRegisterModel struct {
	AggregateModel
	Name    string          `gorm:"type:varchar(100);not null"`
	Balance decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Active  bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CashRegisterModel) TableName() string {
	return "cash_registers"
}

// ToDomain converts the persistence model to a domain CashRegister
func (m *CashRegisterModel) ToDomain() *treasury.CashRegister {
	register := &treasury.CashRegister{
		Name:    m.Name,
		Balance: m.Balance,
		Active:  m.Active,
	}
	m.fillAggregate(&register.BaseAggregateRoot)
	return register
}

// FromDomain populates the persistence model from a domain CashRegister
func (m *CashRegisterModel) FromDomain(register *treasury.CashRegister) {
	m.setAggregate(register.BaseAggregateRoot)
	m.Name = register.Name
	m.Balance = register.Balance
	m.Active = register.Active
}

// CashRegisterModelFromDomain creates a new persistence model from a domain CashRegister
func CashRegisterModelFromDomain(register *treasury.CashRegister) *CashRegisterModel {
	m := &CashRegisterModel{}
	m.FromDomain(register)
	return m
}

// CashPostingModel is the persistence model for the append-only cash ledger
type CashPostingModel struct {
	BaseModel
	RegisterID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Kind           treasury.PostingKind `gorm:"type:varchar(10);not null"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	DocumentNumber string               `gorm:"type:varchar(50);not null;index"`
	PostedAt       time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CashPostingModel) TableName() string {
	return "cash_postings"
}

// ToDomain converts the persistence model to a domain CashPosting
func (m *CashPostingModel) ToDomain() *treasury.CashPosting {
	return &treasury.CashPosting{
		BaseEntity:     m.baseEntity(),
		RegisterID:     m.RegisterID,
		Kind:           m.Kind,
		Amount:         m.Amount,
		DocumentNumber: m.DocumentNumber,
		PostedAt:       m.PostedAt,
	}
}

// FromDomain populates the persistence model from a domain CashPosting
func (m *CashPostingModel) FromDomain(posting *treasury.CashPosting) {
	m.setBaseEntity(posting.BaseEntity)
	m.RegisterID = posting.RegisterID
	m.Kind = posting.Kind
	m.Amount = posting.Amount
	m.DocumentNumber = posting.DocumentNumber
	m.PostedAt = posting.PostedAt
}

// CashPostingModelFromDomain creates a new persistence model from a domain CashPosting
func CashPostingModelFromDomain(posting *treasury.CashPosting) *CashPostingModel {
	m := &CashPostingModel{}
	m.FromDomain(posting)
	return m
}
