package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLineList stores document lines as a JSON column. Lines are frozen
// with the document at certification, so they never need relational queries.
type DocumentLineList []billing.DocumentLine

// Value implements driver.Valuer
func (l DocumentLineList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *DocumentLineList) Scan(value interface{}) error {
	if value == nil {
		*l = DocumentLineList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into DocumentLineList", value)
	}
}

// UUIDList stores a list of UUIDs as a JSON column
type UUIDList []uuid.UUID

// Value implements driver.Valuer
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *UUIDList) Scan(value interface{}) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into UUIDList", value)
	}
}

// FiscalDocumentModel is the persistence model for the FiscalDocument aggregate root.
// Number is indexed but not unique at the schema level: drafts carry an empty
// number, and uniqueness of assigned numbers is guaranteed by the allocator.
type FiscalDocumentModel struct {
	AggregateModel
	Type               billing.DocumentType      `gorm:"type:varchar(30);not null;index:idx_documents_series_type,priority:2"`
	SeriesID           uuid.UUID                 `gorm:"type:uuid;not null;index:idx_documents_series_type,priority:1"`
	IssueDate          time.Time                 `gorm:"not null;index"`
	DueDate            *time.Time                ``
	AccountingDate     *time.Time                ``
	Currency           valueobject.Currency      `gorm:"type:varchar(3);not null"`
	ExchangeRate       decimal.Decimal           `gorm:"type:decimal(18,6);not null"`
	Lines              DocumentLineList          `gorm:"type:jsonb;not null"`
	Subtotal           decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	GlobalDiscount     decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	TaxAmount          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Withholding        decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Total              decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	PaymentMethod      billing.PaymentMethod     `gorm:"type:varchar(20);not null"`
	CashRegisterID     *uuid.UUID                `gorm:"type:uuid;index"`
	WarehouseID        *uuid.UUID                `gorm:"type:uuid;index"`
	CustomerID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	CustomerName       string                    `gorm:"type:varchar(200);not null"`
	CustomerTaxID      string                    `gorm:"type:varchar(30)"`
	Notes              string                    `gorm:"type:text"`
	Certified          bool                      `gorm:"not null;default:false;index"`
	Number             string                    `gorm:"type:varchar(50);index"`
	Hash               string                    `gorm:"type:varchar(64)"`
	Status             billing.DocumentStatus    `gorm:"type:varchar(20);not null;index"`
	PaidAmount         decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	CancellationReason string                    `gorm:"type:varchar(500)"`
	SourceDocumentID   *uuid.UUID                `gorm:"type:uuid;index"`
	ProcessedAt        *time.Time                `gorm:"index"`
	IntegrationStatus  billing.IntegrationStatus `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (FiscalDocumentModel) TableName() string {
	return "fiscal_documents"
}

// ToDomain converts the persistence model to a domain FiscalDocument
func (m *FiscalDocumentModel) ToDomain() *billing.FiscalDocument {
	doc := &billing.FiscalDocument{
		Type:           m.Type,
		SeriesID:       m.SeriesID,
		IssueDate:      m.IssueDate,
		DueDate:        m.DueDate,
		AccountingDate: m.AccountingDate,
		Currency:       m.Currency,
		ExchangeRate:   m.ExchangeRate,
		Lines:          m.Lines,
		Subtotal:       m.Subtotal,
		GlobalDiscount: m.GlobalDiscount,
		TaxAmount:      m.TaxAmount,
		Withholding:    m.Withholding,
		Total:          m.Total,
		PaymentMethod:  m.PaymentMethod,
		CashRegisterID: m.CashRegisterID,
		WarehouseID:    m.WarehouseID,
		Customer: billing.CustomerSnapshot{
			CustomerID: m.CustomerID,
			Name:       m.CustomerName,
			TaxID:      m.CustomerTaxID,
		},
		Notes:              m.Notes,
		Certified:          m.Certified,
		Number:             m.Number,
		Hash:               m.Hash,
		Status:             m.Status,
		PaidAmount:         m.PaidAmount,
		CancellationReason: m.CancellationReason,
		SourceDocumentID:   m.SourceDocumentID,
		ProcessedAt:        m.ProcessedAt,
		IntegrationStatus:  m.IntegrationStatus,
	}
	m.fillAggregate(&doc.BaseAggregateRoot)
	return doc
}

// FromDomain populates the persistence model from a domain FiscalDocument
func (m *FiscalDocumentModel) FromDomain(doc *billing.FiscalDocument) {
	m.setAggregate(doc.BaseAggregateRoot)
	m.Type = doc.Type
	m.SeriesID = doc.SeriesID
	m.IssueDate = doc.IssueDate
	m.DueDate = doc.DueDate
	m.AccountingDate = doc.AccountingDate
	m.Currency = doc.Currency
	m.ExchangeRate = doc.ExchangeRate
	m.Lines = doc.Lines
	m.Subtotal = doc.Subtotal
	m.GlobalDiscount = doc.GlobalDiscount
	m.TaxAmount = doc.TaxAmount
	m.Withholding = doc.Withholding
	m.Total = doc.Total
	m.PaymentMethod = doc.PaymentMethod
	m.CashRegisterID = doc.CashRegisterID
	m.WarehouseID = doc.WarehouseID
	m.CustomerID = doc.Customer.CustomerID
	m.CustomerName = doc.Customer.Name
	m.CustomerTaxID = doc.Customer.TaxID
	m.Notes = doc.Notes
	m.Certified = doc.Certified
	m.Number = doc.Number
	m.Hash = doc.Hash
	m.Status = doc.Status
	m.PaidAmount = doc.PaidAmount
	m.CancellationReason = doc.CancellationReason
	m.SourceDocumentID = doc.SourceDocumentID
	m.ProcessedAt = doc.ProcessedAt
	m.IntegrationStatus = doc.IntegrationStatus
}

// FiscalDocumentModelFromDomain creates a new persistence model from a domain FiscalDocument
func FiscalDocumentModelFromDomain(doc *billing.FiscalDocument) *FiscalDocumentModel {
	m := &FiscalDocumentModel{}
	m.FromDomain(doc)
	return m
}

// DocumentSeriesModel is the persistence model for the DocumentSeries aggregate root.
// Per-type sequence counters live in their own table (SeriesSequenceModel) so the
// allocator can advance them with a conditional single-row update.
type DocumentSeriesModel struct {
	AggregateModel
	Code           string             `gorm:"type:varchar(20);not null;uniqueIndex:idx_series_code_year,priority:1"`
	FiscalYear     int                `gorm:"not null;uniqueIndex:idx_series_code_year,priority:2"`
	Kind           billing.SeriesKind `gorm:"type:varchar(10);not null"`
	AllowedUserIDs UUIDList           `gorm:"type:jsonb"`
	BankDetails    string             `gorm:"type:text"`
	FooterText     string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DocumentSeriesModel) TableName() string {
	return "document_series"
}

// ToDomain converts the persistence model to a domain DocumentSeries.
// Sequence counters are loaded separately by the repository.
func (m *DocumentSeriesModel) ToDomain() *billing.DocumentSeries {
	series := &billing.DocumentSeries{
		Code:           m.Code,
		FiscalYear:     m.FiscalYear,
		Kind:           m.Kind,
		Sequences:      make(map[billing.DocumentType]int64),
		AllowedUserIDs: m.AllowedUserIDs,
		BankDetails:    m.BankDetails,
		FooterText:     m.FooterText,
	}
	m.fillAggregate(&series.BaseAggregateRoot)
	return series
}

// FromDomain populates the persistence model from a domain DocumentSeries
func (m *DocumentSeriesModel) FromDomain(series *billing.DocumentSeries) {
	m.setAggregate(series.BaseAggregateRoot)
	m.Code = series.Code
	m.FiscalYear = series.FiscalYear
	m.Kind = series.Kind
	m.AllowedUserIDs = series.AllowedUserIDs
	m.BankDetails = series.BankDetails
	m.FooterText = series.FooterText
}

// DocumentSeriesModelFromDomain creates a new persistence model from a domain DocumentSeries
func DocumentSeriesModelFromDomain(series *billing.DocumentSeries) *DocumentSeriesModel {
	m := &DocumentSeriesModel{}
	m.FromDomain(series)
	return m
}

// SeriesSequenceModel holds the last issued sequence number for one
// (series, document type) pair. Rows are created on first allocation and
// only ever advanced through a conditional update on Counter.
type SeriesSequenceModel struct {
	SeriesID     uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_series_seq,priority:1"`
	DocumentType billing.DocumentType `gorm:"type:varchar(30);not null;uniqueIndex:idx_series_seq,priority:2"`
	Counter      int64                `gorm:"not null"`
	UpdatedAt    time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SeriesSequenceModel) TableName() string {
	return "series_sequences"
}
