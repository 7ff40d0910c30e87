package billing

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the fiscal document aggregate
const (
	EventTypeDocumentCreated        = "billing.document.created"
	EventTypeDocumentCertified      = "billing.document.certified"
	EventTypeDocumentPaymentApplied = "billing.document.payment_applied"
	EventTypeDocumentCancelled      = "billing.document.cancelled"
)

const aggregateTypeDocument = "FiscalDocument"

// DocumentCreatedEvent is emitted when a draft document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType    `json:"document_type"`
	SeriesID     uuid.UUID       `json:"series_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Total        decimal.Decimal `json:"total"`
}

// NewDocumentCreatedEvent creates a DocumentCreatedEvent
func NewDocumentCreatedEvent(d *FiscalDocument) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, aggregateTypeDocument, d.ID),
		DocumentType:    d.Type,
		SeriesID:        d.SeriesID,
		CustomerID:      d.Customer.CustomerID,
		Total:           d.Total,
	}
}

// DocumentCertifiedEvent is emitted when a document is sealed
type DocumentCertifiedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType    `json:"document_type"`
	SeriesID     uuid.UUID       `json:"series_id"`
	Number       string          `json:"number"`
	Hash         string          `json:"hash,omitempty"`
	IssueDate    time.Time       `json:"issue_date"`
	Total        decimal.Decimal `json:"total"`
}

// NewDocumentCertifiedEvent creates a DocumentCertifiedEvent
func NewDocumentCertifiedEvent(d *FiscalDocument) *DocumentCertifiedEvent {
	return &DocumentCertifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCertified, aggregateTypeDocument, d.ID),
		DocumentType:    d.Type,
		SeriesID:        d.SeriesID,
		Number:          d.Number,
		Hash:            d.Hash,
		IssueDate:       d.IssueDate,
		Total:           d.Total,
	}
}

// DocumentPaymentAppliedEvent is emitted when a payment is recorded against a document
type DocumentPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Status     DocumentStatus  `json:"status"`
}

// NewDocumentPaymentAppliedEvent creates a DocumentPaymentAppliedEvent
func NewDocumentPaymentAppliedEvent(d *FiscalDocument, amount decimal.Decimal) *DocumentPaymentAppliedEvent {
	return &DocumentPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaymentApplied, aggregateTypeDocument, d.ID),
		Number:          d.Number,
		Amount:          amount,
		PaidAmount:      d.PaidAmount,
		Status:          d.Status,
	}
}

// DocumentCancelledEvent is emitted when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// NewDocumentCancelledEvent creates a DocumentCancelledEvent
func NewDocumentCancelledEvent(d *FiscalDocument, reason string) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCancelled, aggregateTypeDocument, d.ID),
		Number:          d.Number,
		Reason:          reason,
	}
}
