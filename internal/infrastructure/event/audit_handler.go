package event

import (
	"context"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FiscalAuditHandler writes an audit log line for every fiscal document
// lifecycle event published on the bus
type FiscalAuditHandler struct {
	logger *zap.Logger
}

// NewFiscalAuditHandler creates a new FiscalAuditHandler
func NewFiscalAuditHandler(logger *zap.Logger) *FiscalAuditHandler {
	return &FiscalAuditHandler{logger: logger.Named("fiscal_audit")}
}

// Handle logs the event with its aggregate reference
func (h *FiscalAuditHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	}

	switch evt := e.(type) {
	case *billing.DocumentCertifiedEvent:
		fields = append(fields,
			zap.String("number", evt.Number),
			zap.String("hash", evt.Hash),
			zap.String("total", evt.Total.String()),
		)
	case *billing.DocumentPaymentAppliedEvent:
		fields = append(fields,
			zap.String("number", evt.Number),
			zap.String("amount", evt.Amount.String()),
			zap.String("status", string(evt.Status)),
		)
	case *billing.DocumentCancelledEvent:
		fields = append(fields,
			zap.String("number", evt.Number),
			zap.String("reason", evt.Reason),
		)
	case *billing.DocumentCreatedEvent:
		fields = append(fields,
			zap.String("document_type", string(evt.DocumentType)),
			zap.String("series_id", evt.SeriesID.String()),
		)
	}

	h.logger.Info(e.EventType(), fields...)
	return nil
}

// EventTypes returns the fiscal document event types this handler audits
func (h *FiscalAuditHandler) EventTypes() []string {
	return []string{
		billing.EventTypeDocumentCreated,
		billing.EventTypeDocumentCertified,
		billing.EventTypeDocumentPaymentApplied,
		billing.EventTypeDocumentCancelled,
	}
}

var _ shared.EventHandler = (*FiscalAuditHandler)(nil)
