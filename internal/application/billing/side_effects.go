package billing

import (
	"context"
	"fmt"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/inventory"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/treasury"
	"go.uber.org/zap"
)

// SideEffectCoordinator posts the cash-register and stock consequences of a
// certified document. Postings are best-effort: the fiscal transition has
// already been committed when this runs, so a posting failure is logged,
// surfaced as a warning and left for reconciliation, never rolled back.
// An idempotency guard keyed on document number keeps every posting
// at-most-once even if a caller retries.
type SideEffectCoordinator struct {
	registerRepo    treasury.CashRegisterRepository
	cashPostingRepo treasury.CashPostingRepository
	movementRepo    inventory.StockMovementRepository
	idempotency     shared.IdempotencyStore
	idemConfig      shared.IdempotencyConfig
	logger          *zap.Logger
}

// NewSideEffectCoordinator creates a SideEffectCoordinator
func NewSideEffectCoordinator(
	registerRepo treasury.CashRegisterRepository,
	cashPostingRepo treasury.CashPostingRepository,
	movementRepo inventory.StockMovementRepository,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *SideEffectCoordinator {
	return &SideEffectCoordinator{
		registerRepo:    registerRepo,
		cashPostingRepo: cashPostingRepo,
		movementRepo:    movementRepo,
		idempotency:     idempotency,
		idemConfig:      idemConfig,
		logger:          logger,
	}
}

// ApplyCertificationEffects posts the cash and stock consequences of a freshly
// certified document. Returned warnings describe postings that failed; an
// empty slice means bookkeeping is complete.
func (c *SideEffectCoordinator) ApplyCertificationEffects(ctx context.Context, doc *billing.FiscalDocument) []string {
	if doc.IsCancelled() {
		return nil
	}

	var warnings []string
	warnings = append(warnings, c.postCash(ctx, doc)...)
	warnings = append(warnings, c.postStock(ctx, doc)...)
	return warnings
}

func (c *SideEffectCoordinator) postCash(ctx context.Context, doc *billing.FiscalDocument) []string {
	if doc.CashRegisterID == nil || !doc.PaymentMethod.IsValid() || !doc.Total.IsPositive() {
		return nil
	}

	key := fmt.Sprintf("cash:%s", doc.Number)
	fresh, err := c.markOnce(ctx, key)
	if err != nil {
		return []string{c.warn(doc, "cash idempotency check failed", err)}
	}
	if !fresh {
		c.logger.Warn("cash posting already applied, skipping",
			zap.String("document_number", doc.Number),
		)
		return nil
	}

	kind := cashKindFor(doc.Type)
	posting, err := treasury.NewCashPosting(*doc.CashRegisterID, kind, doc.Total, doc.Number)
	if err != nil {
		return []string{c.warn(doc, "invalid cash posting", err)}
	}

	if err := c.registerRepo.AdjustBalance(ctx, *doc.CashRegisterID, posting.SignedAmount()); err != nil {
		return []string{c.warn(doc, "cash register balance adjustment failed", err)}
	}
	if err := c.cashPostingRepo.Record(ctx, posting); err != nil {
		return []string{c.warn(doc, "cash posting record failed", err)}
	}

	c.logger.Info("cash posting applied",
		zap.String("document_number", doc.Number),
		zap.String("register_id", doc.CashRegisterID.String()),
		zap.String("kind", kind.String()),
		zap.String("amount", doc.Total.StringFixed(2)),
	)
	return nil
}

func (c *SideEffectCoordinator) postStock(ctx context.Context, doc *billing.FiscalDocument) []string {
	if !doc.Type.AffectsStock() || doc.WarehouseID == nil {
		return nil
	}

	kind := stockKindFor(doc.Type)
	var warnings []string
	for _, line := range doc.Lines {
		if !line.IsPhysical {
			continue
		}

		key := fmt.Sprintf("stock:%s:%s", doc.Number, line.ID)
		fresh, err := c.markOnce(ctx, key)
		if err != nil {
			warnings = append(warnings, c.warn(doc, "stock idempotency check failed", err))
			continue
		}
		if !fresh {
			continue
		}

		movement, err := inventory.NewStockMovement(kind, line.ProductID, line.Quantity, *doc.WarehouseID, doc.Number)
		if err != nil {
			warnings = append(warnings, c.warn(doc, "invalid stock movement", err))
			continue
		}
		if err := c.movementRepo.Record(ctx, movement); err != nil {
			warnings = append(warnings, c.warn(doc, "stock movement record failed", err))
			continue
		}
	}

	if len(warnings) == 0 {
		c.logger.Info("stock postings applied",
			zap.String("document_number", doc.Number),
			zap.String("warehouse_id", doc.WarehouseID.String()),
			zap.String("kind", kind.String()),
		)
	}
	return warnings
}

func (c *SideEffectCoordinator) markOnce(ctx context.Context, key string) (bool, error) {
	if !c.idemConfig.Enabled || c.idempotency == nil {
		return true, nil
	}
	return c.idempotency.MarkProcessed(ctx, key, c.idemConfig.TTL)
}

func (c *SideEffectCoordinator) warn(doc *billing.FiscalDocument, msg string, err error) string {
	c.logger.Error(msg,
		zap.String("document_number", doc.Number),
		zap.Error(err),
	)
	return fmt.Sprintf("%s: %s: %v", shared.ErrSideEffectPostingFailure.Code, msg, err)
}

// cashKindFor maps a document type to the direction of its cash posting.
// Sales bring money in; purchases and credit notes take money out; a debit
// note reverses a credit note, bringing money back in.
func cashKindFor(docType billing.DocumentType) treasury.PostingKind {
	if docType.IsPurchase() || docType == billing.DocumentTypeCreditNote {
		return treasury.PostingKindExit
	}
	return treasury.PostingKindEntry
}

// stockKindFor maps a document type to the direction of its stock postings.
// Sales ship goods out; purchases and credit notes bring goods back in; a
// debit note reverses a credit note, shipping goods back out.
func stockKindFor(docType billing.DocumentType) inventory.MovementKind {
	if docType.IsPurchase() || docType == billing.DocumentTypeCreditNote {
		return inventory.MovementKindEntry
	}
	return inventory.MovementKindExit
}
