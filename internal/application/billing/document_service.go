package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CertifyResult carries the sealed document plus any posting warnings.
// Warnings mean the fiscal transition committed but downstream bookkeeping
// is pending reconciliation.
type CertifyResult struct {
	Document *billing.FiscalDocument
	Warnings []string
}

// LiquidateResult carries the issued receipt and the updated source invoice
type LiquidateResult struct {
	Receipt  *billing.FiscalDocument
	Invoice  *billing.FiscalDocument
	Warnings []string
}

// CancelResult carries the corrective document and the cancelled source.
// Corrective is nil when the source was still a draft.
type CancelResult struct {
	Corrective *billing.FiscalDocument
	Cancelled  *billing.FiscalDocument
	Warnings   []string
}

// CreateDocumentInput is the caller-facing shape for creating a draft
type CreateDocumentInput struct {
	Type           billing.DocumentType
	SeriesID       uuid.UUID
	IssueDate      time.Time
	DueDate        *time.Time
	Currency       valueobject.Currency
	ExchangeRate   decimal.Decimal
	Customer       billing.CustomerSnapshot
	PaymentMethod  billing.PaymentMethod
	Lines          []billing.DocumentLine
	GlobalDiscount decimal.Decimal
	Withholding    decimal.Decimal
	CashRegisterID *uuid.UUID
	WarehouseID    *uuid.UUID
	ManualNumber   string
	UserID         uuid.UUID
}

// DocumentService orchestrates the fiscal document lifecycle: validation,
// numbering, sealing, then best-effort postings, in that order. Validation
// failures abort before any state mutation; posting failures never roll back
// a committed transition.
type DocumentService struct {
	docRepo        billing.DocumentRepository
	seriesRepo     billing.SeriesRepository
	allocator      *SequenceAllocator
	effects        *SideEffectCoordinator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDocumentService creates a DocumentService
func NewDocumentService(
	docRepo billing.DocumentRepository,
	seriesRepo billing.SeriesRepository,
	allocator *SequenceAllocator,
	effects *SideEffectCoordinator,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:    docRepo,
		seriesRepo: seriesRepo,
		allocator:  allocator,
		effects:    effects,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for audit and integration handlers
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents drains the aggregate's recorded events onto the bus.
// Event delivery is best effort and never fails the fiscal operation.
func (s *DocumentService) publishEvents(ctx context.Context, doc *billing.FiscalDocument) {
	if s.eventPublisher == nil {
		return
	}
	events := doc.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}
	doc.ClearDomainEvents()
}

// CreateDraft creates a new draft document in the given series
func (s *DocumentService) CreateDraft(ctx context.Context, input CreateDocumentInput) (*billing.FiscalDocument, error) {
	series, err := s.seriesRepo.FindByID(ctx, input.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	if series == nil {
		return nil, shared.ErrSeriesNotFound
	}
	if input.UserID != uuid.Nil && !series.PermitsUser(input.UserID) {
		return nil, shared.NewDomainError("SERIES_FORBIDDEN", "User is not permitted to issue documents in this series")
	}

	doc, err := billing.NewFiscalDocument(
		input.Type,
		input.SeriesID,
		input.IssueDate,
		input.Currency,
		input.ExchangeRate,
		input.Customer,
		input.PaymentMethod,
		input.Lines,
		input.GlobalDiscount,
		input.Withholding,
	)
	if err != nil {
		return nil, err
	}

	if input.DueDate != nil {
		if err := doc.SetDueDate(*input.DueDate); err != nil {
			return nil, err
		}
	}
	if input.CashRegisterID != nil {
		if err := doc.SetCashRegister(*input.CashRegisterID); err != nil {
			return nil, err
		}
	}
	if input.WarehouseID != nil {
		if err := doc.SetWarehouse(*input.WarehouseID); err != nil {
			return nil, err
		}
	}
	if input.ManualNumber != "" {
		if !series.IsManual() {
			return nil, shared.NewDomainError("INVALID_NUMBER", "Only manual series accept externally assigned numbers")
		}
		if err := doc.SetManualNumber(input.ManualNumber); err != nil {
			return nil, err
		}
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("draft document created",
		zap.String("document_id", doc.ID.String()),
		zap.String("type", doc.Type.String()),
		zap.String("series_id", doc.SeriesID.String()),
	)
	s.publishEvents(ctx, doc)
	return doc, nil
}

// Certify seals a draft document: chronology gate, then numbering and
// fingerprint, then persistence, then best-effort postings.
func (s *DocumentService) Certify(ctx context.Context, documentID uuid.UUID) (*CertifyResult, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, shared.ErrNotFound
	}
	if doc.IsCertified() {
		return nil, shared.ErrAlreadyCertified
	}
	if doc.IsCancelled() {
		return nil, shared.ErrInvalidCancellationTarget
	}

	series, err := s.seriesRepo.FindByID(ctx, doc.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	if series == nil {
		return nil, shared.ErrSeriesNotFound
	}

	now := time.Now()

	if series.IsManual() {
		if err := doc.SealManual(now); err != nil {
			return nil, err
		}
	} else {
		latest, err := s.docRepo.LatestCertified(ctx, doc.SeriesID, doc.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest certified document: %w", err)
		}
		// Chronology gate: certified documents of a series+type must be
		// sealed in non-decreasing date order. Pure validation, aborts
		// before numbering, hashing or postings.
		if latest != nil && doc.IssueDate.Before(latest.IssueDate) {
			return nil, shared.ErrChronologyViolation
		}

		priorHash := ""
		if latest != nil {
			priorHash = latest.Hash
		}
		hash := billing.Fingerprint(doc, priorHash)

		_, number, err := s.allocator.Allocate(ctx, doc.SeriesID, doc.Type)
		if err != nil {
			return nil, err
		}
		if err := doc.Seal(number, hash, now); err != nil {
			return nil, err
		}
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save certified document: %w", err)
	}

	s.logger.Info("document certified",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("type", doc.Type.String()),
		zap.Bool("manual_series", series.IsManual()),
	)

	warnings := s.effects.ApplyCertificationEffects(ctx, doc)
	if len(warnings) > 0 {
		doc.MarkIntegrationGap()
		if err := s.docRepo.Save(ctx, doc); err != nil {
			s.logger.Error("failed to record integration gap",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvents(ctx, doc)

	return &CertifyResult{Document: doc, Warnings: warnings}, nil
}

// Liquidate records a payment against a certified invoice by issuing a
// receipt. Receipts are always numbered, certified and hash-stamped
// immediately, regardless of the series kind.
func (s *DocumentService) Liquidate(
	ctx context.Context,
	invoiceID uuid.UUID,
	amount decimal.Decimal,
	method billing.PaymentMethod,
	registerID uuid.UUID,
	valueDate time.Time,
	docDate time.Time,
) (*LiquidateResult, error) {
	invoice, err := s.docRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.ErrNotFound
	}
	if invoice.Type != billing.DocumentTypeInvoice {
		return nil, shared.NewDomainError("INVALID_LIQUIDATION_SOURCE", "Only plain invoices can be liquidated")
	}
	if invoice.IsCancelled() {
		return nil, shared.ErrInvalidCancellationTarget
	}
	if !invoice.IsCertified() {
		return nil, shared.NewDomainError("NOT_CERTIFIED", "Only certified invoices can be liquidated")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Liquidation amount must be positive")
	}

	// The payment is applied first so an overpayment is rejected before any
	// receipt is numbered.
	if err := invoice.ApplyPayment(amount); err != nil {
		return nil, err
	}

	line, err := billing.NewDocumentLine(
		invoice.Customer.CustomerID,
		fmt.Sprintf("Pagamento de %s", invoice.Number),
		false,
		decimal.NewFromInt(1),
		amount,
		decimal.Zero,
		decimal.Zero,
	)
	if err != nil {
		return nil, err
	}

	receipt, err := billing.NewFiscalDocument(
		billing.DocumentTypeReceipt,
		invoice.SeriesID,
		docDate,
		invoice.Currency,
		invoice.ExchangeRate,
		invoice.Customer,
		method,
		[]billing.DocumentLine{line},
		decimal.Zero,
		decimal.Zero,
	)
	if err != nil {
		return nil, err
	}
	if err := receipt.SetSourceDocument(invoice.ID); err != nil {
		return nil, err
	}
	if err := receipt.SetCashRegister(registerID); err != nil {
		return nil, err
	}
	if err := receipt.SetAccountingDate(valueDate); err != nil {
		return nil, err
	}

	if err := s.sealImmediately(ctx, receipt); err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}
	if err := s.docRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("invoice liquidated",
		zap.String("invoice_number", invoice.Number),
		zap.String("receipt_number", receipt.Number),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("status", invoice.Status.String()),
	)

	warnings := s.effects.ApplyCertificationEffects(ctx, receipt)

	s.publishEvents(ctx, receipt)
	s.publishEvents(ctx, invoice)

	return &LiquidateResult{Receipt: receipt, Invoice: invoice, Warnings: warnings}, nil
}

// Cancel neutralises a document. For certified sources a corrective document
// (credit or debit note) is issued, certified and hashed immediately; the
// original keeps its number, hash and items, changing only status and reason.
// Drafts are cancelled without a corrective.
func (s *DocumentService) Cancel(ctx context.Context, documentID uuid.UUID, reason string) (*CancelResult, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, shared.ErrNotFound
	}
	if doc.IsCancelled() {
		return nil, shared.ErrInvalidCancellationTarget
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}

	var corrective *billing.FiscalDocument
	if doc.IsCertified() {
		corrective, err = billing.NewCorrectiveDocument(doc, reason, time.Now())
		if err != nil {
			return nil, err
		}
		if err := s.sealImmediately(ctx, corrective); err != nil {
			return nil, err
		}
	}

	if err := doc.MarkCancelled(reason); err != nil {
		return nil, err
	}

	if corrective != nil {
		if err := s.docRepo.Save(ctx, corrective); err != nil {
			return nil, fmt.Errorf("failed to save corrective document: %w", err)
		}
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save cancelled document: %w", err)
	}

	s.logger.Info("document cancelled",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("reason", reason),
		zap.Bool("corrective_issued", corrective != nil),
	)

	var warnings []string
	if corrective != nil {
		warnings = s.effects.ApplyCertificationEffects(ctx, corrective)
		s.publishEvents(ctx, corrective)
	}
	s.publishEvents(ctx, doc)

	return &CancelResult{Corrective: corrective, Cancelled: doc, Warnings: warnings}, nil
}

// Delete removes a draft. Certified documents can never be physically
// deleted; only the cancellation path may neutralise them.
func (s *DocumentService) Delete(ctx context.Context, documentID uuid.UUID) error {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return shared.ErrNotFound
	}
	if !doc.CanDelete() {
		return shared.ErrImmutableDocument
	}
	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.logger.Info("draft document deleted",
		zap.String("document_id", documentID.String()),
	)
	return nil
}

// Get loads a single document
func (s *DocumentService) Get(ctx context.Context, documentID uuid.UUID) (*billing.FiscalDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

// List queries documents with filtering
func (s *DocumentService) List(ctx context.Context, filter billing.DocumentFilter) ([]billing.FiscalDocument, int64, error) {
	docs, err := s.docRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	total, err := s.docRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return docs, total, nil
}

// Chain returns the traceability tree rooted at a document
func (s *DocumentService) Chain(ctx context.Context, documentID uuid.UUID) (*billing.ChainNode, error) {
	root, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if root == nil {
		return nil, shared.ErrNotFound
	}
	descendants, err := s.docRepo.FindDescendants(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document chain: %w", err)
	}
	refs := make([]*billing.FiscalDocument, len(descendants))
	for i := range descendants {
		refs[i] = &descendants[i]
	}
	return billing.BuildChain(root, refs), nil
}

// sealImmediately numbers, fingerprints and seals a document in one step.
// Used for receipts and corrective documents, which are never drafts.
func (s *DocumentService) sealImmediately(ctx context.Context, doc *billing.FiscalDocument) error {
	latest, err := s.docRepo.LatestCertified(ctx, doc.SeriesID, doc.Type)
	if err != nil {
		return fmt.Errorf("failed to load latest certified document: %w", err)
	}
	priorHash := ""
	if latest != nil {
		priorHash = latest.Hash
	}
	hash := billing.Fingerprint(doc, priorHash)

	_, number, err := s.allocator.Allocate(ctx, doc.SeriesID, doc.Type)
	if err != nil {
		return err
	}
	return doc.Seal(number, hash, time.Now())
}
