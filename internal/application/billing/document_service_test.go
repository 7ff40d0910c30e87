package billing

import (
	"context"
	"testing"
	"time"

	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceFixture struct {
	service    *DocumentService
	docRepo    *fakeDocumentRepo
	series     *billing.DocumentSeries
	seriesRepo *fakeSeriesRepo
	effects    *effectsFixture
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	seriesRepo := newFakeSeriesRepo()
	series := newTestSeries(t, seriesRepo)
	docRepo := newFakeDocumentRepo()
	effects := newEffectsFixture()
	allocator := NewSequenceAllocator(seriesRepo, zap.NewNop())

	return &serviceFixture{
		service:    NewDocumentService(docRepo, seriesRepo, allocator, effects.coordinator, zap.NewNop()),
		docRepo:    docRepo,
		series:     series,
		seriesRepo: seriesRepo,
		effects:    effects,
	}
}

func (f *serviceFixture) draftInput(docType billing.DocumentType, issueDate time.Time) CreateDocumentInput {
	physical, _ := billing.NewDocumentLine(uuid.New(), "Produto A", true,
		decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(14))
	return CreateDocumentInput{
		Type:           docType,
		SeriesID:       f.series.ID,
		IssueDate:      issueDate,
		Currency:       valueobject.AOA,
		ExchangeRate:   decimal.NewFromInt(1),
		Customer:       billing.CustomerSnapshot{CustomerID: uuid.New(), Name: "Cliente Teste Lda", TaxID: "5417654321"},
		PaymentMethod:  billing.PaymentMethodCredit,
		Lines:          []billing.DocumentLine{physical},
		GlobalDiscount: decimal.Zero,
		Withholding:    decimal.Zero,
	}
}

func (f *serviceFixture) certifiedInvoice(t *testing.T, issueDate time.Time) *billing.FiscalDocument {
	t.Helper()
	draft, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeInvoice, issueDate))
	require.NoError(t, err)
	result, err := f.service.Certify(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	return result.Document
}

func TestDocumentService_CreateDraft(t *testing.T) {
	f := newServiceFixture(t)

	doc, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeInvoice, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, billing.DocumentStatusDraft, doc.Status)
	assert.False(t, doc.IsCertified())

	stored, err := f.docRepo.FindByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestDocumentService_CreateDraft_SeriesNotFound(t *testing.T) {
	f := newServiceFixture(t)
	input := f.draftInput(billing.DocumentTypeInvoice, time.Now())
	input.SeriesID = uuid.New()

	_, err := f.service.CreateDraft(context.Background(), input)
	assert.ErrorIs(t, err, shared.ErrSeriesNotFound)
}

func TestDocumentService_CreateDraft_SeriesRestriction(t *testing.T) {
	f := newServiceFixture(t)
	allowed := uuid.New()
	f.series.RestrictTo([]uuid.UUID{allowed})
	f.seriesRepo.add(f.series)

	input := f.draftInput(billing.DocumentTypeInvoice, time.Now())
	input.UserID = uuid.New()
	_, err := f.service.CreateDraft(context.Background(), input)
	assert.Error(t, err)

	input.UserID = allowed
	_, err = f.service.CreateDraft(context.Background(), input)
	assert.NoError(t, err)
}

func TestDocumentService_CreateDraft_ManualNumberOnlyForManualSeries(t *testing.T) {
	f := newServiceFixture(t)
	input := f.draftInput(billing.DocumentTypeInvoice, time.Now())
	input.ManualNumber = "FTM 7"

	_, err := f.service.CreateDraft(context.Background(), input)
	assert.Error(t, err)
}

func TestDocumentService_Certify(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "FT A 2024/1", doc.Number)
	assert.NotEmpty(t, doc.Hash)
	assert.Equal(t, billing.DocumentStatusPending, doc.Status)
	assert.Equal(t, billing.IntegrationStatusValidated, doc.IntegrationStatus)

	// A second invoice chains on the first
	second := f.certifiedInvoice(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "FT A 2024/2", second.Number)
	assert.Equal(t, billing.Fingerprint(second, doc.Hash), second.Hash)
}

func TestDocumentService_Certify_NotFound(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Certify(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDocumentService_Certify_AlreadyCertified(t *testing.T) {
	f := newServiceFixture(t)
	doc := f.certifiedInvoice(t, time.Now())

	_, err := f.service.Certify(context.Background(), doc.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyCertified)
}

func TestDocumentService_Certify_ChronologyGate(t *testing.T) {
	f := newServiceFixture(t)
	f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	// An earlier-dated draft can no longer be certified
	stale, err := f.service.CreateDraft(context.Background(),
		f.draftInput(billing.DocumentTypeInvoice, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = f.service.Certify(context.Background(), stale.ID)
	assert.ErrorIs(t, err, shared.ErrChronologyViolation)

	stored, err := f.docRepo.FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCertified(), "rejected drafts stay drafts")

	// No number was burned for the rejected draft
	next := f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "FT A 2024/2", next.Number)
}

func TestDocumentService_Certify_SameDateAllowed(t *testing.T) {
	f := newServiceFixture(t)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	f.certifiedInvoice(t, date)
	doc := f.certifiedInvoice(t, date)
	assert.Equal(t, "FT A 2024/2", doc.Number)
}

func TestDocumentService_Certify_ChronologyPerType(t *testing.T) {
	f := newServiceFixture(t)
	f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	// Other document types keep their own chronology
	draft, err := f.service.CreateDraft(context.Background(),
		f.draftInput(billing.DocumentTypeProforma, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	result, err := f.service.Certify(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "PP A 2024/1", result.Document.Number)
}

func TestDocumentService_Certify_ManualSeries(t *testing.T) {
	f := newServiceFixture(t)
	manual, err := billing.NewDocumentSeries("M", 2024, billing.SeriesKindManual)
	require.NoError(t, err)
	f.seriesRepo.add(manual)

	input := f.draftInput(billing.DocumentTypeInvoice, time.Now())
	input.SeriesID = manual.ID
	input.ManualNumber = "FTM 7"
	draft, err := f.service.CreateDraft(context.Background(), input)
	require.NoError(t, err)

	result, err := f.service.Certify(context.Background(), draft.ID)
	require.NoError(t, err)

	assert.True(t, result.Document.IsCertified())
	assert.Equal(t, "FTM 7", result.Document.Number)
	assert.Empty(t, result.Document.Hash, "manual series compute no fingerprint")
	assert.Equal(t, int64(0), manual.LastSequence(billing.DocumentTypeInvoice), "manual certification burns no counter")
}

func TestDocumentService_Certify_PostingFailureLeavesGap(t *testing.T) {
	f := newServiceFixture(t)
	f.effects.registers.adjustErr = assert.AnError
	registerID := uuid.New()

	input := f.draftInput(billing.DocumentTypeCashInvoice, time.Now())
	input.PaymentMethod = billing.PaymentMethodCash
	input.CashRegisterID = &registerID
	draft, err := f.service.CreateDraft(context.Background(), input)
	require.NoError(t, err)

	result, err := f.service.Certify(context.Background(), draft.ID)
	require.NoError(t, err, "posting failures never abort certification")

	assert.NotEmpty(t, result.Warnings)
	assert.True(t, result.Document.IsCertified())
	assert.Equal(t, billing.IntegrationStatusReconciliation, result.Document.IntegrationStatus)
}

func TestDocumentService_Liquidate(t *testing.T) {
	f := newServiceFixture(t)
	invoice := f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	registerID := uuid.New()
	half := invoice.Total.Div(decimal.NewFromInt(2))

	result, err := f.service.Liquidate(context.Background(), invoice.ID, half,
		billing.PaymentMethodCash, registerID, time.Now(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, billing.DocumentStatusPartial, result.Invoice.Status)
	assert.Equal(t, "RC A 2024/1", result.Receipt.Number)
	assert.True(t, result.Receipt.IsCertified())
	assert.NotEmpty(t, result.Receipt.Hash, "receipts are always hash-stamped")
	assert.Equal(t, billing.DocumentStatusPaid, result.Receipt.Status)
	require.NotNil(t, result.Receipt.SourceDocumentID)
	assert.Equal(t, invoice.ID, *result.Receipt.SourceDocumentID)

	// The receipt posts its amount to the register
	assert.True(t, f.effects.registers.balance(registerID).Equal(half))

	// Settle the remainder
	result, err = f.service.Liquidate(context.Background(), invoice.ID, invoice.Total.Sub(half),
		billing.PaymentMethodBankTransfer, registerID, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, billing.DocumentStatusPaid, result.Invoice.Status)
	assert.Equal(t, "RC A 2024/2", result.Receipt.Number)
}

func TestDocumentService_Liquidate_RejectsOverpayment(t *testing.T) {
	f := newServiceFixture(t)
	invoice := f.certifiedInvoice(t, time.Now())

	_, err := f.service.Liquidate(context.Background(), invoice.ID, invoice.Total.Add(decimal.NewFromInt(1)),
		billing.PaymentMethodCash, uuid.New(), time.Now(), time.Now())
	require.Error(t, err)

	// No receipt was numbered for the rejected payment
	receipts, err := f.docRepo.FindBySource(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestDocumentService_Liquidate_Rejections(t *testing.T) {
	f := newServiceFixture(t)

	// Draft invoice
	draft, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeInvoice, time.Now()))
	require.NoError(t, err)
	_, err = f.service.Liquidate(context.Background(), draft.ID, decimal.NewFromInt(10),
		billing.PaymentMethodCash, uuid.New(), time.Now(), time.Now())
	assert.Error(t, err)

	// Wrong type
	proforma, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeProforma, time.Now()))
	require.NoError(t, err)
	_, err = f.service.Liquidate(context.Background(), proforma.ID, decimal.NewFromInt(10),
		billing.PaymentMethodCash, uuid.New(), time.Now(), time.Now())
	assert.Error(t, err)

	// Non-positive amount
	invoice := f.certifiedInvoice(t, time.Now())
	_, err = f.service.Liquidate(context.Background(), invoice.ID, decimal.Zero,
		billing.PaymentMethodCash, uuid.New(), time.Now(), time.Now())
	assert.Error(t, err)
}

func TestDocumentService_Cancel_CertifiedIssuesCorrective(t *testing.T) {
	f := newServiceFixture(t)
	invoice := f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	number, hash := invoice.Number, invoice.Hash

	result, err := f.service.Cancel(context.Background(), invoice.ID, "faturação duplicada")
	require.NoError(t, err)

	require.NotNil(t, result.Corrective)
	assert.Equal(t, billing.DocumentTypeCreditNote, result.Corrective.Type)
	assert.Equal(t, "NC A 2024/1", result.Corrective.Number)
	assert.True(t, result.Corrective.IsCertified())
	assert.True(t, result.Corrective.Total.Equal(invoice.Total))

	assert.Equal(t, billing.DocumentStatusCancelled, result.Cancelled.Status)
	assert.Equal(t, number, result.Cancelled.Number, "cancellation keeps the number")
	assert.Equal(t, hash, result.Cancelled.Hash, "cancellation keeps the fingerprint")
}

func TestDocumentService_Cancel_CreditNoteIssuesDebitNote(t *testing.T) {
	f := newServiceFixture(t)
	invoice := f.certifiedInvoice(t, time.Now())

	first, err := f.service.Cancel(context.Background(), invoice.ID, "erro")
	require.NoError(t, err)
	require.NotNil(t, first.Corrective)

	second, err := f.service.Cancel(context.Background(), first.Corrective.ID, "anulação indevida")
	require.NoError(t, err)

	require.NotNil(t, second.Corrective)
	assert.Equal(t, billing.DocumentTypeDebitNote, second.Corrective.Type)
	assert.Equal(t, "ND A 2024/1", second.Corrective.Number)
}

func TestDocumentService_Cancel_DraftWithoutCorrective(t *testing.T) {
	f := newServiceFixture(t)
	draft, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeInvoice, time.Now()))
	require.NoError(t, err)

	result, err := f.service.Cancel(context.Background(), draft.ID, "cliente desistiu")
	require.NoError(t, err)

	assert.Nil(t, result.Corrective)
	assert.Equal(t, billing.DocumentStatusCancelled, result.Cancelled.Status)
}

func TestDocumentService_Cancel_Rejections(t *testing.T) {
	f := newServiceFixture(t)
	invoice := f.certifiedInvoice(t, time.Now())

	_, err := f.service.Cancel(context.Background(), invoice.ID, "")
	assert.Error(t, err, "reason is required")

	_, err = f.service.Cancel(context.Background(), invoice.ID, "erro")
	require.NoError(t, err)
	_, err = f.service.Cancel(context.Background(), invoice.ID, "de novo")
	assert.ErrorIs(t, err, shared.ErrInvalidCancellationTarget)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newServiceFixture(t)
	draft, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeInvoice, time.Now()))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), draft.ID))
	_, err = f.service.Get(context.Background(), draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	invoice := f.certifiedInvoice(t, time.Now())
	err = f.service.Delete(context.Background(), invoice.ID)
	assert.ErrorIs(t, err, shared.ErrImmutableDocument)
}

func TestDocumentService_Chain(t *testing.T) {
	f := newServiceFixture(t)
	invoice := f.certifiedInvoice(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	_, err := f.service.Liquidate(context.Background(), invoice.ID, invoice.Total,
		billing.PaymentMethodCash, uuid.New(), time.Now(), time.Now())
	require.NoError(t, err)

	chain, err := f.service.Chain(context.Background(), invoice.ID)
	require.NoError(t, err)

	assert.Equal(t, invoice.ID, chain.Document.ID)
	require.Len(t, chain.Children, 1)
	assert.Equal(t, billing.DocumentTypeReceipt, chain.Children[0].Document.Type)

	receipts := chain.FindByType(billing.DocumentTypeReceipt)
	assert.Len(t, receipts, 1)
}

type capturingPublisher struct {
	published []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.published = append(p.published, events...)
	return nil
}

func TestDocumentService_PublishesLifecycleEvents(t *testing.T) {
	f := newServiceFixture(t)
	publisher := &capturingPublisher{}
	f.service.SetEventPublisher(publisher)

	draft, err := f.service.CreateDraft(context.Background(), f.draftInput(billing.DocumentTypeInvoice, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = f.service.Certify(context.Background(), draft.ID)
	require.NoError(t, err)

	types := make([]string, len(publisher.published))
	for i, e := range publisher.published {
		types[i] = e.EventType()
	}
	assert.Contains(t, types, billing.EventTypeDocumentCreated)
	assert.Contains(t, types, billing.EventTypeDocumentCertified)

	// Events are drained from the aggregate once published
	assert.Empty(t, draft.GetDomainEvents())
}
