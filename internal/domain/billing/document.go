package billing

import (
	"fmt"
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType represents the fiscal type of a document
type DocumentType string

const (
	DocumentTypeInvoice         DocumentType = "INVOICE"          // Fatura (FT)
	DocumentTypeCashInvoice     DocumentType = "CASH_INVOICE"     // Fatura-recibo (FR), POS sale
	DocumentTypeReceipt         DocumentType = "RECEIPT"          // Recibo (RC)
	DocumentTypeCreditNote      DocumentType = "CREDIT_NOTE"      // Nota de crédito (NC)
	DocumentTypeDebitNote       DocumentType = "DEBIT_NOTE"       // Nota de débito (ND)
	DocumentTypeProforma        DocumentType = "PROFORMA"         // Fatura pró-forma (PP)
	DocumentTypeQuote           DocumentType = "QUOTE"            // Orçamento (OR)
	DocumentTypeDeliveryGuide   DocumentType = "DELIVERY_GUIDE"   // Guia de entrega (GE)
	DocumentTypePurchaseInvoice DocumentType = "PURCHASE_INVOICE" // Fatura de compra (FC)
)

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// IsValid returns true if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeInvoice,
		DocumentTypeCashInvoice,
		DocumentTypeReceipt,
		DocumentTypeCreditNote,
		DocumentTypeDebitNote,
		DocumentTypeProforma,
		DocumentTypeQuote,
		DocumentTypeDeliveryGuide,
		DocumentTypePurchaseInvoice:
		return true
	}
	return false
}

// AffectsStock returns true if certifying a document of this type moves physical stock
func (t DocumentType) AffectsStock() bool {
	switch t {
	case DocumentTypeInvoice,
		DocumentTypeCashInvoice,
		DocumentTypeCreditNote,
		DocumentTypeDebitNote,
		DocumentTypeDeliveryGuide,
		DocumentTypePurchaseInvoice:
		return true
	}
	return false
}

// IsPurchase returns true for purchase-side documents, whose cash and stock
// postings carry the opposite sign of sales documents
func (t DocumentType) IsPurchase() bool {
	return t == DocumentTypePurchaseInvoice
}

// SettlesImmediately returns true for types that are paid in full at certification
func (t DocumentType) SettlesImmediately() bool {
	return t == DocumentTypeCashInvoice || t == DocumentTypeReceipt
}

// DocumentStatus represents the lifecycle status of a fiscal document
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"     // Not yet certified, may be edited or deleted
	DocumentStatusPending   DocumentStatus = "PENDING"   // Certified, nothing paid yet
	DocumentStatusPartial   DocumentStatus = "PARTIAL"   // Certified, partially paid
	DocumentStatusPaid      DocumentStatus = "PAID"      // Certified, fully paid
	DocumentStatusCancelled DocumentStatus = "CANCELLED" // Neutralised by a corrective document
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusPending, DocumentStatusPartial,
		DocumentStatusPaid, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// CanCancel returns true if a document in this status may still be cancelled
func (s DocumentStatus) CanCancel() bool {
	return s != DocumentStatusCancelled
}

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"          // Numerário
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER" // Transferência bancária
	PaymentMethodMulticaixa   PaymentMethod = "MULTICAIXA"    // Multicaixa / card terminal
	PaymentMethodCheck        PaymentMethod = "CHECK"         // Cheque
	PaymentMethodCredit       PaymentMethod = "CREDIT"        // A crédito (settled later by receipt)
)

// IsValid checks if the payment method is valid. Unknown values are a
// configuration error, never silently defaulted.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMulticaixa,
		PaymentMethodCheck, PaymentMethodCredit:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IntegrationStatus tracks whether downstream postings completed for a certified document
type IntegrationStatus string

const (
	IntegrationStatusPending        IntegrationStatus = "PENDING"
	IntegrationStatusValidated      IntegrationStatus = "VALIDATED"
	IntegrationStatusReconciliation IntegrationStatus = "PENDING_RECONCILIATION"
)

// DocumentLine represents a single line item of a fiscal document
type DocumentLine struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Description     string          `json:"description"`
	IsPhysical      bool            `json:"is_physical"` // Physical products move stock; services do not
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// NewDocumentLine creates a document line and computes its total
func NewDocumentLine(productID uuid.UUID, description string, isPhysical bool, quantity, unitPrice, discountPercent, taxPercent decimal.Decimal) (DocumentLine, error) {
	if description == "" {
		return DocumentLine{}, shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return DocumentLine{}, shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return DocumentLine{}, shared.NewDomainError("INVALID_LINE", "Line unit price cannot be negative")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return DocumentLine{}, shared.NewDomainError("INVALID_LINE", "Line discount must be between 0 and 100")
	}
	if taxPercent.IsNegative() {
		return DocumentLine{}, shared.NewDomainError("INVALID_LINE", "Line tax rate cannot be negative")
	}

	line := DocumentLine{
		ID:              uuid.New(),
		ProductID:       productID,
		Description:     description,
		IsPhysical:      isPhysical,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
		TaxPercent:      taxPercent,
	}
	line.LineTotal = line.Net().Add(line.Tax()).Round(2)
	return line, nil
}

// Net returns the line amount after discount, before tax
func (l DocumentLine) Net() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	gross := l.Quantity.Mul(l.UnitPrice)
	return gross.Mul(hundred.Sub(l.DiscountPercent)).Div(hundred).Round(2)
}

// Tax returns the tax amount of the line
func (l DocumentLine) Tax() decimal.Decimal {
	return l.Net().Mul(l.TaxPercent).Div(decimal.NewFromInt(100)).Round(2)
}

// CustomerSnapshot captures the client identity at time of issue.
// It is frozen with the rest of the document at certification.
type CustomerSnapshot struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
	TaxID      string    `json:"tax_id"`
}

// FiscalDocument represents any sales-flow document (invoice, receipt,
// credit/debit note, proforma, quote, delivery guide, POS sale).
// It is the aggregate root of the fiscal lifecycle: created in DRAFT,
// sealed by certification, then only status, paid amount, cancellation
// reason and append-only children may change.
type FiscalDocument struct {
	shared.BaseAggregateRoot
	Type           DocumentType         `json:"type"`
	SeriesID       uuid.UUID            `json:"series_id"`
	IssueDate      time.Time            `json:"issue_date"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
	AccountingDate *time.Time           `json:"accounting_date,omitempty"`
	Currency       valueobject.Currency `json:"currency"`
	ExchangeRate   decimal.Decimal      `json:"exchange_rate"`
	Lines          []DocumentLine       `json:"lines"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	GlobalDiscount decimal.Decimal      `json:"global_discount"`
	TaxAmount      decimal.Decimal      `json:"tax_amount"`
	Withholding    decimal.Decimal      `json:"withholding"`
	Total          decimal.Decimal      `json:"total"`
	PaymentMethod  PaymentMethod        `json:"payment_method"`
	CashRegisterID *uuid.UUID           `json:"cash_register_id,omitempty"`
	WarehouseID    *uuid.UUID           `json:"warehouse_id,omitempty"`
	Customer       CustomerSnapshot     `json:"customer"`
	Notes          string               `json:"notes,omitempty"`

	Certified          bool              `json:"is_certified"`
	Number             string            `json:"number,omitempty"` // Assigned at certification, immutable afterwards
	Hash               string            `json:"hash,omitempty"`   // Tamper-evident fingerprint, chained per series+type
	Status             DocumentStatus    `json:"status"`
	PaidAmount         decimal.Decimal   `json:"paid_amount"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	SourceDocumentID   *uuid.UUID        `json:"source_document_id,omitempty"`
	ProcessedAt        *time.Time        `json:"processed_at,omitempty"`
	IntegrationStatus  IntegrationStatus `json:"integration_status"`
}

// NewFiscalDocument creates a new draft document and computes its totals
func NewFiscalDocument(
	docType DocumentType,
	seriesID uuid.UUID,
	issueDate time.Time,
	currency valueobject.Currency,
	exchangeRate decimal.Decimal,
	customer CustomerSnapshot,
	paymentMethod PaymentMethod,
	lines []DocumentLine,
	globalDiscount decimal.Decimal,
	withholding decimal.Decimal,
) (*FiscalDocument, error) {
	if !docType.IsValid() {
		return nil, shared.ErrInvalidDocumentType
	}
	if seriesID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERIES", "Series ID cannot be empty")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive")
	}
	if customer.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customer.Name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", paymentMethod))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "Document must have at least one line")
	}
	if globalDiscount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Global discount cannot be negative")
	}
	if withholding.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WITHHOLDING", "Withholding cannot be negative")
	}

	doc := &FiscalDocument{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              docType,
		SeriesID:          seriesID,
		IssueDate:         issueDate,
		Currency:          currency,
		ExchangeRate:      exchangeRate,
		Customer:          customer,
		PaymentMethod:     paymentMethod,
		Lines:             lines,
		GlobalDiscount:    globalDiscount,
		Withholding:       withholding,
		Status:            DocumentStatusDraft,
		PaidAmount:        decimal.Zero,
		IntegrationStatus: IntegrationStatusPending,
	}
	doc.recomputeTotals()

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))

	return doc, nil
}

func (d *FiscalDocument) recomputeTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, line := range d.Lines {
		subtotal = subtotal.Add(line.Net())
		tax = tax.Add(line.Tax())
	}
	d.Subtotal = subtotal.Round(2)
	d.TaxAmount = tax.Round(2)
	d.Total = d.Subtotal.Sub(d.GlobalDiscount).Add(d.TaxAmount).Sub(d.Withholding).Round(2)
}

// ReplaceLines replaces the line items of a draft and recomputes totals.
// Certified documents are frozen; any attempt returns ErrImmutableDocument.
func (d *FiscalDocument) ReplaceLines(lines []DocumentLine, globalDiscount, withholding decimal.Decimal) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_LINES", "Document must have at least one line")
	}
	if globalDiscount.IsNegative() || withholding.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Discount and withholding cannot be negative")
	}
	d.Lines = lines
	d.GlobalDiscount = globalDiscount
	d.Withholding = withholding
	d.recomputeTotals()
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// SetIssueDate changes the issue date of a draft
func (d *FiscalDocument) SetIssueDate(date time.Time) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	d.IssueDate = date
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// SetCashRegister sets the target cash register for cash postings
func (d *FiscalDocument) SetCashRegister(registerID uuid.UUID) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	d.CashRegisterID = &registerID
	d.UpdatedAt = time.Now()
	return nil
}

// SetWarehouse sets the target warehouse for stock postings
func (d *FiscalDocument) SetWarehouse(warehouseID uuid.UUID) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	d.WarehouseID = &warehouseID
	d.UpdatedAt = time.Now()
	return nil
}

// SetAccountingDate sets the accounting (value) date
func (d *FiscalDocument) SetAccountingDate(date time.Time) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	d.AccountingDate = &date
	d.UpdatedAt = time.Now()
	return nil
}

// SetDueDate sets the payment due date
func (d *FiscalDocument) SetDueDate(dueDate time.Time) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	d.DueDate = &dueDate
	d.UpdatedAt = time.Now()
	return nil
}

// SetSourceDocument links this document to the document it derives from
func (d *FiscalDocument) SetSourceDocument(sourceID uuid.UUID) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	d.SourceDocumentID = &sourceID
	d.UpdatedAt = time.Now()
	return nil
}

// SetManualNumber records an externally assigned number on a draft in a manual series
func (d *FiscalDocument) SetManualNumber(number string) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Manual number cannot be empty")
	}
	d.Number = number
	d.UpdatedAt = time.Now()
	return nil
}

// Seal certifies the document with an allocated number and fingerprint.
// After this call the financial core (lines, totals, date, customer) is frozen.
func (d *FiscalDocument) Seal(number, hash string, processedAt time.Time) error {
	if d.Certified {
		return shared.ErrAlreadyCertified
	}
	if d.Status == DocumentStatusCancelled {
		return shared.ErrInvalidCancellationTarget
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Certified documents require a number")
	}
	if hash == "" {
		return shared.NewDomainError("INVALID_HASH", "Certified documents in a normal series require a fingerprint")
	}

	d.Certified = true
	d.Number = number
	d.Hash = hash
	d.ProcessedAt = &processedAt
	d.IntegrationStatus = IntegrationStatusValidated
	d.settleInitialStatus()
	d.UpdatedAt = processedAt
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentCertifiedEvent(d))

	return nil
}

// SealManual certifies a document in a manual series: the externally assigned
// number is kept and no fingerprint is computed.
func (d *FiscalDocument) SealManual(processedAt time.Time) error {
	if d.Certified {
		return shared.ErrAlreadyCertified
	}
	if d.Status == DocumentStatusCancelled {
		return shared.ErrInvalidCancellationTarget
	}
	if d.Number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Manual certification requires an existing number")
	}

	d.Certified = true
	d.ProcessedAt = &processedAt
	d.settleInitialStatus()
	d.UpdatedAt = processedAt
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentCertifiedEvent(d))

	return nil
}

func (d *FiscalDocument) settleInitialStatus() {
	if d.Type.SettlesImmediately() {
		d.Status = DocumentStatusPaid
		d.PaidAmount = d.Total
		return
	}
	d.Status = DocumentStatusPending
}

// ApplyPayment records a payment against a certified document.
// PaidAmount never exceeds Total; when fully paid the status becomes PAID.
func (d *FiscalDocument) ApplyPayment(amount decimal.Decimal) error {
	if !d.Certified {
		return shared.NewDomainError("NOT_CERTIFIED", "Payments can only be applied to certified documents")
	}
	if d.Status == DocumentStatusCancelled {
		return shared.ErrInvalidCancellationTarget
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if d.PaidAmount.Add(amount).GreaterThan(d.Total) {
		return shared.NewDomainError("EXCEEDS_TOTAL", fmt.Sprintf("Payment of %s exceeds outstanding amount %s", amount.StringFixed(2), d.Outstanding().StringFixed(2)))
	}

	d.PaidAmount = d.PaidAmount.Add(amount)
	if d.PaidAmount.GreaterThanOrEqual(d.Total) {
		d.Status = DocumentStatusPaid
	} else {
		d.Status = DocumentStatusPartial
	}
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentPaymentAppliedEvent(d, amount))

	return nil
}

// MarkCancelled neutralises the document. Number, hash and items are untouched,
// preserving the audit trail; only status and the reason change.
func (d *FiscalDocument) MarkCancelled(reason string) error {
	if !d.Status.CanCancel() {
		return shared.ErrInvalidCancellationTarget
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}

	d.Status = DocumentStatusCancelled
	d.CancellationReason = reason
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentCancelledEvent(d, reason))

	return nil
}

// MarkIntegrationGap records that a downstream posting failed after certification.
// The document stays certified; the gap is surfaced for manual reconciliation.
func (d *FiscalDocument) MarkIntegrationGap() {
	d.IntegrationStatus = IntegrationStatusReconciliation
	d.UpdatedAt = time.Now()
}

// AppendNote appends a line to the free-form notes of a draft.
func (d *FiscalDocument) AppendNote(note string) error {
	if d.Certified {
		return shared.ErrImmutableDocument
	}
	if d.Notes == "" {
		d.Notes = note
		return nil
	}
	d.Notes = d.Notes + "\n" + note
	return nil
}

// IsCertified returns true once the document has been sealed
func (d *FiscalDocument) IsCertified() bool {
	return d.Certified
}

// IsCancelled returns true if the document was cancelled
func (d *FiscalDocument) IsCancelled() bool {
	return d.Status == DocumentStatusCancelled
}

// CanDelete returns true only while the document is not certified.
// Certified documents are never physically deleted.
func (d *FiscalDocument) CanDelete() bool {
	return !d.Certified
}

// Outstanding returns the unpaid remainder
func (d *FiscalDocument) Outstanding() decimal.Decimal {
	return d.Total.Sub(d.PaidAmount)
}

// TotalMoney returns the document total as Money
func (d *FiscalDocument) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(d.Total, d.Currency)
	return m
}
