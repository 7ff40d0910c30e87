package billing

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CorrectiveTypeFor determines which document type neutralises a certified
// source document. A credit note corrects a normal sale document; cancelling a
// credit note itself produces a debit note, so a credit-note-of-a-credit-note
// can never occur.
func CorrectiveTypeFor(sourceType DocumentType) (DocumentType, error) {
	if !sourceType.IsValid() {
		return "", shared.ErrInvalidDocumentType
	}
	if sourceType == DocumentTypeCreditNote {
		return DocumentTypeDebitNote, nil
	}
	return DocumentTypeCreditNote, nil
}

// NewCorrectiveDocument derives the corrective document for a cancellation.
// It copies the customer, lines and amounts of the source, links back via the
// source document id, and appends the cancellation reason to its notes.
// The corrective is returned as a draft; the caller certifies it immediately.
func NewCorrectiveDocument(source *FiscalDocument, reason string, issueDate time.Time) (*FiscalDocument, error) {
	correctiveType, err := CorrectiveTypeFor(source.Type)
	if err != nil {
		return nil, err
	}

	corrective, err := NewFiscalDocument(
		correctiveType,
		source.SeriesID,
		issueDate,
		source.Currency,
		source.ExchangeRate,
		source.Customer,
		source.PaymentMethod,
		cloneLines(source.Lines),
		source.GlobalDiscount,
		source.Withholding,
	)
	if err != nil {
		return nil, err
	}

	if err := corrective.SetSourceDocument(source.ID); err != nil {
		return nil, err
	}
	if source.CashRegisterID != nil {
		if err := corrective.SetCashRegister(*source.CashRegisterID); err != nil {
			return nil, err
		}
	}
	if source.WarehouseID != nil {
		if err := corrective.SetWarehouse(*source.WarehouseID); err != nil {
			return nil, err
		}
	}
	if err := corrective.AppendNote(reason); err != nil {
		return nil, err
	}

	return corrective, nil
}

func cloneLines(lines []DocumentLine) []DocumentLine {
	out := make([]DocumentLine, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].ID = uuid.New()
	}
	return out
}
