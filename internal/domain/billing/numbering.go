package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/angofact/backend/internal/domain/shared"
)

// typePrefixes maps each document type to its fixed legal numbering prefix
var typePrefixes = map[DocumentType]string{
	DocumentTypeInvoice:         "FT",
	DocumentTypeCashInvoice:     "FR",
	DocumentTypeReceipt:         "RC",
	DocumentTypeCreditNote:      "NC",
	DocumentTypeDebitNote:       "ND",
	DocumentTypeProforma:        "PP",
	DocumentTypeQuote:           "OR",
	DocumentTypeDeliveryGuide:   "GE",
	DocumentTypePurchaseInvoice: "FC",
}

// PrefixFor returns the numbering prefix for a document type
func PrefixFor(docType DocumentType) (string, error) {
	prefix, ok := typePrefixes[docType]
	if !ok {
		return "", shared.ErrInvalidDocumentType
	}
	return prefix, nil
}

// FormatNumber builds the human-readable document number:
// "{prefix} {seriesCode} {year}/{sequence}", e.g. "FT A 2024/37".
func FormatNumber(docType DocumentType, seriesCode string, year int, sequence int64) (string, error) {
	prefix, err := PrefixFor(docType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %d/%d", prefix, seriesCode, year, sequence), nil
}

// ParseSequence extracts the trailing integer sequence from a formatted
// document number. Used when ingesting legacy or external records to
// fast-forward a series counter past numbers already in circulation.
func ParseSequence(formattedNumber string) (int64, error) {
	idx := strings.LastIndex(formattedNumber, "/")
	if idx < 0 || idx == len(formattedNumber)-1 {
		return 0, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("Number %q has no trailing sequence segment", formattedNumber))
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(formattedNumber[idx+1:]), 10, 64)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("Number %q has a non-numeric sequence segment", formattedNumber))
	}
	if seq <= 0 {
		return 0, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("Number %q has a non-positive sequence", formattedNumber))
	}
	return seq, nil
}
