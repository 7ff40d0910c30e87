package billing

import (
	"testing"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixFor(t *testing.T) {
	tests := []struct {
		docType DocumentType
		prefix  string
	}{
		{DocumentTypeInvoice, "FT"},
		{DocumentTypeCashInvoice, "FR"},
		{DocumentTypeReceipt, "RC"},
		{DocumentTypeCreditNote, "NC"},
		{DocumentTypeDebitNote, "ND"},
		{DocumentTypeProforma, "PP"},
		{DocumentTypeQuote, "OR"},
		{DocumentTypeDeliveryGuide, "GE"},
		{DocumentTypePurchaseInvoice, "FC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.docType), func(t *testing.T) {
			prefix, err := PrefixFor(tt.docType)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, prefix)
		})
	}

	_, err := PrefixFor(DocumentType("BOGUS"))
	assert.ErrorIs(t, err, shared.ErrInvalidDocumentType)
}

func TestFormatNumber(t *testing.T) {
	number, err := FormatNumber(DocumentTypeInvoice, "A", 2024, 37)
	require.NoError(t, err)
	assert.Equal(t, "FT A 2024/37", number)

	number, err = FormatNumber(DocumentTypeCreditNote, "LOJA2", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "NC LOJA2 2025/1", number)

	_, err = FormatNumber(DocumentType("BOGUS"), "A", 2024, 1)
	assert.Error(t, err)
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		want    int64
		wantErr bool
	}{
		{"standard number", "FT A 2024/37", 37, false},
		{"single digit", "RC A 2024/1", 1, false},
		{"legacy free-form", "FACTURA-2019/482", 482, false},
		{"no separator", "FT A 2024", 0, true},
		{"trailing separator", "FT A 2024/", 0, true},
		{"non-numeric", "FT A 2024/abc", 0, true},
		{"zero sequence", "FT A 2024/0", 0, true},
		{"negative sequence", "FT A 2024/-3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := ParseSequence(tt.number)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq)
		})
	}
}
