// Package billing provides domain models for the fiscal document lifecycle.
//
// This package implements the billing bounded context, which is responsible for:
//   - Issuing fiscal documents (invoices, receipts, credit/debit notes, quotes,
//     proformas, delivery guides, purchase invoices) through a draft/certify flow
//   - Allocating monotonically increasing document numbers from per-series,
//     per-type counters
//   - Sealing certified documents with a chained tamper-evident fingerprint
//   - Cancelling certified documents through corrective documents, keeping the
//     audit trail intact
//
// Key Aggregates:
//   - FiscalDocument: A document in the sales or purchase flow; frozen after certification
//   - DocumentSeries: A numbering scope with per-type sequence counters
//
// The billing domain integrates with:
//   - Treasury domain: Cash-register postings for settled documents
//   - Inventory domain: Stock movements for physical lines
package billing
