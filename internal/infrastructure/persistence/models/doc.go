// Package models holds the gorm row types behind the repositories.
// Domain entities stay free of ORM tags; each model here maps one table
// and converts to and from its domain counterpart.
//
// billing.go covers fiscal documents and numbering series, treasury.go
// the cash registers and postings, inventory.go the stock movement
// ledger.
package models
