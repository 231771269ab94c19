package services

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// LedgerCalculator is the pure totals projection. Given the full transaction
// set of a box it produces the aggregate figures; it has no side effects and no
// hidden state, so two calls over the same input yield identical results.
type LedgerCalculator interface {
	ComputeTotals(transactions []domain.Transaction, box domain.CashBox) domain.Totals
}

// LedgerReaderSvc recomputes totals from the currently stored transaction set.
type LedgerReaderSvc interface {
	// GetBoxTotals re-reads the box's transactions and projects totals. Callers
	// that gate on the result (e.g. closing) must call this immediately before
	// evaluating, never reuse a cached value.
	GetBoxTotals(ctx context.Context, boxID string) (*domain.Totals, error)
}

// LedgerSvcFacade combines the ledger interfaces.
type LedgerSvcFacade interface {
	LedgerCalculator
	LedgerReaderSvc
}
