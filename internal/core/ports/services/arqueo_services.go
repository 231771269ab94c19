package services

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ArqueoReconciler validates a physical cash count against an expected figure.
type ArqueoReconciler interface {
	// Reconcile verifies the count entries (catalog membership, no duplicate
	// denomination, non-negative quantities) and compares the rounded counted
	// total against the rounded expected amount. An empty or all-zero count is
	// never VERIFIED unless allowEmpty is set. Invalid entries return
	// apperrors.ErrValidation.
	Reconcile(counts []domain.DenominationCount, expected decimal.Decimal, allowEmpty bool) (*domain.Reconciliation, error)
}

// ArqueoRecorderSvc performs free-standing control counts: audit-only, the
// difference is recorded but nothing is gated.
type ArqueoRecorderSvc interface {
	RecordControlCount(ctx context.Context, boxID string, counts []domain.DenominationCount, performedBy string) (*domain.Reconciliation, error)
}

// ArqueoSvcFacade combines the arqueo interfaces.
type ArqueoSvcFacade interface {
	ArqueoReconciler
	ArqueoRecorderSvc
}
