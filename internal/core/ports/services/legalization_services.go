package services

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/dto"
)

// LegalizationSvcFacade folds unreceipted expenses under a justifying invoice.
// Plan is pure with respect to the ledger; Execute applies a plan atomically.
type LegalizationSvcFacade interface {
	// PlanLegalization validates the selection (existing NO_INVOICE
	// transactions of this box, none already legalized) and returns the plan:
	// the justifying invoice with summed total and copied line items, plus the
	// children to re-parent. Nothing is written.
	PlanLegalization(ctx context.Context, boxID string, req dto.LegalizeRequest, userID string) (*domain.LegalizationPlan, error)

	// ExecuteLegalization applies a plan against the store in one transaction.
	// Ledger totals are numerically unchanged by a successful execution.
	ExecuteLegalization(ctx context.Context, plan *domain.LegalizationPlan, userID string) (*domain.Transaction, error)

	// Legalize is PlanLegalization followed by ExecuteLegalization.
	Legalize(ctx context.Context, boxID string, req dto.LegalizeRequest, userID string) (*domain.Transaction, error)
}
