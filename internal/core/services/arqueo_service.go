package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/middleware"
	"github.com/quipufin/cajachica_backend/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

// arqueoService validates physical cash counts. The same reconciliation runs
// for box opening, box closing, and free-standing control counts; only the
// call sites differ in what they gate on the verdict.
type arqueoService struct {
	catalog   []domain.Denomination
	boxRepo   portsrepo.CashBoxReader
	ledgerSvc portssvc.LedgerReaderSvc
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewArqueoService creates a new ArqueoService. A nil catalog selects the
// default denomination catalog.
func NewArqueoService(catalog []domain.Denomination, boxRepo portsrepo.CashBoxReader, ledgerSvc portssvc.LedgerReaderSvc, auditRepo portsrepo.AuditRepositoryFacade) portssvc.ArqueoSvcFacade {
	if catalog == nil {
		catalog = domain.DefaultDenominations()
	}
	return &arqueoService{
		catalog:   catalog,
		boxRepo:   boxRepo,
		ledgerSvc: ledgerSvc,
		auditRepo: auditRepo,
	}
}

var _ portssvc.ArqueoSvcFacade = (*arqueoService)(nil)

// Reconcile verifies a count and compares it against the expected amount.
// Counted and difference are rounded to cents before comparison; the verdict is
// VERIFIED only on exact equality of the rounded decimals, so no epsilon is
// involved anywhere.
func (s *arqueoService) Reconcile(counts []domain.DenominationCount, expected decimal.Decimal, allowEmpty bool) (*domain.Reconciliation, error) {
	seen := make([]domain.Denomination, 0, len(counts))
	counted := decimal.Zero
	totalQuantity := int64(0)

	for _, c := range counts {
		if c.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative quantity %d for denomination %s %s",
				apperrors.ErrValidation, c.Quantity, c.Denomination.Kind, c.Denomination.Value.String())
		}
		if !s.inCatalog(c.Denomination) {
			return nil, fmt.Errorf("%w: denomination %s %s is not in the catalog",
				apperrors.ErrValidation, c.Denomination.Kind, c.Denomination.Value.String())
		}
		for _, d := range seen {
			if d.Equal(c.Denomination) {
				return nil, fmt.Errorf("%w: denomination %s %s appears more than once",
					apperrors.ErrValidation, c.Denomination.Kind, c.Denomination.Value.String())
			}
		}
		seen = append(seen, c.Denomination)
		counted = counted.Add(c.Subtotal())
		totalQuantity += c.Quantity
	}

	if totalQuantity == 0 && !allowEmpty {
		return nil, fmt.Errorf("%w: empty denomination count is not accepted", apperrors.ErrValidation)
	}

	counted = moneymath.RoundCents(counted)
	expected = moneymath.RoundCents(expected)
	difference := moneymath.RoundCents(counted.Sub(expected))

	verdict := domain.Verified
	switch {
	case difference.IsPositive():
		verdict = domain.Surplus
	case difference.IsNegative():
		verdict = domain.Shortage
	}

	return &domain.Reconciliation{
		Counts:     counts,
		Counted:    counted,
		Expected:   expected,
		Difference: difference,
		Verdict:    verdict,
	}, nil
}

// RecordControlCount runs an audit-only count against the box's current
// expected cash. The difference is recorded in the bitácora; nothing is gated.
func (s *arqueoService) RecordControlCount(ctx context.Context, boxID string, counts []domain.DenominationCount, performedBy string) (*domain.Reconciliation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.boxRepo.FindCashBoxByID(ctx, boxID); err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}

	totals, err := s.ledgerSvc.GetBoxTotals(ctx, boxID)
	if err != nil {
		return nil, err
	}

	// Control counts may legitimately find an empty drawer.
	reconciliation, err := s.Reconcile(counts, totals.Cash, true)
	if err != nil {
		return nil, err
	}

	entry := domain.AuditEntry{
		EntryID:     uuid.NewString(),
		BoxID:       &boxID,
		Action:      domain.AuditControlCount,
		Description: fmt.Sprintf("control count: counted %s, expected %s, difference %s (%s)", reconciliation.Counted, reconciliation.Expected, reconciliation.Difference, reconciliation.Verdict),
		Detail:      CountDetail(domain.CountControl, reconciliation),
		PerformedBy: performedBy,
		PerformedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.AppendAuditEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append control count audit entry: %w", err)
	}

	logger.Info("Control count recorded",
		slog.String("box_id", boxID),
		slog.String("verdict", string(reconciliation.Verdict)),
		slog.String("difference", reconciliation.Difference.String()),
	)
	return reconciliation, nil
}

func (s *arqueoService) inCatalog(d domain.Denomination) bool {
	for _, entry := range s.catalog {
		if entry.Equal(d) {
			return true
		}
	}
	return false
}

// CountDetail builds the structured bitácora payload for a reconciliation: the
// count's purpose, the denomination breakdown and the compared figures.
func CountDetail(purpose domain.CountPurpose, r *domain.Reconciliation) map[string]any {
	breakdown := make([]map[string]any, 0, len(r.Counts))
	for _, c := range r.Counts {
		breakdown = append(breakdown, map[string]any{
			"kind":     string(c.Denomination.Kind),
			"value":    c.Denomination.Value.String(),
			"quantity": c.Quantity,
		})
	}
	return map[string]any{
		"purpose":    string(purpose),
		"breakdown":  breakdown,
		"counted":    r.Counted.String(),
		"expected":   r.Expected.String(),
		"difference": r.Difference.String(),
		"verdict":    string(r.Verdict),
	}
}
