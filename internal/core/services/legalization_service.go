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
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"
	"github.com/quipufin/cajachica_backend/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

// legalizationService folds NO_INVOICE expenses under one justifying invoice.
// Planning is pure; execution applies the plan in a single store transaction.
type legalizationService struct {
	boxRepo    portsrepo.CashBoxReader
	txnRepo    portsrepo.TransactionRepositoryFacade
	branchAuth portssvc.BranchAuthorizerSvc
}

// NewLegalizationService creates a new LegalizationService.
func NewLegalizationService(boxRepo portsrepo.CashBoxReader, txnRepo portsrepo.TransactionRepositoryFacade, branchAuth portssvc.BranchAuthorizerSvc) portssvc.LegalizationSvcFacade {
	return &legalizationService{boxRepo: boxRepo, txnRepo: txnRepo, branchAuth: branchAuth}
}

var _ portssvc.LegalizationSvcFacade = (*legalizationService)(nil)

// PlanLegalization validates the selection and builds the plan without writing
// anything. The justifying invoice's total is the sum of the children's totals
// and its line items are copies of theirs, so executing the plan leaves the box
// totals numerically unchanged.
func (s *legalizationService) PlanLegalization(ctx context.Context, boxID string, req dto.LegalizeRequest, userID string) (*domain.LegalizationPlan, error) {
	if len(req.TransactionIDs) == 0 {
		return nil, fmt.Errorf("%w: legalization requires at least one transaction", apperrors.ErrValidation)
	}

	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if err := s.branchAuth.AuthorizeUserAction(ctx, userID, box.BranchID, domain.RoleMember); err != nil {
		return nil, err
	}
	if !box.IsOpen() {
		return nil, fmt.Errorf("%w: cash box %s is closed", apperrors.ErrInvalidState, boxID)
	}

	seen := make(map[string]bool, len(req.TransactionIDs))
	children := make([]*domain.Transaction, 0, len(req.TransactionIDs))
	for _, id := range req.TransactionIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: transaction %s selected more than once", apperrors.ErrValidation, id)
		}
		seen[id] = true

		txn, err := s.txnRepo.FindTransactionByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to find transaction %s: %w", id, err)
		}
		if txn.BoxID != boxID {
			return nil, fmt.Errorf("%w: transaction %s does not belong to box %s", apperrors.ErrNotFound, id, boxID)
		}
		if txn.DocumentType != domain.DocNoInvoice {
			return nil, fmt.Errorf("%w: transaction %s is %s; only NO_INVOICE transactions can be legalized",
				apperrors.ErrValidation, id, txn.DocumentType)
		}
		if txn.IsChild() {
			return nil, fmt.Errorf("%w: transaction %s was already legalized", apperrors.ErrValidation, id)
		}
		// A withheld child would take its withholding out of the projection
		// while the justifying invoice carries none, shifting net and cash.
		if txn.HasWithholding() {
			return nil, fmt.Errorf("%w: transaction %s has a withholding attached; delete it before legalizing", apperrors.ErrValidation, id)
		}
		children = append(children, txn)
	}

	now := time.Now().UTC()
	justificationID := uuid.NewString()
	total := decimal.Zero
	var lineItems []domain.LineItem
	childIDs := make([]string, 0, len(children))
	for _, child := range children {
		total = total.Add(child.Total)
		childIDs = append(childIDs, child.TransactionID)
		for _, li := range child.LineItems {
			copied := li
			copied.LineItemID = uuid.NewString()
			copied.TransactionID = justificationID
			lineItems = append(lineItems, copied)
		}
	}

	supplierName := req.SupplierName
	justification := domain.Transaction{
		TransactionID:   justificationID,
		BoxID:           boxID,
		TransactionDate: req.InvoiceDate,
		DocumentType:    domain.DocInvoice,
		DocumentNumber:  req.InvoiceNumber,
		SupplierName:    &supplierName,
		Total:           moneymath.RoundCents(total),
		IsJustification: true,
		LineItems:       lineItems,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	return &domain.LegalizationPlan{
		BoxID:               boxID,
		Justification:       justification,
		ChildTransactionIDs: childIDs,
	}, nil
}

// ExecuteLegalization applies a plan against the store. Insert, re-parenting
// and the audit entry happen in one store transaction; a failure anywhere
// leaves the ledger untouched.
func (s *legalizationService) ExecuteLegalization(ctx context.Context, plan *domain.LegalizationPlan, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	audit := domain.AuditEntry{
		EntryID: uuid.NewString(),
		BoxID:   &plan.BoxID,
		Action:  domain.AuditLegalization,
		Description: fmt.Sprintf("invoice %s legalizes %d transactions for a total of %s",
			plan.Justification.DocumentNumber, len(plan.ChildTransactionIDs), plan.Justification.Total),
		Detail: map[string]any{
			"justificationID": plan.Justification.TransactionID,
			"invoiceNumber":   plan.Justification.DocumentNumber,
			"total":           plan.Justification.Total.String(),
			"children":        plan.ChildTransactionIDs,
		},
		PerformedBy: userID,
		PerformedAt: time.Now().UTC(),
	}

	if err := s.txnRepo.ApplyLegalization(ctx, *plan, audit); err != nil {
		return nil, fmt.Errorf("failed to apply legalization: %w", err)
	}

	logger.Info("Legalization applied",
		slog.String("box_id", plan.BoxID),
		slog.String("justification_id", plan.Justification.TransactionID),
		slog.Int("children", len(plan.ChildTransactionIDs)),
	)
	justification := plan.Justification
	return &justification, nil
}

// Legalize plans and immediately executes.
func (s *legalizationService) Legalize(ctx context.Context, boxID string, req dto.LegalizeRequest, userID string) (*domain.Transaction, error) {
	plan, err := s.PlanLegalization(ctx, boxID, req, userID)
	if err != nil {
		return nil, err
	}
	return s.ExecuteLegalization(ctx, plan, userID)
}
