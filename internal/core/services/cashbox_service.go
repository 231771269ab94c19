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

// vatRatePct is the VAT rate applied to taxable line items, in percent. The
// derived tax amount is stored per line item and later serves as the VAT base
// for withholding.
var vatRatePct = decimal.NewFromInt(15)

// cashBoxService implements the box lifecycle and the transaction gates around
// it. Every gate re-reads the store through the ledger service; no figure is
// cached between the check and the write.
type cashBoxService struct {
	boxRepo    portsrepo.CashBoxRepositoryFacade
	txnRepo    portsrepo.TransactionRepositoryFacade
	ledgerSvc  portssvc.LedgerSvcFacade
	arqueoSvc  portssvc.ArqueoReconciler
	branchAuth portssvc.BranchAuthorizerSvc
	policy     RecordingPolicy
	rules      Rules
}

// NewCashBoxService creates a new CashBoxService. A nil policy accepts every
// recording date.
func NewCashBoxService(
	boxRepo portsrepo.CashBoxRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	arqueoSvc portssvc.ArqueoReconciler,
	branchAuth portssvc.BranchAuthorizerSvc,
	policy RecordingPolicy,
	rules Rules,
) portssvc.CashBoxSvcFacade {
	if policy == nil {
		policy = AllowAlwaysPolicy{}
	}
	return &cashBoxService{
		boxRepo:    boxRepo,
		txnRepo:    txnRepo,
		ledgerSvc:  ledgerSvc,
		arqueoSvc:  arqueoSvc,
		branchAuth: branchAuth,
		policy:     policy,
		rules:      rules,
	}
}

var _ portssvc.CashBoxSvcFacade = (*cashBoxService)(nil)

// GetBox retrieves a box with totals freshly recomputed from its stored
// transaction set.
func (s *cashBoxService) GetBox(ctx context.Context, boxID string, requestingUserID string) (*domain.CashBox, *domain.Totals, error) {
	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if err := s.branchAuth.AuthorizeUserAction(ctx, requestingUserID, box.BranchID, domain.RoleReadOnly); err != nil {
		return nil, nil, err
	}

	totals, err := s.ledgerSvc.GetBoxTotals(ctx, boxID)
	if err != nil {
		return nil, nil, err
	}
	return box, totals, nil
}

// ListBoxes retrieves a paginated listing of a branch's boxes.
func (s *cashBoxService) ListBoxes(ctx context.Context, branchID string, limit int, nextToken *string, requestingUserID string) ([]domain.CashBox, *string, error) {
	if err := s.branchAuth.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleReadOnly); err != nil {
		return nil, nil, err
	}
	boxes, token, err := s.boxRepo.ListCashBoxesByBranch(ctx, branchID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list cash boxes for branch %s: %w", branchID, err)
	}
	return boxes, token, nil
}

// ListTransactions retrieves every transaction of a box, oldest first.
func (s *cashBoxService) ListTransactions(ctx context.Context, boxID string, requestingUserID string) ([]domain.Transaction, error) {
	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if err := s.branchAuth.AuthorizeUserAction(ctx, requestingUserID, box.BranchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	transactions, err := s.txnRepo.FindTransactionsByBoxID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for box %s: %w", boxID, err)
	}
	return transactions, nil
}

// OpenBox creates a box in OPEN state. The submitted denomination count must
// match the initial amount exactly; a mismatch aborts the opening and nothing
// is created.
func (s *cashBoxService) OpenBox(ctx context.Context, req dto.OpenCashBoxRequest, creatorUserID string) (*domain.CashBox, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.branchAuth.AuthorizeUserAction(ctx, creatorUserID, req.BranchID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if req.InitialAmount.IsNegative() {
		return nil, fmt.Errorf("%w: initial amount %s cannot be negative", apperrors.ErrValidation, req.InitialAmount)
	}
	if req.InitialAmount.IsZero() && !s.rules.AllowZeroOpening {
		return nil, fmt.Errorf("%w: opening with a zero initial amount is not allowed", apperrors.ErrBusinessRule)
	}

	allowEmpty := s.rules.AllowZeroOpening && req.InitialAmount.IsZero()
	reconciliation, err := s.arqueoSvc.Reconcile(dto.ToDomainCounts(req.Count), req.InitialAmount, allowEmpty)
	if err != nil {
		return nil, err
	}
	if !reconciliation.Matches() {
		return nil, fmt.Errorf("%w: opening count %s does not match the initial amount %s (difference %s)",
			apperrors.ErrBusinessRule, reconciliation.Counted, reconciliation.Expected, reconciliation.Difference)
	}

	now := time.Now().UTC()
	openingDate := now
	if req.OpeningDate != nil {
		openingDate = req.OpeningDate.UTC()
	}

	box := domain.CashBox{
		BoxID:             uuid.NewString(),
		BranchID:          req.BranchID,
		ResponsibleUserID: creatorUserID,
		CurrencyCode:      req.CurrencyCode,
		Status:            domain.BoxOpen,
		OpeningDate:       openingDate,
		InitialAmount:     moneymath.RoundCents(req.InitialAmount),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	audit := domain.AuditEntry{
		EntryID:     uuid.NewString(),
		BoxID:       &box.BoxID,
		Action:      domain.AuditBoxOpened,
		Description: fmt.Sprintf("box opened with initial amount %s %s", box.InitialAmount, box.CurrencyCode),
		Detail:      CountDetail(domain.CountOpening, reconciliation),
		PerformedBy: creatorUserID,
		PerformedAt: now,
	}

	if err := s.boxRepo.SaveCashBox(ctx, box, audit); err != nil {
		return nil, fmt.Errorf("failed to save cash box: %w", err)
	}

	logger.Info("Cash box opened",
		slog.String("box_id", box.BoxID),
		slog.String("branch_id", box.BranchID),
		slog.String("initial_amount", box.InitialAmount.String()),
	)
	return &box, nil
}

// CanClose reports whether the box may close right now. The reasons collect
// every blocker at once, so the caller sees the complete picture instead of
// fixing one reason per attempt.
func (s *cashBoxService) CanClose(ctx context.Context, boxID string, requestingUserID string) (*dto.CanCloseResponse, error) {
	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if err := s.branchAuth.AuthorizeUserAction(ctx, requestingUserID, box.BranchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	transactions, err := s.txnRepo.FindTransactionsByBoxID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for box %s: %w", boxID, err)
	}
	totals := s.ledgerSvc.ComputeTotals(transactions, *box)

	resp := &dto.CanCloseResponse{
		Allowed:      true,
		Reasons:      []string{},
		ExpectedCash: totals.Cash,
	}
	if !box.IsOpen() {
		resp.Allowed = false
		resp.Reasons = append(resp.Reasons, "box is already closed")
	}
	for i := range transactions {
		if transactions[i].IsPendingLegalization() {
			resp.Allowed = false
			resp.PendingLegalizations = append(resp.PendingLegalizations, transactions[i].TransactionID)
		}
	}
	if len(resp.PendingLegalizations) > 0 {
		resp.Reasons = append(resp.Reasons, fmt.Sprintf("%d unreceipted transactions pending legalization", len(resp.PendingLegalizations)))
	}
	return resp, nil
}

// CloseBox transitions the box to CLOSED. The expected cash is recomputed from
// a fresh read immediately before comparing against the submitted count.
func (s *cashBoxService) CloseBox(ctx context.Context, boxID string, req dto.CloseCashBoxRequest, requestingUserID string) (*domain.CashBox, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if err := s.branchAuth.AuthorizeUserAction(ctx, requestingUserID, box.BranchID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !box.IsOpen() {
		return nil, fmt.Errorf("%w: cash box %s is already closed", apperrors.ErrInvalidState, boxID)
	}

	transactions, err := s.txnRepo.FindTransactionsByBoxID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for box %s: %w", boxID, err)
	}
	pending := 0
	for i := range transactions {
		if transactions[i].IsPendingLegalization() {
			pending++
		}
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d unreceipted transactions are pending legalization", apperrors.ErrBusinessRule, pending)
	}

	totals := s.ledgerSvc.ComputeTotals(transactions, *box)

	// A drawer expected to hold nothing may legitimately submit no bills.
	reconciliation, err := s.arqueoSvc.Reconcile(dto.ToDomainCounts(req.Count), totals.Cash, totals.Cash.IsZero())
	if err != nil {
		return nil, err
	}
	if !reconciliation.Matches() {
		return nil, fmt.Errorf("%w: closing count %s does not match the expected cash %s (difference %s)",
			apperrors.ErrBusinessRule, reconciliation.Counted, reconciliation.Expected, reconciliation.Difference)
	}

	now := time.Now().UTC()
	repositionAmount := totals.Net
	box.Status = domain.BoxClosed
	box.ClosingDate = &now
	box.RepositionAmount = &repositionAmount
	box.RepositionCheckNumber = &req.CheckNumber
	box.RepositionBank = &req.Bank
	box.LastUpdatedAt = now
	box.LastUpdatedBy = requestingUserID

	audit := domain.AuditEntry{
		EntryID:     uuid.NewString(),
		BoxID:       &box.BoxID,
		Action:      domain.AuditBoxClosed,
		Description: fmt.Sprintf("box closed, verified cash %s, reposition %s via check %s (%s)", reconciliation.Counted, repositionAmount, req.CheckNumber, req.Bank),
		Detail:      CountDetail(domain.CountClosing, reconciliation),
		PerformedBy: requestingUserID,
		PerformedAt: now,
	}

	if err := s.boxRepo.CloseCashBox(ctx, *box, audit); err != nil {
		return nil, fmt.Errorf("failed to close cash box %s: %w", boxID, err)
	}

	logger.Info("Cash box closed",
		slog.String("box_id", boxID),
		slog.String("reposition_amount", repositionAmount.String()),
	)
	return box, nil
}

// RecordTransaction validates and persists a new money movement against an
// open box.
func (s *cashBoxService) RecordTransaction(ctx context.Context, boxID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

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
	if err := s.policy.AllowRecording(req.TransactionDate); err != nil {
		return nil, err
	}

	docType := domain.DocumentType(req.DocumentType)
	total, lineItems, err := buildLineItems(docType, req.Total, req.LineItems)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledgerSvc.GetBoxTotals(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCashGates(box, totals.Cash, total, logger); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		BoxID:           boxID,
		TransactionDate: req.TransactionDate,
		DocumentType:    docType,
		DocumentNumber:  req.DocumentNumber,
		SupplierName:    req.SupplierName,
		Total:           total,
		LineItems:       lineItems,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for i := range txn.LineItems {
		txn.LineItems[i].TransactionID = txn.TransactionID
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	logger.Info("Transaction recorded",
		slog.String("box_id", boxID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("document_type", string(txn.DocumentType)),
		slog.String("total", txn.Total.String()),
	)
	return &txn, nil
}

// UpdateTransaction edits a transaction, replacing its line item set. The cash
// gates re-run with the original amount credited back to the available figure,
// so shrinking a transaction always passes and growing one is checked against
// the real headroom.
func (s *cashBoxService) UpdateTransaction(ctx context.Context, boxID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

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

	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if existing.BoxID != boxID {
		return nil, fmt.Errorf("%w: transaction %s does not belong to box %s", apperrors.ErrNotFound, transactionID, boxID)
	}
	if existing.HasWithholding() {
		return nil, fmt.Errorf("%w: transaction %s has a withholding attached; delete it before editing", apperrors.ErrInvalidState, transactionID)
	}
	if existing.IsChild() {
		return nil, fmt.Errorf("%w: transaction %s was folded into a legalization and cannot be edited", apperrors.ErrInvalidState, transactionID)
	}
	if existing.IsJustification {
		return nil, fmt.Errorf("%w: justification invoice %s cannot be edited", apperrors.ErrInvalidState, transactionID)
	}
	if err := s.policy.AllowRecording(req.TransactionDate); err != nil {
		return nil, err
	}

	docType := domain.DocumentType(req.DocumentType)
	total, lineItems, err := buildLineItems(docType, req.Total, req.LineItems)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledgerSvc.GetBoxTotals(ctx, boxID)
	if err != nil {
		return nil, err
	}
	available := totals.Cash.Add(existing.Total)
	if err := s.checkCashGates(box, available, total, logger); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := *existing
	updated.TransactionDate = req.TransactionDate
	updated.DocumentType = docType
	updated.DocumentNumber = req.DocumentNumber
	updated.SupplierName = req.SupplierName
	updated.Total = total
	updated.LineItems = lineItems
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID
	for i := range updated.LineItems {
		updated.LineItems[i].TransactionID = updated.TransactionID
	}

	if err := s.txnRepo.UpdateTransaction(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}

	logger.Info("Transaction updated",
		slog.String("box_id", boxID),
		slog.String("transaction_id", transactionID),
		slog.String("total", updated.Total.String()),
	)
	return &updated, nil
}

// DeleteTransaction removes a transaction from an open box.
func (s *cashBoxService) DeleteTransaction(ctx context.Context, boxID string, transactionID string, userID string) error {
	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if err := s.branchAuth.AuthorizeUserAction(ctx, userID, box.BranchID, domain.RoleMember); err != nil {
		return err
	}
	if !box.IsOpen() {
		return fmt.Errorf("%w: cash box %s is closed", apperrors.ErrInvalidState, boxID)
	}

	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if existing.BoxID != boxID {
		return fmt.Errorf("%w: transaction %s does not belong to box %s", apperrors.ErrNotFound, transactionID, boxID)
	}
	if existing.HasWithholding() {
		return fmt.Errorf("%w: transaction %s has a withholding attached; delete it first", apperrors.ErrInvalidState, transactionID)
	}
	if existing.IsChild() {
		return fmt.Errorf("%w: transaction %s was folded into a legalization and cannot be deleted", apperrors.ErrInvalidState, transactionID)
	}
	if existing.IsJustification {
		return fmt.Errorf("%w: justification invoice %s still covers legalized transactions", apperrors.ErrInvalidState, transactionID)
	}

	if err := s.txnRepo.DeleteTransaction(ctx, transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return nil
}

// checkCashGates rejects a movement that the drawer cannot cover or that would
// eat into the reserve. The error carries the concrete figures so the caller
// can show them instead of a bare refusal.
func (s *cashBoxService) checkCashGates(box *domain.CashBox, available decimal.Decimal, amount decimal.Decimal, logger *slog.Logger) error {
	if amount.GreaterThan(available) {
		return fmt.Errorf("%w: amount %s exceeds the available cash %s",
			apperrors.ErrBusinessRule, amount, available)
	}

	remaining := available.Sub(amount)
	reserve := moneymath.RoundCents(moneymath.ApplyPercentage(box.InitialAmount, s.rules.ReserveThresholdPct, 4))
	if remaining.LessThan(reserve) {
		return fmt.Errorf("%w: amount %s would leave %s in the drawer, below the reserve of %s (%s%% of %s)",
			apperrors.ErrBusinessRule, amount, remaining, reserve, s.rules.ReserveThresholdPct, box.InitialAmount)
	}

	alert := moneymath.RoundCents(moneymath.ApplyPercentage(box.InitialAmount, s.rules.AlertThresholdPct, 4))
	if remaining.LessThan(alert) {
		logger.Warn("Cash box balance is low",
			slog.String("box_id", box.BoxID),
			slog.String("remaining", remaining.String()),
			slog.String("alert_threshold", alert.String()),
		)
	}
	return nil
}

// buildLineItems validates the submitted line items against the declared total
// and derives the per-line tax amounts.
func buildLineItems(docType domain.DocumentType, total decimal.Decimal, reqs []dto.LineItemRequest) (decimal.Decimal, []domain.LineItem, error) {
	if !domain.ValidDocumentType(docType) {
		return decimal.Zero, nil, fmt.Errorf("%w: unknown document type %q", apperrors.ErrValidation, docType)
	}
	if !total.IsPositive() {
		return decimal.Zero, nil, fmt.Errorf("%w: total %s must be positive", apperrors.ErrValidation, total)
	}
	if len(reqs) == 0 {
		return decimal.Zero, nil, fmt.Errorf("%w: at least one line item is required", apperrors.ErrValidation)
	}

	total = moneymath.RoundCents(total)
	sum := decimal.Zero
	items := make([]domain.LineItem, 0, len(reqs))
	for _, r := range reqs {
		if !r.Amount.IsPositive() {
			return decimal.Zero, nil, fmt.Errorf("%w: line item %q amount %s must be positive", apperrors.ErrValidation, r.Name, r.Amount)
		}
		sum = sum.Add(r.Amount)

		taxAmount := decimal.Zero
		if r.TaxApplicable {
			taxAmount = moneymath.RoundCents(moneymath.ApplyPercentage(r.Amount, vatRatePct, 4))
		}
		items = append(items, domain.LineItem{
			LineItemID:    uuid.NewString(),
			Name:          r.Name,
			Amount:        r.Amount,
			TaxApplicable: r.TaxApplicable,
			TaxAmount:     taxAmount,
		})
	}

	if !moneymath.RoundCents(sum).Equal(total) {
		return decimal.Zero, nil, fmt.Errorf("%w: line items sum to %s but the declared total is %s",
			apperrors.ErrValidation, moneymath.RoundCents(sum), total)
	}
	return total, items, nil
}
