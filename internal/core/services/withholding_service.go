package services

import (
	"context"
	"errors"
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

var (
	ErrWithholdingOnDeposit  = errors.New("a deposit cannot carry a withholding")
	ErrNoWithholding         = errors.New("transaction has no withholding")
	ErrToggleAlreadyResolved = errors.New("pending toggle already committed or rolled back")
)

// withholdingPrecision is the intermediate precision each line-level product is
// rounded to before the totals accumulate.
const withholdingPrecision = 4

// withholdingService computes and persists tax withholdings.
type withholdingService struct {
	boxRepo         portsrepo.CashBoxReader
	txnRepo         portsrepo.TransactionReader
	withholdingRepo portsrepo.WithholdingRepositoryFacade
	auditRepo       portsrepo.AuditRepositoryFacade
}

// NewWithholdingService creates a new WithholdingService.
func NewWithholdingService(boxRepo portsrepo.CashBoxReader, txnRepo portsrepo.TransactionReader, withholdingRepo portsrepo.WithholdingRepositoryFacade, auditRepo portsrepo.AuditRepositoryFacade) portssvc.WithholdingSvcFacade {
	return &withholdingService{
		boxRepo:         boxRepo,
		txnRepo:         txnRepo,
		withholdingRepo: withholdingRepo,
		auditRepo:       auditRepo,
	}
}

var _ portssvc.WithholdingSvcFacade = (*withholdingService)(nil)

// ComputeWithholding derives the withholding amounts for the requested items.
// Each line product is rounded to 4 decimals before accumulation and the three
// totals to cents afterwards; see moneymath for why the order matters.
func (s *withholdingService) ComputeWithholding(lineItems []domain.LineItem, items []dto.WithholdingItemRequest) (*domain.Withholding, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: withholding requires at least one item", apperrors.ErrValidation)
	}

	byID := make(map[string]domain.LineItem, len(lineItems))
	for _, li := range lineItems {
		byID[li.LineItemID] = li
	}

	usedLineItems := make(map[string]bool, len(items))
	domainItems := make([]domain.WithholdingItem, 0, len(items))
	totalSource := decimal.Zero
	totalVAT := decimal.Zero

	for _, item := range items {
		li, ok := byID[item.LineItemID]
		if !ok {
			return nil, fmt.Errorf("%w: line item %s does not belong to the transaction", apperrors.ErrValidation, item.LineItemID)
		}
		if usedLineItems[item.LineItemID] {
			return nil, fmt.Errorf("%w: line item %s referenced more than once", apperrors.ErrValidation, item.LineItemID)
		}
		usedLineItems[item.LineItemID] = true

		itemType := domain.WithholdingItemType(item.Type)
		if !domain.ValidWithholdingItemType(itemType) {
			return nil, fmt.Errorf("%w: unknown withholding item type %q", apperrors.ErrValidation, item.Type)
		}
		if !moneymath.IsValidPercentage(item.SourcePct) {
			return nil, fmt.Errorf("%w: source percentage %s outside [0, 100]", apperrors.ErrValidation, item.SourcePct)
		}
		if !moneymath.IsValidPercentage(item.VATPct) {
			return nil, fmt.Errorf("%w: VAT percentage %s outside [0, 100]", apperrors.ErrValidation, item.VATPct)
		}

		sourceAmount := moneymath.ApplyPercentage(li.Amount, item.SourcePct, withholdingPrecision)
		vatAmount := moneymath.ApplyPercentage(li.TaxAmount, item.VATPct, withholdingPrecision)
		totalSource = totalSource.Add(sourceAmount)
		totalVAT = totalVAT.Add(vatAmount)

		domainItems = append(domainItems, domain.WithholdingItem{
			LineItemID:   item.LineItemID,
			Type:         itemType,
			SourcePct:    item.SourcePct,
			VATPct:       item.VATPct,
			SourceAmount: sourceAmount,
			VATAmount:    vatAmount,
		})
	}

	totalSource = moneymath.RoundCents(totalSource)
	totalVAT = moneymath.RoundCents(totalVAT)

	return &domain.Withholding{
		TotalSource:   totalSource,
		TotalVAT:      totalVAT,
		TotalWithheld: moneymath.RoundCents(totalSource.Add(totalVAT)),
		Items:         domainItems,
	}, nil
}

// UpsertWithholding computes and persists the withholding of a transaction.
// Items are replaced wholesale; the store applies the delete+insert as one
// transaction.
func (s *withholdingService) UpsertWithholding(ctx context.Context, boxID string, transactionID string, req dto.UpsertWithholdingRequest, userID string) (*domain.Withholding, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.mutableTransaction(ctx, boxID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.IsDeposit() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrWithholdingOnDeposit)
	}

	withholding, err := s.ComputeWithholding(txn.LineItems, req.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	withholding.TransactionID = transactionID
	withholding.Date = req.Date
	withholding.Number = req.Number
	if txn.Withholding != nil {
		withholding.WithholdingID = txn.Withholding.WithholdingID
		withholding.Collected = txn.Withholding.Collected
		withholding.CreatedAt = txn.Withholding.CreatedAt
		withholding.CreatedBy = txn.Withholding.CreatedBy
	} else {
		withholding.WithholdingID = uuid.NewString()
		withholding.CreatedAt = now
		withholding.CreatedBy = userID
	}
	withholding.LastUpdatedAt = now
	withholding.LastUpdatedBy = userID
	for i := range withholding.Items {
		withholding.Items[i].WithholdingItemID = uuid.NewString()
		withholding.Items[i].WithholdingID = withholding.WithholdingID
	}

	if err := s.withholdingRepo.UpsertWithholding(ctx, *withholding); err != nil {
		return nil, fmt.Errorf("failed to upsert withholding for transaction %s: %w", transactionID, err)
	}

	s.appendAudit(ctx, boxID, userID, fmt.Sprintf("withholding %s upserted on transaction %s, total withheld %s", withholding.Number, transactionID, withholding.TotalWithheld))

	logger.Info("Withholding upserted",
		slog.String("transaction_id", transactionID),
		slog.String("total_withheld", withholding.TotalWithheld.String()),
	)
	return withholding, nil
}

// DeleteWithholding removes the withholding of a transaction, unlocking its
// line items for editing.
func (s *withholdingService) DeleteWithholding(ctx context.Context, boxID string, transactionID string, userID string) error {
	txn, err := s.mutableTransaction(ctx, boxID, transactionID)
	if err != nil {
		return err
	}
	if txn.Withholding == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, ErrNoWithholding)
	}

	if err := s.withholdingRepo.DeleteWithholding(ctx, txn.Withholding.WithholdingID); err != nil {
		return fmt.Errorf("failed to delete withholding %s: %w", txn.Withholding.WithholdingID, err)
	}

	s.appendAudit(ctx, boxID, userID, fmt.Sprintf("withholding %s deleted from transaction %s", txn.Withholding.Number, transactionID))
	return nil
}

// StageCollectedToggle stages a collected-flag change without writing anything.
// The returned PendingToggle persists the change on Commit and is inert on
// Rollback, so abandoning it has no side effects.
func (s *withholdingService) StageCollectedToggle(ctx context.Context, boxID string, transactionID string, collected bool, userID string) (portssvc.PendingToggle, error) {
	txn, err := s.mutableTransaction(ctx, boxID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Withholding == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, ErrNoWithholding)
	}

	return &pendingCollectedToggle{
		repo:          s.withholdingRepo,
		withholdingID: txn.Withholding.WithholdingID,
		previous:      txn.Withholding.Collected,
		staged:        collected,
		userID:        userID,
	}, nil
}

// mutableTransaction loads a transaction and verifies it belongs to the box and
// that the box still accepts mutations.
func (s *withholdingService) mutableTransaction(ctx context.Context, boxID string, transactionID string) (*domain.Transaction, error) {
	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}
	if !box.IsOpen() {
		return nil, fmt.Errorf("%w: cash box %s is closed", apperrors.ErrInvalidState, boxID)
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if txn.BoxID != boxID {
		return nil, fmt.Errorf("%w: transaction %s does not belong to box %s", apperrors.ErrNotFound, transactionID, boxID)
	}
	// A legalized child is represented by its justifying parent in the ledger
	// projection, so a withholding attached here would never be counted.
	if txn.IsChild() {
		return nil, fmt.Errorf("%w: transaction %s was folded into a legalization", apperrors.ErrInvalidState, transactionID)
	}
	return txn, nil
}

func (s *withholdingService) appendAudit(ctx context.Context, boxID string, userID string, description string) {
	entry := domain.AuditEntry{
		EntryID:     uuid.NewString(),
		BoxID:       &boxID,
		Action:      domain.AuditWithholdingChanged,
		Description: description,
		PerformedBy: userID,
		PerformedAt: time.Now().UTC(),
	}
	if err := s.auditRepo.AppendAuditEntry(ctx, entry); err != nil {
		// The bitácora is best-effort for withholding changes; the financial
		// write already succeeded.
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to append withholding audit entry", slog.String("error", err.Error()))
	}
}

// pendingCollectedToggle is the staged phase of the collected-flag toggle.
type pendingCollectedToggle struct {
	repo          portsrepo.WithholdingRepositoryFacade
	withholdingID string
	previous      bool
	staged        bool
	userID        string
	resolved      bool
}

func (p *pendingCollectedToggle) Previous() bool { return p.previous }
func (p *pendingCollectedToggle) Staged() bool   { return p.staged }

func (p *pendingCollectedToggle) Commit(ctx context.Context) error {
	if p.resolved {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrToggleAlreadyResolved)
	}
	p.resolved = true
	if p.staged == p.previous {
		return nil
	}
	return p.repo.SetCollected(ctx, p.withholdingID, p.staged, p.userID, time.Now().UTC())
}

func (p *pendingCollectedToggle) Rollback() {
	p.resolved = true
}
