package services

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/dto"
)

// CashBoxReaderSvc defines read operations for cash boxes.
type CashBoxReaderSvc interface {
	// GetBox retrieves a box with totals freshly recomputed from its stored
	// transaction set.
	GetBox(ctx context.Context, boxID string, requestingUserID string) (*domain.CashBox, *domain.Totals, error)

	// ListBoxes retrieves a paginated listing of a branch's boxes.
	ListBoxes(ctx context.Context, branchID string, limit int, nextToken *string, requestingUserID string) ([]domain.CashBox, *string, error)

	// ListTransactions retrieves every transaction of a box.
	ListTransactions(ctx context.Context, boxID string, requestingUserID string) ([]domain.Transaction, error)
}

// CashBoxLifecycleSvc governs the OPEN -> CLOSED state machine.
type CashBoxLifecycleSvc interface {
	// OpenBox creates a box in OPEN state. The submitted count must be
	// non-empty and match the initial amount exactly; otherwise
	// apperrors.ErrBusinessRule and nothing is created.
	OpenBox(ctx context.Context, req dto.OpenCashBoxRequest, creatorUserID string) (*domain.CashBox, error)

	// CanClose reports whether the box may close right now and, when it may
	// not, the blocking reasons and pending legalization ids.
	CanClose(ctx context.Context, boxID string, requestingUserID string) (*dto.CanCloseResponse, error)

	// CloseBox transitions the box to CLOSED. Requires an OPEN box, a count
	// matching the expected cash recomputed from a fresh read, and no pending
	// legalizations. On success the closing fields and audit entry are
	// persisted atomically.
	CloseBox(ctx context.Context, boxID string, req dto.CloseCashBoxRequest, requestingUserID string) (*domain.CashBox, error)
}

// CashBoxTransactionSvc records money movements against an open box.
type CashBoxTransactionSvc interface {
	// RecordTransaction validates and persists a new transaction. Fails with
	// apperrors.ErrInvalidState on a CLOSED box and apperrors.ErrBusinessRule
	// when the amount exceeds the available cash, breaches the reserve
	// threshold, or the recording policy blocks the date.
	RecordTransaction(ctx context.Context, boxID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// UpdateTransaction edits a transaction, re-running the same gates with the
	// original amount credited back to the available figure. Blocked while a
	// withholding is attached.
	UpdateTransaction(ctx context.Context, boxID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction from an open box.
	DeleteTransaction(ctx context.Context, boxID string, transactionID string, userID string) error
}

// CashBoxSvcFacade combines all cash-box service interfaces.
type CashBoxSvcFacade interface {
	CashBoxReaderSvc
	CashBoxLifecycleSvc
	CashBoxTransactionSvc
}
