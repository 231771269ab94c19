package services

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/dto"
)

// PendingToggle is a staged two-phase change: Commit persists it, Rollback
// discards it. Abandoning a pending toggle without committing has no side
// effects; any caller (reactive UI or batch script) can drive the phases.
type PendingToggle interface {
	// Previous returns the value the flag held before the staged change.
	Previous() bool
	// Staged returns the value the flag will hold after Commit.
	Staged() bool
	Commit(ctx context.Context) error
	Rollback()
}

// WithholdingCalculator computes per-item and aggregate withholding amounts
// from user-supplied percentages. Pure; persistence is separate.
type WithholdingCalculator interface {
	// ComputeWithholding derives source/VAT amounts for each requested item at
	// 4-decimal precision and the cent-rounded aggregates. Every item must
	// reference an existing line item of lineItems and percentages must lie in
	// [0, 100]; violations return apperrors.ErrValidation.
	ComputeWithholding(lineItems []domain.LineItem, items []dto.WithholdingItemRequest) (*domain.Withholding, error)
}

// WithholdingWriterSvc defines persistence operations for withholdings.
type WithholdingWriterSvc interface {
	// UpsertWithholding computes and persists the withholding of a transaction,
	// replacing any existing item set.
	UpsertWithholding(ctx context.Context, boxID string, transactionID string, req dto.UpsertWithholdingRequest, userID string) (*domain.Withholding, error)

	// DeleteWithholding removes the withholding of a transaction, unlocking its
	// line items for editing.
	DeleteWithholding(ctx context.Context, boxID string, transactionID string, userID string) error

	// StageCollectedToggle stages a change of the collected flag and returns the
	// pending operation for the caller to commit or roll back.
	StageCollectedToggle(ctx context.Context, boxID string, transactionID string, collected bool, userID string) (PendingToggle, error)
}

// WithholdingSvcFacade combines all withholding service interfaces.
type WithholdingSvcFacade interface {
	WithholdingCalculator
	WithholdingWriterSvc
}
