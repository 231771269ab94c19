package repositories

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// CashBoxReader defines read operations for cash box data
type CashBoxReader interface {
	// FindCashBoxByID retrieves a specific cash box by its ID.
	FindCashBoxByID(ctx context.Context, boxID string) (*domain.CashBox, error)

	// ListCashBoxesByBranch retrieves a paginated list of boxes for a branch,
	// most recently opened first.
	ListCashBoxesByBranch(ctx context.Context, branchID string, limit int, nextToken *string) ([]domain.CashBox, *string, error)
}

// CashBoxWriter defines write operations for cash box data
type CashBoxWriter interface {
	// SaveCashBox persists a newly opened cash box together with its opening
	// audit entry, atomically.
	SaveCashBox(ctx context.Context, box domain.CashBox, openingAudit domain.AuditEntry) error

	// CloseCashBox persists the closing fields (status, closing date, reposition)
	// together with the closing audit entry, atomically.
	CloseCashBox(ctx context.Context, box domain.CashBox, closingAudit domain.AuditEntry) error
}

// CashBoxRepositoryFacade combines all cash-box repository interfaces
type CashBoxRepositoryFacade interface {
	CashBoxReader
	CashBoxWriter
}

// CashBoxRepositoryWithTx combines the facade with transaction management
type CashBoxRepositoryWithTx interface {
	CashBoxRepositoryFacade
	TransactionManager
}
