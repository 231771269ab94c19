package repositories

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves one transaction with its line items and
	// withholding (if any).
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByBoxID retrieves every transaction of a box, nested line
	// items and withholdings included, oldest first. Totals are always computed
	// from this full set.
	FindTransactionsByBoxID(ctx context.Context, boxID string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// SaveTransaction persists a new transaction and its line items atomically.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction updates a transaction and replaces its line items
	// atomically.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes a transaction and its line items.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// ApplyLegalization inserts the plan's justifying invoice (with its copied
	// line items), re-parents every child, and appends the audit entry, all in
	// one store transaction. A mid-sequence failure leaves the ledger untouched.
	ApplyLegalization(ctx context.Context, plan domain.LegalizationPlan, audit domain.AuditEntry) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx combines the facade with transaction management
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
