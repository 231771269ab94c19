package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	cashBoxRepo := newPgxCashBoxRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	withholdingRepo := newPgxWithholdingRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)
	branchRepo := newPgxBranchRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CashBoxRepo:     cashBoxRepo,
		TransactionRepo: transactionRepo,
		WithholdingRepo: withholdingRepo,
		AuditRepo:       auditRepo,
		BranchRepo:      branchRepo,
		UserRepo:        userRepo,
	}
}
