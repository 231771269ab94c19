package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	CashBoxRepo     CashBoxRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	WithholdingRepo WithholdingRepositoryFacade
	AuditRepo       AuditRepositoryFacade
	BranchRepo      BranchRepositoryFacade
	UserRepo        UserRepositoryFacade
}
