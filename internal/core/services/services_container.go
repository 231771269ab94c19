package services

import (
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized
// dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Branch service first since every cash-box operation authorizes through it.
	container.User = NewUserService(repos.UserRepo)
	container.Branch = NewBranchService(repos.BranchRepo, repos.UserRepo)
	branchAuthorizer := container.Branch.(portssvc.BranchAuthorizerSvc)

	container.Ledger = NewLedgerService(repos.CashBoxRepo, repos.TransactionRepo)
	container.Arqueo = NewArqueoService(nil, repos.CashBoxRepo, container.Ledger, repos.AuditRepo)
	container.Withholding = NewWithholdingService(repos.CashBoxRepo, repos.TransactionRepo, repos.WithholdingRepo, repos.AuditRepo)

	rules := Rules{
		ReserveThresholdPct: cfg.ReserveThresholdPct,
		AlertThresholdPct:   cfg.AlertThresholdPct,
		AllowZeroOpening:    cfg.AllowZeroOpening,
	}
	var policy RecordingPolicy = AllowAlwaysPolicy{}
	if cfg.CloseDayThreshold > 0 {
		policy = DayOfMonthRecordingPolicy{Threshold: cfg.CloseDayThreshold}
	}
	container.CashBox = NewCashBoxService(
		repos.CashBoxRepo,
		repos.TransactionRepo,
		container.Ledger,
		container.Arqueo,
		branchAuthorizer,
		policy,
		rules,
	)
	container.Legalization = NewLegalizationService(repos.CashBoxRepo, repos.TransactionRepo, branchAuthorizer)

	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
