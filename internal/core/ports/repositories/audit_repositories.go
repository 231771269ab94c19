package repositories

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// AuditAppender defines the write-only, append-only bitácora contract. No core
// component reads these entries back.
type AuditAppender interface {
	AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}

// AuditRepositoryFacade combines all audit repository interfaces
type AuditRepositoryFacade interface {
	AuditAppender
}
