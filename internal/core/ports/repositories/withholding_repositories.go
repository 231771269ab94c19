package repositories

import (
	"context"
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// WithholdingWriter defines write operations for withholding data
type WithholdingWriter interface {
	// UpsertWithholding persists the header keyed by transaction id and replaces
	// all of its items (delete existing, insert recomputed set) atomically.
	UpsertWithholding(ctx context.Context, withholding domain.Withholding) error

	// DeleteWithholding removes a withholding and its items, unlocking the
	// parent transaction for editing.
	DeleteWithholding(ctx context.Context, withholdingID string) error

	// SetCollected flips the collected flag on a withholding.
	SetCollected(ctx context.Context, withholdingID string, collected bool, updatedBy string, updatedAt time.Time) error
}

// WithholdingRepositoryFacade combines all withholding repository interfaces
type WithholdingRepositoryFacade interface {
	WithholdingWriter
}
