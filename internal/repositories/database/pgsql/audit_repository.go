package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	"github.com/quipufin/cajachica_backend/internal/utils/mapping"
)

type PgxAuditRepository struct {
	db *pgxpool.Pool
}

func newPgxAuditRepository(db *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{db: db}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

const insertAuditEntryQuery = `
	INSERT INTO audit_entries (entry_id, box_id, action, description, detail, performed_by, performed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

// AppendAuditEntry writes one bitácora record. Detail goes into a JSONB column;
// pgx marshals the map directly.
func (r *PgxAuditRepository) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)
	_, err := r.db.Exec(ctx, insertAuditEntryQuery,
		m.EntryID,
		m.BoxID,
		m.Action,
		m.Description,
		m.Detail,
		m.PerformedBy,
		m.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry %s: %w", m.EntryID, err)
	}
	return nil
}

// insertAuditEntryTx writes an audit entry inside an existing transaction so
// repositories can make the entry part of the same atomic write as the change
// it records.
func insertAuditEntryTx(ctx context.Context, tx pgx.Tx, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)
	_, err := tx.Exec(ctx, insertAuditEntryQuery,
		m.EntryID,
		m.BoxID,
		m.Action,
		m.Description,
		m.Detail,
		m.PerformedBy,
		m.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", m.EntryID, err)
	}
	return nil
}
