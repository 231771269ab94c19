package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	"github.com/quipufin/cajachica_backend/internal/utils/mapping"
)

type PgxWithholdingRepository struct {
	BaseRepository
}

// newPgxWithholdingRepository creates a new repository for withholding writes.
// Reads go through the transaction repository, which loads withholdings nested
// under their transactions.
func newPgxWithholdingRepository(pool *pgxpool.Pool) portsrepo.WithholdingRepositoryFacade {
	return &PgxWithholdingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WithholdingRepositoryFacade = (*PgxWithholdingRepository)(nil)

// UpsertWithholding writes the header keyed by transaction id and replaces the
// full item set in one DB transaction.
func (r *PgxWithholdingRepository) UpsertWithholding(ctx context.Context, withholding domain.Withholding) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelWithholding(withholding)
	headerQuery := `
		INSERT INTO withholdings (
			withholding_id, transaction_id, withholding_date, withholding_number,
			total_source, total_vat, total_withheld, collected,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (transaction_id) DO UPDATE SET
			withholding_date = EXCLUDED.withholding_date,
			withholding_number = EXCLUDED.withholding_number,
			total_source = EXCLUDED.total_source,
			total_vat = EXCLUDED.total_vat,
			total_withheld = EXCLUDED.total_withheld,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.WithholdingID,
		m.TransactionID,
		m.Date,
		m.Number,
		m.TotalSource,
		m.TotalVAT,
		m.TotalWithheld,
		m.Collected,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to upsert withholding for transaction "+m.TransactionID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM withholding_items WHERE withholding_id = $1;`, m.WithholdingID); err != nil {
		return apperrors.NewAppError(500, "failed to delete items of withholding "+m.WithholdingID, err)
	}

	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO withholding_items (
			withholding_item_id, withholding_id, line_item_id, item_type,
			source_pct, vat_pct, source_amount, vat_amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, item := range withholding.Items {
		mi := mapping.ToModelWithholdingItem(item)
		batch.Queue(itemQuery,
			mi.WithholdingItemID,
			mi.WithholdingID,
			mi.LineItemID,
			mi.Type,
			mi.SourcePct,
			mi.VATPct,
			mi.SourceAmount,
			mi.VATAmount,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert items of withholding "+m.WithholdingID, err)
	}

	return r.Commit(ctx, tx)
}

// DeleteWithholding removes a withholding and its items, unlocking the parent
// transaction for editing.
func (r *PgxWithholdingRepository) DeleteWithholding(ctx context.Context, withholdingID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM withholding_items WHERE withholding_id = $1;`, withholdingID); err != nil {
		return apperrors.NewAppError(500, "failed to delete items of withholding "+withholdingID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM withholdings WHERE withholding_id = $1;`, withholdingID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete withholding "+withholdingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// SetCollected flips the collected flag on a withholding.
func (r *PgxWithholdingRepository) SetCollected(ctx context.Context, withholdingID string, collected bool, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE withholdings
		SET collected = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE withholding_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, withholdingID, collected, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set collected on withholding "+withholdingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
