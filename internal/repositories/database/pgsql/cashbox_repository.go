package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	"github.com/quipufin/cajachica_backend/internal/models"
	"github.com/quipufin/cajachica_backend/internal/utils/mapping"
	"github.com/quipufin/cajachica_backend/internal/utils/pagination"
)

type PgxCashBoxRepository struct {
	BaseRepository
}

// newPgxCashBoxRepository creates a new repository for cash box data.
func newPgxCashBoxRepository(pool *pgxpool.Pool) portsrepo.CashBoxRepositoryWithTx {
	return &PgxCashBoxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CashBoxRepositoryWithTx = (*PgxCashBoxRepository)(nil)

const cashBoxColumns = `
	box_id, branch_id, responsible_user_id, currency_code, status,
	opening_date, closing_date, initial_amount,
	reposition_amount, reposition_check_number, reposition_bank,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanCashBox(row pgx.Row) (*models.CashBox, error) {
	var m models.CashBox
	err := row.Scan(
		&m.BoxID,
		&m.BranchID,
		&m.ResponsibleUserID,
		&m.CurrencyCode,
		&m.Status,
		&m.OpeningDate,
		&m.ClosingDate,
		&m.InitialAmount,
		&m.RepositionAmount,
		&m.RepositionCheckNumber,
		&m.RepositionBank,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindCashBoxByID retrieves a single cash box by its ID.
func (r *PgxCashBoxRepository) FindCashBoxByID(ctx context.Context, boxID string) (*domain.CashBox, error) {
	query := `SELECT ` + cashBoxColumns + ` FROM cash_boxes WHERE box_id = $1;`
	m, err := scanCashBox(r.Pool.QueryRow(ctx, query, boxID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find cash box "+boxID, err)
	}
	box := mapping.ToDomainCashBox(*m)
	return &box, nil
}

// ListCashBoxesByBranch retrieves a paginated list of a branch's boxes, most
// recently opened first, using token-based pagination.
func (r *PgxCashBoxRepository) ListCashBoxesByBranch(ctx context.Context, branchID string, limit int, nextToken *string) ([]domain.CashBox, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + cashBoxColumns + ` FROM cash_boxes WHERE branch_id = $1`
	orderByClause := `ORDER BY opening_date DESC, created_at DESC`

	args := []interface{}{branchID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastOpeningDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (opening_date, created_at) < ($2, $3)`
		args = append(args, lastOpeningDate, lastCreatedAt)
	}
	query += ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query cash boxes for branch "+branchID, err)
	}
	defer rows.Close()

	modelBoxes := make([]models.CashBox, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanCashBox(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan cash box row for branch "+branchID, scanErr)
		}
		modelBoxes = append(modelBoxes, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating cash box rows for branch "+branchID, err)
	}

	var nextTokenVal *string
	results := modelBoxes
	if len(modelBoxes) > limit {
		lastBox := modelBoxes[limit-1]
		newToken := pagination.EncodeToken(lastBox.OpeningDate, lastBox.CreatedAt)
		nextTokenVal = &newToken
		results = modelBoxes[:limit]
	}

	domainBoxes := make([]domain.CashBox, len(results))
	for i, m := range results {
		domainBoxes[i] = mapping.ToDomainCashBox(m)
	}
	return domainBoxes, nextTokenVal, nil
}

// SaveCashBox inserts a newly opened box and its opening audit entry in one DB
// transaction.
func (r *PgxCashBoxRepository) SaveCashBox(ctx context.Context, box domain.CashBox, openingAudit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelCashBox(box)
	query := `
		INSERT INTO cash_boxes (
			box_id, branch_id, responsible_user_id, currency_code, status,
			opening_date, initial_amount,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		m.BoxID,
		m.BranchID,
		m.ResponsibleUserID,
		m.CurrencyCode,
		m.Status,
		m.OpeningDate,
		m.InitialAmount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert cash box "+m.BoxID, err)
	}

	if err := insertAuditEntryTx(ctx, tx, openingAudit); err != nil {
		return apperrors.NewAppError(500, "failed to insert opening audit for box "+m.BoxID, err)
	}

	return r.Commit(ctx, tx)
}

// CloseCashBox persists the closing fields and the closing audit entry in one
// DB transaction. Rows already CLOSED are not touched.
func (r *PgxCashBoxRepository) CloseCashBox(ctx context.Context, box domain.CashBox, closingAudit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelCashBox(box)
	query := `
		UPDATE cash_boxes
		SET status = $2,
		    closing_date = $3,
		    reposition_amount = $4,
		    reposition_check_number = $5,
		    reposition_bank = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE box_id = $1 AND status = 'OPEN';
	`
	tag, err := tx.Exec(ctx, query,
		m.BoxID,
		m.Status,
		m.ClosingDate,
		m.RepositionAmount,
		m.RepositionCheckNumber,
		m.RepositionBank,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to close cash box "+m.BoxID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidState
	}

	if err := insertAuditEntryTx(ctx, tx, closingAudit); err != nil {
		return apperrors.NewAppError(500, "failed to insert closing audit for box "+m.BoxID, err)
	}

	return r.Commit(ctx, tx)
}
