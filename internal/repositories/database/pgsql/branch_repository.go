package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	"github.com/quipufin/cajachica_backend/internal/models"
	"github.com/quipufin/cajachica_backend/internal/utils/mapping"
)

type PgxBranchRepository struct {
	db *pgxpool.Pool
}

func newPgxBranchRepository(db *pgxpool.Pool) portsrepo.BranchRepositoryFacade {
	return &PgxBranchRepository{db: db}
}

var _ portsrepo.BranchRepositoryFacade = (*PgxBranchRepository)(nil)

const branchColumns = `
	branch_id, name, description, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanBranch(row pgx.Row) (*models.Branch, error) {
	var m models.Branch
	err := row.Scan(
		&m.BranchID,
		&m.Name,
		&m.Description,
		&m.IsActive,
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

func (r *PgxBranchRepository) FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE branch_id = $1;`
	m, err := scanBranch(r.db.QueryRow(ctx, query, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find branch %s: %w", branchID, err)
	}
	branch := mapping.ToDomainBranch(*m)
	return &branch, nil
}

func (r *PgxBranchRepository) ListBranchesByUser(ctx context.Context, userID string) ([]domain.Branch, error) {
	query := `
		SELECT b.branch_id, b.name, b.description, b.is_active,
		       b.created_at, b.created_by, b.last_updated_at, b.last_updated_by
		FROM branches b
		JOIN user_branches ub ON ub.branch_id = b.branch_id
		WHERE ub.user_id = $1 AND ub.role != 'REMOVED'
		ORDER BY b.name;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches for user %s: %w", userID, err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		m, scanErr := scanBranch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan branch row: %w", scanErr)
		}
		branches = append(branches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch rows: %w", err)
	}
	return mapping.ToDomainBranchSlice(branches), nil
}

func (r *PgxBranchRepository) FindUserBranchRole(ctx context.Context, userID string, branchID string) (*domain.UserBranch, error) {
	query := `
		SELECT ub.user_id, u.name, ub.branch_id, ub.role, ub.joined_at
		FROM user_branches ub
		JOIN users u ON u.user_id = ub.user_id
		WHERE ub.user_id = $1 AND ub.branch_id = $2;
	`
	var m models.UserBranch
	err := r.db.QueryRow(ctx, query, userID, branchID).Scan(
		&m.UserID,
		&m.UserName,
		&m.BranchID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership of user %s in branch %s: %w", userID, branchID, err)
	}
	membership := mapping.ToDomainUserBranch(m)
	return &membership, nil
}

func (r *PgxBranchRepository) SaveBranch(ctx context.Context, branch domain.Branch) error {
	m := mapping.ToModelBranch(branch)
	query := `
		INSERT INTO branches (branch_id, name, description, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		m.BranchID,
		m.Name,
		m.Description,
		m.IsActive,
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
		return fmt.Errorf("failed to save branch: %w", err)
	}
	return nil
}

// AddUserToBranch inserts or updates a membership. Re-adding a removed user
// reactivates them with the new role.
func (r *PgxBranchRepository) AddUserToBranch(ctx context.Context, membership domain.UserBranch) error {
	m := mapping.ToModelUserBranch(membership)
	query := `
		INSERT INTO user_branches (user_id, branch_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, branch_id) DO UPDATE SET
			role = EXCLUDED.role;
	`
	_, err := r.db.Exec(ctx, query, m.UserID, m.BranchID, m.Role, m.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to add user %s to branch %s: %w", m.UserID, m.BranchID, err)
	}
	return nil
}
