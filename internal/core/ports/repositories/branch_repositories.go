package repositories

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// BranchReader defines read operations for branch data
type BranchReader interface {
	// FindBranchByID retrieves a specific branch by its ID.
	FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error)

	// ListBranchesByUser retrieves the branches a user belongs to.
	ListBranchesByUser(ctx context.Context, userID string) ([]domain.Branch, error)

	// FindUserBranchRole retrieves the membership of a user in a branch, or
	// apperrors.ErrNotFound when the user is not a member.
	FindUserBranchRole(ctx context.Context, userID string, branchID string) (*domain.UserBranch, error)
}

// BranchWriter defines write operations for branch data
type BranchWriter interface {
	// SaveBranch persists a new branch.
	SaveBranch(ctx context.Context, branch domain.Branch) error

	// AddUserToBranch adds or updates a user's membership in a branch.
	AddUserToBranch(ctx context.Context, membership domain.UserBranch) error
}

// BranchRepositoryFacade combines all branch repository interfaces
type BranchRepositoryFacade interface {
	BranchReader
	BranchWriter
}
