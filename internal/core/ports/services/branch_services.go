package services

import (
	"context"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/dto"
)

// BranchAuthorizerSvc checks whether a user may act within a branch.
type BranchAuthorizerSvc interface {
	// AuthorizeUserAction verifies the user holds at least requiredRole in the
	// branch. Returns apperrors.ErrForbidden or apperrors.ErrNotFound.
	AuthorizeUserAction(ctx context.Context, userID string, branchID string, requiredRole domain.UserBranchRole) error
}

// BranchReaderSvc defines read operations for branches.
type BranchReaderSvc interface {
	GetBranchByID(ctx context.Context, branchID string, requestingUserID string) (*domain.Branch, error)
	ListUserBranches(ctx context.Context, userID string) ([]domain.Branch, error)
}

// BranchWriterSvc defines write operations for branches.
type BranchWriterSvc interface {
	CreateBranch(ctx context.Context, req dto.CreateBranchRequest, creatorUserID string) (*domain.Branch, error)
	AddUserToBranch(ctx context.Context, branchID string, req dto.AddUserToBranchRequest, requestingUserID string) (*domain.UserBranch, error)
}

// BranchSvcFacade combines all branch service interfaces.
type BranchSvcFacade interface {
	BranchAuthorizerSvc
	BranchReaderSvc
	BranchWriterSvc
}
