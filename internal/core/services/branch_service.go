package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
)

// roleRank orders branch roles for the "at least" comparison in authorization.
var roleRank = map[domain.UserBranchRole]int{
	domain.RoleRemoved:  0,
	domain.RoleReadOnly: 1,
	domain.RoleMember:   2,
	domain.RoleAdmin:    3,
}

// branchService manages branches and the memberships that gate every cash-box
// operation.
type branchService struct {
	branchRepo portsrepo.BranchRepositoryFacade
	userRepo   portsrepo.UserReader
}

// NewBranchService creates a new BranchService.
func NewBranchService(branchRepo portsrepo.BranchRepositoryFacade, userRepo portsrepo.UserReader) portssvc.BranchSvcFacade {
	return &branchService{branchRepo: branchRepo, userRepo: userRepo}
}

var _ portssvc.BranchSvcFacade = (*branchService)(nil)

// AuthorizeUserAction verifies the user holds at least requiredRole in the
// branch. A non-member gets ErrForbidden rather than ErrNotFound so branch
// existence is not leaked through the error kind.
func (s *branchService) AuthorizeUserAction(ctx context.Context, userID string, branchID string, requiredRole domain.UserBranchRole) error {
	membership, err := s.branchRepo.FindUserBranchRole(ctx, userID, branchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %s is not a member of branch %s", apperrors.ErrForbidden, userID, branchID)
		}
		return fmt.Errorf("failed to check membership of user %s in branch %s: %w", userID, branchID, err)
	}
	if roleRank[membership.Role] < roleRank[requiredRole] {
		return fmt.Errorf("%w: user %s has role %s in branch %s, %s required",
			apperrors.ErrForbidden, userID, membership.Role, branchID, requiredRole)
	}
	return nil
}

// GetBranchByID retrieves a branch the requesting user belongs to.
func (s *branchService) GetBranchByID(ctx context.Context, branchID string, requestingUserID string) (*domain.Branch, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	branch, err := s.branchRepo.FindBranchByID(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find branch %s: %w", branchID, err)
	}
	return branch, nil
}

// ListUserBranches retrieves the branches the user belongs to.
func (s *branchService) ListUserBranches(ctx context.Context, userID string) ([]domain.Branch, error) {
	branches, err := s.branchRepo.ListBranchesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches for user %s: %w", userID, err)
	}
	return branches, nil
}

// CreateBranch persists a new branch and makes its creator an admin member.
func (s *branchService) CreateBranch(ctx context.Context, req dto.CreateBranchRequest, creatorUserID string) (*domain.Branch, error) {
	now := time.Now().UTC()
	branch := domain.Branch{
		BranchID:    uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.branchRepo.SaveBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	creator, err := s.userRepo.FindUserByID(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find creator user %s: %w", creatorUserID, err)
	}
	membership := domain.UserBranch{
		UserID:   creatorUserID,
		UserName: creator.Name,
		BranchID: branch.BranchID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.branchRepo.AddUserToBranch(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add creator to branch %s: %w", branch.BranchID, err)
	}
	return &branch, nil
}

// AddUserToBranch adds or updates a membership. Only branch admins may manage
// memberships.
func (s *branchService) AddUserToBranch(ctx context.Context, branchID string, req dto.AddUserToBranchRequest, requestingUserID string) (*domain.UserBranch, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, branchID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", req.UserID, err)
	}

	membership := domain.UserBranch{
		UserID:   user.UserID,
		UserName: user.Name,
		BranchID: branchID,
		Role:     req.Role,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.branchRepo.AddUserToBranch(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add user %s to branch %s: %w", req.UserID, branchID, err)
	}
	return &membership, nil
}
