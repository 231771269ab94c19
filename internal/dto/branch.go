package dto

import (
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
)

// CreateBranchRequest defines data for creating a new branch.
type CreateBranchRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// BranchResponse defines data returned for a branch.
type BranchResponse struct {
	BranchID      string    `json:"branchID"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToBranchResponse converts domain.Branch to DTO.
func ToBranchResponse(b *domain.Branch) BranchResponse {
	return BranchResponse{
		BranchID:      b.BranchID,
		Name:          b.Name,
		Description:   b.Description,
		IsActive:      b.IsActive,
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
		LastUpdatedAt: b.LastUpdatedAt,
		LastUpdatedBy: b.LastUpdatedBy,
	}
}

// ListBranchesResponse wraps a list of branches.
type ListBranchesResponse struct {
	Branches []BranchResponse `json:"branches"`
}

// ToListBranchesResponse converts a slice of domain.Branch to DTO.
func ToListBranchesResponse(bs []domain.Branch) ListBranchesResponse {
	list := make([]BranchResponse, len(bs))
	for i, b := range bs {
		list[i] = ToBranchResponse(&b)
	}
	return ListBranchesResponse{Branches: list}
}

// AddUserToBranchRequest defines data for adding a user to a branch.
type AddUserToBranchRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.UserBranchRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UserBranchResponse defines data returned about a user's membership.
type UserBranchResponse struct {
	UserID   string                `json:"userID"`
	BranchID string                `json:"branchID"`
	Role     domain.UserBranchRole `json:"role"`
	JoinedAt time.Time             `json:"joinedAt"`
}

// ToUserBranchResponse converts domain.UserBranch to DTO.
func ToUserBranchResponse(ub *domain.UserBranch) UserBranchResponse {
	return UserBranchResponse{
		UserID:   ub.UserID,
		BranchID: ub.BranchID,
		Role:     ub.Role,
		JoinedAt: ub.JoinedAt,
	}
}
