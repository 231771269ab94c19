package domain

import "time"

// Branch represents a company branch (sucursal); every cash box belongs to one.
type Branch struct {
	BranchID    string `json:"branchID"` // Primary Key (UUID)
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// UserBranchRole defines the possible roles a user can have within a branch.
type UserBranchRole string

const (
	RoleAdmin    UserBranchRole = "ADMIN"
	RoleMember   UserBranchRole = "MEMBER"
	RoleReadOnly UserBranchRole = "READONLY"
	RoleRemoved  UserBranchRole = "REMOVED"
)

// UserBranch represents the membership of a User in a Branch.
type UserBranch struct {
	UserID   string         `json:"userID"`
	UserName string         `json:"userName"`
	BranchID string         `json:"branchID"`
	Role     UserBranchRole `json:"role"`
	JoinedAt time.Time      `json:"joinedAt"`
}
