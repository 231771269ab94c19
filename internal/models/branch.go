package models

import "time"

// Branch maps to the branches table.
type Branch struct {
	BranchID    string `json:"branchID" db:"branch_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	IsActive    bool   `json:"isActive" db:"is_active"`
	AuditFields
}

// UserBranchRole defines the possible roles a user can have within a branch.
type UserBranchRole string

// UserBranch maps to the user_branches join table. UserName is denormalized
// from the users table on read.
type UserBranch struct {
	UserID   string         `json:"userID" db:"user_id"`
	UserName string         `json:"userName" db:"user_name"`
	BranchID string         `json:"branchID" db:"branch_id"`
	Role     UserBranchRole `json:"role" db:"role"`
	JoinedAt time.Time      `json:"joinedAt" db:"joined_at"`
}
