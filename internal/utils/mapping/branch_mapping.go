package mapping

import (
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/models"
)

// ToModelBranch converts a domain Branch to a model Branch
func ToModelBranch(d domain.Branch) models.Branch {
	return models.Branch{
		BranchID:    d.BranchID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBranch converts a model Branch to a domain Branch
func ToDomainBranch(m models.Branch) domain.Branch {
	return domain.Branch{
		BranchID:    m.BranchID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBranchSlice converts a slice of model Branches
func ToDomainBranchSlice(ms []models.Branch) []domain.Branch {
	ds := make([]domain.Branch, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBranch(m)
	}
	return ds
}

// ToModelUserBranch converts a domain UserBranch to a model UserBranch
func ToModelUserBranch(d domain.UserBranch) models.UserBranch {
	return models.UserBranch{
		UserID:   d.UserID,
		UserName: d.UserName,
		BranchID: d.BranchID,
		Role:     models.UserBranchRole(d.Role),
		JoinedAt: d.JoinedAt,
	}
}

// ToDomainUserBranch converts a model UserBranch to a domain UserBranch
func ToDomainUserBranch(m models.UserBranch) domain.UserBranch {
	return domain.UserBranch{
		UserID:   m.UserID,
		UserName: m.UserName,
		BranchID: m.BranchID,
		Role:     domain.UserBranchRole(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
