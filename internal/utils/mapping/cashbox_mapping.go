package mapping

import (
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/models"
)

// ToModelCashBox converts a domain CashBox to a model CashBox
func ToModelCashBox(d domain.CashBox) models.CashBox {
	return models.CashBox{
		BoxID:                 d.BoxID,
		BranchID:              d.BranchID,
		ResponsibleUserID:     d.ResponsibleUserID,
		CurrencyCode:          d.CurrencyCode,
		Status:                models.CashBoxStatus(d.Status),
		OpeningDate:           d.OpeningDate,
		ClosingDate:           d.ClosingDate,
		InitialAmount:         d.InitialAmount,
		RepositionAmount:      d.RepositionAmount,
		RepositionCheckNumber: d.RepositionCheckNumber,
		RepositionBank:        d.RepositionBank,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCashBox converts a model CashBox to a domain CashBox
func ToDomainCashBox(m models.CashBox) domain.CashBox {
	return domain.CashBox{
		BoxID:                 m.BoxID,
		BranchID:              m.BranchID,
		ResponsibleUserID:     m.ResponsibleUserID,
		CurrencyCode:          m.CurrencyCode,
		Status:                domain.CashBoxStatus(m.Status),
		OpeningDate:           m.OpeningDate,
		ClosingDate:           m.ClosingDate,
		InitialAmount:         m.InitialAmount,
		RepositionAmount:      m.RepositionAmount,
		RepositionCheckNumber: m.RepositionCheckNumber,
		RepositionBank:        m.RepositionBank,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}
