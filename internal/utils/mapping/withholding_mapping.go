package mapping

import (
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/models"
)

// ToModelWithholding converts a domain Withholding to a model Withholding.
// Items are mapped separately.
func ToModelWithholding(d domain.Withholding) models.Withholding {
	return models.Withholding{
		WithholdingID: d.WithholdingID,
		TransactionID: d.TransactionID,
		Date:          d.Date,
		Number:        d.Number,
		TotalSource:   d.TotalSource,
		TotalVAT:      d.TotalVAT,
		TotalWithheld: d.TotalWithheld,
		Collected:     d.Collected,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWithholding converts a model Withholding to a domain Withholding
func ToDomainWithholding(m models.Withholding) domain.Withholding {
	return domain.Withholding{
		WithholdingID: m.WithholdingID,
		TransactionID: m.TransactionID,
		Date:          m.Date,
		Number:        m.Number,
		TotalSource:   m.TotalSource,
		TotalVAT:      m.TotalVAT,
		TotalWithheld: m.TotalWithheld,
		Collected:     m.Collected,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelWithholdingItem converts a domain WithholdingItem to a model WithholdingItem
func ToModelWithholdingItem(d domain.WithholdingItem) models.WithholdingItem {
	return models.WithholdingItem{
		WithholdingItemID: d.WithholdingItemID,
		WithholdingID:     d.WithholdingID,
		LineItemID:        d.LineItemID,
		Type:              models.WithholdingItemType(d.Type),
		SourcePct:         d.SourcePct,
		VATPct:            d.VATPct,
		SourceAmount:      d.SourceAmount,
		VATAmount:         d.VATAmount,
	}
}

// ToDomainWithholdingItem converts a model WithholdingItem to a domain WithholdingItem
func ToDomainWithholdingItem(m models.WithholdingItem) domain.WithholdingItem {
	return domain.WithholdingItem{
		WithholdingItemID: m.WithholdingItemID,
		WithholdingID:     m.WithholdingID,
		LineItemID:        m.LineItemID,
		Type:              domain.WithholdingItemType(m.Type),
		SourcePct:         m.SourcePct,
		VATPct:            m.VATPct,
		SourceAmount:      m.SourceAmount,
		VATAmount:         m.VATAmount,
	}
}

// ToDomainWithholdingItemSlice converts a slice of model WithholdingItems
func ToDomainWithholdingItemSlice(ms []models.WithholdingItem) []domain.WithholdingItem {
	ds := make([]domain.WithholdingItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWithholdingItem(m)
	}
	return ds
}
