package mapping

import (
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
// Line items and withholding are mapped separately.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:       d.TransactionID,
		BoxID:               d.BoxID,
		TransactionDate:     d.TransactionDate,
		DocumentType:        models.DocumentType(d.DocumentType),
		DocumentNumber:      d.DocumentNumber,
		SupplierName:        d.SupplierName,
		Total:               d.Total,
		IsJustification:     d.IsJustification,
		ParentTransactionID: d.ParentTransactionID,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:       m.TransactionID,
		BoxID:               m.BoxID,
		TransactionDate:     m.TransactionDate,
		DocumentType:        domain.DocumentType(m.DocumentType),
		DocumentNumber:      m.DocumentNumber,
		SupplierName:        m.SupplierName,
		Total:               m.Total,
		IsJustification:     m.IsJustification,
		ParentTransactionID: m.ParentTransactionID,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to a model LineItem
func ToModelLineItem(d domain.LineItem) models.LineItem {
	return models.LineItem{
		LineItemID:    d.LineItemID,
		TransactionID: d.TransactionID,
		Name:          d.Name,
		Amount:        d.Amount,
		TaxApplicable: d.TaxApplicable,
		TaxAmount:     d.TaxAmount,
	}
}

// ToDomainLineItem converts a model LineItem to a domain LineItem
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:    m.LineItemID,
		TransactionID: m.TransactionID,
		Name:          m.Name,
		Amount:        m.Amount,
		TaxApplicable: m.TaxApplicable,
		TaxAmount:     m.TaxAmount,
	}
}

// ToDomainLineItemSlice converts a slice of model LineItems
func ToDomainLineItemSlice(ms []models.LineItem) []domain.LineItem {
	ds := make([]domain.LineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLineItem(m)
	}
	return ds
}
