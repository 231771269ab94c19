package dto

import (
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LegalizeRequest defines the input for grouping unreceipted expenses under one
// justifying invoice.
type LegalizeRequest struct {
	TransactionIDs []string  `json:"transactionIDs" binding:"required,min=1"`
	SupplierName   string    `json:"supplierName" binding:"required"`
	InvoiceNumber  string    `json:"invoiceNumber" binding:"required"`
	InvoiceDate    time.Time `json:"invoiceDate" binding:"required"`
}

// LegalizationPlanResponse describes the planned merge before execution: the
// justifying invoice to be created and the transactions it will absorb.
type LegalizationPlanResponse struct {
	BoxID               string             `json:"boxID"`
	Justification       TransactionResponse `json:"justification"`
	ChildTransactionIDs []string           `json:"childTransactionIDs"`
	Total               decimal.Decimal    `json:"total"`
}

// ToLegalizationPlanResponse converts a domain plan to the response DTO.
func ToLegalizationPlanResponse(plan *domain.LegalizationPlan) LegalizationPlanResponse {
	return LegalizationPlanResponse{
		BoxID:               plan.BoxID,
		Justification:       ToTransactionResponse(&plan.Justification),
		ChildTransactionIDs: plan.ChildTransactionIDs,
		Total:               plan.Justification.Total,
	}
}
