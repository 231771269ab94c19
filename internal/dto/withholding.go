package dto

import (
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WithholdingItemRequest defines the user-supplied percentages for one line
// item of the target transaction. Percentages must lie in [0, 100].
type WithholdingItemRequest struct {
	LineItemID string          `json:"lineItemID" binding:"required"`
	Type       string          `json:"type" binding:"required,oneof=GOOD SERVICE"`
	SourcePct  decimal.Decimal `json:"sourcePct"`
	VATPct     decimal.Decimal `json:"vatPct"`
}

// UpsertWithholdingRequest defines the input for creating or replacing the
// withholding of a transaction. Items fully replace any stored set.
type UpsertWithholdingRequest struct {
	Date   time.Time                `json:"date" binding:"required"`
	Number string                   `json:"number" binding:"required"`
	Items  []WithholdingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToggleCollectedRequest defines the input for the collected-flag toggle.
type ToggleCollectedRequest struct {
	Collected bool `json:"collected"`
}

// WithholdingItemResponse defines the data returned for a withholding item.
type WithholdingItemResponse struct {
	WithholdingItemID string          `json:"withholdingItemID"`
	LineItemID        string          `json:"lineItemID"`
	Type              string          `json:"type"`
	SourcePct         decimal.Decimal `json:"sourcePct"`
	VATPct            decimal.Decimal `json:"vatPct"`
	SourceAmount      decimal.Decimal `json:"sourceAmount"`
	VATAmount         decimal.Decimal `json:"vatAmount"`
}

// WithholdingResponse defines the data returned for a withholding.
type WithholdingResponse struct {
	WithholdingID string                    `json:"withholdingID"`
	TransactionID string                    `json:"transactionID"`
	Date          time.Time                 `json:"date"`
	Number        string                    `json:"number"`
	TotalSource   decimal.Decimal           `json:"totalSource"`
	TotalVAT      decimal.Decimal           `json:"totalVAT"`
	TotalWithheld decimal.Decimal           `json:"totalWithheld"`
	Collected     bool                      `json:"collected"`
	Items         []WithholdingItemResponse `json:"items"`
}

// ToWithholdingResponse converts a domain withholding to the response DTO.
func ToWithholdingResponse(w *domain.Withholding) WithholdingResponse {
	items := make([]WithholdingItemResponse, len(w.Items))
	for i, item := range w.Items {
		items[i] = WithholdingItemResponse{
			WithholdingItemID: item.WithholdingItemID,
			LineItemID:        item.LineItemID,
			Type:              string(item.Type),
			SourcePct:         item.SourcePct,
			VATPct:            item.VATPct,
			SourceAmount:      item.SourceAmount,
			VATAmount:         item.VATAmount,
		}
	}
	return WithholdingResponse{
		WithholdingID: w.WithholdingID,
		TransactionID: w.TransactionID,
		Date:          w.Date,
		Number:        w.Number,
		TotalSource:   w.TotalSource,
		TotalVAT:      w.TotalVAT,
		TotalWithheld: w.TotalWithheld,
		Collected:     w.Collected,
		Items:         items,
	}
}
