package dto

import (
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DenominationCountRequest is one (denomination, quantity) entry of a physical
// count as submitted by the caller. Kind/Value must name a catalog entry.
type DenominationCountRequest struct {
	Kind     string          `json:"kind" binding:"required,oneof=BILL COIN"`
	Value    decimal.Decimal `json:"value" binding:"required,dpositive"`
	Quantity int64           `json:"quantity" binding:"min=0"`
}

// OpenCashBoxRequest defines the input for opening a new cash box. BranchID is
// taken from the route; a value in the body is ignored.
type OpenCashBoxRequest struct {
	BranchID      string                     `json:"-"`
	CurrencyCode  string                     `json:"currencyCode" binding:"required,len=3"`
	InitialAmount decimal.Decimal            `json:"initialAmount" binding:"required"`
	OpeningDate   *time.Time                 `json:"openingDate,omitempty"`
	Count         []DenominationCountRequest `json:"count" binding:"required,dive"`
}

// CloseCashBoxRequest defines the input for closing a cash box.
type CloseCashBoxRequest struct {
	Count       []DenominationCountRequest `json:"count" binding:"required,dive"`
	CheckNumber string                     `json:"checkNumber" binding:"required"`
	Bank        string                     `json:"bank" binding:"required"`
}

// ControlCountRequest defines the input for a free-standing audit count.
type ControlCountRequest struct {
	Count []DenominationCountRequest `json:"count" binding:"required,dive"`
}

// ReconciliationResponse reports the outcome of comparing a count against the
// expected figure, with the concrete amounts involved.
type ReconciliationResponse struct {
	Counted    decimal.Decimal `json:"counted"`
	Expected   decimal.Decimal `json:"expected"`
	Difference decimal.Decimal `json:"difference"`
	Verdict    string          `json:"verdict"`
}

// TotalsResponse is the aggregate projection of a box's transaction set.
type TotalsResponse struct {
	Invoiced       decimal.Decimal `json:"invoiced"`
	Deposits       decimal.Decimal `json:"deposits"`
	SourceWithheld decimal.Decimal `json:"sourceWithheld"`
	VATWithheld    decimal.Decimal `json:"vatWithheld"`
	TotalWithheld  decimal.Decimal `json:"totalWithheld"`
	Net            decimal.Decimal `json:"net"`
	Cash           decimal.Decimal `json:"cash"`
}

// CashBoxResponse defines the data returned for a cash box.
type CashBoxResponse struct {
	BoxID                 string           `json:"boxID"`
	BranchID              string           `json:"branchID"`
	ResponsibleUserID     string           `json:"responsibleUserID"`
	CurrencyCode          string           `json:"currencyCode"`
	Status                string           `json:"status"`
	OpeningDate           time.Time        `json:"openingDate"`
	ClosingDate           *time.Time       `json:"closingDate,omitempty"`
	InitialAmount         decimal.Decimal  `json:"initialAmount"`
	RepositionAmount      *decimal.Decimal `json:"repositionAmount,omitempty"`
	RepositionCheckNumber *string          `json:"repositionCheckNumber,omitempty"`
	RepositionBank        *string          `json:"repositionBank,omitempty"`
	Totals                *TotalsResponse  `json:"totals,omitempty"`
}

// ListCashBoxesResponse wraps a paginated box listing.
type ListCashBoxesResponse struct {
	Boxes     []CashBoxResponse `json:"boxes"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// CanCloseResponse reports whether a box may close and, when it may not, every
// blocking reason plus the ids of transactions still pending legalization.
type CanCloseResponse struct {
	Allowed              bool     `json:"allowed"`
	Reasons              []string `json:"reasons"`
	PendingLegalizations []string `json:"pendingLegalizations,omitempty"`
	ExpectedCash         decimal.Decimal `json:"expectedCash"`
}

// ToTotalsResponse converts domain totals to the response DTO.
func ToTotalsResponse(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		Invoiced:       t.Invoiced,
		Deposits:       t.Deposits,
		SourceWithheld: t.SourceWithheld,
		VATWithheld:    t.VATWithheld,
		TotalWithheld:  t.TotalWithheld,
		Net:            t.Net,
		Cash:           t.Cash,
	}
}

// ToReconciliationResponse converts a domain reconciliation to the response DTO.
func ToReconciliationResponse(r domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		Counted:    r.Counted,
		Expected:   r.Expected,
		Difference: r.Difference,
		Verdict:    string(r.Verdict),
	}
}

// ToCashBoxResponse converts a domain cash box (plus optional totals) to the
// response DTO.
func ToCashBoxResponse(box *domain.CashBox, totals *domain.Totals) CashBoxResponse {
	resp := CashBoxResponse{
		BoxID:                 box.BoxID,
		BranchID:              box.BranchID,
		ResponsibleUserID:     box.ResponsibleUserID,
		CurrencyCode:          box.CurrencyCode,
		Status:                string(box.Status),
		OpeningDate:           box.OpeningDate,
		ClosingDate:           box.ClosingDate,
		InitialAmount:         box.InitialAmount,
		RepositionAmount:      box.RepositionAmount,
		RepositionCheckNumber: box.RepositionCheckNumber,
		RepositionBank:        box.RepositionBank,
	}
	if totals != nil {
		t := ToTotalsResponse(*totals)
		resp.Totals = &t
	}
	return resp
}

// ToDomainCounts converts submitted count entries to domain denomination counts.
// Catalog membership is validated by the arqueo service, not here.
func ToDomainCounts(reqs []DenominationCountRequest) []domain.DenominationCount {
	counts := make([]domain.DenominationCount, len(reqs))
	for i, r := range reqs {
		counts[i] = domain.DenominationCount{
			Denomination: domain.Denomination{
				Kind:  domain.DenominationKind(r.Kind),
				Value: r.Value,
			},
			Quantity: r.Quantity,
		}
	}
	return counts
}
