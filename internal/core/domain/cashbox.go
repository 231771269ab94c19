package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBoxStatus indicates the lifecycle state of a cash box.
// CLOSED is terminal; there is no transition out of it.
type CashBoxStatus string

const (
	BoxOpen   CashBoxStatus = "OPEN"
	BoxClosed CashBoxStatus = "CLOSED"
)

// CashBox is the aggregate root of the petty-cash ledger: an opening float, a
// sequence of transactions, and a closing reconciliation.
type CashBox struct {
	BoxID             string          `json:"boxID"`    // Primary Key (UUID)
	BranchID          string          `json:"branchID"` // FK -> branches.branch_id
	ResponsibleUserID string          `json:"responsibleUserID"`
	CurrencyCode      string          `json:"currencyCode"`
	Status            CashBoxStatus   `json:"status"`
	OpeningDate       time.Time       `json:"openingDate"`
	ClosingDate       *time.Time      `json:"closingDate,omitempty"`
	// InitialAmount is the opening float: prior balance plus replenishment.
	InitialAmount decimal.Decimal `json:"initialAmount"`
	// Reposition fields are set only once the box is closed. The reposition
	// amount equals the net expenses at the moment of closing; the check
	// reference identifies the replenishment payment.
	RepositionAmount      *decimal.Decimal `json:"repositionAmount,omitempty"`
	RepositionCheckNumber *string          `json:"repositionCheckNumber,omitempty"`
	RepositionBank        *string          `json:"repositionBank,omitempty"`
	AuditFields
}

// IsOpen reports whether the box still accepts mutations.
func (b *CashBox) IsOpen() bool {
	return b.Status == BoxOpen
}
