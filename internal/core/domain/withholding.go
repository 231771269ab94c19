package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithholdingItemType classifies a withholding line for tax purposes.
type WithholdingItemType string

const (
	WithholdingGood    WithholdingItemType = "GOOD"
	WithholdingService WithholdingItemType = "SERVICE"
)

// ValidWithholdingItemType reports whether t is a known withholding item type.
func ValidWithholdingItemType(t WithholdingItemType) bool {
	return t == WithholdingGood || t == WithholdingService
}

// Withholding is the retention header attached to at most one Transaction.
// Invariant: TotalWithheld == Σ(item.SourceAmount + item.VATAmount), each item
// amount computed at 4-decimal precision before the totals are rounded to cents.
type Withholding struct {
	WithholdingID string          `json:"withholdingID"` // Primary Key (UUID)
	TransactionID string          `json:"transactionID"` // FK, unique -> one withholding per transaction
	Date          time.Time       `json:"date"`
	Number        string          `json:"number"`
	TotalSource   decimal.Decimal `json:"totalSource"`
	TotalVAT      decimal.Decimal `json:"totalVAT"`
	TotalWithheld decimal.Decimal `json:"totalWithheld"`
	// Collected tracks whether the supplier picked up the physical retention
	// receipt. Toggled through the staged two-phase operation.
	Collected bool              `json:"collected"`
	Items     []WithholdingItem `json:"items"`
	AuditFields
}

// WithholdingItem carries the per-line-item percentages and the amounts derived
// from them. Each item references exactly one LineItem of the parent transaction.
type WithholdingItem struct {
	WithholdingItemID string              `json:"withholdingItemID"` // Primary Key (UUID)
	WithholdingID     string              `json:"withholdingID"`
	LineItemID        string              `json:"lineItemID"`
	Type              WithholdingItemType `json:"type"`
	SourcePct         decimal.Decimal     `json:"sourcePct"`
	VATPct            decimal.Decimal     `json:"vatPct"`
	SourceAmount      decimal.Decimal     `json:"sourceAmount"`
	VATAmount         decimal.Decimal     `json:"vatAmount"`
}
