package models

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

// Withholding maps to the withholdings table. One row per transaction at most,
// enforced by a unique constraint on transaction_id.
type Withholding struct {
	WithholdingID string          `json:"withholdingID" db:"withholding_id"`
	TransactionID string          `json:"transactionID" db:"transaction_id"`
	Date          time.Time       `json:"date" db:"withholding_date"`
	Number        string          `json:"number" db:"withholding_number"`
	TotalSource   decimal.Decimal `json:"totalSource" db:"total_source"`
	TotalVAT      decimal.Decimal `json:"totalVAT" db:"total_vat"`
	TotalWithheld decimal.Decimal `json:"totalWithheld" db:"total_withheld"`
	Collected     bool            `json:"collected" db:"collected"`
	AuditFields
}

// WithholdingItem maps to the withholding_items table.
type WithholdingItem struct {
	WithholdingItemID string              `json:"withholdingItemID" db:"withholding_item_id"`
	WithholdingID     string              `json:"withholdingID" db:"withholding_id"`
	LineItemID        string              `json:"lineItemID" db:"line_item_id"`
	Type              WithholdingItemType `json:"type" db:"item_type"`
	SourcePct         decimal.Decimal     `json:"sourcePct" db:"source_pct"`
	VATPct            decimal.Decimal     `json:"vatPct" db:"vat_pct"`
	SourceAmount      decimal.Decimal     `json:"sourceAmount" db:"source_amount"`
	VATAmount         decimal.Decimal     `json:"vatAmount" db:"vat_amount"`
}
