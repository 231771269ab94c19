package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBoxStatus indicates the lifecycle state of a cash box row.
type CashBoxStatus string

const (
	BoxOpen   CashBoxStatus = "OPEN"
	BoxClosed CashBoxStatus = "CLOSED"
)

// CashBox maps to the cash_boxes table.
type CashBox struct {
	BoxID                 string           `json:"boxID" db:"box_id"`
	BranchID              string           `json:"branchID" db:"branch_id"`
	ResponsibleUserID     string           `json:"responsibleUserID" db:"responsible_user_id"`
	CurrencyCode          string           `json:"currencyCode" db:"currency_code"`
	Status                CashBoxStatus    `json:"status" db:"status"`
	OpeningDate           time.Time        `json:"openingDate" db:"opening_date"`
	ClosingDate           *time.Time       `json:"closingDate,omitempty" db:"closing_date"`
	InitialAmount         decimal.Decimal  `json:"initialAmount" db:"initial_amount"`
	RepositionAmount      *decimal.Decimal `json:"repositionAmount,omitempty" db:"reposition_amount"`
	RepositionCheckNumber *string          `json:"repositionCheckNumber,omitempty" db:"reposition_check_number"`
	RepositionBank        *string          `json:"repositionBank,omitempty" db:"reposition_bank"`
	AuditFields
}
