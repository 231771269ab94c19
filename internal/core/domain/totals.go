package domain

import "github.com/shopspring/decimal"

// Totals is the aggregate projection of a box's transaction set. It is always
// recomputed from the full stored set, never incrementally patched.
type Totals struct {
	// Invoiced sums the totals of top-level expense transactions (children of a
	// legalization are represented by their parent and excluded).
	Invoiced decimal.Decimal `json:"invoiced"`
	// Deposits sums top-level DEPOSIT transactions.
	Deposits       decimal.Decimal `json:"deposits"`
	SourceWithheld decimal.Decimal `json:"sourceWithheld"`
	VATWithheld    decimal.Decimal `json:"vatWithheld"`
	TotalWithheld  decimal.Decimal `json:"totalWithheld"`
	// Net = Invoiced − TotalWithheld. This is the reposition amount at close.
	Net decimal.Decimal `json:"net"`
	// Cash = InitialAmount − Deposits − Net: the cash expected in the drawer.
	Cash decimal.Decimal `json:"cash"`
}

// ZeroTotals returns a Totals with every figure zero and Cash equal to the
// initial amount, the projection of an empty transaction set.
func ZeroTotals(initialAmount decimal.Decimal) Totals {
	return Totals{
		Invoiced:       decimal.Zero,
		Deposits:       decimal.Zero,
		SourceWithheld: decimal.Zero,
		VATWithheld:    decimal.Zero,
		TotalWithheld:  decimal.Zero,
		Net:            decimal.Zero,
		Cash:           initialAmount,
	}
}
