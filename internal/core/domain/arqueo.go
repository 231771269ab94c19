package domain

import "github.com/shopspring/decimal"

// DenominationKind distinguishes bills from coins. The 1-unit bill and the
// 1-unit coin are distinct catalog entries, so a denomination is identified by
// the (kind, value) pair rather than by value alone.
type DenominationKind string

const (
	Bill DenominationKind = "BILL"
	Coin DenominationKind = "COIN"
)

// Denomination is one entry of the fixed cash catalog.
type Denomination struct {
	Kind  DenominationKind `json:"kind"`
	Value decimal.Decimal  `json:"value"`
}

// Equal reports whether two denominations are the same catalog entry.
func (d Denomination) Equal(other Denomination) bool {
	return d.Kind == other.Kind && d.Value.Equal(other.Value)
}

// DefaultDenominations returns the catalog a physical count may draw from.
func DefaultDenominations() []Denomination {
	values := func(kind DenominationKind, raw ...string) []Denomination {
		out := make([]Denomination, len(raw))
		for i, v := range raw {
			out[i] = Denomination{Kind: kind, Value: decimal.RequireFromString(v)}
		}
		return out
	}
	return append(
		values(Bill, "100", "50", "20", "10", "5", "1"),
		values(Coin, "1", "0.50", "0.25", "0.10", "0.05", "0.01")...,
	)
}

// DenominationCount is one (denomination, quantity) pair of a physical count.
type DenominationCount struct {
	Denomination Denomination `json:"denomination"`
	Quantity     int64        `json:"quantity"`
}

// Subtotal returns value × quantity for this entry.
func (c DenominationCount) Subtotal() decimal.Decimal {
	return c.Denomination.Value.Mul(decimal.NewFromInt(c.Quantity))
}

// ReconciliationVerdict classifies a count against its expected amount.
type ReconciliationVerdict string

const (
	Verified ReconciliationVerdict = "VERIFIED"
	Surplus  ReconciliationVerdict = "SURPLUS"
	Shortage ReconciliationVerdict = "SHORTAGE"
)

// Reconciliation is the outcome of comparing a physical count ("arqueo")
// against an expected book figure. Counted and Difference are rounded to cents;
// the verdict is VERIFIED only on exact equality of the rounded values.
type Reconciliation struct {
	Counts     []DenominationCount   `json:"counts"`
	Counted    decimal.Decimal       `json:"counted"`
	Expected   decimal.Decimal       `json:"expected"`
	Difference decimal.Decimal       `json:"difference"`
	Verdict    ReconciliationVerdict `json:"verdict"`
}

// Matches reports whether the count equals the expected amount exactly.
func (r Reconciliation) Matches() bool {
	return r.Verdict == Verified
}

// CountPurpose names the call site a reconciliation was produced for.
type CountPurpose string

const (
	CountOpening CountPurpose = "OPENING"
	CountClosing CountPurpose = "CLOSING"
	CountControl CountPurpose = "CONTROL"
)
