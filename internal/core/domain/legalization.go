package domain

// LegalizationPlan describes, before any write happens, the outcome of folding a
// set of unreceipted expenses under one justifying invoice: the new transaction
// to insert (line items already copied from the children) and the children to
// re-parent. The store applies the whole plan atomically.
type LegalizationPlan struct {
	BoxID               string      `json:"boxID"`
	Justification       Transaction `json:"justification"`
	ChildTransactionIDs []string    `json:"childTransactionIDs"`
}
