package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType classifies the document backing a money movement.
type DocumentType string

const (
	DocInvoice            DocumentType = "INVOICE"
	DocSalesNote          DocumentType = "SALES_NOTE"
	DocPurchaseSettlement DocumentType = "PURCHASE_SETTLEMENT"
	DocNoInvoice          DocumentType = "NO_INVOICE"
	DocDeposit            DocumentType = "DEPOSIT"
)

// ValidDocumentType reports whether t is one of the known document types.
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocInvoice, DocSalesNote, DocPurchaseSettlement, DocNoInvoice, DocDeposit:
		return true
	}
	return false
}

// Transaction represents one money movement inside a cash box.
//
// ParentTransactionID is the single level of hierarchy in the model: a
// transaction with a non-nil parent was folded into a legalization invoice and
// must never contribute to box totals directly (its parent represents it). A
// transaction with a non-nil parent never itself has children.
type Transaction struct {
	TransactionID   string          `json:"transactionID"` // Primary Key (UUID)
	BoxID           string          `json:"boxID"`         // FK -> cash_boxes.box_id
	TransactionDate time.Time       `json:"transactionDate"`
	DocumentType    DocumentType    `json:"documentType"`
	DocumentNumber  string          `json:"documentNumber"`
	SupplierName    *string         `json:"supplierName,omitempty"`
	Total           decimal.Decimal `json:"total"`
	// IsJustification marks invoices created by a legalization to cover the
	// unreceipted expenses linked to them as children.
	IsJustification     bool         `json:"isJustification"`
	ParentTransactionID *string      `json:"parentTransactionID,omitempty"`
	LineItems           []LineItem   `json:"lineItems"`
	Withholding         *Withholding `json:"withholding,omitempty"`
	AuditFields
}

// IsChild reports whether the transaction was folded into a legalization.
func (t *Transaction) IsChild() bool {
	return t.ParentTransactionID != nil
}

// IsDeposit reports whether the transaction records a bank deposit.
func (t *Transaction) IsDeposit() bool {
	return t.DocumentType == DocDeposit
}

// IsPendingLegalization reports whether this is an unreceipted expense that has
// not yet been grouped under a justifying invoice. Boxes cannot close while any
// such transaction remains.
func (t *Transaction) IsPendingLegalization() bool {
	return t.DocumentType == DocNoInvoice && t.ParentTransactionID == nil
}

// HasWithholding reports whether a withholding is attached. While one exists the
// transaction's line items are locked against structural edits.
func (t *Transaction) HasWithholding() bool {
	return t.Withholding != nil
}

// WithheldTotal returns the attached withholding's total, or zero.
func (t *Transaction) WithheldTotal() decimal.Decimal {
	if t.Withholding == nil {
		return decimal.Zero
	}
	return t.Withholding.TotalWithheld
}

// LineItemsTotal sums the base amounts of all line items. The transaction
// invariant is LineItemsTotal() == Total after rounding to cents.
func (t *Transaction) LineItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range t.LineItems {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// LineItem belongs to exactly one Transaction. Amount is the pre-tax base; the
// tax amount is derived at creation (15% of the base when applicable) and acts
// as the VAT base for withholding computation.
type LineItem struct {
	LineItemID    string          `json:"lineItemID"` // Primary Key (UUID)
	TransactionID string          `json:"transactionID"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	TaxApplicable bool            `json:"taxApplicable"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}
