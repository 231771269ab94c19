package models

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

// Transaction maps to the transactions table. Line items and withholdings live
// in their own tables and are loaded separately.
type Transaction struct {
	TransactionID       string          `json:"transactionID" db:"transaction_id"`
	BoxID               string          `json:"boxID" db:"box_id"`
	TransactionDate     time.Time       `json:"transactionDate" db:"transaction_date"`
	DocumentType        DocumentType    `json:"documentType" db:"document_type"`
	DocumentNumber      string          `json:"documentNumber" db:"document_number"`
	SupplierName        *string         `json:"supplierName,omitempty" db:"supplier_name"`
	Total               decimal.Decimal `json:"total" db:"total"`
	IsJustification     bool            `json:"isJustification" db:"is_justification"`
	ParentTransactionID *string         `json:"parentTransactionID,omitempty" db:"parent_transaction_id"`
	AuditFields
}

// LineItem maps to the line_items table.
type LineItem struct {
	LineItemID    string          `json:"lineItemID" db:"line_item_id"`
	TransactionID string          `json:"transactionID" db:"transaction_id"`
	Name          string          `json:"name" db:"name"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	TaxApplicable bool            `json:"taxApplicable" db:"tax_applicable"`
	TaxAmount     decimal.Decimal `json:"taxAmount" db:"tax_amount"`
}
