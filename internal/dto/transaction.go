package dto

import (
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest defines one line item of a transaction being created or
// updated. Amount is the pre-tax base.
type LineItemRequest struct {
	Name          string          `json:"name" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,dpositive"`
	TaxApplicable bool            `json:"taxApplicable"`
}

// CreateTransactionRequest defines the input for recording a money movement in
// a box. The sum of line item amounts must equal Total to the cent.
type CreateTransactionRequest struct {
	TransactionDate time.Time         `json:"transactionDate" binding:"required"`
	DocumentType    string            `json:"documentType" binding:"required,oneof=INVOICE SALES_NOTE PURCHASE_SETTLEMENT NO_INVOICE DEPOSIT"`
	DocumentNumber  string            `json:"documentNumber" binding:"required"`
	SupplierName    *string           `json:"supplierName,omitempty"`
	Total           decimal.Decimal   `json:"total" binding:"required,dpositive"`
	LineItems       []LineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// UpdateTransactionRequest defines the input for editing a transaction. The
// full line item set is resubmitted and replaces the stored one.
type UpdateTransactionRequest struct {
	TransactionDate time.Time         `json:"transactionDate" binding:"required"`
	DocumentType    string            `json:"documentType" binding:"required,oneof=INVOICE SALES_NOTE PURCHASE_SETTLEMENT NO_INVOICE DEPOSIT"`
	DocumentNumber  string            `json:"documentNumber" binding:"required"`
	SupplierName    *string           `json:"supplierName,omitempty"`
	Total           decimal.Decimal   `json:"total" binding:"required,dpositive"`
	LineItems       []LineItemRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	LineItemID    string          `json:"lineItemID"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	TaxApplicable bool            `json:"taxApplicable"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID       string               `json:"transactionID"`
	BoxID               string               `json:"boxID"`
	TransactionDate     time.Time            `json:"transactionDate"`
	DocumentType        string               `json:"documentType"`
	DocumentNumber      string               `json:"documentNumber"`
	SupplierName        *string              `json:"supplierName,omitempty"`
	Total               decimal.Decimal      `json:"total"`
	IsJustification     bool                 `json:"isJustification"`
	ParentTransactionID *string              `json:"parentTransactionID,omitempty"`
	LineItems           []LineItemResponse   `json:"lineItems"`
	Withholding         *WithholdingResponse `json:"withholding,omitempty"`
}

// ToLineItemResponse converts a domain line item to the response DTO.
func ToLineItemResponse(item domain.LineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID:    item.LineItemID,
		Name:          item.Name,
		Amount:        item.Amount,
		TaxApplicable: item.TaxApplicable,
		TaxAmount:     item.TaxAmount,
	}
}

// ToTransactionResponse converts a domain transaction to the response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	items := make([]LineItemResponse, len(txn.LineItems))
	for i, item := range txn.LineItems {
		items[i] = ToLineItemResponse(item)
	}
	resp := TransactionResponse{
		TransactionID:       txn.TransactionID,
		BoxID:               txn.BoxID,
		TransactionDate:     txn.TransactionDate,
		DocumentType:        string(txn.DocumentType),
		DocumentNumber:      txn.DocumentNumber,
		SupplierName:        txn.SupplierName,
		Total:               txn.Total,
		IsJustification:     txn.IsJustification,
		ParentTransactionID: txn.ParentTransactionID,
		LineItems:           items,
	}
	if txn.Withholding != nil {
		w := ToWithholdingResponse(txn.Withholding)
		resp.Withholding = &w
	}
	return resp
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
