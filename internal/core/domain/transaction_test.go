package domain_test

import (
	"testing"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsPendingLegalization(t *testing.T) {
	parentID := "parent-1"

	tests := []struct {
		name        string
		transaction domain.Transaction
		want        bool
	}{
		{
			name:        "unreceipted expense without parent",
			transaction: domain.Transaction{DocumentType: domain.DocNoInvoice},
			want:        true,
		},
		{
			name: "unreceipted expense already legalized",
			transaction: domain.Transaction{
				DocumentType:        domain.DocNoInvoice,
				ParentTransactionID: &parentID,
			},
			want: false,
		},
		{
			name:        "regular invoice",
			transaction: domain.Transaction{DocumentType: domain.DocInvoice},
			want:        false,
		},
		{
			name:        "deposit",
			transaction: domain.Transaction{DocumentType: domain.DocDeposit},
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.transaction.IsPendingLegalization())
		})
	}
}

func TestTransaction_LineItemsTotal(t *testing.T) {
	txn := domain.Transaction{
		LineItems: []domain.LineItem{
			{Amount: decimal.RequireFromString("100.00")},
			{Amount: decimal.RequireFromString("50.00")},
		},
	}
	assert.True(t, txn.LineItemsTotal().Equal(decimal.RequireFromString("150.00")))

	empty := domain.Transaction{}
	assert.True(t, empty.LineItemsTotal().IsZero())
}

func TestTransaction_WithheldTotal(t *testing.T) {
	txn := domain.Transaction{}
	assert.True(t, txn.WithheldTotal().IsZero())

	txn.Withholding = &domain.Withholding{TotalWithheld: decimal.RequireFromString("5.50")}
	assert.True(t, txn.WithheldTotal().Equal(decimal.RequireFromString("5.50")))
}

func TestDenominationCount_Subtotal(t *testing.T) {
	count := domain.DenominationCount{
		Denomination: domain.Denomination{Kind: domain.Bill, Value: decimal.RequireFromString("20")},
		Quantity:     3,
	}
	assert.True(t, count.Subtotal().Equal(decimal.RequireFromString("60")))
}

func TestDefaultDenominations_DistinctOneValueEntries(t *testing.T) {
	catalog := domain.DefaultDenominations()
	assert.Len(t, catalog, 12)

	ones := 0
	for _, d := range catalog {
		if d.Value.Equal(decimal.NewFromInt(1)) {
			ones++
		}
	}
	// The 1-unit bill and the 1-unit coin are separate entries.
	assert.Equal(t, 2, ones)
}
