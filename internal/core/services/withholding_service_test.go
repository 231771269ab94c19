package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/core/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WithholdingServiceTestSuite struct {
	suite.Suite
	mockBoxRepo         *MockCashBoxRepository
	mockTxnRepo         *MockTransactionRepository
	mockWithholdingRepo *MockWithholdingRepository
	mockAuditRepo       *MockAuditRepository
	service             portssvc.WithholdingSvcFacade
	box                 domain.CashBox
	userID              string
}

func (suite *WithholdingServiceTestSuite) SetupTest() {
	suite.mockBoxRepo = new(MockCashBoxRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockWithholdingRepo = new(MockWithholdingRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewWithholdingService(suite.mockBoxRepo, suite.mockTxnRepo, suite.mockWithholdingRepo, suite.mockAuditRepo)

	suite.box = domain.CashBox{
		BoxID:         uuid.NewString(),
		Status:        domain.BoxOpen,
		InitialAmount: decimal.NewFromInt(1000),
	}
	suite.userID = uuid.NewString()
}

// taxableLineItem builds a line item with the 15% tax amount already derived,
// as the transaction service stores it.
func taxableLineItem(base string) domain.LineItem {
	amount := decimal.RequireFromString(base)
	return domain.LineItem{
		LineItemID:    uuid.NewString(),
		Name:          "item",
		Amount:        amount,
		TaxApplicable: true,
		TaxAmount:     amount.Mul(decimal.RequireFromString("0.15")).Round(2),
	}
}

func (suite *WithholdingServiceTestSuite) TestComputeWithholding_SourceOnBaseVATOnTax() {
	li := taxableLineItem("100.00") // tax amount 15.00

	w, err := suite.service.ComputeWithholding([]domain.LineItem{li}, []dto.WithholdingItemRequest{{
		LineItemID: li.LineItemID,
		Type:       "GOOD",
		SourcePct:  decimal.NewFromInt(1),
		VATPct:     decimal.NewFromInt(30),
	}})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), w.TotalSource.Equal(decimal.RequireFromString("1.00")), "1 percent of the 100.00 base")
	assert.True(suite.T(), w.TotalVAT.Equal(decimal.RequireFromString("4.50")), "30 percent of the 15.00 tax amount")
	assert.True(suite.T(), w.TotalWithheld.Equal(decimal.RequireFromString("5.50")))
	assert.Len(suite.T(), w.Items, 1)
	assert.True(suite.T(), w.Items[0].SourceAmount.Equal(decimal.RequireFromString("1.00")))
	assert.True(suite.T(), w.Items[0].VATAmount.Equal(decimal.RequireFromString("4.50")))
}

func (suite *WithholdingServiceTestSuite) TestComputeWithholding_AggregatesAreItemSums() {
	li1 := taxableLineItem("33.33")
	li2 := taxableLineItem("66.67")

	w, err := suite.service.ComputeWithholding([]domain.LineItem{li1, li2}, []dto.WithholdingItemRequest{
		{LineItemID: li1.LineItemID, Type: "GOOD", SourcePct: decimal.NewFromInt(2), VATPct: decimal.NewFromInt(30)},
		{LineItemID: li2.LineItemID, Type: "SERVICE", SourcePct: decimal.NewFromInt(8), VATPct: decimal.NewFromInt(70)},
	})

	assert.NoError(suite.T(), err)
	expectedSource := w.Items[0].SourceAmount.Add(w.Items[1].SourceAmount).Round(2)
	expectedVAT := w.Items[0].VATAmount.Add(w.Items[1].VATAmount).Round(2)
	assert.True(suite.T(), w.TotalSource.Equal(expectedSource))
	assert.True(suite.T(), w.TotalVAT.Equal(expectedVAT))
	assert.True(suite.T(), w.TotalWithheld.Equal(expectedSource.Add(expectedVAT).Round(2)))
}

func (suite *WithholdingServiceTestSuite) TestComputeWithholding_RejectsUnknownLineItem() {
	li := taxableLineItem("100.00")

	_, err := suite.service.ComputeWithholding([]domain.LineItem{li}, []dto.WithholdingItemRequest{{
		LineItemID: uuid.NewString(),
		Type:       "GOOD",
		SourcePct:  decimal.NewFromInt(1),
		VATPct:     decimal.NewFromInt(30),
	}})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *WithholdingServiceTestSuite) TestComputeWithholding_RejectsOutOfRangePercentage() {
	li := taxableLineItem("100.00")

	_, err := suite.service.ComputeWithholding([]domain.LineItem{li}, []dto.WithholdingItemRequest{{
		LineItemID: li.LineItemID,
		Type:       "GOOD",
		SourcePct:  decimal.NewFromInt(101),
		VATPct:     decimal.NewFromInt(30),
	}})
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)

	_, err = suite.service.ComputeWithholding([]domain.LineItem{li}, []dto.WithholdingItemRequest{{
		LineItemID: li.LineItemID,
		Type:       "GOOD",
		SourcePct:  decimal.NewFromInt(1),
		VATPct:     decimal.NewFromInt(-1),
	}})
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *WithholdingServiceTestSuite) TestComputeWithholding_RejectsDuplicateLineItemReference() {
	li := taxableLineItem("100.00")
	item := dto.WithholdingItemRequest{LineItemID: li.LineItemID, Type: "GOOD", SourcePct: decimal.NewFromInt(1), VATPct: decimal.NewFromInt(30)}

	_, err := suite.service.ComputeWithholding([]domain.LineItem{li}, []dto.WithholdingItemRequest{item, item})

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *WithholdingServiceTestSuite) TestUpsertWithholding_PersistsComputedAmounts() {
	ctx := context.Background()
	li := taxableLineItem("100.00")
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		BoxID:         suite.box.BoxID,
		DocumentType:  domain.DocInvoice,
		Total:         decimal.RequireFromString("100.00"),
		LineItems:     []domain.LineItem{li},
	}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, suite.box.BoxID).Return(&suite.box, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockWithholdingRepo.On("UpsertWithholding", ctx, mock.MatchedBy(func(w domain.Withholding) bool {
		return w.TransactionID == txn.TransactionID && w.TotalWithheld.Equal(decimal.RequireFromString("5.50"))
	})).Return(nil).Once()
	suite.mockAuditRepo.On("AppendAuditEntry", ctx, mock.Anything).Return(nil).Once()

	w, err := suite.service.UpsertWithholding(ctx, suite.box.BoxID, txn.TransactionID, dto.UpsertWithholdingRequest{
		Date:   time.Now(),
		Number: "001-002-000000123",
		Items: []dto.WithholdingItemRequest{{
			LineItemID: li.LineItemID,
			Type:       "GOOD",
			SourcePct:  decimal.NewFromInt(1),
			VATPct:     decimal.NewFromInt(30),
		}},
	}, suite.userID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), w.Collected, "a new withholding starts uncollected")
	suite.mockWithholdingRepo.AssertExpectations(suite.T())
}

func (suite *WithholdingServiceTestSuite) TestUpsertWithholding_RejectsClosedBox() {
	ctx := context.Background()
	closed := suite.box
	closed.Status = domain.BoxClosed

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, closed.BoxID).Return(&closed, nil).Once()

	_, err := suite.service.UpsertWithholding(ctx, closed.BoxID, uuid.NewString(), dto.UpsertWithholdingRequest{}, suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *WithholdingServiceTestSuite) TestUpsertWithholding_RejectsDeposit() {
	ctx := context.Background()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		BoxID:         suite.box.BoxID,
		DocumentType:  domain.DocDeposit,
		Total:         decimal.RequireFromString("100.00"),
	}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, suite.box.BoxID).Return(&suite.box, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.UpsertWithholding(ctx, suite.box.BoxID, txn.TransactionID, dto.UpsertWithholdingRequest{}, suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *WithholdingServiceTestSuite) TestUpsertWithholding_RejectsLegalizedChild() {
	ctx := context.Background()
	parentID := uuid.NewString()
	child := &domain.Transaction{
		TransactionID:       uuid.NewString(),
		BoxID:               suite.box.BoxID,
		DocumentType:        domain.DocNoInvoice,
		ParentTransactionID: &parentID,
		Total:               decimal.RequireFromString("30.00"),
		LineItems:           []domain.LineItem{taxableLineItem("30.00")},
	}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, suite.box.BoxID).Return(&suite.box, nil)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, child.TransactionID).Return(child, nil)

	// The child is represented by its justifying parent in the projection; a
	// withholding written here would never be counted.
	_, err := suite.service.UpsertWithholding(ctx, suite.box.BoxID, child.TransactionID, dto.UpsertWithholdingRequest{
		Date:   time.Now().UTC(),
		Number: "001-001-000000077",
		Items: []dto.WithholdingItemRequest{{
			LineItemID: child.LineItems[0].LineItemID,
			Type:       string(domain.WithholdingGood),
			SourcePct:  decimal.NewFromInt(1),
			VATPct:     decimal.NewFromInt(30),
		}},
	}, suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
	suite.mockWithholdingRepo.AssertNotCalled(suite.T(), "UpsertWithholding", mock.Anything, mock.Anything)

	_, err = suite.service.StageCollectedToggle(ctx, suite.box.BoxID, child.TransactionID, true, suite.userID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)

	err = suite.service.DeleteWithholding(ctx, suite.box.BoxID, child.TransactionID, suite.userID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *WithholdingServiceTestSuite) TestDeleteWithholding_RequiresExisting() {
	ctx := context.Background()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		BoxID:         suite.box.BoxID,
		DocumentType:  domain.DocInvoice,
	}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, suite.box.BoxID).Return(&suite.box, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	err := suite.service.DeleteWithholding(ctx, suite.box.BoxID, txn.TransactionID, suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *WithholdingServiceTestSuite) TestStageCollectedToggle_CommitPersists() {
	ctx := context.Background()
	withholdingID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		BoxID:         suite.box.BoxID,
		DocumentType:  domain.DocInvoice,
		Withholding:   &domain.Withholding{WithholdingID: withholdingID, Collected: false},
	}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, suite.box.BoxID).Return(&suite.box, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockWithholdingRepo.On("SetCollected", ctx, withholdingID, true, suite.userID, mock.Anything).Return(nil).Once()

	toggle, err := suite.service.StageCollectedToggle(ctx, suite.box.BoxID, txn.TransactionID, true, suite.userID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), toggle.Previous())
	assert.True(suite.T(), toggle.Staged())
	// Nothing hit the store until commit.
	suite.mockWithholdingRepo.AssertNotCalled(suite.T(), "SetCollected", ctx, withholdingID, true, suite.userID, mock.Anything)

	assert.NoError(suite.T(), toggle.Commit(ctx))
	suite.mockWithholdingRepo.AssertExpectations(suite.T())
}

func (suite *WithholdingServiceTestSuite) TestStageCollectedToggle_RollbackWritesNothing() {
	ctx := context.Background()
	withholdingID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		BoxID:         suite.box.BoxID,
		DocumentType:  domain.DocInvoice,
		Withholding:   &domain.Withholding{WithholdingID: withholdingID, Collected: false},
	}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, suite.box.BoxID).Return(&suite.box, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()

	toggle, err := suite.service.StageCollectedToggle(ctx, suite.box.BoxID, txn.TransactionID, true, suite.userID)
	assert.NoError(suite.T(), err)

	toggle.Rollback()
	err = toggle.Commit(ctx)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState, "a rolled back toggle cannot be committed")
	suite.mockWithholdingRepo.AssertNotCalled(suite.T(), "SetCollected", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWithholdingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WithholdingServiceTestSuite))
}
