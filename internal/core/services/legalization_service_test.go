package services_test

import (
	"context"
	"errors"
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

type LegalizationServiceTestSuite struct {
	suite.Suite
	mockBoxRepo    *MockCashBoxRepository
	mockTxnRepo    *MockTransactionRepository
	mockBranchAuth *MockBranchAuthorizer
	service        portssvc.LegalizationSvcFacade
	box            *domain.CashBox
	userID         string
}

func (suite *LegalizationServiceTestSuite) SetupTest() {
	suite.mockBoxRepo = new(MockCashBoxRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockBranchAuth = new(MockBranchAuthorizer)
	suite.service = services.NewLegalizationService(suite.mockBoxRepo, suite.mockTxnRepo, suite.mockBranchAuth)

	suite.box = &domain.CashBox{
		BoxID:         uuid.NewString(),
		BranchID:      uuid.NewString(),
		Status:        domain.BoxOpen,
		CurrencyCode:  "USD",
		InitialAmount: decimal.RequireFromString("1000.00"),
	}
	suite.userID = uuid.NewString()

	suite.mockBranchAuth.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.box.BranchID, domain.RoleMember).Return(nil)
	suite.mockBoxRepo.On("FindCashBoxByID", mock.Anything, suite.box.BoxID).Return(suite.box, nil)
}

func (suite *LegalizationServiceTestSuite) unreceipted(total string, itemNames ...string) *domain.Transaction {
	txn := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		BoxID:           suite.box.BoxID,
		TransactionDate: time.Now().UTC(),
		DocumentType:    domain.DocNoInvoice,
		DocumentNumber:  "S/N",
		Total:           decimal.RequireFromString(total),
	}
	amount := txn.Total.Div(decimal.NewFromInt(int64(len(itemNames)))).Round(2)
	for _, name := range itemNames {
		txn.LineItems = append(txn.LineItems, domain.LineItem{
			LineItemID:    uuid.NewString(),
			TransactionID: txn.TransactionID,
			Name:          name,
			Amount:        amount,
		})
	}
	return txn
}

func legalizeReq(ids ...string) dto.LegalizeRequest {
	return dto.LegalizeRequest{
		TransactionIDs: ids,
		SupplierName:   "Ferreteria Central",
		InvoiceNumber:  "001-002-000000042",
		InvoiceDate:    time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_SumsChildrenAndCopiesLineItems() {
	ctx := context.Background()
	first := suite.unreceipted("30.00", "taxi")
	second := suite.unreceipted("12.50", "parking", "tolls")
	suite.mockTxnRepo.On("FindTransactionByID", ctx, first.TransactionID).Return(first, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, second.TransactionID).Return(second, nil).Once()

	plan, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(first.TransactionID, second.TransactionID), suite.userID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), plan.Justification.Total.Equal(decimal.RequireFromString("42.50")))
	assert.True(suite.T(), plan.Justification.IsJustification)
	assert.Equal(suite.T(), domain.DocInvoice, plan.Justification.DocumentType)
	assert.Equal(suite.T(), []string{first.TransactionID, second.TransactionID}, plan.ChildTransactionIDs)
	assert.Len(suite.T(), plan.Justification.LineItems, 3)
	for _, item := range plan.Justification.LineItems {
		assert.Equal(suite.T(), plan.Justification.TransactionID, item.TransactionID)
		assert.NotEqual(suite.T(), first.LineItems[0].LineItemID, item.LineItemID)
	}
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_DoesNotWrite() {
	ctx := context.Background()
	child := suite.unreceipted("30.00", "taxi")
	suite.mockTxnRepo.On("FindTransactionByID", ctx, child.TransactionID).Return(child, nil).Once()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(child.TransactionID), suite.userID)

	assert.NoError(suite.T(), err)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ApplyLegalization", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_RejectsDuplicateSelection() {
	ctx := context.Background()
	child := suite.unreceipted("30.00", "taxi")
	suite.mockTxnRepo.On("FindTransactionByID", ctx, child.TransactionID).Return(child, nil).Once()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(child.TransactionID, child.TransactionID), suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_RejectsForeignTransaction() {
	ctx := context.Background()
	foreign := suite.unreceipted("30.00", "taxi")
	foreign.BoxID = uuid.NewString()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, foreign.TransactionID).Return(foreign, nil).Once()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(foreign.TransactionID), suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_RejectsReceiptedDocuments() {
	ctx := context.Background()
	invoiced := suite.unreceipted("30.00", "taxi")
	invoiced.DocumentType = domain.DocInvoice
	suite.mockTxnRepo.On("FindTransactionByID", ctx, invoiced.TransactionID).Return(invoiced, nil).Once()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(invoiced.TransactionID), suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_RejectsAlreadyLegalized() {
	ctx := context.Background()
	parentID := uuid.NewString()
	child := suite.unreceipted("30.00", "taxi")
	child.ParentTransactionID = &parentID
	suite.mockTxnRepo.On("FindTransactionByID", ctx, child.TransactionID).Return(child, nil).Once()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(child.TransactionID), suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_RejectsWithheldTransaction() {
	ctx := context.Background()
	withheld := suite.unreceipted("30.00", "cleaning")
	withheld.Withholding = &domain.Withholding{
		WithholdingID: uuid.NewString(),
		TransactionID: withheld.TransactionID,
		TotalSource:   decimal.RequireFromString("0.30"),
		TotalVAT:      decimal.RequireFromString("1.35"),
		TotalWithheld: decimal.RequireFromString("1.65"),
	}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, withheld.TransactionID).Return(withheld, nil).Once()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(withheld.TransactionID), suite.userID)

	// Folding it would drop the 1.65 withheld from the projection while the
	// justifying invoice carries no withholding.
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ApplyLegalization", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_RejectsEmptySelection() {
	ctx := context.Background()

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(), suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionByID", mock.Anything, mock.Anything)
}

func (suite *LegalizationServiceTestSuite) TestPlanLegalization_ClosedBoxRejected() {
	ctx := context.Background()
	suite.box.Status = domain.BoxClosed
	child := suite.unreceipted("30.00", "taxi")

	_, err := suite.service.PlanLegalization(ctx, suite.box.BoxID, legalizeReq(child.TransactionID), suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidState)
}

func (suite *LegalizationServiceTestSuite) TestLegalize_AppliesPlanWithAudit() {
	ctx := context.Background()
	child := suite.unreceipted("30.00", "taxi")
	suite.mockTxnRepo.On("FindTransactionByID", ctx, child.TransactionID).Return(child, nil).Once()
	suite.mockTxnRepo.On("ApplyLegalization", ctx, mock.MatchedBy(func(plan domain.LegalizationPlan) bool {
		return plan.BoxID == suite.box.BoxID &&
			plan.Justification.Total.Equal(decimal.RequireFromString("30.00")) &&
			len(plan.ChildTransactionIDs) == 1
	}), mock.MatchedBy(func(entry domain.AuditEntry) bool {
		return entry.Action == domain.AuditLegalization && entry.PerformedBy == suite.userID
	})).Return(nil).Once()

	justification, err := suite.service.Legalize(ctx, suite.box.BoxID, legalizeReq(child.TransactionID), suite.userID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), justification.IsJustification)
	assert.Equal(suite.T(), "001-002-000000042", justification.DocumentNumber)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *LegalizationServiceTestSuite) TestLegalize_StoreFailurePropagates() {
	ctx := context.Background()
	child := suite.unreceipted("30.00", "taxi")
	storeErr := errors.New("pq: deadlock detected")
	suite.mockTxnRepo.On("FindTransactionByID", ctx, child.TransactionID).Return(child, nil).Once()
	suite.mockTxnRepo.On("ApplyLegalization", ctx, mock.Anything, mock.Anything).Return(storeErr).Once()

	_, err := suite.service.Legalize(ctx, suite.box.BoxID, legalizeReq(child.TransactionID), suite.userID)

	assert.ErrorIs(suite.T(), err, storeErr)
}

func TestLegalizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LegalizationServiceTestSuite))
}
