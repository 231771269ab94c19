package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockLedgerReader stubs the totals projection for the recorder tests.
type MockLedgerReader struct {
	mock.Mock
}

var _ portssvc.LedgerReaderSvc = (*MockLedgerReader)(nil)

func (m *MockLedgerReader) GetBoxTotals(ctx context.Context, boxID string) (*domain.Totals, error) {
	args := m.Called(ctx, boxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Totals), args.Error(1)
}

type ArqueoServiceTestSuite struct {
	suite.Suite
	mockBoxRepo   *MockCashBoxRepository
	mockLedger    *MockLedgerReader
	mockAuditRepo *MockAuditRepository
	service       portssvc.ArqueoSvcFacade
}

func (suite *ArqueoServiceTestSuite) SetupTest() {
	suite.mockBoxRepo = new(MockCashBoxRepository)
	suite.mockLedger = new(MockLedgerReader)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewArqueoService(nil, suite.mockBoxRepo, suite.mockLedger, suite.mockAuditRepo)
}

func count(kind domain.DenominationKind, value string, quantity int64) domain.DenominationCount {
	return domain.DenominationCount{
		Denomination: domain.Denomination{Kind: kind, Value: decimal.RequireFromString(value)},
		Quantity:     quantity,
	}
}

func (suite *ArqueoServiceTestSuite) TestReconcile_ExactMatch() {
	// 1×50 + 2×20 + 4×1 + 2×0.50 = 95.00
	counts := []domain.DenominationCount{
		count(domain.Bill, "50", 1),
		count(domain.Bill, "20", 2),
		count(domain.Coin, "1", 4),
		count(domain.Coin, "0.50", 2),
	}

	r, err := suite.service.Reconcile(counts, decimal.RequireFromString("95.00"), false)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Verified, r.Verdict)
	assert.True(suite.T(), r.Counted.Equal(decimal.RequireFromString("95.00")))
	assert.True(suite.T(), r.Difference.IsZero())
	assert.True(suite.T(), r.Matches())
}

func (suite *ArqueoServiceTestSuite) TestReconcile_OneCentShortIsShortage() {
	counts := []domain.DenominationCount{
		count(domain.Bill, "50", 1),
		count(domain.Bill, "20", 2),
		count(domain.Coin, "1", 4),
		count(domain.Coin, "0.50", 1),
		count(domain.Coin, "0.25", 1),
		count(domain.Coin, "0.10", 2),
		count(domain.Coin, "0.01", 4),
	}

	r, err := suite.service.Reconcile(counts, decimal.RequireFromString("95.00"), false)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Shortage, r.Verdict)
	assert.True(suite.T(), r.Difference.Equal(decimal.RequireFromString("-0.01")), "a single cent off is never VERIFIED")
}

func (suite *ArqueoServiceTestSuite) TestReconcile_SurplusVerdict() {
	counts := []domain.DenominationCount{count(domain.Bill, "100", 2)}

	r, err := suite.service.Reconcile(counts, decimal.RequireFromString("150.00"), false)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Surplus, r.Verdict)
	assert.True(suite.T(), r.Difference.Equal(decimal.RequireFromString("50.00")))
}

func (suite *ArqueoServiceTestSuite) TestReconcile_EmptyCountRejected() {
	_, err := suite.service.Reconcile(nil, decimal.Zero, false)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)

	// All-zero quantities count as empty too.
	_, err = suite.service.Reconcile([]domain.DenominationCount{count(domain.Bill, "100", 0)}, decimal.Zero, false)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *ArqueoServiceTestSuite) TestReconcile_EmptyCountAllowedWhenFlagged() {
	r, err := suite.service.Reconcile(nil, decimal.Zero, true)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Verified, r.Verdict)
}

func (suite *ArqueoServiceTestSuite) TestReconcile_RejectsUnknownDenomination() {
	counts := []domain.DenominationCount{count(domain.Bill, "7", 1)}

	_, err := suite.service.Reconcile(counts, decimal.NewFromInt(7), false)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *ArqueoServiceTestSuite) TestReconcile_RejectsNegativeQuantity() {
	counts := []domain.DenominationCount{count(domain.Bill, "100", -1)}

	_, err := suite.service.Reconcile(counts, decimal.Zero, false)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *ArqueoServiceTestSuite) TestReconcile_RejectsDuplicateDenomination() {
	counts := []domain.DenominationCount{
		count(domain.Bill, "100", 1),
		count(domain.Bill, "100", 2),
	}

	_, err := suite.service.Reconcile(counts, decimal.NewFromInt(300), false)

	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *ArqueoServiceTestSuite) TestReconcile_OneBillAndOneCoinAreDistinct() {
	counts := []domain.DenominationCount{
		count(domain.Bill, "1", 3),
		count(domain.Coin, "1", 2),
	}

	r, err := suite.service.Reconcile(counts, decimal.NewFromInt(5), false)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Verified, r.Verdict)
}

func (suite *ArqueoServiceTestSuite) TestRecordControlCount_AppendsAuditEntry() {
	ctx := context.Background()
	boxID := uuid.NewString()
	userID := uuid.NewString()
	box := domain.CashBox{BoxID: boxID, Status: domain.BoxOpen, InitialAmount: decimal.NewFromInt(500)}
	totals := domain.Totals{Cash: decimal.RequireFromString("100.00")}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, boxID).Return(&box, nil).Once()
	suite.mockLedger.On("GetBoxTotals", ctx, boxID).Return(&totals, nil).Once()
	suite.mockAuditRepo.On("AppendAuditEntry", ctx, mock.MatchedBy(func(entry domain.AuditEntry) bool {
		return entry.Action == domain.AuditControlCount && entry.BoxID != nil && *entry.BoxID == boxID &&
			entry.Detail["purpose"] == string(domain.CountControl)
	})).Return(nil).Once()

	r, err := suite.service.RecordControlCount(ctx, boxID, []domain.DenominationCount{count(domain.Bill, "100", 1)}, userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Verified, r.Verdict)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *ArqueoServiceTestSuite) TestRecordControlCount_ShortageIsRecordedNotRejected() {
	ctx := context.Background()
	boxID := uuid.NewString()
	box := domain.CashBox{BoxID: boxID, Status: domain.BoxOpen}
	totals := domain.Totals{Cash: decimal.RequireFromString("100.00")}

	suite.mockBoxRepo.On("FindCashBoxByID", ctx, boxID).Return(&box, nil).Once()
	suite.mockLedger.On("GetBoxTotals", ctx, boxID).Return(&totals, nil).Once()
	suite.mockAuditRepo.On("AppendAuditEntry", ctx, mock.Anything).Return(nil).Once()

	r, err := suite.service.RecordControlCount(ctx, boxID, []domain.DenominationCount{count(domain.Bill, "50", 1)}, uuid.NewString())

	assert.NoError(suite.T(), err, "a control count records the difference instead of gating on it")
	assert.Equal(suite.T(), domain.Shortage, r.Verdict)
	assert.True(suite.T(), r.Difference.Equal(decimal.RequireFromString("-50.00")))
}

func TestArqueoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArqueoServiceTestSuite))
}
