package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"
	"github.com/quipufin/cajachica_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CashBoxService ---
type MockCashBoxService struct {
	mock.Mock
}

func (m *MockCashBoxService) GetBox(ctx context.Context, boxID string, requestingUserID string) (*domain.CashBox, *domain.Totals, error) {
	args := m.Called(ctx, boxID, requestingUserID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.CashBox), args.Get(1).(*domain.Totals), args.Error(2)
}
func (m *MockCashBoxService) ListBoxes(ctx context.Context, branchID string, limit int, nextToken *string, requestingUserID string) ([]domain.CashBox, *string, error) {
	args := m.Called(ctx, branchID, limit, nextToken, requestingUserID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.CashBox), args.Get(1).(*string), args.Error(2)
}
func (m *MockCashBoxService) ListTransactions(ctx context.Context, boxID string, requestingUserID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, boxID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockCashBoxService) OpenBox(ctx context.Context, req dto.OpenCashBoxRequest, creatorUserID string) (*domain.CashBox, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashBox), args.Error(1)
}
func (m *MockCashBoxService) CanClose(ctx context.Context, boxID string, requestingUserID string) (*dto.CanCloseResponse, error) {
	args := m.Called(ctx, boxID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CanCloseResponse), args.Error(1)
}
func (m *MockCashBoxService) CloseBox(ctx context.Context, boxID string, req dto.CloseCashBoxRequest, requestingUserID string) (*domain.CashBox, error) {
	args := m.Called(ctx, boxID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashBox), args.Error(1)
}
func (m *MockCashBoxService) RecordTransaction(ctx context.Context, boxID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, boxID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockCashBoxService) UpdateTransaction(ctx context.Context, boxID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, boxID, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockCashBoxService) DeleteTransaction(ctx context.Context, boxID string, transactionID string, userID string) error {
	args := m.Called(ctx, boxID, transactionID, userID)
	return args.Error(0)
}

var _ portssvc.CashBoxSvcFacade = (*MockCashBoxService)(nil)

// --- Mock ArqueoService ---
type MockArqueoService struct {
	mock.Mock
}

func (m *MockArqueoService) Reconcile(counts []domain.DenominationCount, expected decimal.Decimal, allowEmpty bool) (*domain.Reconciliation, error) {
	args := m.Called(counts, expected, allowEmpty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}
func (m *MockArqueoService) RecordControlCount(ctx context.Context, boxID string, counts []domain.DenominationCount, performedBy string) (*domain.Reconciliation, error) {
	args := m.Called(ctx, boxID, counts, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

var _ portssvc.ArqueoSvcFacade = (*MockArqueoService)(nil)

// --- Test Suite ---
type CashBoxHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockCashBoxService
	mockArqueo  *MockArqueoService
	jwtSecret   string
	userID      string
}

func (suite *CashBoxHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterCustomValidations())
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockService = new(MockCashBoxService)
	suite.mockArqueo = new(MockArqueoService)

	v1 := suite.router.Group("/api/v1")
	registerCashBoxRoutes(v1, suite.mockService, suite.mockArqueo)
	registerTransactionRoutes(v1, suite.mockService)
}

func (suite *CashBoxHandlerTestSuite) authedRequest(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	token, err := utils.GenerateJWT(suite.userID, suite.jwtSecret, time.Hour, "test")
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CashBoxHandlerTestSuite) TestGetBox_Success() {
	boxID := uuid.NewString()
	box := &domain.CashBox{
		BoxID:         boxID,
		BranchID:      uuid.NewString(),
		Status:        domain.BoxOpen,
		CurrencyCode:  "USD",
		OpeningDate:   time.Now(),
		InitialAmount: decimal.NewFromInt(500),
	}
	totals := &domain.Totals{
		Net:  decimal.RequireFromString("120.50"),
		Cash: decimal.RequireFromString("379.50"),
	}
	suite.mockService.On("GetBox", mock.Anything, boxID, suite.userID).Return(box, totals, nil).Once()

	w := suite.authedRequest(http.MethodGet, "/api/v1/cashboxes/"+boxID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CashBoxResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(boxID, resp.BoxID)
	suite.Equal("OPEN", resp.Status)
	suite.Require().NotNil(resp.Totals)
	suite.True(resp.Totals.Cash.Equal(decimal.RequireFromString("379.50")))
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CashBoxHandlerTestSuite) TestGetBox_NotFound() {
	boxID := uuid.NewString()
	suite.mockService.On("GetBox", mock.Anything, boxID, suite.userID).
		Return(nil, nil, fmt.Errorf("cash box %s: %w", boxID, apperrors.ErrNotFound)).Once()

	w := suite.authedRequest(http.MethodGet, "/api/v1/cashboxes/"+boxID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CashBoxHandlerTestSuite) TestGetBox_MissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/cashboxes/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *CashBoxHandlerTestSuite) TestOpenBox_SetsBranchFromPath() {
	branchID := uuid.NewString()
	reqBody := dto.OpenCashBoxRequest{
		CurrencyCode:  "USD",
		InitialAmount: decimal.NewFromInt(500),
		Count: []dto.DenominationCountRequest{
			{Kind: "BILL", Value: decimal.NewFromInt(100), Quantity: 5},
		},
	}
	created := &domain.CashBox{
		BoxID:         uuid.NewString(),
		BranchID:      branchID,
		Status:        domain.BoxOpen,
		InitialAmount: decimal.NewFromInt(500),
	}
	suite.mockService.On("OpenBox", mock.Anything, mock.MatchedBy(func(r dto.OpenCashBoxRequest) bool {
		return r.BranchID == branchID
	}), suite.userID).Return(created, nil).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/branches/"+branchID+"/cashboxes", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CashBoxHandlerTestSuite) TestOpenBox_CountMismatchMapsTo422() {
	branchID := uuid.NewString()
	reqBody := dto.OpenCashBoxRequest{
		CurrencyCode:  "USD",
		InitialAmount: decimal.NewFromInt(500),
		Count: []dto.DenominationCountRequest{
			{Kind: "BILL", Value: decimal.NewFromInt(100), Quantity: 4},
		},
	}
	suite.mockService.On("OpenBox", mock.Anything, mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("counted 400.00 does not match initial amount 500.00: %w", apperrors.ErrBusinessRule)).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/branches/"+branchID+"/cashboxes", reqBody)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "does not match")
}

func (suite *CashBoxHandlerTestSuite) TestListBoxes_PassesPaginationThrough() {
	branchID := uuid.NewString()
	token := "opaque-cursor"
	next := "next-cursor"
	boxes := []domain.CashBox{{BoxID: uuid.NewString(), BranchID: branchID, Status: domain.BoxClosed}}
	suite.mockService.On("ListBoxes", mock.Anything, branchID, 5, &token, suite.userID).
		Return(boxes, &next, nil).Once()

	url := fmt.Sprintf("/api/v1/branches/%s/cashboxes?limit=5&nextToken=%s", branchID, token)
	w := suite.authedRequest(http.MethodGet, url, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListCashBoxesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Boxes, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func (suite *CashBoxHandlerTestSuite) TestRecordTransaction_Success() {
	boxID := uuid.NewString()
	reqBody := dto.CreateTransactionRequest{
		TransactionDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		DocumentType:    "INVOICE",
		DocumentNumber:  "001-001-000123",
		Total:           decimal.RequireFromString("42.50"),
		LineItems: []dto.LineItemRequest{
			{Name: "Cleaning supplies", Amount: decimal.RequireFromString("42.50")},
		},
	}
	created := &domain.Transaction{
		TransactionID:  uuid.NewString(),
		BoxID:          boxID,
		DocumentType:   domain.DocInvoice,
		DocumentNumber: "001-001-000123",
		Total:          decimal.RequireFromString("42.50"),
	}
	suite.mockService.On("RecordTransaction", mock.Anything, boxID, mock.MatchedBy(func(r dto.CreateTransactionRequest) bool {
		return r.DocumentNumber == "001-001-000123" && len(r.LineItems) == 1
	}), suite.userID).Return(created, nil).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/cashboxes/"+boxID+"/transactions", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.TransactionID, resp.TransactionID)
}

func (suite *CashBoxHandlerTestSuite) TestRecordTransaction_ClosedBoxMapsTo409() {
	boxID := uuid.NewString()
	reqBody := dto.CreateTransactionRequest{
		TransactionDate: time.Now(),
		DocumentType:    "NO_INVOICE",
		DocumentNumber:  "S/N-1",
		Total:           decimal.NewFromInt(10),
		LineItems:       []dto.LineItemRequest{{Name: "Taxi", Amount: decimal.NewFromInt(10)}},
	}
	suite.mockService.On("RecordTransaction", mock.Anything, boxID, mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("box is closed: %w", apperrors.ErrInvalidState)).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/cashboxes/"+boxID+"/transactions", reqBody)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *CashBoxHandlerTestSuite) TestRecordTransaction_InvalidBodyRejected() {
	boxID := uuid.NewString()
	// Missing documentType and line items.
	w := suite.authedRequest(http.MethodPost, "/api/v1/cashboxes/"+boxID+"/transactions", gin.H{
		"total": "10.00",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "RecordTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CashBoxHandlerTestSuite) TestCanClose_ReturnsReasons() {
	boxID := uuid.NewString()
	resp := &dto.CanCloseResponse{
		Allowed:              false,
		Reasons:              []string{"1 transaction(s) pending legalization"},
		PendingLegalizations: []string{uuid.NewString()},
		ExpectedCash:         decimal.RequireFromString("970.00"),
	}
	suite.mockService.On("CanClose", mock.Anything, boxID, suite.userID).Return(resp, nil).Once()

	w := suite.authedRequest(http.MethodGet, "/api/v1/cashboxes/"+boxID+"/can-close", nil)

	suite.Equal(http.StatusOK, w.Code)
	var decoded dto.CanCloseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &decoded))
	suite.False(decoded.Allowed)
	suite.Len(decoded.PendingLegalizations, 1)
}

func (suite *CashBoxHandlerTestSuite) TestControlCount_ReturnsVerdict() {
	boxID := uuid.NewString()
	reqBody := dto.ControlCountRequest{
		Count: []dto.DenominationCountRequest{
			{Kind: "COIN", Value: decimal.RequireFromString("0.25"), Quantity: 8},
		},
	}
	recon := &domain.Reconciliation{
		Counted:    decimal.RequireFromString("2.00"),
		Expected:   decimal.RequireFromString("2.00"),
		Difference: decimal.Zero,
		Verdict:    domain.Verified,
	}
	suite.mockArqueo.On("RecordControlCount", mock.Anything, boxID, mock.Anything, suite.userID).
		Return(recon, nil).Once()

	w := suite.authedRequest(http.MethodPost, "/api/v1/cashboxes/"+boxID+"/control-counts", reqBody)

	suite.Equal(http.StatusOK, w.Code)
	var decoded dto.ReconciliationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &decoded))
	suite.Equal("VERIFIED", decoded.Verdict)
}

func (suite *CashBoxHandlerTestSuite) TestDeleteTransaction_NoContent() {
	boxID := uuid.NewString()
	transactionID := uuid.NewString()
	suite.mockService.On("DeleteTransaction", mock.Anything, boxID, transactionID, suite.userID).Return(nil).Once()

	w := suite.authedRequest(http.MethodDelete, "/api/v1/cashboxes/"+boxID+"/transactions/"+transactionID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CashBoxHandlerTestSuite) TestDeleteTransaction_ConcurrentConflictMapsTo409() {
	boxID := uuid.NewString()
	transactionID := uuid.NewString()
	suite.mockService.On("DeleteTransaction", mock.Anything, boxID, transactionID, suite.userID).
		Return(fmt.Errorf("%w: transaction was re-parented meanwhile", apperrors.ErrConsistency)).Once()

	w := suite.authedRequest(http.MethodDelete, "/api/v1/cashboxes/"+boxID+"/transactions/"+transactionID, nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func TestCashBoxHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CashBoxHandlerTestSuite))
}
