package services_test

import (
	"context"
	"time"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock CashBoxRepository ---

type MockCashBoxRepository struct {
	mock.Mock
}

var _ portsrepo.CashBoxRepositoryFacade = (*MockCashBoxRepository)(nil)

func (m *MockCashBoxRepository) FindCashBoxByID(ctx context.Context, boxID string) (*domain.CashBox, error) {
	args := m.Called(ctx, boxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashBox), args.Error(1)
}

func (m *MockCashBoxRepository) ListCashBoxesByBranch(ctx context.Context, branchID string, limit int, nextToken *string) ([]domain.CashBox, *string, error) {
	args := m.Called(ctx, branchID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.CashBox), returnedNextToken, args.Error(2)
}

func (m *MockCashBoxRepository) SaveCashBox(ctx context.Context, box domain.CashBox, openingAudit domain.AuditEntry) error {
	args := m.Called(ctx, box, openingAudit)
	return args.Error(0)
}

func (m *MockCashBoxRepository) CloseCashBox(ctx context.Context, box domain.CashBox, closingAudit domain.AuditEntry) error {
	args := m.Called(ctx, box, closingAudit)
	return args.Error(0)
}

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionsByBoxID(ctx context.Context, boxID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, boxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionRepository) ApplyLegalization(ctx context.Context, plan domain.LegalizationPlan, audit domain.AuditEntry) error {
	args := m.Called(ctx, plan, audit)
	return args.Error(0)
}

// --- Mock WithholdingRepository ---

type MockWithholdingRepository struct {
	mock.Mock
}

var _ portsrepo.WithholdingRepositoryFacade = (*MockWithholdingRepository)(nil)

func (m *MockWithholdingRepository) UpsertWithholding(ctx context.Context, withholding domain.Withholding) error {
	args := m.Called(ctx, withholding)
	return args.Error(0)
}

func (m *MockWithholdingRepository) DeleteWithholding(ctx context.Context, withholdingID string) error {
	args := m.Called(ctx, withholdingID)
	return args.Error(0)
}

func (m *MockWithholdingRepository) SetCollected(ctx context.Context, withholdingID string, collected bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, withholdingID, collected, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock BranchAuthorizer ---

type MockBranchAuthorizer struct {
	mock.Mock
}

var _ portssvc.BranchAuthorizerSvc = (*MockBranchAuthorizer)(nil)

func (m *MockBranchAuthorizer) AuthorizeUserAction(ctx context.Context, userID string, branchID string, requiredRole domain.UserBranchRole) error {
	args := m.Called(ctx, userID, branchID, requiredRole)
	return args.Error(0)
}

// --- Mock BranchRepository ---

type MockBranchRepository struct {
	mock.Mock
}

var _ portsrepo.BranchRepositoryFacade = (*MockBranchRepository)(nil)

func (m *MockBranchRepository) FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchRepository) ListBranchesByUser(ctx context.Context, userID string) ([]domain.Branch, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindUserBranchRole(ctx context.Context, userID string, branchID string) (*domain.UserBranch, error) {
	args := m.Called(ctx, userID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserBranch), args.Error(1)
}

func (m *MockBranchRepository) SaveBranch(ctx context.Context, branch domain.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) AddUserToBranch(ctx context.Context, membership domain.UserBranch) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshTokenHash(ctx context.Context, userID string, tokenHash string, expiryTime time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshTokenHash(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}
