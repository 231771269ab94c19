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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BranchServiceTestSuite struct {
	suite.Suite
	mockBranchRepo *MockBranchRepository
	mockUserRepo   *MockUserRepository
	service        portssvc.BranchSvcFacade
	branchID       string
	userID         string
}

func (suite *BranchServiceTestSuite) SetupTest() {
	suite.mockBranchRepo = new(MockBranchRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewBranchService(suite.mockBranchRepo, suite.mockUserRepo)
	suite.branchID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *BranchServiceTestSuite) membership(role domain.UserBranchRole) *domain.UserBranch {
	return &domain.UserBranch{
		UserID:   suite.userID,
		BranchID: suite.branchID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
}

func (suite *BranchServiceTestSuite) TestAuthorizeUserAction_HigherRoleSatisfiesLowerRequirement() {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindUserBranchRole", ctx, suite.userID, suite.branchID).Return(suite.membership(domain.RoleAdmin), nil).Once()

	err := suite.service.AuthorizeUserAction(ctx, suite.userID, suite.branchID, domain.RoleMember)

	assert.NoError(suite.T(), err)
}

func (suite *BranchServiceTestSuite) TestAuthorizeUserAction_ReadOnlyCannotRecord() {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindUserBranchRole", ctx, suite.userID, suite.branchID).Return(suite.membership(domain.RoleReadOnly), nil).Once()

	err := suite.service.AuthorizeUserAction(ctx, suite.userID, suite.branchID, domain.RoleMember)

	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
}

func (suite *BranchServiceTestSuite) TestAuthorizeUserAction_RemovedMemberLosesAccess() {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindUserBranchRole", ctx, suite.userID, suite.branchID).Return(suite.membership(domain.RoleRemoved), nil).Once()

	err := suite.service.AuthorizeUserAction(ctx, suite.userID, suite.branchID, domain.RoleReadOnly)

	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
}

func (suite *BranchServiceTestSuite) TestAuthorizeUserAction_NonMemberGetsForbiddenNotNotFound() {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindUserBranchRole", ctx, suite.userID, suite.branchID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.AuthorizeUserAction(ctx, suite.userID, suite.branchID, domain.RoleReadOnly)

	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
	assert.NotErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *BranchServiceTestSuite) TestCreateBranch_CreatorBecomesAdmin() {
	ctx := context.Background()
	creator := &domain.User{UserID: suite.userID, Name: "Maria Lopez", Email: "maria@example.com"}
	suite.mockBranchRepo.On("SaveBranch", ctx, mock.MatchedBy(func(branch domain.Branch) bool {
		return branch.Name == "Sucursal Norte" && branch.IsActive
	})).Return(nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(creator, nil).Once()
	suite.mockBranchRepo.On("AddUserToBranch", ctx, mock.MatchedBy(func(m domain.UserBranch) bool {
		return m.UserID == suite.userID && m.Role == domain.RoleAdmin && m.UserName == "Maria Lopez"
	})).Return(nil).Once()

	branch, err := suite.service.CreateBranch(ctx, dto.CreateBranchRequest{Name: "Sucursal Norte"}, suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.userID, branch.CreatedBy)
	suite.mockBranchRepo.AssertExpectations(suite.T())
}

func (suite *BranchServiceTestSuite) TestAddUserToBranch_RequiresAdmin() {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindUserBranchRole", ctx, suite.userID, suite.branchID).Return(suite.membership(domain.RoleMember), nil).Once()

	_, err := suite.service.AddUserToBranch(ctx, suite.branchID, dto.AddUserToBranchRequest{
		UserID: uuid.NewString(),
		Role:   domain.RoleMember,
	}, suite.userID)

	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
	suite.mockBranchRepo.AssertNotCalled(suite.T(), "AddUserToBranch", mock.Anything, mock.Anything)
}

func TestBranchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BranchServiceTestSuite))
}
