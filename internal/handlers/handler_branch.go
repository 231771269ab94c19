package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/quipufin/cajachica_backend/internal/apperrors"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// branchHandler handles HTTP requests related to branches and their
// memberships.
type branchHandler struct {
	branchService portssvc.BranchSvcFacade
}

// newBranchHandler creates a new branchHandler.
func newBranchHandler(bs portssvc.BranchSvcFacade) *branchHandler {
	return &branchHandler{
		branchService: bs,
	}
}

// registerBranchRoutes registers all branch-related routes.
func registerBranchRoutes(rg *gin.RouterGroup, branchService portssvc.BranchSvcFacade) {
	h := newBranchHandler(branchService)

	branches := rg.Group("/branches")
	{
		branches.POST("", h.createBranch)
		branches.GET("", h.listUserBranches)
		branches.GET("/:branch_id", h.getBranch)
		branches.POST("/:branch_id/users", h.addUserToBranch)
	}
}

// createBranch godoc
// @Summary Create a new branch
// @Description Creates a new branch; the creator becomes its admin
// @Tags branches
// @Accept  json
// @Produce  json
// @Param   branch body dto.CreateBranchRequest true "Branch details"
// @Success 201 {object} dto.BranchResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create branch"
// @Security BearerAuth
// @Router /branches [post]
func (h *branchHandler) createBranch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBranch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	branch, err := h.branchService.CreateBranch(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A branch with this name already exists"})
			return
		}
		logger.Error("Failed to create branch in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create branch"})
		return
	}

	logger.Info("Branch created successfully", slog.String("branch_id", branch.BranchID), slog.String("creator_user_id", creatorUserID))
	c.JSON(http.StatusCreated, dto.ToBranchResponse(branch))
}

// listUserBranches godoc
// @Summary List branches for the logged-in user
// @Description Retrieves all branches the user is an active member of
// @Tags branches
// @Produce  json
// @Success 200 {object} dto.ListBranchesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list branches"
// @Security BearerAuth
// @Router /branches [get]
func (h *branchHandler) listUserBranches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	branches, err := h.branchService.ListUserBranches(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list branches from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list branches"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListBranchesResponse(branches))
}

// getBranch godoc
// @Summary Get a branch by ID
// @Description Retrieves details for a branch the user is a member of
// @Tags branches
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Success 200 {object} dto.BranchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Branch not found"
// @Failure 500 {object} map[string]string "Failed to retrieve branch"
// @Security BearerAuth
// @Router /branches/{branch_id} [get]
func (h *branchHandler) getBranch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	branch, err := h.branchService.GetBranchByID(c.Request.Context(), branchID, userID)
	if err != nil {
		respondBranchError(c, logger, err, "Failed to retrieve branch")
		return
	}

	c.JSON(http.StatusOK, dto.ToBranchResponse(branch))
}

// addUserToBranch godoc
// @Summary Add or update a user in a branch
// @Description Adds a user to the branch with the given role, or updates the role if already a member. Requires admin.
// @Tags branches
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   membership body dto.AddUserToBranchRequest true "User and role"
// @Success 200 {object} dto.UserBranchResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (requires admin role)"
// @Failure 404 {object} map[string]string "Branch or user not found"
// @Failure 500 {object} map[string]string "Failed to add user to branch"
// @Security BearerAuth
// @Router /branches/{branch_id}/users [post]
func (h *branchHandler) addUserToBranch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.AddUserToBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToBranch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	membership, err := h.branchService.AddUserToBranch(c.Request.Context(), branchID, req, requestingUserID)
	if err != nil {
		respondBranchError(c, logger, err, "Failed to add user to branch")
		return
	}

	logger.Info("User added to branch", slog.String("branch_id", branchID), slog.String("added_user_id", req.UserID), slog.String("role", string(req.Role)))
	c.JSON(http.StatusOK, dto.ToUserBranchResponse(membership))
}

// respondBranchError maps service errors for branch operations onto HTTP
// status codes.
func respondBranchError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
