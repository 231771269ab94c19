package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quipufin/cajachica_backend/internal/apperrors"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// cashBoxHandler handles HTTP requests for cash boxes: opening, listing,
// totals, counts and the close flow.
type cashBoxHandler struct {
	cashBoxService portssvc.CashBoxSvcFacade
	arqueoService  portssvc.ArqueoSvcFacade
}

// newCashBoxHandler creates a new cashBoxHandler.
func newCashBoxHandler(cs portssvc.CashBoxSvcFacade, as portssvc.ArqueoSvcFacade) *cashBoxHandler {
	return &cashBoxHandler{
		cashBoxService: cs,
		arqueoService:  as,
	}
}

// registerCashBoxRoutes registers cash box routes. Creation and listing are
// scoped under a branch; everything else addresses the box directly since a
// box id already identifies its branch.
func registerCashBoxRoutes(rg *gin.RouterGroup, cashBoxService portssvc.CashBoxSvcFacade, arqueoService portssvc.ArqueoSvcFacade) {
	h := newCashBoxHandler(cashBoxService, arqueoService)

	branchBoxes := rg.Group("/branches/:branch_id/cashboxes")
	{
		branchBoxes.POST("", h.openBox)
		branchBoxes.GET("", h.listBoxes)
	}

	box := rg.Group("/cashboxes/:box_id")
	{
		box.GET("", h.getBox)
		box.GET("/can-close", h.canClose)
		box.POST("/close", h.closeBox)
		box.POST("/control-counts", h.recordControlCount)
		box.GET("/transactions", h.listTransactions)
	}
}

// respondServiceError maps core service errors onto HTTP status codes. The
// error text is safe to surface: services word their validation and business
// rule failures for the caller.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConsistency):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrBusinessRule):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// openBox godoc
// @Summary Open a new cash box
// @Description Opens a cash box in the branch. The submitted denomination count must match the initial amount exactly.
// @Tags cashboxes
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   box body dto.OpenCashBoxRequest true "Opening details"
// @Success 201 {object} dto.CashBoxResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (requires admin role)"
// @Failure 422 {object} map[string]string "Count does not match the initial amount"
// @Security BearerAuth
// @Router /branches/{branch_id}/cashboxes [post]
func (h *cashBoxHandler) openBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.OpenCashBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenBox", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.BranchID = c.Param("branch_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	box, err := h.cashBoxService.OpenBox(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to open cash box")
		return
	}

	logger.Info("Cash box opened", slog.String("box_id", box.BoxID), slog.String("branch_id", box.BranchID))
	c.JSON(http.StatusCreated, dto.ToCashBoxResponse(box, nil))
}

// listBoxes godoc
// @Summary List cash boxes of a branch
// @Description Retrieves a page of the branch's cash boxes, newest opening date first.
// @Tags cashboxes
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListCashBoxesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /branches/{branch_id}/cashboxes [get]
func (h *cashBoxHandler) listBoxes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	boxes, newToken, err := h.cashBoxService.ListBoxes(c.Request.Context(), branchID, limit, nextToken, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list cash boxes")
		return
	}

	resp := dto.ListCashBoxesResponse{
		Boxes:     make([]dto.CashBoxResponse, len(boxes)),
		NextToken: newToken,
	}
	for i := range boxes {
		resp.Boxes[i] = dto.ToCashBoxResponse(&boxes[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

// getBox godoc
// @Summary Get a cash box
// @Description Retrieves a cash box with its totals recomputed from the stored transaction set.
// @Tags cashboxes
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Success 200 {object} dto.CashBoxResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Cash box not found"
// @Security BearerAuth
// @Router /cashboxes/{box_id} [get]
func (h *cashBoxHandler) getBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	box, totals, err := h.cashBoxService.GetBox(c.Request.Context(), boxID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve cash box")
		return
	}

	c.JSON(http.StatusOK, dto.ToCashBoxResponse(box, totals))
}

// canClose godoc
// @Summary Check whether a cash box may close
// @Description Reports whether the box can close right now, the blocking reasons when it cannot, and the expected cash amount.
// @Tags cashboxes
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Success 200 {object} dto.CanCloseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Cash box not found"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/can-close [get]
func (h *cashBoxHandler) canClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.cashBoxService.CanClose(c.Request.Context(), boxID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to evaluate close conditions")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// closeBox godoc
// @Summary Close a cash box
// @Description Closes the box after verifying the submitted count against the expected cash and that no legalizations are pending. Records the reposition check.
// @Tags cashboxes
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   close body dto.CloseCashBoxRequest true "Closing count and reposition check"
// @Success 200 {object} dto.CashBoxResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (requires admin role)"
// @Failure 404 {object} map[string]string "Cash box not found"
// @Failure 409 {object} map[string]string "Box is not open"
// @Failure 422 {object} map[string]string "Count mismatch or pending legalizations"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/close [post]
func (h *cashBoxHandler) closeBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	var req dto.CloseCashBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CloseBox", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	box, err := h.cashBoxService.CloseBox(c.Request.Context(), boxID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to close cash box")
		return
	}

	logger.Info("Cash box closed", slog.String("box_id", box.BoxID))
	c.JSON(http.StatusOK, dto.ToCashBoxResponse(box, nil))
}

// recordControlCount godoc
// @Summary Record a control count
// @Description Performs a free-standing audit count against the box's current expected cash. The difference is recorded but nothing is blocked.
// @Tags cashboxes
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   count body dto.ControlCountRequest true "Denomination count"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid count entries"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Cash box not found"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/control-counts [post]
func (h *cashBoxHandler) recordControlCount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	var req dto.ControlCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for control count", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	recon, err := h.arqueoService.RecordControlCount(c.Request.Context(), boxID, dto.ToDomainCounts(req.Count), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record control count")
		return
	}

	logger.Info("Control count recorded", slog.String("box_id", boxID), slog.String("verdict", string(recon.Verdict)))
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(*recon))
}

// listTransactions godoc
// @Summary List transactions of a cash box
// @Description Retrieves every transaction of the box in chronological order, with line items and withholdings attached.
// @Tags transactions
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Success 200 {array} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Cash box not found"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions [get]
func (h *cashBoxHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txns, err := h.cashBoxService.ListTransactions(c.Request.Context(), boxID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(txns))
}
