package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// legalizationHandler handles HTTP requests for grouping unreceipted expenses
// under a justifying invoice.
type legalizationHandler struct {
	legalizationService portssvc.LegalizationSvcFacade
}

// newLegalizationHandler creates a new legalizationHandler.
func newLegalizationHandler(ls portssvc.LegalizationSvcFacade) *legalizationHandler {
	return &legalizationHandler{
		legalizationService: ls,
	}
}

// registerLegalizationRoutes registers the legalization routes.
func registerLegalizationRoutes(rg *gin.RouterGroup, legalizationService portssvc.LegalizationSvcFacade) {
	h := newLegalizationHandler(legalizationService)

	legalizations := rg.Group("/cashboxes/:box_id/legalizations")
	{
		legalizations.POST("/plan", h.planLegalization)
		legalizations.POST("", h.legalize)
	}
}

// planLegalization godoc
// @Summary Preview a legalization
// @Description Validates the selected unreceipted transactions and returns the justifying invoice that would be created, without writing anything.
// @Tags legalizations
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   legalization body dto.LegalizeRequest true "Transactions to group and invoice details"
// @Success 200 {object} dto.LegalizationPlanResponse
// @Failure 400 {object} map[string]string "Invalid selection"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Cash box or transaction not found"
// @Failure 409 {object} map[string]string "Box is closed or a transaction is already legalized"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/legalizations/plan [post]
func (h *legalizationHandler) planLegalization(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	var req dto.LegalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PlanLegalization", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	plan, err := h.legalizationService.PlanLegalization(c.Request.Context(), boxID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to plan legalization")
		return
	}

	c.JSON(http.StatusOK, dto.ToLegalizationPlanResponse(plan))
}

// legalize godoc
// @Summary Execute a legalization
// @Description Creates the justifying invoice and re-parents the selected unreceipted transactions under it, in one atomic operation. Box totals do not change.
// @Tags legalizations
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   legalization body dto.LegalizeRequest true "Transactions to group and invoice details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid selection"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Cash box or transaction not found"
// @Failure 409 {object} map[string]string "Box is closed or a transaction is already legalized"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/legalizations [post]
func (h *legalizationHandler) legalize(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	var req dto.LegalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Legalize", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	justification, err := h.legalizationService.Legalize(c.Request.Context(), boxID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to execute legalization")
		return
	}

	logger.Info("Legalization executed",
		slog.String("box_id", boxID),
		slog.String("justification_id", justification.TransactionID),
		slog.Int("children", len(req.TransactionIDs)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(justification))
}
