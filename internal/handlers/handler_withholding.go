package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// withholdingHandler handles HTTP requests for the withholding attached to a
// transaction.
type withholdingHandler struct {
	withholdingService portssvc.WithholdingSvcFacade
}

// newWithholdingHandler creates a new withholdingHandler.
func newWithholdingHandler(ws portssvc.WithholdingSvcFacade) *withholdingHandler {
	return &withholdingHandler{
		withholdingService: ws,
	}
}

// registerWithholdingRoutes registers the withholding routes. A transaction
// carries at most one withholding, so the resource is singular.
func registerWithholdingRoutes(rg *gin.RouterGroup, withholdingService portssvc.WithholdingSvcFacade) {
	h := newWithholdingHandler(withholdingService)

	wh := rg.Group("/cashboxes/:box_id/transactions/:transaction_id/withholding")
	{
		wh.PUT("", h.upsertWithholding)
		wh.DELETE("", h.deleteWithholding)
		wh.PATCH("/collected", h.toggleCollected)
	}
}

// upsertWithholding godoc
// @Summary Create or replace the withholding of a transaction
// @Description Computes source and VAT withholding from the submitted percentages and persists it, replacing any existing item set. Locks the transaction against edits.
// @Tags withholdings
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   transaction_id path string true "Transaction ID"
// @Param   withholding body dto.UpsertWithholdingRequest true "Withholding details"
// @Success 200 {object} dto.WithholdingResponse
// @Failure 400 {object} map[string]string "Invalid percentages or unknown line item"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Box is closed or document type does not admit withholding"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions/{transaction_id}/withholding [put]
func (h *withholdingHandler) upsertWithholding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")
	transactionID := c.Param("transaction_id")

	var req dto.UpsertWithholdingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertWithholding", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	withholding, err := h.withholdingService.UpsertWithholding(c.Request.Context(), boxID, transactionID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to save withholding")
		return
	}

	logger.Info("Withholding saved", slog.String("transaction_id", transactionID), slog.String("withholding_id", withholding.WithholdingID))
	c.JSON(http.StatusOK, dto.ToWithholdingResponse(withholding))
}

// deleteWithholding godoc
// @Summary Delete the withholding of a transaction
// @Description Removes the withholding, unlocking the transaction for edits.
// @Tags withholdings
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   transaction_id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction has no withholding"
// @Failure 409 {object} map[string]string "Box is closed"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions/{transaction_id}/withholding [delete]
func (h *withholdingHandler) deleteWithholding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.withholdingService.DeleteWithholding(c.Request.Context(), boxID, transactionID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete withholding")
		return
	}

	logger.Info("Withholding deleted", slog.String("transaction_id", transactionID))
	c.Status(http.StatusNoContent)
}

// toggleCollected godoc
// @Summary Toggle the collected flag of a withholding
// @Description Marks the withholding certificate as collected or not collected.
// @Tags withholdings
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   transaction_id path string true "Transaction ID"
// @Param   toggle body dto.ToggleCollectedRequest true "New collected value"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction has no withholding"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions/{transaction_id}/withholding/collected [patch]
func (h *withholdingHandler) toggleCollected(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")
	transactionID := c.Param("transaction_id")

	var req dto.ToggleCollectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ToggleCollected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	toggle, err := h.withholdingService.StageCollectedToggle(c.Request.Context(), boxID, transactionID, req.Collected, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to stage collected toggle")
		return
	}
	if err := toggle.Commit(c.Request.Context()); err != nil {
		toggle.Rollback()
		respondServiceError(c, logger, err, "Failed to update collected flag")
		return
	}

	logger.Info("Withholding collected flag updated",
		slog.String("transaction_id", transactionID),
		slog.Bool("previous", toggle.Previous()),
		slog.Bool("collected", toggle.Staged()))
	c.JSON(http.StatusOK, gin.H{"collected": toggle.Staged()})
}
