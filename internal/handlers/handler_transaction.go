package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/dto"
	"github.com/quipufin/cajachica_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for recording, editing and deleting
// transactions of a cash box.
type transactionHandler struct {
	cashBoxService portssvc.CashBoxSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(cs portssvc.CashBoxSvcFacade) *transactionHandler {
	return &transactionHandler{
		cashBoxService: cs,
	}
}

// registerTransactionRoutes registers the transaction mutation routes. The
// listing route lives with the cash box handler.
func registerTransactionRoutes(rg *gin.RouterGroup, cashBoxService portssvc.CashBoxSvcFacade) {
	h := newTransactionHandler(cashBoxService)

	txns := rg.Group("/cashboxes/:box_id/transactions")
	{
		txns.POST("", h.recordTransaction)
		txns.PUT("/:transaction_id", h.updateTransaction)
		txns.DELETE("/:transaction_id", h.deleteTransaction)
	}
}

// recordTransaction godoc
// @Summary Record a transaction
// @Description Records a money movement in an open box. Line item amounts must sum to the total; the amount must clear the available cash and reserve gates.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Cash box not found"
// @Failure 409 {object} map[string]string "Box is closed"
// @Failure 422 {object} map[string]string "Insufficient cash or reserve threshold breached"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions [post]
func (h *transactionHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.cashBoxService.RecordTransaction(c.Request.Context(), boxID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record transaction")
		return
	}

	logger.Info("Transaction recorded",
		slog.String("box_id", boxID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("document_type", string(txn.DocumentType)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Edits a transaction of an open box, replacing the line item set. Blocked while a withholding is attached and for legalized or justification documents.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   transaction_id path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Updated details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Edit is blocked for this transaction"
// @Failure 422 {object} map[string]string "New amount fails the cash gates"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions/{transaction_id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")
	transactionID := c.Param("transaction_id")

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.cashBoxService.UpdateTransaction(c.Request.Context(), boxID, transactionID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update transaction")
		return
	}

	logger.Info("Transaction updated", slog.String("box_id", boxID), slog.String("transaction_id", transactionID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Deletes a transaction from an open box. Blocked while a withholding is attached and for legalized or justification documents.
// @Tags transactions
// @Produce  json
// @Param   box_id path string true "Cash box ID"
// @Param   transaction_id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Delete is blocked for this transaction"
// @Security BearerAuth
// @Router /cashboxes/{box_id}/transactions/{transaction_id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("box_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.cashBoxService.DeleteTransaction(c.Request.Context(), boxID, transactionID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete transaction")
		return
	}

	logger.Info("Transaction deleted", slog.String("box_id", boxID), slog.String("transaction_id", transactionID))
	c.Status(http.StatusNoContent)
}
