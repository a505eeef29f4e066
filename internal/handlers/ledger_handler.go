package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// LedgerHandler handles ledger-related requests.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, auditService: auditService}
}

// CreateLedgerRequest represents the request payload for creating a ledger
type CreateLedgerRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Note string `json:"note" binding:"max=500"`
}

// UpdateLedgerRequest represents the request payload for updating a ledger
type UpdateLedgerRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"`
	Note string `json:"note" binding:"omitempty,max=500"`
}

// CreateLedger handles the creation of a new ledger
// @Summary     Create a ledger
// @Description Create a new ledger for the authenticated user
// @Tags        ledgers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateLedgerRequest true "Ledger details"
// @Success     201 {object} models.Ledger "Ledger created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate ledger name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledgers [post]
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ledger, err := h.ledgerService.CreateLedger(userID, req.Name, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_LEDGER", "ledger", ledger.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"ledger": ledger})
}

// GetUserLedgers handles the retrieval of the user's ledgers
// @Summary     Get ledgers
// @Description Get a paginated list of the authenticated user's ledgers
// @Tags        ledgers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Ledger] "Paginated ledgers"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledgers [get]
func (h *LedgerHandler) GetUserLedgers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.GetUserLedgers(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLedgerByID handles the retrieval of a specific ledger
// @Summary     Get ledger by ID
// @Description Get a specific ledger by ID
// @Tags        ledgers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Ledger ID"
// @Success     200 {object} models.Ledger "Ledger details"
// @Failure     400 {object} ErrorResponse "Invalid ledger ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Ledger not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledgers/{id} [get]
func (h *LedgerHandler) GetLedgerByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ledgerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ledger, err := h.ledgerService.GetLedgerByID(userID, ledgerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledger": ledger})
}

// UpdateLedger handles updating an existing ledger
// @Summary     Update ledger
// @Description Update a ledger's name and note
// @Tags        ledgers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Ledger ID"
// @Param       request body UpdateLedgerRequest true "Fields to update"
// @Success     200 {object} models.Ledger "Updated ledger"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Ledger not found"
// @Failure     409 {object} ErrorResponse "Duplicate ledger name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledgers/{id} [put]
func (h *LedgerHandler) UpdateLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ledgerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ledger, err := h.ledgerService.UpdateLedger(userID, ledgerID, req.Name, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_LEDGER", "ledger", ledgerID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"ledger": ledger})
}

// DeleteLedger handles the deletion of a ledger
// @Summary     Delete ledger
// @Description Delete a ledger together with its categories, budgets, and transactions
// @Tags        ledgers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Ledger ID"
// @Success     200 {object} MessageResponse "Ledger deleted"
// @Failure     400 {object} ErrorResponse "Invalid ledger ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Ledger not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledgers/{id} [delete]
func (h *LedgerHandler) DeleteLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ledgerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteLedger(userID, ledgerID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_LEDGER", "ledger", ledgerID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Ledger deleted successfully"})
}
