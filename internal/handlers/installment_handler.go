package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// InstallmentHandler handles installment plan requests.
type InstallmentHandler struct {
	installmentService services.InstallmentServicer
	auditService       services.AuditServicer
}

// NewInstallmentHandler creates a new InstallmentHandler.
func NewInstallmentHandler(installmentService services.InstallmentServicer, auditService services.AuditServicer) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService, auditService: auditService}
}

// CreateInstallmentPlanRequest represents the request payload for creating an installment plan
type CreateInstallmentPlanRequest struct {
	TotalAmount  decimal.Decimal    `json:"total_amount" binding:"required,positive_amount"`
	TotalPeriods int                `json:"total_periods" binding:"required,min=1"`
	FeeRate      decimal.Decimal    `json:"fee_rate"`
	FeeStrategy  models.FeeStrategy `json:"fee_strategy" binding:"omitempty,fee_strategy"`
}

// UpdateInstallmentPlanRequest represents the request payload for updating an installment plan
type UpdateInstallmentPlanRequest struct {
	AccountID    *string             `json:"account_id" binding:"omitempty,uuid"`
	TotalAmount  *decimal.Decimal    `json:"total_amount" binding:"omitempty,positive_amount"`
	TotalPeriods *int                `json:"total_periods" binding:"omitempty,min=1"`
	FeeRate      *decimal.Decimal    `json:"fee_rate"`
	FeeStrategy  *models.FeeStrategy `json:"fee_strategy" binding:"omitempty,fee_strategy"`
}

// RepayInstallmentRequest represents the request payload for repaying one period
type RepayInstallmentRequest struct {
	LedgerID string `json:"ledger_id" binding:"required,uuid"`
}

// CreatePlan handles attaching an installment plan to a credit account
// @Summary     Create installment plan
// @Description Attach an installment plan to a credit account and book its debt
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                       true "Credit account ID"
// @Param       request body CreateInstallmentPlanRequest true "Plan details"
// @Success     201 {object} models.InstallmentPlan "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input or not a credit account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/installments [post]
func (h *InstallmentHandler) CreatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.installmentService.AddPlan(userID, accountID, req.TotalAmount, req.TotalPeriods, req.FeeRate, req.FeeStrategy)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INSTALLMENT_PLAN", "installment_plan", plan.ID, c.ClientIP(),
		map[string]interface{}{"total_amount": req.TotalAmount.String(), "total_periods": req.TotalPeriods})

	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

// GetAccountPlans handles the retrieval of a credit account's installment plans
// @Summary     Get account installment plans
// @Description Get a paginated list of installment plans on a credit account
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Credit account ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.InstallmentPlan] "Paginated plans"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/installments [get]
func (h *InstallmentHandler) GetAccountPlans(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.installmentService.GetAccountPlans(userID, accountID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPlanByID handles the retrieval of a specific installment plan
// @Summary     Get installment plan by ID
// @Description Get a specific installment plan by ID
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} models.InstallmentPlan "Plan details"
// @Failure     400 {object} ErrorResponse "Invalid plan ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments/{id} [get]
func (h *InstallmentHandler) GetPlanByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.installmentService.GetPlanByID(userID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// RepayPlan handles repaying one period of an installment plan
// @Summary     Repay installment period
// @Description Repay the next period of an installment plan, recording an expense on the given ledger
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Plan ID"
// @Param       request body RepayInstallmentRequest true "Repayment details"
// @Success     200 {object} models.InstallmentPlan "Updated plan"
// @Failure     400 {object} ErrorResponse "Invalid input or plan settled"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan or ledger not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments/{id}/repay [post]
func (h *InstallmentHandler) RepayPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RepayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.installmentService.RepayPlan(userID, planID, req.LedgerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REPAY_INSTALLMENT", "installment_plan", planID, c.ClientIP(),
		map[string]interface{}{"paid_periods": plan.PaidPeriods})

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// UpdatePlan handles updating an existing installment plan
// @Summary     Update installment plan
// @Description Update a plan's terms; the account's debt is rebooked accordingly
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                       true "Plan ID"
// @Param       request body UpdateInstallmentPlanRequest true "Fields to update"
// @Success     200 {object} models.InstallmentPlan "Updated plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments/{id} [put]
func (h *InstallmentHandler) UpdatePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateInstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.installmentService.EditPlan(userID, planID, services.PlanUpdateFields{
		AccountID:    req.AccountID,
		TotalAmount:  req.TotalAmount,
		TotalPeriods: req.TotalPeriods,
		FeeRate:      req.FeeRate,
		FeeStrategy:  req.FeeStrategy,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INSTALLMENT_PLAN", "installment_plan", planID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// DeletePlan handles the deletion of an installment plan
// @Summary     Delete installment plan
// @Description Delete a plan and lift its outstanding debt off the account
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} MessageResponse "Plan deleted"
// @Failure     400 {object} ErrorResponse "Invalid plan ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /installments/{id} [delete]
func (h *InstallmentHandler) DeletePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.installmentService.DeletePlan(userID, planID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INSTALLMENT_PLAN", "installment_plan", planID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Installment plan deleted successfully"})
}
