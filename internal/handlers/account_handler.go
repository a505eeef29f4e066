package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	loanService    services.LoanServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, loanService services.LoanServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, loanService: loanService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account.
// Type selects which of the optional sections applies.
type CreateAccountRequest struct {
	Name    string             `json:"name" binding:"required,max=100"`
	Type    models.AccountType `json:"type" binding:"required,account_type"`
	Notes   string             `json:"notes" binding:"max=500"`
	Balance *decimal.Decimal   `json:"balance"`

	// Credit accounts
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	BillDay     *int             `json:"bill_day" binding:"omitempty,min=1,max=31"`
	DueDay      *int             `json:"due_day" binding:"omitempty,min=1,max=31"`

	// Loan accounts
	LoanAmount         *decimal.Decimal     `json:"loan_amount" binding:"omitempty,positive_amount"`
	TotalPeriods       *int                 `json:"total_periods" binding:"omitempty,min=1"`
	RepaidPeriods      *int                 `json:"repaid_periods" binding:"omitempty,min=0"`
	AnnualInterestRate *decimal.Decimal     `json:"annual_interest_rate"`
	RepaymentType      models.RepaymentType `json:"repayment_type" binding:"omitempty,repayment_type"`
}

// UpdateAccountRequest represents the request payload for updating an account
type UpdateAccountRequest struct {
	Name               *string          `json:"name" binding:"omitempty,max=100"`
	Notes              *string          `json:"notes" binding:"omitempty,max=500"`
	IncludedInNetAsset *bool            `json:"included_in_net_asset"`
	Selectable         *bool            `json:"selectable"`
	CreditLimit        *decimal.Decimal `json:"credit_limit"`
	BillDay            *int             `json:"bill_day" binding:"omitempty,min=1,max=31"`
	DueDay             *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
}

// RepayLoanRequest represents the request payload for a loan repayment.
// Without an amount the next scheduled payment is applied.
type RepayLoanRequest struct {
	Amount           *decimal.Decimal `json:"amount" binding:"omitempty,positive_amount"`
	FundingAccountID *string          `json:"funding_account_id" binding:"omitempty,uuid"`
	LedgerID         *string          `json:"ledger_id" binding:"omitempty,uuid"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a basic, credit, loan, borrowing, or lending account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}

	var account *models.Account
	switch req.Type {
	case models.AccountTypeBasic:
		account, err = h.accountService.CreateBasicAccount(userID, req.Name, req.Notes, balance)
	case models.AccountTypeCredit:
		creditLimit := decimal.Zero
		if req.CreditLimit != nil {
			creditLimit = *req.CreditLimit
		}
		account, err = h.accountService.CreateCreditAccount(userID, req.Name, req.Notes, services.CreditAccountParams{
			CreditLimit: creditLimit,
			BillDay:     req.BillDay,
			DueDay:      req.DueDay,
		})
	case models.AccountTypeLoan:
		if req.LoanAmount == nil || req.TotalPeriods == nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "loan_amount and total_periods are required for loan accounts"))
			return
		}
		params := services.LoanAccountParams{
			LoanAmount:    *req.LoanAmount,
			TotalPeriods:  *req.TotalPeriods,
			RepaymentType: req.RepaymentType,
		}
		if req.RepaidPeriods != nil {
			params.RepaidPeriods = *req.RepaidPeriods
		}
		if req.AnnualInterestRate != nil {
			params.AnnualInterestRate = *req.AnnualInterestRate
		}
		account, err = h.accountService.CreateLoanAccount(userID, req.Name, req.Notes, params)
	case models.AccountTypeBorrowing:
		account, err = h.accountService.CreateBorrowingAccount(userID, req.Name, req.Notes, balance)
	case models.AccountTypeLending:
		account, err = h.accountService.CreateLendingAccount(userID, req.Name, req.Notes, balance)
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account type"))
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetUserAccounts handles the retrieval of the user's accounts
// @Summary     Get accounts
// @Description Get a paginated list of the authenticated user's accounts
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
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

	result, err := h.accountService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account
// @Summary     Get account by ID
// @Description Get a specific account by ID
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
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

	account, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount handles updating an existing account
// @Summary     Update account
// @Description Update an account's name, notes, flags, and credit terms
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to update"
// @Success     200 {object} models.Account "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
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

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(userID, accountID, services.AccountUpdateFields{
		Name:               req.Name,
		Notes:              req.Notes,
		IncludedInNetAsset: req.IncludedInNetAsset,
		Selectable:         req.Selectable,
		CreditLimit:        req.CreditLimit,
		BillDay:            req.BillDay,
		DueDay:             req.DueDay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_ACCOUNT", "account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// HideAccount hides an account from all aggregates
// @Summary     Hide account
// @Description Hide an account; hidden accounts are excluded from every aggregate
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Hidden account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/hide [post]
func (h *AccountHandler) HideAccount(c *gin.Context) {
	h.setHidden(c, true)
}

// UnhideAccount makes a hidden account visible again
// @Summary     Unhide account
// @Description Make a hidden account visible again
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Visible account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/unhide [post]
func (h *AccountHandler) UnhideAccount(c *gin.Context) {
	h.setHidden(c, false)
}

func (h *AccountHandler) setHidden(c *gin.Context, hidden bool) {
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

	account, err := h.accountService.SetHidden(userID, accountID, hidden)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "HIDE_ACCOUNT"
	if !hidden {
		action = "UNHIDE_ACCOUNT"
	}
	h.auditService.Log(userID, action, "account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles the deletion of an account
// @Summary     Delete account
// @Description Delete an account. Its transactions are deleted when delete_transactions=true, otherwise kept and unlinked from the account.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id                  path  string true  "Account ID"
// @Param       delete_transactions query bool   false "Delete the account's transactions (default false)"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
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

	deleteTransactions := false
	if v := c.Query("delete_transactions"); v != "" {
		parsed, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid delete_transactions"))
			return
		}
		deleteTransactions = parsed
	}

	if err := h.accountService.DeleteAccount(userID, accountID, deleteTransactions); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ACCOUNT", "account", accountID, c.ClientIP(),
		map[string]interface{}{"delete_transactions": deleteTransactions})

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// RepayLoan applies a payment to a loan account
// @Summary     Repay loan
// @Description Apply the next scheduled payment, or an explicit amount, to a loan account. With funding_account_id an expense is recorded on ledger_id.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Loan account ID"
// @Param       request body RepayLoanRequest true "Repayment details"
// @Success     200 {object} models.Account "Updated loan account"
// @Failure     400 {object} ErrorResponse "Invalid input, not a loan account, or loan settled"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/repay [post]
func (h *AccountHandler) RepayLoan(c *gin.Context) {
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

	var req RepayLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.loanService.RepayLoan(userID, accountID, req.FundingAccountID, req.LedgerID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REPAY_LOAN", "account", accountID, c.ClientIP(),
		map[string]interface{}{"repaid_periods": account.RepaidPeriods})

	c.JSON(http.StatusOK, gin.H{"account": account})
}
