package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// LedgerServicer defines the contract for ledger-related business logic.
type LedgerServicer interface {
	CreateLedger(userID, name, note string) (*models.Ledger, error)
	GetUserLedgers(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Ledger], error)
	GetLedgerByID(userID, ledgerID string) (*models.Ledger, error)
	UpdateLedger(userID, ledgerID, name, note string) (*models.Ledger, error)
	DeleteLedger(userID, ledgerID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, ledgerID, name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error)
	GetLedgerCategories(userID, ledgerID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string, parentID *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string, deleteTransactions bool, migrateToCategoryID *string) error
}

// CreditAccountParams holds the credit-specific fields for account creation.
type CreditAccountParams struct {
	CreditLimit decimal.Decimal
	BillDay     *int
	DueDay      *int
}

// LoanAccountParams holds the loan-specific fields for account creation.
type LoanAccountParams struct {
	LoanAmount         decimal.Decimal
	TotalPeriods       int
	RepaidPeriods      int
	AnnualInterestRate decimal.Decimal
	RepaymentType      models.RepaymentType
}

// AccountUpdateFields holds optional account fields for updates.
type AccountUpdateFields struct {
	Name               *string
	Notes              *string
	IncludedInNetAsset *bool
	Selectable         *bool
	CreditLimit        *decimal.Decimal
	BillDay            *int
	DueDay             *int
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateBasicAccount(userID, name, notes string, initialBalance decimal.Decimal) (*models.Account, error)
	CreateCreditAccount(userID, name, notes string, params CreditAccountParams) (*models.Account, error)
	CreateLoanAccount(userID, name, notes string, params LoanAccountParams) (*models.Account, error)
	CreateBorrowingAccount(userID, name, notes string, balance decimal.Decimal) (*models.Account, error)
	CreateLendingAccount(userID, name, notes string, balance decimal.Decimal) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	SetHidden(userID, accountID string, hidden bool) (*models.Account, error)
	DeleteAccount(userID, accountID string, deleteTransactions bool) error
	// SaveBalances persists an account's balance and debt columns inside an
	// existing database transaction.
	SaveBalances(tx *gorm.DB, account *models.Account) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
}

// TransactionUpdate holds the optional fields of a transaction edit.
// Nil fields keep their current value.
type TransactionUpdate struct {
	Date          *time.Time
	Note          *string
	Amount        *decimal.Decimal
	FromAccountID *string
	ToAccountID   *string
}

// TransactionServicer defines the contract for the transaction engine.
type TransactionServicer interface {
	CreateTransaction(userID, ledgerID string, categoryID *string, transactionType models.TransactionType, amount decimal.Decimal, note string, date time.Time, fromAccountID, toAccountID *string) (*models.Transaction, error)
	// CreateTransactionWithDB creates a transaction inside an existing
	// database transaction, for callers composing larger atomic operations.
	CreateTransactionWithDB(tx *gorm.DB, userID, ledgerID string, categoryID *string, transactionType models.TransactionType, amount decimal.Decimal, note string, date time.Time, fromAccountID, toAccountID *string) (*models.Transaction, error)
	EditTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	GetLedgerTransactions(userID, ledgerID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// LoanServicer defines the contract for loan repayment.
type LoanServicer interface {
	// RepayLoan applies one scheduled payment, or the given explicit amount,
	// to a loan account. When fundingAccountID is set an expense transaction
	// for the applied amount is posted against it on the given ledger.
	RepayLoan(userID, accountID string, fundingAccountID, ledgerID *string, amount *decimal.Decimal) (*models.Account, error)
}

// PlanUpdateFields holds optional installment plan fields for updates.
type PlanUpdateFields struct {
	AccountID    *string
	TotalAmount  *decimal.Decimal
	TotalPeriods *int
	FeeRate      *decimal.Decimal
	FeeStrategy  *models.FeeStrategy
}

// InstallmentServicer defines the contract for credit account installment plans.
type InstallmentServicer interface {
	AddPlan(userID, accountID string, totalAmount decimal.Decimal, totalPeriods int, feeRate decimal.Decimal, strategy models.FeeStrategy) (*models.InstallmentPlan, error)
	RepayPlan(userID, planID, ledgerID string) (*models.InstallmentPlan, error)
	EditPlan(userID, planID string, fields PlanUpdateFields) (*models.InstallmentPlan, error)
	DeletePlan(userID, planID string) error
	GetPlanByID(userID, planID string) (*models.InstallmentPlan, error)
	GetAccountPlans(userID, accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.InstallmentPlan], error)
}

// BudgetReport is one entry of the budget overview: budgets grouped by
// category name (not identity), with spending summed across ledgers.
type BudgetReport struct {
	CategoryName string              `json:"category_name"`
	Period       models.BudgetPeriod `json:"period"`
	Amount       decimal.Decimal     `json:"amount"`
	Spent        decimal.Decimal     `json:"spent"`
	Remaining    decimal.Decimal     `json:"remaining"`
	BudgetIDs    []string            `json:"budget_ids"`
}

// BudgetServicer defines the contract for the budget engine.
type BudgetServicer interface {
	CreateBudget(userID string, categoryID *string, amount decimal.Decimal, period models.BudgetPeriod) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, amount *decimal.Decimal) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetOverview(userID string) ([]BudgetReport, error)
	MergeBudgets(userID, targetBudgetID string) (*models.Budget, error)
}

// NetWorthSummary aggregates a user's visible, net-asset-included accounts.
type NetWorthSummary struct {
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetAssets        decimal.Decimal `json:"net_assets"`
	TotalLending     decimal.Decimal `json:"total_lending"`
	TotalBorrowing   decimal.Decimal `json:"total_borrowing"`
}

// NetWorthServicer defines the contract for user-level aggregates.
type NetWorthServicer interface {
	GetSummary(userID string) (*NetWorthSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
