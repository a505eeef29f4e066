// Package errors provides custom error types for the Moneta API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Ledger errors.
var (
	ErrLedgerNotFound  = &AppError{Code: "LEDGER_NOT_FOUND", Message: "Ledger not found", StatusCode: http.StatusNotFound}
	ErrDuplicateLedger = &AppError{Code: "DUPLICATE_LEDGER", Message: "A ledger with this name already exists", StatusCode: http.StatusConflict}
	ErrLedgerMismatch  = &AppError{Code: "LEDGER_MISMATCH", Message: "Entity belongs to a different ledger", StatusCode: http.StatusBadRequest}
)

// Account errors.
var (
	ErrAccountNotFound      = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrLoanAccountImmutable = &AppError{Code: "UNSUPPORTED_OPERATION", Message: "Cannot credit or debit a loan account", StatusCode: http.StatusBadRequest}
	ErrLoanSettled          = &AppError{Code: "LOAN_SETTLED", Message: "Loan has already been fully repaid", StatusCode: http.StatusBadRequest}
	ErrNotLoanAccount       = &AppError{Code: "NOT_LOAN_ACCOUNT", Message: "Account is not a loan account", StatusCode: http.StatusBadRequest}
	ErrNotCreditAccount     = &AppError{Code: "NOT_CREDIT_ACCOUNT", Message: "Account is not a credit account", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryHasChildren  = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrDuplicateCategory    = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists in this ledger", StatusCode: http.StatusConflict}
	ErrSelfParentCategory   = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrCategoryTooDeep      = &AppError{Code: "CATEGORY_TOO_DEEP", Message: "Subcategories cannot have children of their own", StatusCode: http.StatusBadRequest}
	ErrCategoryTypeMismatch = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Category type does not match", StatusCode: http.StatusBadRequest}
	ErrCrossLedgerMigration = &AppError{Code: "CROSS_LEDGER_MIGRATION", Message: "Transactions cannot be migrated across ledgers", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrMissingAccountRef      = &AppError{Code: "MISSING_ACCOUNT_REF", Message: "Required account reference is missing for this transaction type", StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer    = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", StatusCode: http.StatusBadRequest}
	ErrEngineManagedRecord    = &AppError{Code: "UNSUPPORTED_OPERATION", Message: "Transaction is managed by an installment plan", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound       = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBudget      = &AppError{Code: "DUPLICATE_BUDGET", Message: "A budget already exists for this category and period", StatusCode: http.StatusConflict}
	ErrIncomeCategoryBudget = &AppError{Code: "INCOME_CATEGORY_BUDGET", Message: "Budgets cannot target income categories", StatusCode: http.StatusBadRequest}
	ErrBudgetNotActive      = &AppError{Code: "UNSUPPORTED_OPERATION", Message: "Merge target budget is not active", StatusCode: http.StatusBadRequest}
	ErrSubBudgetMergeTarget = &AppError{Code: "UNSUPPORTED_OPERATION", Message: "Cannot merge into a subcategory budget", StatusCode: http.StatusBadRequest}
)

// Installment plan errors.
var (
	ErrPlanNotFound = &AppError{Code: "PLAN_NOT_FOUND", Message: "Installment plan not found", StatusCode: http.StatusNotFound}
	ErrPlanSettled  = &AppError{Code: "PLAN_SETTLED", Message: "Installment plan has already been fully repaid", StatusCode: http.StatusBadRequest}
)
