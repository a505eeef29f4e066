package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// TransactionSource identifies which flow posted a transaction.
type TransactionSource string

const (
	// TransactionSourceManual is a user-entered transaction whose balance
	// effect was applied on creation.
	TransactionSourceManual TransactionSource = "manual"

	// TransactionSourceInstallment is posted by an installment repayment.
	// Its debt effect was booked when the plan was created, so the
	// transaction engine must never roll it back.
	TransactionSourceInstallment TransactionSource = "installment"
)

// Transaction represents a financial transaction recorded against a ledger.
// Expenses debit FromAccount, incomes credit ToAccount, transfers do both.
// Account references are nullable so an account deletion can unlink its
// transactions without removing them from the ledger.
type Transaction struct {
	Base
	UserID     string            `gorm:"type:uuid;not null;index" json:"user_id"`
	LedgerID   string            `gorm:"type:uuid;not null;index" json:"ledger_id"`
	CategoryID *string           `gorm:"type:uuid" json:"category_id,omitempty"`
	Type       TransactionType   `gorm:"not null" json:"type"`
	Source     TransactionSource `gorm:"not null;default:manual" json:"source"`
	Amount     decimal.Decimal   `gorm:"type:numeric;not null" json:"amount"`
	Note       string            `json:"note"`
	Date       time.Time         `gorm:"not null" json:"date"`

	FromAccountID *string `gorm:"type:uuid" json:"from_account_id,omitempty"`
	ToAccountID   *string `gorm:"type:uuid" json:"to_account_id,omitempty"`

	// Relationships
	Ledger      Ledger    `gorm:"foreignKey:LedgerID" json:"ledger,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	FromAccount *Account  `gorm:"foreignKey:FromAccountID" json:"from_account,omitempty"`
	ToAccount   *Account  `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
}
