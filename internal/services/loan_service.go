package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// loanService handles loan account repayment.
type loanService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewLoanService creates a new LoanServicer.
func NewLoanService(db *gorm.DB, transactions TransactionServicer) LoanServicer {
	return &loanService{db: db, transactions: transactions}
}

// RepayLoan applies a payment to a loan account. Without an explicit amount
// the next scheduled payment is applied. An explicit amount consumes whole
// scheduled payments in order; a leftover remainder reduces the outstanding
// amount without advancing the period counter and is credited against the
// next repayment. With a funding account an expense transaction for the
// applied amount is posted against it.
func (s *loanService) RepayLoan(userID, accountID string, fundingAccountID, ledgerID *string, amount *decimal.Decimal) (*models.Account, error) {
	account, err := findOwnedAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountTypeLoan {
		return nil, apperrors.ErrNotLoanAccount
	}
	if account.LoanEnded() || !account.RemainingAmount.IsPositive() {
		return nil, apperrors.ErrLoanSettled
	}
	if amount != nil && !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "repayment amount must be greater than zero")
	}
	if fundingAccountID != nil && ledgerID == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a ledger is required to record the repayment expense")
	}

	var applied decimal.Decimal
	if amount == nil {
		// One scheduled payment; never more than what is still owed.
		applied = decimal.Min(account.LoanPayment(account.RepaidPeriods+1), account.RemainingAmount)
	} else {
		applied = decimal.Min(*amount, account.RemainingAmount)
	}

	// Partial credit carried forward by earlier repayments counts toward
	// completing the next scheduled payment.
	carry := account.LoanScheduleRemaining(account.RepaidPeriods).Sub(account.RemainingAmount)
	remainder := carry.Add(applied)
	for !account.LoanEnded() {
		payment := account.LoanPayment(account.RepaidPeriods + 1)
		if remainder.LessThan(payment) {
			break
		}
		remainder = remainder.Sub(payment)
		account.RepaidPeriods++
	}
	account.RemainingAmount = account.LoanScheduleRemaining(account.RepaidPeriods).Sub(remainder)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"repaid_periods":   account.RepaidPeriods,
			"remaining_amount": account.RemainingAmount,
		}
		if err := tx.Model(account).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if fundingAccountID != nil {
			note := "Loan repayment: " + account.Name
			_, err := s.transactions.CreateTransactionWithDB(tx, userID, *ledgerID, nil,
				models.TransactionTypeExpense, applied, note, time.Now(), fundingAccountID, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
