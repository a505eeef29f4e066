package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/models"
	"moneta/internal/testutil"
)

func TestCreateAccounts(t *testing.T) {
	t.Run("loan_account_derives_outstanding_from_schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateLoanAccount(user.ID, "Car Loan", "", LoanAccountParams{
			LoanAmount:         d("100"),
			TotalPeriods:       36,
			RepaidPeriods:      1,
			AnnualInterestRate: d("1"),
			RepaymentType:      models.RepaymentEqualInterest,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, d("98.70"), account.RemainingAmount, "remaining")
		if account.Selectable {
			t.Error("loan accounts must not be selectable")
		}
	})

	t.Run("loan_repaid_periods_bounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateLoanAccount(user.ID, "Bad Loan", "", LoanAccountParams{
			LoanAmount:    d("100"),
			TotalPeriods:  12,
			RepaidPeriods: 13,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("credit_account_day_bounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)

		day := 32
		_, err := svc.CreateCreditAccount(user.ID, "Card", "", CreditAccountParams{
			CreditLimit: d("5000"),
			BillDay:     &day,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("counterparty_accounts_reject_negative_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateLendingAccount(user.ID, "Lent", "", d("-5"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateBorrowingAccount(user.ID, "Borrowed", "", d("-5"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("credit_fields_ignored_on_basic_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))

		limit := d("9999")
		updated, err := svc.UpdateAccount(user.ID, account.ID, AccountUpdateFields{CreditLimit: &limit})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.Zero, updated.CreditLimit, "credit limit")
	})

	t.Run("toggles_hidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))

		hidden, err := svc.SetHidden(user.ID, account.ID, true)
		testutil.AssertNoError(t, err)
		if !hidden.Hidden {
			t.Error("expected account to be hidden")
		}

		visible, err := svc.SetHidden(user.ID, account.ID, false)
		testutil.AssertNoError(t, err)
		if visible.Hidden {
			t.Error("expected account to be visible")
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("unlinks_transactions_by_default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		acctSvc := NewAccountService(db)
		txSvc := NewTransactionService(db, acctSvc)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		account := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))

		tx, err := txSvc.CreateTransaction(user.ID, ledger.ID, nil,
			models.TransactionTypeExpense, d("10"), "", time.Now(), &account.ID, nil)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, acctSvc.DeleteAccount(user.ID, account.ID, false))

		kept, err := txSvc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if kept.FromAccountID != nil {
			t.Error("expected transaction to be unlinked from the account")
		}
	})

	t.Run("deletes_transactions_when_asked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		acctSvc := NewAccountService(db)
		txSvc := NewTransactionService(db, acctSvc)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		account := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))

		tx, err := txSvc.CreateTransaction(user.ID, ledger.ID, nil,
			models.TransactionTypeExpense, d("10"), "", time.Now(), &account.ID, nil)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, acctSvc.DeleteAccount(user.ID, account.ID, true))

		_, err = txSvc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("removes_installment_plans_with_credit_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		acctSvc := NewAccountService(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCreditAccount(t, db, user.ID, decimal.Zero, decimal.Zero)
		plan := testutil.CreateTestInstallmentPlan(t, db, account.ID, d("100"), 3, decimal.Zero, models.FeeEvenlySplit)

		testutil.AssertNoError(t, acctSvc.DeleteAccount(user.ID, account.ID, true))

		var count int64
		db.Model(&models.InstallmentPlan{}).Where("id = ?", plan.ID).Count(&count)
		if count != 0 {
			t.Error("expected the account's plans to be deleted")
		}
	})
}
