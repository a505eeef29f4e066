package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func newLoanTestServices(db *gorm.DB) (AccountServicer, LoanServicer) {
	acctSvc := NewAccountService(db)
	txSvc := NewTransactionService(db, acctSvc)
	return acctSvc, NewLoanService(db, txSvc)
}

func TestRepayLoan(t *testing.T) {
	t.Run("scheduled_payment_advances_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		updated, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, nil)
		testutil.AssertNoError(t, err)

		if updated.RepaidPeriods != 1 {
			t.Errorf("expected 1 repaid period, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, d("98.70"), updated.RemainingAmount, "remaining")
	})

	t.Run("explicit_amount_consumes_whole_payments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		// Two scheduled payments of 2.82.
		amount := d("5.64")
		updated, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &amount)
		testutil.AssertNoError(t, err)

		if updated.RepaidPeriods != 2 {
			t.Errorf("expected 2 repaid periods, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, d("95.88"), updated.RemainingAmount, "remaining")
	})

	t.Run("explicit_amount_remainder_stays_in_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		// One full payment plus 0.18 left over.
		amount := d("3")
		updated, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &amount)
		testutil.AssertNoError(t, err)

		if updated.RepaidPeriods != 1 {
			t.Errorf("expected 1 repaid period, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, d("98.52"), updated.RemainingAmount, "remaining")
	})

	t.Run("partial_repayments_accumulate_into_a_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		first := d("1")
		updated, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &first)
		testutil.AssertNoError(t, err)
		if updated.RepaidPeriods != 0 {
			t.Errorf("expected 0 repaid periods, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, d("100.52"), updated.RemainingAmount, "remaining")

		// 1.00 + 1.82 completes the 2.82 scheduled payment.
		second := d("1.82")
		updated, err = loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &second)
		testutil.AssertNoError(t, err)
		if updated.RepaidPeriods != 1 {
			t.Errorf("expected 1 repaid period, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, d("98.70"), updated.RemainingAmount, "remaining")
	})

	t.Run("scheduled_payment_keeps_carried_remainder", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		partial := d("1")
		_, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &partial)
		testutil.AssertNoError(t, err)

		// The scheduled 2.82 plus the carried 1.00 covers period 1 and
		// leaves the 1.00 credited against period 2.
		updated, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, nil)
		testutil.AssertNoError(t, err)
		if updated.RepaidPeriods != 1 {
			t.Errorf("expected 1 repaid period, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, d("97.70"), updated.RemainingAmount, "remaining")
	})

	t.Run("overpayment_clamps_to_outstanding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		amount := d("10000")
		updated, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &amount)
		testutil.AssertNoError(t, err)

		if updated.RepaidPeriods != 36 {
			t.Errorf("expected 36 repaid periods, got %d", updated.RepaidPeriods)
		}
		testutil.AssertDecimalEqual(t, decimal.Zero, updated.RemainingAmount, "remaining")

		_, err = loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, nil)
		testutil.AssertAppError(t, err, "LOAN_SETTLED")
	})

	t.Run("funding_account_posts_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		acctSvc, loanSvc := newLoanTestServices(db)
		txSvc := NewTransactionService(db, acctSvc)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		funding := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		_, err := loanSvc.RepayLoan(user.ID, loan.ID, &funding.ID, &ledger.ID, nil)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, d("97.18"), reloadAccount(t, acctSvc, user.ID, funding.ID).Balance, "funding balance")

		page, err := txSvc.GetLedgerTransactions(user.ID, ledger.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 transaction, got %d", page.TotalItems)
		}
		testutil.AssertDecimalEqual(t, d("2.82"), page.Data[0].Amount, "expense amount")
	})

	t.Run("funding_account_requires_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		funding := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		_, err := loanSvc.RepayLoan(user.ID, loan.ID, &funding.ID, nil, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("non_loan_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestBasicAccount(t, db, user.ID, d("100"))

		_, err := loanSvc.RepayLoan(user.ID, account.ID, nil, nil, nil)
		testutil.AssertAppError(t, err, "NOT_LOAN_ACCOUNT")
	})

	t.Run("zero_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		amount := decimal.Zero
		_, err := loanSvc.RepayLoan(user.ID, loan.ID, nil, nil, &amount)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_users_loan_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, loanSvc := newLoanTestServices(db)

		user := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		loan := testutil.CreateTestLoanAccount(t, db, user.ID, d("100"), 36, 0, d("1"))

		_, err := loanSvc.RepayLoan(intruder.ID, loan.ID, nil, nil, nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}
