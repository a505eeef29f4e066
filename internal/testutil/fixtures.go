package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestLedger creates a ledger for the given user.
func CreateTestLedger(t *testing.T, db *gorm.DB, userID string) *models.Ledger {
	t.Helper()

	ledger := &models.Ledger{
		UserID: userID,
		Name:   fmt.Sprintf("Test Ledger %d", nextID()),
	}
	if err := db.Create(ledger).Error; err != nil {
		t.Fatalf("failed to create test ledger: %v", err)
	}
	return ledger
}

// CreateTestBasicAccount creates a basic account with the given balance.
func CreateTestBasicAccount(t *testing.T, db *gorm.DB, userID string, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:             userID,
		Name:               fmt.Sprintf("Test Account %d", nextID()),
		Type:               models.AccountTypeBasic,
		Balance:            balance,
		IncludedInNetAsset: true,
		Selectable:         true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test basic account: %v", err)
	}
	return account
}

// CreateTestCreditAccount creates a credit account with the given balance and debt.
func CreateTestCreditAccount(t *testing.T, db *gorm.DB, userID string, balance, debt decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:             userID,
		Name:               fmt.Sprintf("Test Credit %d", nextID()),
		Type:               models.AccountTypeCredit,
		Balance:            balance,
		CurrentDebt:        debt,
		CreditLimit:        decimal.NewFromInt(5000),
		IncludedInNetAsset: true,
		Selectable:         true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test credit account: %v", err)
	}
	return account
}

// CreateTestLoanAccount creates a loan account with the outstanding amount
// derived from its schedule.
func CreateTestLoanAccount(t *testing.T, db *gorm.DB, userID string, loanAmount decimal.Decimal, totalPeriods, repaidPeriods int, annualRate decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:             userID,
		Name:               fmt.Sprintf("Test Loan %d", nextID()),
		Type:               models.AccountTypeLoan,
		LoanAmount:         loanAmount,
		TotalPeriods:       totalPeriods,
		RepaidPeriods:      repaidPeriods,
		AnnualInterestRate: annualRate,
		RepaymentType:      models.RepaymentEqualInterest,
		IncludedInNetAsset: true,
	}
	account.RemainingAmount = account.LoanScheduleRemaining(repaidPeriods)
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test loan account: %v", err)
	}
	return account
}

// CreateTestCategory creates a top-level category of the given type in a ledger.
func CreateTestCategory(t *testing.T, db *gorm.DB, ledgerID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		LedgerID: ledgerID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Type:     categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubcategory creates a subcategory under the given parent.
func CreateTestSubcategory(t *testing.T, db *gorm.DB, parent *models.Category) *models.Category {
	t.Helper()

	category := &models.Category{
		LedgerID: parent.LedgerID,
		Name:     fmt.Sprintf("Test Subcategory %d", nextID()),
		Type:     parent.Type,
		ParentID: &parent.ID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return category
}

// CreateTestExpense creates an expense transaction without applying any
// balance effect.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, ledgerID string, categoryID *string, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		LedgerID:   ledgerID,
		CategoryID: categoryID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return tx
}

// CreateTestBudget creates a monthly budget for the given category (nil for
// an uncategorized budget) covering the current month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, categoryID *string, amount decimal.Decimal) *models.Budget {
	t.Helper()

	start := models.PeriodStart(time.Now(), models.BudgetPeriodMonthly)
	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    models.PeriodEnd(start, models.BudgetPeriodMonthly),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestInstallmentPlan creates an installment plan on the given credit
// account without adjusting the account's debt.
func CreateTestInstallmentPlan(t *testing.T, db *gorm.DB, accountID string, totalAmount decimal.Decimal, totalPeriods int, feeRate decimal.Decimal, strategy models.FeeStrategy) *models.InstallmentPlan {
	t.Helper()

	plan := &models.InstallmentPlan{
		AccountID:    accountID,
		TotalAmount:  totalAmount,
		TotalPeriods: totalPeriods,
		FeeRate:      feeRate,
		FeeStrategy:  strategy,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test installment plan: %v", err)
	}
	return plan
}
