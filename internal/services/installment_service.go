package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// installmentService handles installment plans on credit accounts.
type installmentService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewInstallmentService creates a new InstallmentServicer.
func NewInstallmentService(db *gorm.DB, accounts AccountServicer) InstallmentServicer {
	return &installmentService{db: db, accounts: accounts}
}

// AddPlan attaches an installment plan to a credit account and books the
// plan's initial debt onto it.
func (s *installmentService) AddPlan(
	userID, accountID string,
	totalAmount decimal.Decimal,
	totalPeriods int,
	feeRate decimal.Decimal,
	strategy models.FeeStrategy,
) (*models.InstallmentPlan, error) {
	if !totalAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be greater than zero")
	}
	if totalPeriods <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total periods must be greater than zero")
	}
	if feeRate.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fee rate cannot be negative")
	}
	if strategy == "" {
		strategy = models.FeeEvenlySplit
	}

	account, err := findOwnedAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountTypeCredit {
		return nil, apperrors.ErrNotCreditAccount
	}

	plan := &models.InstallmentPlan{
		AccountID:    account.ID,
		TotalAmount:  totalAmount,
		TotalPeriods: totalPeriods,
		FeeRate:      feeRate,
		FeeStrategy:  strategy,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		account.CurrentDebt = account.CurrentDebt.Add(plan.DebtAtCreation())
		return s.accounts.SaveBalances(tx, account)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// RepayPlan repays one period of an installment plan. An expense transaction
// for principal plus fee is recorded on the given ledger against the credit
// account; the account's debt is reduced explicitly rather than through the
// generic balance effect, since the plan's debt was booked at creation. The
// posted row carries the installment source so the transaction engine never
// rolls it back on top of that.
func (s *installmentService) RepayPlan(userID, planID, ledgerID string) (*models.InstallmentPlan, error) {
	plan, err := findOwnedPlan(s.db, userID, planID)
	if err != nil {
		return nil, err
	}
	if plan.Settled() {
		return nil, apperrors.ErrPlanSettled
	}

	ledger, err := findOwnedLedger(s.db, userID, ledgerID)
	if err != nil {
		return nil, err
	}

	account, err := findOwnedAccount(s.db, userID, plan.AccountID)
	if err != nil {
		return nil, err
	}

	period := plan.PaidPeriods + 1
	principal := plan.PeriodicPayment()
	if period == plan.TotalPeriods {
		// The last period absorbs the rounding difference.
		principal = plan.RemainingAmount()
	}
	fee := plan.FeeShare(period)

	// Only debt booked at creation is paid down here: the principal always,
	// and the fee only when it was charged upfront.
	debtReduction := principal
	if plan.FeeStrategy == models.FeeUpfront {
		debtReduction = debtReduction.Add(fee)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		note := fmt.Sprintf("Installment %d/%d: %s", period, plan.TotalPeriods, account.Name)
		transaction := &models.Transaction{
			UserID:        userID,
			LedgerID:      ledger.ID,
			Type:          models.TransactionTypeExpense,
			Source:        models.TransactionSourceInstallment,
			Amount:        principal.Add(fee),
			Note:          note,
			Date:          time.Now(),
			FromAccountID: &account.ID,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		account.CurrentDebt = account.CurrentDebt.Sub(debtReduction)
		if account.CurrentDebt.IsNegative() {
			account.CurrentDebt = decimal.Zero
		}
		if err := s.accounts.SaveBalances(tx, account); err != nil {
			return err
		}

		plan.PaidPeriods = period
		if err := tx.Model(plan).Update("paid_periods", plan.PaidPeriods).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// EditPlan updates a plan's terms. The old plan's outstanding debt is lifted
// off its account and the recomputed debt is booked, onto a different credit
// account if the plan is moved.
func (s *installmentService) EditPlan(userID, planID string, fields PlanUpdateFields) (*models.InstallmentPlan, error) {
	plan, err := findOwnedPlan(s.db, userID, planID)
	if err != nil {
		return nil, err
	}

	oldAccount, err := findOwnedAccount(s.db, userID, plan.AccountID)
	if err != nil {
		return nil, err
	}
	oldOutstanding := plan.OutstandingDebt()

	newAccount := oldAccount
	if fields.AccountID != nil && *fields.AccountID != plan.AccountID {
		newAccount, err = findOwnedAccount(s.db, userID, *fields.AccountID)
		if err != nil {
			return nil, err
		}
		if newAccount.Type != models.AccountTypeCredit {
			return nil, apperrors.ErrNotCreditAccount
		}
		plan.AccountID = newAccount.ID
	}

	if fields.TotalAmount != nil {
		if !fields.TotalAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be greater than zero")
		}
		plan.TotalAmount = *fields.TotalAmount
	}
	if fields.TotalPeriods != nil {
		if *fields.TotalPeriods <= 0 || *fields.TotalPeriods < plan.PaidPeriods {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total periods must cover the periods already paid")
		}
		plan.TotalPeriods = *fields.TotalPeriods
	}
	if fields.FeeRate != nil {
		if fields.FeeRate.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fee rate cannot be negative")
		}
		plan.FeeRate = *fields.FeeRate
	}
	if fields.FeeStrategy != nil {
		plan.FeeStrategy = *fields.FeeStrategy
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		oldAccount.CurrentDebt = oldAccount.CurrentDebt.Sub(oldOutstanding)
		if oldAccount.CurrentDebt.IsNegative() {
			oldAccount.CurrentDebt = decimal.Zero
		}
		if err := s.accounts.SaveBalances(tx, oldAccount); err != nil {
			return err
		}

		newAccount.CurrentDebt = newAccount.CurrentDebt.Add(plan.OutstandingDebt())
		if err := s.accounts.SaveBalances(tx, newAccount); err != nil {
			return err
		}

		if err := tx.Save(plan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes a plan and lifts its outstanding debt off the account.
func (s *installmentService) DeletePlan(userID, planID string) error {
	plan, err := findOwnedPlan(s.db, userID, planID)
	if err != nil {
		return err
	}

	account, err := findOwnedAccount(s.db, userID, plan.AccountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		account.CurrentDebt = account.CurrentDebt.Sub(plan.OutstandingDebt())
		if account.CurrentDebt.IsNegative() {
			account.CurrentDebt = decimal.Zero
		}
		if err := s.accounts.SaveBalances(tx, account); err != nil {
			return err
		}
		if err := tx.Delete(plan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetPlanByID retrieves an installment plan by ID for a specific user.
func (s *installmentService) GetPlanByID(userID, planID string) (*models.InstallmentPlan, error) {
	return findOwnedPlan(s.db, userID, planID)
}

// GetAccountPlans retrieves a paginated list of plans on a credit account.
func (s *installmentService) GetAccountPlans(userID, accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.InstallmentPlan], error) {
	account, err := findOwnedAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.InstallmentPlan{}).Where("account_id = ?", account.ID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var plans []models.InstallmentPlan
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at").Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(plans, page.Page, page.PageSize, totalItems)
	return &result, nil
}
