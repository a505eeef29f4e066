package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// The helpers below load an entity by ID and enforce ownership. A missing
// entity maps to the entity's NotFound error; an entity owned by someone
// else maps to ErrForbidden, so callers can tell the two apart.

func findOwnedLedger(db *gorm.DB, userID, ledgerID string) (*models.Ledger, error) {
	var ledger models.Ledger
	if err := db.Where("id = ?", ledgerID).First(&ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLedgerNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if ledger.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &ledger, nil
}

func findOwnedAccount(db *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if account.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &account, nil
}

// findOwnedCategory resolves ownership through the category's ledger.
func findOwnedCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := findOwnedLedger(db, userID, category.LedgerID); err != nil {
		return nil, err
	}
	return &category, nil
}

func findOwnedBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budget.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &budget, nil
}

// findOwnedPlan resolves ownership through the plan's account.
func findOwnedPlan(db *gorm.DB, userID, planID string) (*models.InstallmentPlan, error) {
	var plan models.InstallmentPlan
	if err := db.Where("id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := findOwnedAccount(db, userID, plan.AccountID); err != nil {
		return nil, err
	}
	return &plan, nil
}

func findOwnedTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transaction.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &transaction, nil
}
