package services

import (
	"testing"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("creates_top_level_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)

		category, err := svc.CreateCategory(user.ID, ledger.ID, "Food", models.CategoryTypeExpense, "utensils", "#ff0000", nil)
		testutil.AssertNoError(t, err)
		if category.IsSubcategory() {
			t.Error("expected a top-level category")
		}
	})

	t.Run("creates_subcategory", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)

		category, err := svc.CreateCategory(user.ID, ledger.ID, "Restaurants", models.CategoryTypeExpense, "", "", &parent.ID)
		testutil.AssertNoError(t, err)
		if !category.IsSubcategory() {
			t.Error("expected a subcategory")
		}
	})

	t.Run("rejects_third_level", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		sub := testutil.CreateTestSubcategory(t, db, parent)

		_, err := svc.CreateCategory(user.ID, ledger.ID, "Too Deep", models.CategoryTypeExpense, "", "", &sub.ID)
		testutil.AssertAppError(t, err, "CATEGORY_TOO_DEEP")
	})

	t.Run("rejects_duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)

		_, err := svc.CreateCategory(user.ID, ledger.ID, "Food", models.CategoryTypeExpense, "", "", nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, ledger.ID, "Food", models.CategoryTypeExpense, "", "", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("parent_type_must_match", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeIncome)

		_, err := svc.CreateCategory(user.ID, ledger.ID, "Mismatch", models.CategoryTypeExpense, "", "", &parent.ID)
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("parent_from_another_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		other := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateCategory(user.ID, ledger.ID, "Elsewhere", models.CategoryTypeExpense, "", "", &parent.ID)
		testutil.AssertAppError(t, err, "LEDGER_MISMATCH")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rejects_self_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(user.ID, category.ID, "", "", "", &category.ID)
		testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")
	})

	t.Run("rejects_demoting_category_with_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		testutil.CreateTestSubcategory(t, db, parent)
		newParent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(user.ID, parent.ID, "", "", "", &newParent.ID)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("promotes_subcategory_to_top_level", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		sub := testutil.CreateTestSubcategory(t, db, parent)

		clear := ""
		updated, err := svc.UpdateCategory(user.ID, sub.ID, "", "", "", &clear)
		testutil.AssertNoError(t, err)
		if updated.IsSubcategory() {
			t.Error("expected category to be promoted to top level")
		}
	})

	t.Run("rejects_duplicate_rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		first := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		second := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(user.ID, second.ID, first.Name, "", "", nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("rejects_category_with_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		testutil.CreateTestSubcategory(t, db, parent)

		err := svc.DeleteCategory(user.ID, parent.ID, true, nil)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("deletes_transactions_and_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		testutil.CreateTestExpense(t, db, user.ID, ledger.ID, &category.ID, d("10"))
		testutil.CreateTestBudget(t, db, user.ID, &category.ID, d("100"))

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID, true, nil))

		var txCount, budgetCount int64
		db.Model(&models.Transaction{}).Where("category_id = ?", category.ID).Count(&txCount)
		db.Model(&models.Budget{}).Where("category_id = ?", category.ID).Count(&budgetCount)
		if txCount != 0 || budgetCount != 0 {
			t.Errorf("expected cascade, got %d transactions and %d budgets", txCount, budgetCount)
		}
	})

	t.Run("migrates_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)
		acctSvc := NewAccountService(db)
		txSvc := NewTransactionService(db, acctSvc)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		target := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, ledger.ID, &category.ID, d("10"))

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID, false, &target.ID))

		migrated, err := txSvc.GetTransactionByID(user.ID, expense.ID)
		testutil.AssertNoError(t, err)
		if migrated.CategoryID == nil || *migrated.CategoryID != target.ID {
			t.Error("expected transaction to be migrated to the target category")
		}
	})

	t.Run("migration_requires_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)

		err := svc.DeleteCategory(user.ID, category.ID, false, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("cannot_migrate_across_ledgers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		other := testutil.CreateTestLedger(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		target := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		err := svc.DeleteCategory(user.ID, category.ID, false, &target.ID)
		testutil.AssertAppError(t, err, "CROSS_LEDGER_MIGRATION")
	})

	t.Run("cannot_migrate_across_types", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		target := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeIncome)

		err := svc.DeleteCategory(user.ID, category.ID, false, &target.ID)
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})
}

func TestGetLedgerCategories(t *testing.T) {
	t.Run("preloads_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)
		parent := testutil.CreateTestCategory(t, db, ledger.ID, models.CategoryTypeExpense)
		testutil.CreateTestSubcategory(t, db, parent)

		page, err := svc.GetLedgerCategories(user.ID, ledger.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 categories, got %d", page.TotalItems)
		}
		for _, category := range page.Data {
			if category.ID == parent.ID && len(category.Children) != 1 {
				t.Errorf("expected parent to carry its child, got %d", len(category.Children))
			}
		}
	})

	t.Run("other_users_ledger_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		ledger := testutil.CreateTestLedger(t, db, user.ID)

		_, err := svc.GetLedgerCategories(intruder.ID, ledger.ID, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}
