package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// budgetService handles the budget engine: period-bound spending caps and
// their aggregation into an overview.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget for the period instance containing today.
// A nil category makes an uncategorized budget covering all of the user's
// expenses. Only expense categories can carry a budget.
func (s *budgetService) CreateBudget(userID string, categoryID *string, amount decimal.Decimal, period models.BudgetPeriod) (*models.Budget, error) {
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
	}

	if categoryID != nil {
		category, err := findOwnedCategory(s.db, userID, *categoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != models.CategoryTypeExpense {
			return nil, apperrors.ErrIncomeCategoryBudget
		}
		categoryID = &category.ID
	}

	dup := s.db.Model(&models.Budget{}).Where("user_id = ? AND period = ?", userID, period)
	if categoryID == nil {
		dup = dup.Where("category_id IS NULL")
	} else {
		dup = dup.Where("category_id = ?", *categoryID)
	}
	var count int64
	if err := dup.Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudget
	}

	start := models.PeriodStart(time.Now(), period)
	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Period:     period,
		StartDate:  start,
		EndDate:    models.PeriodEnd(start, period),
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetUserBudgets retrieves a paginated list of budgets, optionally limited to
// one period type.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("created_at").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID retrieves a budget by ID for a specific user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return findOwnedBudget(s.db, userID, budgetID)
}

// UpdateBudget updates a budget's amount.
func (s *budgetService) UpdateBudget(userID, budgetID string, amount *decimal.Decimal) (*models.Budget, error) {
	budget, err := findOwnedBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		if amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
		}
		if err := s.db.Model(budget).Update("amount", *amount).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		budget.Amount = *amount
	}
	return budget, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := findOwnedBudget(s.db, userID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetOverview aggregates the user's budgets into per-category reports.
// Budgets are grouped by category NAME rather than identity, so same-named
// categories on different ledgers roll up into one entry. Spending is summed
// over each budget's stored period window.
func (s *budgetService) GetBudgetOverview(userID string) ([]BudgetReport, error) {
	var budgets []models.Budget
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type groupKey struct {
		name   string
		period models.BudgetPeriod
	}
	groups := make(map[groupKey]*BudgetReport)

	for i := range budgets {
		budget := &budgets[i]

		name := ""
		if budget.Category != nil {
			name = budget.Category.Name
		}

		spent, err := s.budgetSpent(userID, budget)
		if err != nil {
			return nil, err
		}

		key := groupKey{name: name, period: budget.Period}
		report, ok := groups[key]
		if !ok {
			report = &BudgetReport{
				CategoryName: name,
				Period:       budget.Period,
				Amount:       decimal.Zero,
				Spent:        decimal.Zero,
			}
			groups[key] = report
		}
		report.Amount = report.Amount.Add(budget.Amount)
		report.Spent = report.Spent.Add(spent)
		report.BudgetIDs = append(report.BudgetIDs, budget.ID)
	}

	reports := make([]BudgetReport, 0, len(groups))
	for _, report := range groups {
		report.Remaining = report.Amount.Sub(report.Spent)
		reports = append(reports, *report)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CategoryName != reports[j].CategoryName {
			return reports[i].CategoryName < reports[j].CategoryName
		}
		return reports[i].Period < reports[j].Period
	})
	return reports, nil
}

// budgetSpent sums the expenses a budget covers within its period window.
// Uncategorized budgets cover every expense of the user; a top-level
// category's budget covers the category and its children; a subcategory's
// budget covers only its own transactions.
func (s *budgetService) budgetSpent(userID string, budget *models.Budget) (decimal.Decimal, error) {
	query := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Where("date >= ? AND date < ?", budget.StartDate, budget.EndDate.AddDate(0, 0, 1))

	if budget.CategoryID != nil {
		categoryIDs := []string{*budget.CategoryID}
		if budget.Category != nil && !budget.Category.IsSubcategory() {
			var childIDs []string
			if err := s.db.Model(&models.Category{}).
				Where("parent_id = ?", *budget.CategoryID).
				Pluck("id", &childIDs).Error; err != nil {
				return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			categoryIDs = append(categoryIDs, childIDs...)
		}
		query = query.Where("category_id IN ?", categoryIDs)
	}

	// Amounts are summed in Go to keep decimal arithmetic exact.
	var amounts []decimal.Decimal
	if err := query.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spent := decimal.Zero
	for _, amount := range amounts {
		spent = spent.Add(amount)
	}
	return spent, nil
}

// MergeBudgets folds related budgets into the target: an uncategorized
// target absorbs the user's top-level category budgets of the same period, a
// top-level category target absorbs its subcategories' budgets. The absorbed
// budgets' amounts are added to the target and the sources are deleted.
func (s *budgetService) MergeBudgets(userID, targetBudgetID string) (*models.Budget, error) {
	target, err := findOwnedBudget(s.db, userID, targetBudgetID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive(time.Now()) {
		return nil, apperrors.ErrBudgetNotActive
	}

	var sources []models.Budget
	if target.IsUncategorized() {
		if err := s.db.Joins("Category").
			Where("budgets.user_id = ? AND budgets.period = ? AND budgets.category_id IS NOT NULL", userID, target.Period).
			Where("\"Category\".parent_id IS NULL").
			Find(&sources).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else {
		var category models.Category
		if err := s.db.Where("id = ?", *target.CategoryID).First(&category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.IsSubcategory() {
			return nil, apperrors.ErrSubBudgetMergeTarget
		}

		var childIDs []string
		if err := s.db.Model(&models.Category{}).
			Where("parent_id = ?", category.ID).
			Pluck("id", &childIDs).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(childIDs) > 0 {
			if err := s.db.Where("user_id = ? AND period = ? AND category_id IN ?", userID, target.Period, childIDs).
				Find(&sources).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		merged := target.Amount
		for i := range sources {
			merged = merged.Add(sources[i].Amount)
			if err := tx.Delete(&sources[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Model(target).Update("amount", merged).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		target.Amount = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}
