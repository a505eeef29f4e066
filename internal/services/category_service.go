package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// categoryService handles category-tree business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category or subcategory in a ledger. The tree is
// capped at two levels: a parent must itself be parentless.
func (s *categoryService) CreateCategory(
	userID, ledgerID, name string,
	categoryType models.CategoryType,
	icon, color string,
	parentID *string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	ledger, err := findOwnedLedger(s.db, userID, ledgerID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("ledger_id = ? AND name = ?", ledger.ID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	if parentID != nil {
		parent, err := s.validateParent(userID, ledger.ID, *parentID, categoryType)
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	category := &models.Category{
		LedgerID: ledger.ID,
		Name:     name,
		Type:     categoryType,
		Icon:     icon,
		Color:    color,
		ParentID: parentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// validateParent checks that a prospective parent exists in the same ledger,
// has the same type, and is itself a top-level category.
func (s *categoryService) validateParent(userID, ledgerID, parentID string, categoryType models.CategoryType) (*models.Category, error) {
	parent, err := findOwnedCategory(s.db, userID, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
		}
		return nil, err
	}
	if parent.LedgerID != ledgerID {
		return nil, apperrors.ErrLedgerMismatch
	}
	if parent.IsSubcategory() {
		return nil, apperrors.ErrCategoryTooDeep
	}
	if parent.Type != categoryType {
		return nil, apperrors.ErrCategoryTypeMismatch
	}
	return parent, nil
}

// GetLedgerCategories retrieves a paginated list of categories in a ledger.
func (s *categoryService) GetLedgerCategories(userID, ledgerID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if _, err := findOwnedLedger(s.db, userID, ledgerID); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{}).Where("ledger_id = ?", ledgerID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Preload("Children").Scopes(pagination.Paginate(page)).
		Order("created_at").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findOwnedCategory(s.db, userID, categoryID)
}

// UpdateCategory updates a category. Re-parenting a category that has
// children is rejected; a parent must be a top-level category of the same
// ledger and type.
func (s *categoryService) UpdateCategory(
	userID, categoryID, name, icon, color string,
	parentID *string,
) (*models.Category, error) {
	category, err := findOwnedCategory(s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if name != "" && name != category.Name {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("ledger_id = ? AND name = ? AND id <> ?", category.LedgerID, name, category.ID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateCategory
		}
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if parentID != nil {
		if *parentID == category.ID {
			return nil, apperrors.ErrSelfParentCategory
		}

		childCount, err := s.countChildren(category.ID)
		if err != nil {
			return nil, err
		}
		if childCount > 0 {
			return nil, apperrors.ErrCategoryHasChildren
		}

		if *parentID == "" {
			updates["parent_id"] = nil
		} else {
			parent, err := s.validateParent(userID, category.LedgerID, *parentID, category.Type)
			if err != nil {
				return nil, err
			}
			updates["parent_id"] = parent.ID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", category.ID).First(category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory removes a childless category together with its budgets.
// Its transactions are either deleted or migrated to another category of the
// same ledger and type.
func (s *categoryService) DeleteCategory(userID, categoryID string, deleteTransactions bool, migrateToCategoryID *string) error {
	category, err := findOwnedCategory(s.db, userID, categoryID)
	if err != nil {
		return err
	}

	childCount, err := s.countChildren(category.ID)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	var migrateTo *models.Category
	if !deleteTransactions {
		if migrateToCategoryID == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "a migration target category is required when transactions are kept")
		}
		migrateTo, err = findOwnedCategory(s.db, userID, *migrateToCategoryID)
		if err != nil {
			return err
		}
		if migrateTo.ID == category.ID {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot migrate transactions to the category being deleted")
		}
		if migrateTo.LedgerID != category.LedgerID {
			return apperrors.ErrCrossLedgerMigration
		}
		if migrateTo.Type != category.Type {
			return apperrors.ErrCategoryTypeMismatch
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).
			Delete(&models.Budget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if deleteTransactions {
			if err := tx.Where("category_id = ?", category.ID).
				Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else {
			if err := tx.Model(&models.Transaction{}).
				Where("category_id = ?", category.ID).
				Update("category_id", migrateTo.ID).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *categoryService) countChildren(categoryID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("parent_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}
