package services

import (
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// ledgerService handles ledger-related business logic.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// CreateLedger creates a new ledger with a per-user unique name.
func (s *ledgerService) CreateLedger(userID, name, note string) (*models.Ledger, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ledger name is required")
	}

	var count int64
	if err := s.db.Model(&models.Ledger{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateLedger
	}

	ledger := &models.Ledger{
		UserID: userID,
		Name:   name,
		Note:   note,
	}

	if err := s.db.Create(ledger).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ledger, nil
}

// GetUserLedgers retrieves a paginated list of ledgers for a user.
func (s *ledgerService) GetUserLedgers(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Ledger], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Ledger{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var ledgers []models.Ledger
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at").Find(&ledgers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(ledgers, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetLedgerByID retrieves a ledger by ID for a specific user.
func (s *ledgerService) GetLedgerByID(userID, ledgerID string) (*models.Ledger, error) {
	return findOwnedLedger(s.db, userID, ledgerID)
}

// UpdateLedger updates a ledger's name and note.
func (s *ledgerService) UpdateLedger(userID, ledgerID, name, note string) (*models.Ledger, error) {
	ledger, err := findOwnedLedger(s.db, userID, ledgerID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" && name != ledger.Name {
		var count int64
		if err := s.db.Model(&models.Ledger{}).
			Where("user_id = ? AND name = ? AND id <> ?", userID, name, ledgerID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateLedger
		}
		updates["name"] = name
	}
	if note != "" {
		updates["note"] = note
	}

	if len(updates) > 0 {
		if err := s.db.Model(ledger).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return ledger, nil
}

// DeleteLedger removes a ledger together with its categories, their budgets,
// and all transactions recorded against it.
func (s *ledgerService) DeleteLedger(userID, ledgerID string) error {
	ledger, err := findOwnedLedger(s.db, userID, ledgerID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var categoryIDs []string
		if err := tx.Model(&models.Category{}).
			Where("ledger_id = ?", ledger.ID).
			Pluck("id", &categoryIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if len(categoryIDs) > 0 {
			if err := tx.Where("category_id IN ?", categoryIDs).
				Delete(&models.Budget{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Where("ledger_id = ?", ledger.ID).
				Delete(&models.Category{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Where("ledger_id = ?", ledger.ID).
			Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(ledger).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
