package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// netWorthService computes user-level asset and liability aggregates.
type netWorthService struct {
	db *gorm.DB
}

// NewNetWorthService creates a new NetWorthServicer.
func NewNetWorthService(db *gorm.DB) NetWorthServicer {
	return &netWorthService{db: db}
}

// GetSummary aggregates the user's accounts into a net worth summary.
// Hidden accounts and accounts excluded from net assets never contribute.
func (s *netWorthService) GetSummary(userID string) (*NetWorthSummary, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ? AND hidden = ? AND included_in_net_asset = ?",
		userID, false, true).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &NetWorthSummary{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalLending:     decimal.Zero,
		TotalBorrowing:   decimal.Zero,
	}

	for i := range accounts {
		account := &accounts[i]
		summary.TotalAssets = summary.TotalAssets.Add(account.AssetContribution())
		summary.TotalLiabilities = summary.TotalLiabilities.Add(account.LiabilityContribution())

		switch account.Type {
		case models.AccountTypeLending:
			summary.TotalLending = summary.TotalLending.Add(account.Balance)
		case models.AccountTypeBorrowing:
			summary.TotalBorrowing = summary.TotalBorrowing.Add(account.Balance)
		}
	}

	summary.NetAssets = summary.TotalAssets.Sub(summary.TotalLiabilities)
	return summary, nil
}
