package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending for one category — or for the whole user when
// CategoryID is nil (an "uncategorized" budget). StartDate and EndDate hold
// the period instance that was current when the budget was created.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"not null" json:"period"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`
	EndDate    time.Time       `gorm:"not null" json:"end_date"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// PeriodStart returns the first day of the period containing date:
// the first of the month for monthly budgets, January 1 for yearly ones.
func PeriodStart(date time.Time, period BudgetPeriod) time.Time {
	switch period {
	case BudgetPeriodYearly:
		return time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, date.Location())
	default:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	}
}

// PeriodEnd returns the last day of the period beginning at start: the last
// calendar day of the month (leap years included) for monthly budgets,
// December 31 for yearly ones.
func PeriodEnd(start time.Time, period BudgetPeriod) time.Time {
	switch period {
	case BudgetPeriodYearly:
		return time.Date(start.Year(), time.December, 31, 0, 0, 0, 0, start.Location())
	default:
		return time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).
			AddDate(0, 1, -1)
	}
}

// IsActive reports whether date falls within [StartDate, EndDate],
// inclusive at both ends. Time-of-day is ignored.
func (b *Budget) IsActive(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, b.StartDate.Location())
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}

// IsUncategorized reports whether the budget applies to the whole user
// rather than a single category.
func (b *Budget) IsUncategorized() bool {
	return b.CategoryID == nil
}
