package models

import "github.com/shopspring/decimal"

// FeeStrategy determines when an installment plan's fee is charged.
type FeeStrategy string

const (
	// FeeEvenlySplit spreads the fee across the periods, charged as each
	// period is repaid.
	FeeEvenlySplit FeeStrategy = "evenly_split"
	// FeeUpfront books the whole fee as debt when the plan is created and
	// collects it with the first repayment.
	FeeUpfront FeeStrategy = "upfront"
)

// InstallmentPlan is a fee-bearing deferred-payment arrangement attached to
// a credit account.
type InstallmentPlan struct {
	Base
	AccountID    string          `gorm:"type:uuid;not null;index" json:"account_id"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	TotalPeriods int             `gorm:"not null" json:"total_periods"`
	FeeRate      decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"fee_rate"`
	PaidPeriods  int             `gorm:"default:0" json:"paid_periods"`
	FeeStrategy  FeeStrategy     `gorm:"not null" json:"fee_strategy"`

	// Relationships
	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// TotalFee returns the whole fee charged for the plan.
func (p *InstallmentPlan) TotalFee() decimal.Decimal {
	return p.TotalAmount.Mul(p.FeeRate).Round(2)
}

// PeriodicPayment returns the principal share repaid each period.
// The fee is never part of the schedule.
func (p *InstallmentPlan) PeriodicPayment() decimal.Decimal {
	if p.TotalPeriods <= 0 {
		return decimal.Zero
	}
	return p.TotalAmount.Div(decimal.NewFromInt(int64(p.TotalPeriods))).Round(2)
}

// FeeShare returns the fee collected with the given 1-based period.
func (p *InstallmentPlan) FeeShare(period int) decimal.Decimal {
	switch p.FeeStrategy {
	case FeeUpfront:
		if period == 1 {
			return p.TotalFee()
		}
		return decimal.Zero
	default:
		if p.TotalPeriods <= 0 {
			return decimal.Zero
		}
		return p.TotalFee().Div(decimal.NewFromInt(int64(p.TotalPeriods))).Round(2)
	}
}

// RemainingAmount returns the principal still outstanding.
func (p *InstallmentPlan) RemainingAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.PeriodicPayment().Mul(decimal.NewFromInt(int64(p.PaidPeriods))))
}

// DebtAtCreation returns the amount the plan adds to the account's
// CurrentDebt when it is created.
func (p *InstallmentPlan) DebtAtCreation() decimal.Decimal {
	if p.FeeStrategy == FeeUpfront {
		return p.TotalAmount.Add(p.TotalFee())
	}
	return p.TotalAmount
}

// OutstandingDebt returns the plan's current contribution to the account's
// CurrentDebt: the unpaid principal, plus the fee when it was booked
// upfront and the first period has not yet collected it.
func (p *InstallmentPlan) OutstandingDebt() decimal.Decimal {
	outstanding := p.RemainingAmount()
	if p.FeeStrategy == FeeUpfront && p.PaidPeriods == 0 {
		outstanding = outstanding.Add(p.TotalFee())
	}
	return outstanding
}

// Settled reports whether every period has been repaid.
func (p *InstallmentPlan) Settled() bool {
	return p.PaidPeriods >= p.TotalPeriods
}
