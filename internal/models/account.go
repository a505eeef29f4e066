package models

import (
	"github.com/shopspring/decimal"

	apperrors "moneta/internal/errors"
)

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeBasic     AccountType = "basic"
	AccountTypeCredit    AccountType = "credit"
	AccountTypeLoan      AccountType = "loan"
	AccountTypeBorrowing AccountType = "borrowing"
	AccountTypeLending   AccountType = "lending"
)

// RepaymentType represents the amortization schedule of a loan account.
type RepaymentType string

const (
	// RepaymentEqualInterest is annuity-style: a constant payment per period.
	RepaymentEqualInterest RepaymentType = "equal_interest"
	// RepaymentEqualPrincipal repays a constant principal share per period,
	// with interest on the declining balance.
	RepaymentEqualPrincipal RepaymentType = "equal_principal"
)

// Account represents a financial account. The five account types share one
// table; Type selects which fields are meaningful and which polarity rules
// Credit/Debit follow.
type Account struct {
	Base
	UserID             string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name               string      `gorm:"not null" json:"name"`
	Type               AccountType `gorm:"not null" json:"type"`
	Notes              string      `json:"notes"`
	Hidden             bool        `gorm:"default:false" json:"hidden"`
	IncludedInNetAsset bool        `gorm:"default:true" json:"included_in_net_asset"`
	Selectable         bool        `gorm:"default:true" json:"selectable"`

	// Basic, credit, borrowing, lending accounts
	Balance decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"balance"`

	// Credit accounts
	CurrentDebt      decimal.Decimal   `gorm:"type:numeric;not null;default:0" json:"current_debt"`
	CreditLimit      decimal.Decimal   `gorm:"type:numeric;not null;default:0" json:"credit_limit"`
	BillDay          *int              `json:"bill_day,omitempty"`
	DueDay           *int              `json:"due_day,omitempty"`
	InstallmentPlans []InstallmentPlan `gorm:"foreignKey:AccountID" json:"installment_plans,omitempty"`

	// Loan accounts
	LoanAmount         decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"loan_amount"`
	TotalPeriods       int             `gorm:"default:0" json:"total_periods"`
	RepaidPeriods      int             `gorm:"default:0" json:"repaid_periods"`
	AnnualInterestRate decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"annual_interest_rate"`
	RepaymentType      RepaymentType   `json:"repayment_type,omitempty"`
	RemainingAmount    decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"remaining_amount"`

	// Relationships
	OutgoingTransactions []Transaction `gorm:"foreignKey:FromAccountID" json:"outgoing_transactions,omitempty"`
	IncomingTransactions []Transaction `gorm:"foreignKey:ToAccountID" json:"incoming_transactions,omitempty"`
}

// Credit adds funds to the account.
func (a *Account) Credit(amount decimal.Decimal) error {
	switch a.Type {
	case AccountTypeLoan:
		return apperrors.ErrLoanAccountImmutable
	default:
		a.Balance = a.Balance.Add(amount)
	}
	return nil
}

// Debit removes funds from the account. For credit accounts, a debit the
// balance cannot cover moves the shortfall onto CurrentDebt instead of
// driving the balance negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	switch a.Type {
	case AccountTypeLoan:
		return apperrors.ErrLoanAccountImmutable
	case AccountTypeCredit:
		if a.Balance.GreaterThanOrEqual(amount) {
			a.Balance = a.Balance.Sub(amount)
		} else {
			shortfall := amount.Sub(a.Balance)
			a.Balance = decimal.Zero
			a.CurrentDebt = a.CurrentDebt.Add(shortfall)
		}
	default:
		a.Balance = a.Balance.Sub(amount)
	}
	return nil
}

// RollbackCredit undoes a prior Credit of the same amount.
func (a *Account) RollbackCredit(amount decimal.Decimal) error {
	if a.Type == AccountTypeLoan {
		return apperrors.ErrLoanAccountImmutable
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// RollbackDebit undoes a prior Debit of the same amount. For credit
// accounts the debt taken on by the debit is paid down first; only the
// remainder returns to the balance.
func (a *Account) RollbackDebit(amount decimal.Decimal) error {
	switch a.Type {
	case AccountTypeLoan:
		return apperrors.ErrLoanAccountImmutable
	case AccountTypeCredit:
		repaid := decimal.Min(a.CurrentDebt, amount)
		a.CurrentDebt = a.CurrentDebt.Sub(repaid)
		a.Balance = a.Balance.Add(amount.Sub(repaid))
	default:
		a.Balance = a.Balance.Add(amount)
	}
	return nil
}

// AssetContribution returns the amount this account adds to the owner's
// total assets.
func (a *Account) AssetContribution() decimal.Decimal {
	switch a.Type {
	case AccountTypeBasic, AccountTypeCredit, AccountTypeLending:
		return a.Balance
	default:
		return decimal.Zero
	}
}

// LiabilityContribution returns the amount this account adds to the owner's
// total liabilities. Settled loans contribute nothing.
func (a *Account) LiabilityContribution() decimal.Decimal {
	switch a.Type {
	case AccountTypeCredit:
		return a.CurrentDebt
	case AccountTypeBorrowing:
		return a.Balance
	case AccountTypeLoan:
		if a.LoanEnded() {
			return decimal.Zero
		}
		return a.RemainingAmount
	default:
		return decimal.Zero
	}
}

// LoanEnded reports whether every scheduled period has been repaid.
func (a *Account) LoanEnded() bool {
	return a.RepaidPeriods >= a.TotalPeriods
}

// monthlyRate converts the annual percentage rate to a monthly fraction.
func (a *Account) monthlyRate() decimal.Decimal {
	return a.AnnualInterestRate.Div(decimal.NewFromInt(1200))
}

// LoanPayment returns the scheduled payment for the given 1-based period,
// rounded to cents.
func (a *Account) LoanPayment(period int) decimal.Decimal {
	if a.TotalPeriods <= 0 {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(a.TotalPeriods))
	r := a.monthlyRate()

	if r.IsZero() {
		return a.LoanAmount.Div(n).Round(2)
	}

	switch a.RepaymentType {
	case RepaymentEqualPrincipal:
		principal := a.LoanAmount.Div(n)
		outstanding := a.LoanAmount.Sub(principal.Mul(decimal.NewFromInt(int64(period - 1))))
		return principal.Add(outstanding.Mul(r)).Round(2)
	default:
		// Annuity: P * r * (1+r)^n / ((1+r)^n - 1), constant across periods.
		compound := decimal.NewFromInt(1).Add(r).Pow(n)
		payment := a.LoanAmount.Mul(r).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))
		return payment.Round(2)
	}
}

// LoanScheduleRemaining returns the total still owed after the given number
// of repaid periods: the sum of all remaining scheduled payments.
func (a *Account) LoanScheduleRemaining(repaidPeriods int) decimal.Decimal {
	remaining := decimal.Zero
	for period := repaidPeriods + 1; period <= a.TotalPeriods; period++ {
		remaining = remaining.Add(a.LoanPayment(period))
	}
	return remaining
}
