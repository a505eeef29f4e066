package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateBasicAccount creates a plain cash/deposit account.
func (s *accountService) CreateBasicAccount(userID, name, notes string, initialBalance decimal.Decimal) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	account := &models.Account{
		UserID:             userID,
		Name:               name,
		Type:               models.AccountTypeBasic,
		Notes:              notes,
		Balance:            initialBalance,
		IncludedInNetAsset: true,
		Selectable:         true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// CreateCreditAccount creates a credit account with an optional billing cycle.
func (s *accountService) CreateCreditAccount(userID, name, notes string, params CreditAccountParams) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if params.CreditLimit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit cannot be negative")
	}
	if err := validateDayOfMonth(params.BillDay); err != nil {
		return nil, err
	}
	if err := validateDayOfMonth(params.DueDay); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:             userID,
		Name:               name,
		Type:               models.AccountTypeCredit,
		Notes:              notes,
		CreditLimit:        params.CreditLimit,
		BillDay:            params.BillDay,
		DueDay:             params.DueDay,
		IncludedInNetAsset: true,
		Selectable:         true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// CreateLoanAccount creates a loan account. The outstanding amount is derived
// from the amortization schedule for the repayment type.
func (s *accountService) CreateLoanAccount(userID, name, notes string, params LoanAccountParams) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !params.LoanAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "loan amount must be greater than zero")
	}
	if params.TotalPeriods <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total periods must be greater than zero")
	}
	if params.RepaidPeriods < 0 || params.RepaidPeriods > params.TotalPeriods {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "repaid periods must be between zero and total periods")
	}
	if params.AnnualInterestRate.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
	}
	if params.RepaymentType == "" {
		params.RepaymentType = models.RepaymentEqualInterest
	}

	account := &models.Account{
		UserID:             userID,
		Name:               name,
		Type:               models.AccountTypeLoan,
		Notes:              notes,
		LoanAmount:         params.LoanAmount,
		TotalPeriods:       params.TotalPeriods,
		RepaidPeriods:      params.RepaidPeriods,
		AnnualInterestRate: params.AnnualInterestRate,
		RepaymentType:      params.RepaymentType,
		IncludedInNetAsset: true,
		// Loan accounts never fund transactions directly.
		Selectable: false,
	}
	account.RemainingAmount = account.LoanScheduleRemaining(account.RepaidPeriods)

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// CreateBorrowingAccount creates an account tracking money owed by the user.
func (s *accountService) CreateBorrowingAccount(userID, name, notes string, balance decimal.Decimal) (*models.Account, error) {
	return s.createCounterpartyAccount(userID, name, notes, models.AccountTypeBorrowing, balance)
}

// CreateLendingAccount creates an account tracking money owed to the user.
func (s *accountService) CreateLendingAccount(userID, name, notes string, balance decimal.Decimal) (*models.Account, error) {
	return s.createCounterpartyAccount(userID, name, notes, models.AccountTypeLending, balance)
}

func (s *accountService) createCounterpartyAccount(userID, name, notes string, accountType models.AccountType, balance decimal.Decimal) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if balance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance cannot be negative")
	}

	account := &models.Account{
		UserID:             userID,
		Name:               name,
		Type:               accountType,
		Notes:              notes,
		Balance:            balance,
		IncludedInNetAsset: true,
		Selectable:         true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	return findOwnedAccount(s.db, userID, accountID)
}

// UpdateAccount updates an existing account. Only fields relevant to the
// account's type are applied.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := findOwnedAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Notes != nil {
		updates["notes"] = *fields.Notes
	}
	if fields.IncludedInNetAsset != nil {
		updates["included_in_net_asset"] = *fields.IncludedInNetAsset
	}
	if fields.Selectable != nil {
		updates["selectable"] = *fields.Selectable
	}

	if account.Type == models.AccountTypeCredit {
		if fields.CreditLimit != nil {
			if fields.CreditLimit.IsNegative() {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit cannot be negative")
			}
			updates["credit_limit"] = *fields.CreditLimit
		}
		if fields.BillDay != nil {
			if err := validateDayOfMonth(fields.BillDay); err != nil {
				return nil, err
			}
			updates["bill_day"] = *fields.BillDay
		}
		if fields.DueDay != nil {
			if err := validateDayOfMonth(fields.DueDay); err != nil {
				return nil, err
			}
			updates["due_day"] = *fields.DueDay
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// SetHidden toggles an account's visibility. Hidden accounts are excluded
// from every aggregate regardless of their net-asset flag.
func (s *accountService) SetHidden(userID, accountID string, hidden bool) (*models.Account, error) {
	account, err := findOwnedAccount(s.db, userID, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(account).Update("hidden", hidden).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Hidden = hidden
	return account, nil
}

// DeleteAccount removes an account. With deleteTransactions the account's
// transactions are deleted as well; otherwise they are kept on their
// ledger/category and only unlinked from the account.
func (s *accountService) DeleteAccount(userID, accountID string, deleteTransactions bool) error {
	account, err := findOwnedAccount(s.db, userID, accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if deleteTransactions {
			if err := tx.Where("from_account_id = ? OR to_account_id = ?", account.ID, account.ID).
				Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else {
			if err := tx.Model(&models.Transaction{}).Where("from_account_id = ?", account.ID).
				Update("from_account_id", nil).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Model(&models.Transaction{}).Where("to_account_id = ?", account.ID).
				Update("to_account_id", nil).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if account.Type == models.AccountTypeCredit {
			if err := tx.Where("account_id = ?", account.ID).
				Delete(&models.InstallmentPlan{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// SaveBalances persists the balance and debt columns inside an existing
// database transaction.
func (s *accountService) SaveBalances(tx *gorm.DB, account *models.Account) error {
	updates := map[string]interface{}{
		"balance":      account.Balance,
		"current_debt": account.CurrentDebt,
	}
	if err := tx.Model(account).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func validateDayOfMonth(day *int) error {
	if day == nil {
		return nil
	}
	if *day < 1 || *day > 31 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "day of month must be between 1 and 31")
	}
	return nil
}
