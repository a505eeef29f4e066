package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// transactionService is the transaction engine: it records transactions and
// keeps account balances consistent with them. Every mutation applies its
// balance effect and the record change in a single database transaction.
type transactionService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accounts AccountServicer) TransactionServicer {
	return &transactionService{db: db, accounts: accounts}
}

// CreateTransaction records a transaction and applies its balance effect.
func (s *transactionService) CreateTransaction(
	userID, ledgerID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	note string,
	date time.Time,
	fromAccountID, toAccountID *string,
) (*models.Transaction, error) {
	var transaction *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.CreateTransactionWithDB(tx, userID, ledgerID, categoryID, transactionType, amount, note, date, fromAccountID, toAccountID)
		if err != nil {
			return err
		}
		transaction = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// CreateTransactionWithDB records a transaction inside an existing database
// transaction, so callers can compose it into larger atomic operations.
func (s *transactionService) CreateTransactionWithDB(
	tx *gorm.DB,
	userID, ledgerID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	note string,
	date time.Time,
	fromAccountID, toAccountID *string,
) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction amount must be greater than zero")
	}

	ledger, err := findOwnedLedger(tx, userID, ledgerID)
	if err != nil {
		return nil, err
	}

	switch transactionType {
	case models.TransactionTypeExpense:
		if fromAccountID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrMissingAccountRef, "an expense requires a source account")
		}
		toAccountID = nil
	case models.TransactionTypeIncome:
		if toAccountID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrMissingAccountRef, "an income requires a destination account")
		}
		fromAccountID = nil
	case models.TransactionTypeTransfer:
		if fromAccountID == nil || toAccountID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrMissingAccountRef, "a transfer requires both accounts")
		}
		if *fromAccountID == *toAccountID {
			return nil, apperrors.ErrSameAccountTransfer
		}
		if categoryID != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transfers cannot carry a category")
		}
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}

	if categoryID != nil {
		category, err := findOwnedCategory(tx, userID, *categoryID)
		if err != nil {
			return nil, err
		}
		if category.LedgerID != ledger.ID {
			return nil, apperrors.ErrLedgerMismatch
		}
		if transactionType == models.TransactionTypeExpense && category.Type != models.CategoryTypeExpense {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
		if transactionType == models.TransactionTypeIncome && category.Type != models.CategoryTypeIncome {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
	}

	if fromAccountID != nil {
		from, err := findOwnedAccount(tx, userID, *fromAccountID)
		if err != nil {
			return nil, err
		}
		if err := from.Debit(amount); err != nil {
			return nil, err
		}
		if err := s.accounts.SaveBalances(tx, from); err != nil {
			return nil, err
		}
	}
	if toAccountID != nil {
		to, err := findOwnedAccount(tx, userID, *toAccountID)
		if err != nil {
			return nil, err
		}
		if err := to.Credit(amount); err != nil {
			return nil, err
		}
		if err := s.accounts.SaveBalances(tx, to); err != nil {
			return nil, err
		}
	}

	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:        userID,
		LedgerID:      ledger.ID,
		CategoryID:    categoryID,
		Type:          transactionType,
		Source:        models.TransactionSourceManual,
		Amount:        amount,
		Note:          note,
		Date:          date,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
	}

	if err := tx.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// EditTransaction updates a transaction in two phases: the old balance effect
// is rolled back, then the new one is applied. Both phases and the record
// update commit atomically, so deleting right after creating always restores
// the exact prior balances.
func (s *transactionService) EditTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := findOwnedTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Source == models.TransactionSourceInstallment {
		return nil, apperrors.ErrEngineManagedRecord
	}

	newAmount := transaction.Amount
	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction amount must be greater than zero")
		}
		newAmount = *update.Amount
	}

	newFromID := transaction.FromAccountID
	if update.FromAccountID != nil {
		newFromID = update.FromAccountID
	}
	newToID := transaction.ToAccountID
	if update.ToAccountID != nil {
		newToID = update.ToAccountID
	}

	switch transaction.Type {
	case models.TransactionTypeExpense:
		if newFromID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrMissingAccountRef, "an expense requires a source account")
		}
	case models.TransactionTypeIncome:
		if newToID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrMissingAccountRef, "an income requires a destination account")
		}
	case models.TransactionTypeTransfer:
		if newFromID == nil || newToID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrMissingAccountRef, "a transfer requires both accounts")
		}
		if *newFromID == *newToID {
			return nil, apperrors.ErrSameAccountTransfer
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// One struct per account, so a transaction touching the same account
		// in both phases sees its own intermediate state.
		accounts := make(map[string]*models.Account)
		load := func(id string) (*models.Account, error) {
			if account, ok := accounts[id]; ok {
				return account, nil
			}
			account, err := findOwnedAccount(tx, userID, id)
			if err != nil {
				return nil, err
			}
			accounts[id] = account
			return account, nil
		}

		// Phase one: undo the old effect.
		if transaction.FromAccountID != nil {
			from, err := load(*transaction.FromAccountID)
			if err != nil {
				return err
			}
			if err := from.RollbackDebit(transaction.Amount); err != nil {
				return err
			}
		}
		if transaction.ToAccountID != nil {
			to, err := load(*transaction.ToAccountID)
			if err != nil {
				return err
			}
			if err := to.RollbackCredit(transaction.Amount); err != nil {
				return err
			}
		}

		// Phase two: apply the new effect.
		if newFromID != nil {
			from, err := load(*newFromID)
			if err != nil {
				return err
			}
			if err := from.Debit(newAmount); err != nil {
				return err
			}
		}
		if newToID != nil {
			to, err := load(*newToID)
			if err != nil {
				return err
			}
			if err := to.Credit(newAmount); err != nil {
				return err
			}
		}

		for _, account := range accounts {
			if err := s.accounts.SaveBalances(tx, account); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"amount":          newAmount,
			"from_account_id": newFromID,
			"to_account_id":   newToID,
		}
		if update.Date != nil {
			updates["date"] = *update.Date
		}
		if update.Note != nil {
			updates["note"] = *update.Note
		}

		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("id = ?", transaction.ID).First(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction rolls back the transaction's balance effect and removes
// the record. Installment-posted rows are refused; their lifecycle belongs
// to the plan.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := findOwnedTransaction(s.db, userID, transactionID)
	if err != nil {
		return err
	}
	if transaction.Source == models.TransactionSourceInstallment {
		// The plan booked this row's debt effect at creation; rolling the
		// row back here would pay the card's debt down a second time.
		return apperrors.ErrEngineManagedRecord
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if transaction.FromAccountID != nil {
			from, err := findOwnedAccount(tx, userID, *transaction.FromAccountID)
			if err != nil {
				return err
			}
			if err := from.RollbackDebit(transaction.Amount); err != nil {
				return err
			}
			if err := s.accounts.SaveBalances(tx, from); err != nil {
				return err
			}
		}
		if transaction.ToAccountID != nil {
			to, err := findOwnedAccount(tx, userID, *transaction.ToAccountID)
			if err != nil {
				return err
			}
			if err := to.RollbackCredit(transaction.Amount); err != nil {
				return err
			}
			if err := s.accounts.SaveBalances(tx, to); err != nil {
				return err
			}
		}

		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	transaction, err := findOwnedTransaction(s.db, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("Category").Preload("FromAccount").Preload("ToAccount").
		Where("id = ?", transaction.ID).First(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetLedgerTransactions retrieves a paginated, filtered list of transactions
// in a ledger.
func (s *transactionService) GetLedgerTransactions(userID, ledgerID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := findOwnedLedger(s.db, userID, ledgerID); err != nil {
		return nil, err
	}
	query := s.db.Model(&models.Transaction{}).Where("ledger_id = ?", ledgerID)
	return s.listTransactions(query, page, filter)
}

// GetUserTransactions retrieves a paginated, filtered list of transactions
// across all of a user's ledgers.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	query := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	return s.listTransactions(query, page, filter)
}

func (s *transactionService) listTransactions(query *gorm.DB, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	query = applyTransactionFilters(query, filter)

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := query.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AccountID != nil {
		query = query.Where("from_account_id = ? OR to_account_id = ?", *filter.AccountID, *filter.AccountID)
	}
	return query
}
