// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("repayment_type", validateRepaymentType)
		_ = v.RegisterValidation("fee_strategy", validateFeeStrategy)
		_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	}
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "basic", "credit", "loan", "borrowing", "lending":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense", "transfer":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "yearly":
		return true
	}
	return false
}

func validateRepaymentType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "equal_interest", "equal_principal":
		return true
	}
	return false
}

func validateFeeStrategy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "evenly_split", "upfront":
		return true
	}
	return false
}

// validatePositiveAmount checks that a decimal field is strictly positive.
func validatePositiveAmount(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.IsPositive()
}
