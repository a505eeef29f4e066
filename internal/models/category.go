package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a node in a ledger's two-level classification tree.
// Top-level categories may have children; subcategories may not.
type Category struct {
	Base
	LedgerID string       `gorm:"type:uuid;not null;index" json:"ledger_id"`
	Name     string       `gorm:"not null" json:"name"`
	Type     CategoryType `gorm:"not null" json:"type"`
	Icon     string       `json:"icon"`
	Color    string       `json:"color"`
	ParentID *string      `gorm:"type:uuid" json:"parent_id,omitempty"`

	// Relationships
	Parent       *Category     `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children     []Category    `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}

// IsSubcategory reports whether the category has a parent.
func (c *Category) IsSubcategory() bool {
	return c.ParentID != nil
}
