package models

// Ledger is a unit of bookkeeping (e.g. "personal", "business") owning
// a category tree and the transactions recorded against it.
type Ledger struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Note   string `json:"note"`

	Categories   []Category    `gorm:"foreignKey:LedgerID" json:"categories,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:LedgerID" json:"transactions,omitempty"`
}
