package models

import "github.com/google/uuid"

type Module struct {
	Base
	Name            string `gorm:"uniqueIndex;not null" json:"name"`
	Description     string `json:"description"`
	TextColor       string `gorm:"not null" json:"text_color"`
	BackgroundColor string `gorm:"not null" json:"background_color"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:ModuleID" json:"transactions,omitempty"`
	Functions    []Function    `gorm:"foreignKey:ModuleID" json:"functions,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// Transaction names are unique within their module.
type Transaction struct {
	Base
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_module_name,priority:1" json:"module_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_transactions_module_name,priority:2" json:"name"`
	Description string    `json:"description"`

	Module *Module `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Function names are unique within their module.
type Function struct {
	Base
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_functions_module_name,priority:1" json:"module_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_functions_module_name,priority:2" json:"name"`
	Description string    `json:"description"`

	Module *Module `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}

func (Function) TableName() string {
	return "functions"
}
