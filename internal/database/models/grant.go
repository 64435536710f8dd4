package models

import "github.com/google/uuid"

type ProfileModule struct {
	Base
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_modules_pair,priority:1" json:"profile_id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_profile_modules_pair,priority:2" json:"module_id"`
}

func (ProfileModule) TableName() string {
	return "profile_modules"
}

// ProfileTransaction requires the transaction's module to be granted to the same profile.
type ProfileTransaction struct {
	Base
	ProfileID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_transactions_pair,priority:1" json:"profile_id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_profile_transactions_pair,priority:2" json:"transaction_id"`
}

func (ProfileTransaction) TableName() string {
	return "profile_transactions"
}

// ProfileFunction grants a function in the context of one granted transaction.
type ProfileFunction struct {
	Base
	ProfileID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_functions_triple,priority:1" json:"profile_id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_profile_functions_triple,priority:2" json:"transaction_id"`
	FunctionID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_profile_functions_triple,priority:3" json:"function_id"`
}

func (ProfileFunction) TableName() string {
	return "profile_functions"
}
