package models

type Profile struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`
}

func (Profile) TableName() string {
	return "profiles"
}
