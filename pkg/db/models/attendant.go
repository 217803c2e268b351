package models

import "github.com/desklino/desklino-backend/pkg/enums"

// Attendant is a call-center operator. Password verification is handled by
// an outer layer; this core only stores the hash column.
type Attendant struct {
	ID           int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Login        string              `gorm:"column:login;not null;uniqueIndex"`
	Name         string              `gorm:"column:name;not null"`
	PasswordHash string              `gorm:"column:password_hash;not null"`
	Role         enums.AttendantRole `gorm:"column:role;type:text;not null;default:'attendant'"`
}
