package models

import (
	"time"

	"github.com/desklino/desklino-backend/pkg/enums"
)

// Client represents a customer reachable through the call center.
type Client struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string           `gorm:"column:name;not null"`
	Email     string           `gorm:"column:email;not null"`
	Type      enums.ClientType `gorm:"column:type;type:text;not null;default:'individual'"`
	Notes     *string          `gorm:"column:notes"`
	Phones    []Phone          `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Addresses []Address        `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
