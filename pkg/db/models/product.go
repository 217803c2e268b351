package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. StockQuantity never goes negative; order
// creation clamps the decrement at zero.
type Product struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	Available     bool            `gorm:"column:available;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
