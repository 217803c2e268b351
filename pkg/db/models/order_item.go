package models

import "github.com/shopspring/decimal"

// OrderItem links an order to a catalog product. UnitPrice records the
// catalog price at order time; total recalculation deliberately re-reads
// current catalog prices instead (see orders.Service.RecalculateTotal).
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
}
