package models

import (
	"time"

	"github.com/desklino/desklino-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is placed during an attendance and delivered to one of the client's
// addresses. Items are immutable after creation; status and total may change.
type Order struct {
	ID            int64             `gorm:"column:id;primaryKey;autoIncrement"`
	AttendanceID  int64             `gorm:"column:attendance_id;not null;index"`
	AddressID     int64             `gorm:"column:address_id;not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod string            `gorm:"column:payment_method;not null;default:'cash'"`
	Notes         *string           `gorm:"column:notes"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
