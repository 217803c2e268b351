package models

import "time"

// Attendance records that a client was contacted by an attendant at a point
// in time. Created standalone as a contact log or implicitly with an order.
// Append-only; never updated.
type Attendance struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID    int64     `gorm:"column:client_id;not null;index"`
	AttendantID int64     `gorm:"column:attendant_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
