package models

// Phone is one of possibly many contact numbers owned by a client.
// Numbers are stored as free text, not normalized.
type Phone struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID int64  `gorm:"column:client_id;not null;index"`
	Number   string `gorm:"column:number;not null"`
}
