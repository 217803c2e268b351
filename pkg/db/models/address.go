package models

// Address is a delivery address owned by a client. At most one address per
// client carries IsPrincipal, and every client with addresses has exactly one.
type Address struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID      int64   `gorm:"column:client_id;not null;index"`
	Label         string  `gorm:"column:label;not null;default:'Principal'"`
	Street        string  `gorm:"column:street;not null"`
	Number        string  `gorm:"column:number;not null;default:'S/N'"`
	Complement    *string `gorm:"column:complement"`
	Neighborhood  string  `gorm:"column:neighborhood;not null"`
	ReferenceNote *string `gorm:"column:reference_note"`
	IsPrincipal   bool    `gorm:"column:is_principal;not null;default:false"`
}
