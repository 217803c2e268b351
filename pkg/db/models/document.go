package models

// IndividualDocument holds the 11-digit document of an individual client.
// A client owns at most one of IndividualDocument/OrganizationDocument.
type IndividualDocument struct {
	ClientID       int64  `gorm:"column:client_id;primaryKey"`
	DocumentNumber string `gorm:"column:document_number;type:char(11);not null"`
}

// OrganizationDocument holds the 14-digit document of an organization client.
type OrganizationDocument struct {
	ClientID       int64  `gorm:"column:client_id;primaryKey"`
	DocumentNumber string `gorm:"column:document_number;type:char(14);not null"`
}
