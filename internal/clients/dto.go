package clients

import "github.com/desklino/desklino-backend/pkg/enums"

// Document is the tagged-variant person document attached to a client:
// an 11-digit number for individuals, a 14-digit number for organizations.
type Document struct {
	Type   enums.ClientType `json:"type"`
	Number string           `json:"number"`
}

// AddressInput carries the optional first address registered with a client.
type AddressInput struct {
	Label         string  `json:"label"`
	Street        string  `json:"street"`
	Number        string  `json:"number"`
	Complement    *string `json:"complement"`
	Neighborhood  string  `json:"neighborhood"`
	ReferenceNote *string `json:"reference_note"`
}

// CreateClientInput registers a client together with their first phone and,
// when street and neighborhood are present, a principal address.
type CreateClientInput struct {
	Name     string           `json:"name" validate:"required"`
	Phone    string           `json:"phone" validate:"required"`
	Email    string           `json:"email" validate:"omitempty,email"`
	Type     enums.ClientType `json:"type" validate:"omitempty,oneof=individual organization"`
	Notes    *string          `json:"notes"`
	Document string           `json:"document" validate:"omitempty,numeric"`
	Address  *AddressInput    `json:"address"`
}

// UpdateClientInput merges only the supplied fields. Document is applied
// only when Type is also supplied, switching the tagged variant if needed.
type UpdateClientInput struct {
	Name     *string           `json:"name"`
	Email    *string           `json:"email" validate:"omitempty,email"`
	Type     *enums.ClientType `json:"type" validate:"omitempty,oneof=individual organization"`
	Notes    *string           `json:"notes"`
	Document *string           `json:"document" validate:"omitempty,numeric"`
}

// AddressDetail mirrors one address row for read paths.
type AddressDetail struct {
	ID            int64   `json:"id"`
	Label         string  `json:"label"`
	Street        string  `json:"street"`
	Number        string  `json:"number"`
	Complement    *string `json:"complement"`
	Neighborhood  string  `json:"neighborhood"`
	ReferenceNote *string `json:"reference_note"`
	IsPrincipal   bool    `json:"is_principal"`
}

// ClientDetail is the full read model: client fields, a display phone, all
// phone numbers, the principal address and the document variant.
type ClientDetail struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Type     enums.ClientType `json:"type"`
	Notes    *string          `json:"notes"`
	Phone    string           `json:"phone"`
	Phones   []string         `json:"phones"`
	Address  *AddressDetail   `json:"address"`
	Document *Document        `json:"document"`
}

// ClientSummary is the compact row shape used by paginated listings.
type ClientSummary struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Type     enums.ClientType `json:"type"`
	Notes    *string          `json:"notes"`
	Phone    string           `json:"phone"`
	Document *Document        `json:"document"`
}

// ClientPage is an offset-paginated listing result.
type ClientPage struct {
	Rows     []ClientSummary `json:"rows"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
