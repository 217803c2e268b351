package orders

import (
	"time"

	"github.com/desklino/desklino-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ItemInput requests a quantity of a product by (partial) name. Resolution
// is a substring match against the catalog.
type ItemInput struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// CreateOrderInput is the payload for placing an order. AttendantID is
// optional; when absent the first registered attendant serves the call.
// AddressID is optional; when absent the client's principal address is used.
// A zero Total asks the server to compute it from the resolved items.
type CreateOrderInput struct {
	ClientID      int64           `json:"client_id" validate:"required"`
	AttendantID   *int64          `json:"attendant_id"`
	AddressID     *int64          `json:"address_id"`
	Items         []ItemInput     `json:"items" validate:"dive"`
	PaymentMethod string          `json:"payment_method"`
	Notes         *string         `json:"notes"`
	Total         decimal.Decimal `json:"total"`
}

// ItemDetail is one line of an order detail view.
type ItemDetail struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderDetail is the full admin view of an order.
type OrderDetail struct {
	ID            int64             `json:"id"`
	AttendanceID  int64             `json:"attendance_id"`
	ClientID      int64             `json:"client_id"`
	ClientName    string            `json:"client_name"`
	AddressID     int64             `json:"address_id"`
	Status        enums.OrderStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Notes         *string           `json:"notes"`
	Total         decimal.Decimal   `json:"total"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []ItemDetail      `json:"items"`
}

// ListFilters narrows the paginated order listing. Search matches client
// name or phone number substrings; ClientID and Status filter exactly.
type ListFilters struct {
	Page     int
	PageSize int
	Search   string
	ClientID *int64
	Status   enums.OrderStatus
}

// OrderRow is one row of the paginated listing.
type OrderRow struct {
	ID         int64             `json:"id"`
	ClientID   int64             `json:"client_id"`
	ClientName string            `json:"client_name"`
	Status     enums.OrderStatus `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderPage is an offset-paginated order listing.
type OrderPage struct {
	Rows     []OrderRow `json:"rows"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// HistoryRow is one entry of a client's recent order history, with a
// human-readable item summary like "2x Botijão P13, 1x Água 20L".
type HistoryRow struct {
	ID        int64             `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	Summary   string            `json:"summary"`
}
