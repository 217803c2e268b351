package orders

import (
	"context"
	"strings"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// itemRow joins an order item with its catalog product. CurrentPrice is the
// catalog price at read time, not the price recorded on the item.
type itemRow struct {
	ProductID    int64
	ProductName  string
	Quantity     int
	UnitPrice    decimal.Decimal
	CurrentPrice decimal.Decimal
}

// Repository defines persistence operations for orders and their attendances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FirstAttendant(ctx context.Context) (*models.Attendant, error)
	FindAttendant(ctx context.Context, id int64) (*models.Attendant, error)
	PrincipalAddress(ctx context.Context, clientID int64) (*models.Address, error)
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
	CreateAttendance(ctx context.Context, attendance *models.Attendance) error
	CreateOrder(ctx context.Context, order *models.Order) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByAttendance(ctx context.Context, attendanceID int64) (*models.Order, error)
	ClientForAttendance(ctx context.Context, attendanceID int64) (*models.Client, error)
	ItemRows(ctx context.Context, orderID int64) ([]itemRow, error)
	List(ctx context.Context, filters ListFilters) ([]OrderRow, int64, error)
	ListByClient(ctx context.Context, clientID int64, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FirstAttendant(ctx context.Context) (*models.Attendant, error) {
	var attendant models.Attendant
	err := r.db.WithContext(ctx).Order("id ASC").First(&attendant).Error
	if err != nil {
		return nil, err
	}
	return &attendant, nil
}

func (r *repository) FindAttendant(ctx context.Context, id int64) (*models.Attendant, error) {
	var attendant models.Attendant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attendant).Error
	if err != nil {
		return nil, err
	}
	return &attendant, nil
}

func (r *repository) PrincipalAddress(ctx context.Context, clientID int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND is_principal = ?", clientID, true).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// FindProductByName matches the catalog by case-insensitive substring and
// returns the first hit ordered by name.
func (r *repository) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	pattern := "%" + strings.ToLower(name) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateAttendance(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

// CreateOrder inserts the order row and its staged items in one go.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// DecrementStock lowers a product's stock by the ordered quantity, clamped
// at zero. Insufficient stock never fails the order.
func (r *repository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr(
			"CASE WHEN stock_quantity >= ? THEN stock_quantity - ? ELSE 0 END",
			quantity, quantity,
		)).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByAttendance(ctx context.Context, attendanceID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("attendance_id = ?", attendanceID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ClientForAttendance(ctx context.Context, attendanceID int64) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Select("clients.*").
		Joins("JOIN attendances ON attendances.client_id = clients.id").
		Where("attendances.id = ?", attendanceID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) ItemRows(ctx context.Context, orderID int64) ([]itemRow, error) {
	var rows []itemRow
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", orderID).
		Select("order_items.product_id AS product_id, products.name AS product_name, " +
			"order_items.quantity AS quantity, order_items.unit_price AS unit_price, " +
			"products.price AS current_price").
		Order("order_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]OrderRow, int64, error) {
	params := pagination.Params{Page: filters.Page, PageSize: filters.PageSize}.Normalize()

	filtered := func() *gorm.DB {
		base := r.db.WithContext(ctx).
			Model(&models.Order{}).
			Joins("JOIN attendances ON attendances.id = orders.attendance_id").
			Joins("JOIN clients ON clients.id = attendances.client_id")
		if filters.Search != "" {
			pattern := "%" + strings.ToLower(filters.Search) + "%"
			base = base.Where(
				"LOWER(clients.name) LIKE ? OR clients.id IN (SELECT client_id FROM phones WHERE LOWER(number) LIKE ?)",
				pattern, pattern,
			)
		}
		if filters.ClientID != nil {
			base = base.Where("attendances.client_id = ?", *filters.ClientID)
		}
		if filters.Status != "" {
			base = base.Where("orders.status = ?", filters.Status)
		}
		return base
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []OrderRow
	err := filtered().
		Select("orders.id AS id, clients.id AS client_id, clients.name AS client_name, " +
			"orders.status AS status, orders.total AS total, orders.created_at AS created_at").
		Order("orders.id DESC").
		Limit(params.Limit()).
		Offset(params.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int64, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Select("orders.*").
		Joins("JOIN attendances ON attendances.id = orders.attendance_id").
		Where("attendances.client_id = ?", clientID).
		Order("orders.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("total", total).Error
}
