package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/desklino/desklino-backend/pkg/config"
	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/logger"
	"github.com/desklino/desklino-backend/pkg/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// historyLimit caps the per-client order history.
const historyLimit = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (int64, error)
	FindByID(ctx context.Context, id int64) (*OrderDetail, error)
	FindByAttendance(ctx context.Context, attendanceID int64) (*OrderDetail, error)
	List(ctx context.Context, filters ListFilters) (*OrderPage, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	RecalculateTotal(ctx context.Context, id int64) (decimal.Decimal, error)
	HistoryByClient(ctx context.Context, clientID int64) ([]HistoryRow, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	log         *logger.Logger
	strictItems bool
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, log *logger.Logger, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		log:         log,
		strictItems: cfg.StrictItems,
	}, nil
}

type stagedItem struct {
	productID int64
	quantity  int
	unitPrice decimal.Decimal
}

// Create places an order in one transaction: it records the attendance,
// resolves the delivery address and the requested items, computes the total
// when the caller supplied none, inserts the order with its items and
// decrements stock per item. Any failure rolls the whole unit back.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (int64, error) {
	if err := validate.Struct(input); err != nil {
		return 0, err
	}

	ctx = s.log.WithClientID(ctx, input.ClientID)

	var orderID int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		attendant, err := s.resolveAttendant(ctx, repo, input.AttendantID)
		if err != nil {
			return err
		}

		attendance := &models.Attendance{
			ClientID:    input.ClientID,
			AttendantID: attendant.ID,
		}
		if err := repo.CreateAttendance(ctx, attendance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert attendance")
		}

		addressID, err := s.resolveAddress(ctx, repo, input)
		if err != nil {
			return err
		}

		staged, computed, err := s.resolveItems(ctx, repo, input.Items)
		if err != nil {
			return err
		}

		total := input.Total
		if !total.IsPositive() {
			total = computed
		}

		payment := input.PaymentMethod
		if payment == "" {
			payment = "cash"
		}

		order := &models.Order{
			AttendanceID:  attendance.ID,
			AddressID:     addressID,
			Status:        enums.OrderStatusPending,
			PaymentMethod: payment,
			Notes:         input.Notes,
			Total:         total,
			Items:         make([]models.OrderItem, 0, len(staged)),
		}
		for _, item := range staged {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.productID,
				Quantity:  item.quantity,
				UnitPrice: item.unitPrice,
			})
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		orderID = order.ID

		for _, item := range staged {
			if err := repo.DecrementStock(ctx, item.productID, item.quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info(s.log.WithOrderID(ctx, orderID), "order created")
	return orderID, nil
}

func (s *service) resolveAttendant(ctx context.Context, repo Repository, attendantID *int64) (*models.Attendant, error) {
	if attendantID != nil {
		attendant, err := repo.FindAttendant(ctx, *attendantID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "attendant not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attendant")
		}
		return attendant, nil
	}

	attendant, err := repo.FirstAttendant(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no attendant registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attendant")
	}
	return attendant, nil
}

func (s *service) resolveAddress(ctx context.Context, repo Repository, input CreateOrderInput) (int64, error) {
	if input.AddressID != nil {
		return *input.AddressID, nil
	}

	address, err := repo.PrincipalAddress(ctx, input.ClientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "client has no address")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load principal address")
	}
	return address.ID, nil
}

// resolveItems matches each requested item name against the catalog. An
// unmatched name is skipped unless strict mode is on. The second return
// value is the computed total over the matched items.
func (s *service) resolveItems(ctx context.Context, repo Repository, items []ItemInput) ([]stagedItem, decimal.Decimal, error) {
	staged := make([]stagedItem, 0, len(items))
	computed := decimal.Zero

	for _, item := range items {
		product, err := repo.FindProductByName(ctx, item.Product)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				if s.strictItems {
					return nil, decimal.Zero, pkgerrors.
						New(pkgerrors.CodeValidation, "order item does not match any product").
						WithDetails(map[string]string{"product": item.Product})
				}
				s.log.Warn(s.log.WithField(ctx, "product", item.Product), "order item skipped, no catalog match")
				continue
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order item")
		}

		staged = append(staged, stagedItem{
			productID: product.ID,
			quantity:  item.Quantity,
			unitPrice: product.Price,
		})
		computed = computed.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return staged, computed, nil
}

// FindByID returns the full order detail. A miss is a soft not-found:
// (nil, nil).
func (s *service) FindByID(ctx context.Context, id int64) (*OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return s.composeDetail(ctx, order)
}

func (s *service) FindByAttendance(ctx context.Context, attendanceID int64) (*OrderDetail, error) {
	order, err := s.repo.FindByAttendance(ctx, attendanceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by attendance")
	}
	return s.composeDetail(ctx, order)
}

func (s *service) composeDetail(ctx context.Context, order *models.Order) (*OrderDetail, error) {
	detail := &OrderDetail{
		ID:            order.ID,
		AttendanceID:  order.AttendanceID,
		AddressID:     order.AddressID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
		Total:         order.Total,
		CreatedAt:     order.CreatedAt,
	}

	client, err := s.repo.ClientForAttendance(ctx, order.AttendanceID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order client")
		}
	} else {
		detail.ClientID = client.ID
		detail.ClientName = client.Name
	}

	rows, err := s.repo.ItemRows(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	detail.Items = make([]ItemDetail, 0, len(rows))
	for _, row := range rows {
		detail.Items = append(detail.Items, ItemDetail{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
		})
	}
	return detail, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) (*OrderPage, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return &OrderPage{Rows: rows, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateStatus writes the status as given. Callers restrict values to the
// known enum; this layer does not.
func (s *service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return nil
}

// RecalculateTotal recomputes the order total from current catalog prices
// and overwrites the stored value. Used as a repair tool when a total was
// recorded as zero.
func (s *service) RecalculateTotal(ctx context.Context, id int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		rows, err := repo.ItemRows(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		total = decimal.Zero
		for _, row := range rows {
			total = total.Add(row.CurrentPrice.Mul(decimal.NewFromInt(int64(row.Quantity))))
		}

		if err := repo.UpdateTotal(ctx, id, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info(s.log.WithOrderID(ctx, id), "order total recalculated")
	return total, nil
}

// HistoryByClient returns the client's most recent orders with a readable
// item summary per order.
func (s *service) HistoryByClient(ctx context.Context, clientID int64) ([]HistoryRow, error) {
	rows, err := s.repo.ListByClient(ctx, clientID, historyLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client orders")
	}

	history := make([]HistoryRow, 0, len(rows))
	for _, order := range rows {
		items, err := s.repo.ItemRows(ctx, order.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.ProductName))
		}
		history = append(history, HistoryRow{
			ID:        order.ID,
			Status:    order.Status,
			Total:     order.Total,
			CreatedAt: order.CreatedAt,
			Summary:   strings.Join(parts, ", "),
		})
	}
	return history, nil
}
