package orders

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/desklino/desklino-backend/pkg/config"
	"github.com/desklino/desklino-backend/pkg/db"
	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/desklino/desklino-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Client{},
		&models.Phone{},
		&models.Address{},
		&models.Product{},
		&models.Attendant{},
		&models.Attendance{},
		&models.Order{},
		&models.OrderItem{},
	))
	return conn
}

func newService(t *testing.T, cfg config.OrdersConfig) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	log := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), db.FromConn(conn), log, cfg)
	require.NoError(t, err)
	return svc, conn
}

type fixtures struct {
	clientID    int64
	addressID   int64
	attendantID int64
}

func seedBase(t *testing.T, conn *gorm.DB) fixtures {
	t.Helper()

	client := &models.Client{Name: "Test User", Email: "teste@desklino.com"}
	require.NoError(t, conn.Create(client).Error)
	require.NoError(t, conn.Create(&models.Phone{ClientID: client.ID, Number: "11999990000"}).Error)

	address := &models.Address{
		ClientID:     client.ID,
		Label:        "Principal",
		Street:       "Rua A",
		Number:       "10",
		Neighborhood: "Centro",
		IsPrincipal:  true,
	}
	require.NoError(t, conn.Create(address).Error)

	attendant := &models.Attendant{Login: "atendente.01", Name: "João Silva", PasswordHash: "x"}
	require.NoError(t, conn.Create(attendant).Error)

	return fixtures{clientID: client.ID, addressID: address.ID, attendantID: attendant.ID}
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, price string, stock int) int64 {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Available:     true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product.ID
}

func stockOf(t *testing.T, conn *gorm.DB, productID int64) int {
	t.Helper()
	var product models.Product
	require.NoError(t, conn.First(&product, productID).Error)
	return product.StockQuantity
}

func TestCreate_ComputesTotalAndDecrementsStock(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	productID := seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Botijão P13", Quantity: 2}},
	})
	require.NoError(t, err)

	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.True(t, detail.Total.Equal(decimal.RequireFromString("190.00")),
		"expected total 190.00, got %s", detail.Total)
	assert.Equal(t, fx.addressID, detail.AddressID)
	assert.Equal(t, enums.OrderStatusPending, detail.Status)
	assert.Equal(t, "cash", detail.PaymentMethod)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, productID, detail.Items[0].ProductID)
	assert.Equal(t, 2, detail.Items[0].Quantity)
	assert.True(t, detail.Items[0].UnitPrice.Equal(decimal.RequireFromString("95.00")))

	assert.Equal(t, 8, stockOf(t, conn, productID))
}

func TestCreate_UsesSuppliedTotal(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Agua 20L", "12.00", 50)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Agua 20L", Quantity: 1}},
		Total:    decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)

	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, detail.Total.Equal(decimal.RequireFromString("50.00")))
}

func TestCreate_MatchesProductBySubstring(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	productID := seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "p13", Quantity: 1}},
	})
	require.NoError(t, err)

	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, productID, detail.Items[0].ProductID)
}

func TestCreate_SkipsUnmatchedItems(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items: []ItemInput{
			{Product: "Botijão P13", Quantity: 1},
			{Product: "Produto Fantasma", Quantity: 3},
		},
	})
	require.NoError(t, err)

	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.True(t, detail.Total.Equal(decimal.RequireFromString("95.00")))
}

func TestCreate_StrictItemsRejectsAndRollsBack(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{StrictItems: true})
	fx := seedBase(t, conn)
	productID := seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items: []ItemInput{
			{Product: "Botijão P13", Quantity: 1},
			{Product: "Produto Fantasma", Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	for _, model := range []any{&models.Attendance{}, &models.Order{}, &models.OrderItem{}} {
		var total int64
		require.NoError(t, conn.Model(model).Count(&total).Error)
		assert.Zero(t, total)
	}
	assert.Equal(t, 10, stockOf(t, conn, productID))
}

func TestCreate_FailsWithoutAddressAndLeavesNothing(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	seedBase(t, conn)
	productID := seedProduct(t, conn, "Botijão P13", "95.00", 10)

	client := &models.Client{Name: "Sem Endereço", Email: "sem@desklino.com"}
	require.NoError(t, conn.Create(client).Error)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		ClientID: client.ID,
		Items:    []ItemInput{{Product: "Botijão P13", Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	var attendances int64
	require.NoError(t, conn.Model(&models.Attendance{}).
		Where("client_id = ?", client.ID).Count(&attendances).Error)
	assert.Zero(t, attendances)
	assert.Equal(t, 10, stockOf(t, conn, productID))
}

func TestCreate_ExplicitAddressAndAttendant(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	other := &models.Address{
		ClientID:     fx.clientID,
		Label:        "Trabalho",
		Street:       "Rua B",
		Number:       "20",
		Neighborhood: "Jardim",
	}
	require.NoError(t, conn.Create(other).Error)
	second := &models.Attendant{Login: "atendente.02", Name: "Maria Souza", PasswordHash: "x"}
	require.NoError(t, conn.Create(second).Error)

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID:    fx.clientID,
		AttendantID: &second.ID,
		AddressID:   &other.ID,
		Items:       []ItemInput{{Product: "Botijão P13", Quantity: 1}},
	})
	require.NoError(t, err)

	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, detail.AddressID)

	var attendance models.Attendance
	require.NoError(t, conn.First(&attendance, detail.AttendanceID).Error)
	assert.Equal(t, second.ID, attendance.AttendantID)
}

func TestCreate_StockNeverGoesNegative(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	productID := seedProduct(t, conn, "Botijão P45", "320.00", 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Botijão P45", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, conn, productID))

	_, err = svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Botijão P45", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, conn, productID))
}

func TestRecalculateTotal_UsesCurrentCatalogPrices(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Produto A", "10.00", 100)
	seedProduct(t, conn, "Produto B", "5.00", 100)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items: []ItemInput{
			{Product: "Produto A", Quantity: 2},
			{Product: "Produto B", Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.NoError(t, conn.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total", decimal.Zero).Error)

	total, err := svc.RecalculateTotal(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("25.00")),
		"expected total 25.00, got %s", total)

	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, detail.Total.Equal(decimal.RequireFromString("25.00")))
}

func TestRecalculateTotal_DriftsWithPriceChanges(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	productID := seedProduct(t, conn, "Produto A", "10.00", 100)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Produto A", Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, conn.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("price", decimal.RequireFromString("12.50")).Error)

	total, err := svc.RecalculateTotal(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("25.00")))
}

func TestRecalculateTotal_UnknownOrder(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	seedBase(t, conn)

	_, err := svc.RecalculateTotal(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateStatus_WritesAnyValue(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Botijão P13", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, orderID, "delivered"))
	detail, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, detail.Status)

	require.NoError(t, svc.UpdateStatus(ctx, orderID, "em_rota"))
	detail, err = svc.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.EqualValues(t, "em_rota", detail.Status)
}

func TestFindByAttendance(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Botijão P13", "95.00", 10)
	ctx := context.Background()

	orderID, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Botijão P13", Quantity: 1}},
	})
	require.NoError(t, err)

	byID, err := svc.FindByID(ctx, orderID)
	require.NoError(t, err)

	detail, err := svc.FindByAttendance(ctx, byID.AttendanceID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, orderID, detail.ID)
	assert.Equal(t, fx.clientID, detail.ClientID)
	assert.Equal(t, "Test User", detail.ClientName)

	missing, err := svc.FindByAttendance(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestList_Filters(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Botijão P13", "95.00", 50)
	ctx := context.Background()

	other := &models.Client{Name: "Outra Cliente", Email: "outra@desklino.com"}
	require.NoError(t, conn.Create(other).Error)
	require.NoError(t, conn.Create(&models.Phone{ClientID: other.ID, Number: "11888880000"}).Error)
	require.NoError(t, conn.Create(&models.Address{
		ClientID: other.ID, Label: "Principal", Street: "Rua C",
		Number: "1", Neighborhood: "Vila", IsPrincipal: true,
	}).Error)

	first, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items:    []ItemInput{{Product: "Botijão P13", Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateOrderInput{
		ClientID: other.ID,
		Items:    []ItemInput{{Product: "Botijão P13", Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, second, "delivered"))

	all, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	require.Len(t, all.Rows, 2)
	assert.Equal(t, second, all.Rows[0].ID)

	byClient, err := svc.List(ctx, ListFilters{ClientID: &fx.clientID})
	require.NoError(t, err)
	require.Len(t, byClient.Rows, 1)
	assert.Equal(t, first, byClient.Rows[0].ID)

	byStatus, err := svc.List(ctx, ListFilters{Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	require.Len(t, byStatus.Rows, 1)
	assert.Equal(t, second, byStatus.Rows[0].ID)

	byPhone, err := svc.List(ctx, ListFilters{Search: "11888"})
	require.NoError(t, err)
	require.Len(t, byPhone.Rows, 1)
	assert.Equal(t, "Outra Cliente", byPhone.Rows[0].ClientName)

	byName, err := svc.List(ctx, ListFilters{Search: "test user"})
	require.NoError(t, err)
	require.Len(t, byName.Rows, 1)
	assert.Equal(t, first, byName.Rows[0].ID)
}

func TestHistoryByClient(t *testing.T) {
	svc, conn := newService(t, config.OrdersConfig{})
	fx := seedBase(t, conn)
	seedProduct(t, conn, "Botijão P13", "95.00", 50)
	seedProduct(t, conn, "Agua 20L", "12.00", 50)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOrderInput{
		ClientID: fx.clientID,
		Items: []ItemInput{
			{Product: "Botijão P13", Quantity: 2},
			{Product: "Agua 20L", Quantity: 1},
		},
	})
	require.NoError(t, err)

	history, err := svc.HistoryByClient(ctx, fx.clientID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2x Botijão P13, 1x Agua 20L", history[0].Summary)
	assert.True(t, history[0].Total.Equal(decimal.RequireFromString("202.00")))
}
