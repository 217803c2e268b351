package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/desklino/desklino-backend/pkg/db/models"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
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
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestCreate_DefaultsAvailable(t *testing.T) {
	svc, conn := newService(t)

	id, err := svc.Create(context.Background(), ProductInput{
		Name:          "Botijão P13",
		Price:         decimal.RequireFromString("95.00"),
		StockQuantity: 10,
	})
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, conn.First(&product, id).Error)
	assert.True(t, product.Available)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("95.00")))
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Price: decimal.RequireFromString("10.00")})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, ProductInput{
		Name:  "Preço Negativo",
		Price: decimal.RequireFromString("-1.00"),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListAvailable_FiltersStockAndFlag(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	unavailable := false
	_, err := svc.Create(ctx, ProductInput{
		Name: "Garrafa Agua 1L", Price: decimal.RequireFromString("6.00"),
		StockQuantity: 10, Available: &unavailable,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ProductInput{
		Name: "Botijão P45", Price: decimal.RequireFromString("320.00"),
		StockQuantity: 0,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ProductInput{
		Name: "Botijão P13", Price: decimal.RequireFromString("95.00"),
		StockQuantity: 10,
	})
	require.NoError(t, err)

	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Botijão P13", available[0].Name)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdate_OverwritesFullRow(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	description := "gás de cozinha"
	id, err := svc.Create(ctx, ProductInput{
		Name:          "Botijão P13",
		Description:   &description,
		Price:         decimal.RequireFromString("95.00"),
		StockQuantity: 10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, ProductInput{
		Name:          "Botijão P13",
		Price:         decimal.RequireFromString("99.00"),
		StockQuantity: 8,
	}))

	var product models.Product
	require.NoError(t, conn.First(&product, id).Error)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("99.00")))
	assert.Equal(t, 8, product.StockQuantity)
	assert.Nil(t, product.Description)
	assert.True(t, product.Available)
}

func TestUpdate_UnknownProduct(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Update(context.Background(), 9999, ProductInput{
		Name:  "Inexistente",
		Price: decimal.RequireFromString("1.00"),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestFindByID_MissIsSoftNotFound(t *testing.T) {
	svc, _ := newService(t)

	product, err := svc.FindByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, product)
}
