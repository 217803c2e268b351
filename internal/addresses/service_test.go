package addresses

import (
	"context"
	"fmt"
	"testing"

	"github.com/desklino/desklino-backend/pkg/db"
	"github.com/desklino/desklino-backend/pkg/db/models"
	pkgerrors "github.com/desklino/desklino-backend/pkg/errors"
	"github.com/google/uuid"
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
		&models.Address{},
		&models.Attendant{},
		&models.Attendance{},
		&models.Order{},
		&models.OrderItem{},
	))
	return conn
}

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), db.FromConn(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedClient(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	client := &models.Client{Name: "Cliente Teste", Email: "teste@desklino.com"}
	require.NoError(t, conn.Create(client).Error)
	return client.ID
}

func countPrincipals(t *testing.T, conn *gorm.DB, clientID int64) int64 {
	t.Helper()
	var total int64
	require.NoError(t, conn.Model(&models.Address{}).
		Where("client_id = ? AND is_principal = ?", clientID, true).
		Count(&total).Error)
	return total
}

func TestAdd_FirstAddressBecomesPrincipal(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)

	id, err := svc.Add(context.Background(), clientID, AddressInput{
		Street:       "Rua A",
		Neighborhood: "Centro",
		IsPrincipal:  false,
	})
	require.NoError(t, err)

	var address models.Address
	require.NoError(t, conn.First(&address, id).Error)
	assert.True(t, address.IsPrincipal)
	assert.Equal(t, "Principal", address.Label)
	assert.Equal(t, "S/N", address.Number)
}

func TestAdd_PrincipalInsertClearsSiblings(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)
	ctx := context.Background()

	first, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua A", Neighborhood: "Centro"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, clientID, AddressInput{
		Street:       "Rua B",
		Neighborhood: "Jardim",
		IsPrincipal:  true,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, countPrincipals(t, conn, clientID))

	var address models.Address
	require.NoError(t, conn.First(&address, second).Error)
	assert.True(t, address.IsPrincipal)
	require.NoError(t, conn.First(&address, first).Error)
	assert.False(t, address.IsPrincipal)
}

func TestAdd_RequiresStreetAndNeighborhood(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)

	_, err := svc.Add(context.Background(), clientID, AddressInput{Street: "Rua A"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSetPrincipal_MovesFlag(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)
	ctx := context.Background()

	first, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua A", Neighborhood: "Centro"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua B", Neighborhood: "Jardim"})
	require.NoError(t, err)

	require.NoError(t, svc.SetPrincipal(ctx, clientID, second))

	assert.EqualValues(t, 1, countPrincipals(t, conn, clientID))
	var address models.Address
	require.NoError(t, conn.First(&address, second).Error)
	assert.True(t, address.IsPrincipal)
	require.NoError(t, conn.First(&address, first).Error)
	assert.False(t, address.IsPrincipal)
}

func TestSetPrincipal_UnknownAddress(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)

	err := svc.SetPrincipal(context.Background(), clientID, 9999)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDelete_LastAddressForbidden(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)
	ctx := context.Background()

	only, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua A", Neighborhood: "Centro"})
	require.NoError(t, err)

	err = svc.Delete(ctx, clientID, only)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidOperation))

	var total int64
	require.NoError(t, conn.Model(&models.Address{}).Where("client_id = ?", clientID).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestDelete_ReferencedByOrderForbidden(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)
	ctx := context.Background()

	first, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua A", Neighborhood: "Centro"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, clientID, AddressInput{Street: "Rua B", Neighborhood: "Jardim"})
	require.NoError(t, err)

	attendant := &models.Attendant{Login: "atendente.01", Name: "João Silva", PasswordHash: "x"}
	require.NoError(t, conn.Create(attendant).Error)
	attendance := &models.Attendance{ClientID: clientID, AttendantID: attendant.ID}
	require.NoError(t, conn.Create(attendance).Error)
	require.NoError(t, conn.Create(&models.Order{
		AttendanceID: attendance.ID,
		AddressID:    first,
	}).Error)

	err = svc.Delete(ctx, clientID, first)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestDelete_PrincipalPromotesRemaining(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)
	ctx := context.Background()

	first, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua A", Neighborhood: "Centro"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua B", Neighborhood: "Jardim"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, clientID, first))

	assert.EqualValues(t, 1, countPrincipals(t, conn, clientID))
	var address models.Address
	require.NoError(t, conn.First(&address, second).Error)
	assert.True(t, address.IsPrincipal)
}

func TestListByClient_PrincipalFirst(t *testing.T) {
	svc, conn := newService(t)
	clientID := seedClient(t, conn)
	ctx := context.Background()

	_, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua A", Neighborhood: "Centro"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, clientID, AddressInput{Street: "Rua B", Neighborhood: "Jardim", IsPrincipal: true})
	require.NoError(t, err)

	rows, err := svc.ListByClient(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second, rows[0].ID)
	assert.True(t, rows[0].IsPrincipal)
}
