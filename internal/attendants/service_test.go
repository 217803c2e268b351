package attendants

import (
	"context"
	"fmt"
	"testing"

	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/enums"
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
	require.NoError(t, conn.AutoMigrate(&models.Attendant{}))
	return conn
}

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedAttendant(t *testing.T, conn *gorm.DB, login, name string, role enums.AttendantRole) int64 {
	t.Helper()
	attendant := &models.Attendant{Login: login, Name: name, PasswordHash: "x", Role: role}
	require.NoError(t, conn.Create(attendant).Error)
	return attendant.ID
}

func TestFindByLogin(t *testing.T) {
	svc, conn := newService(t)
	seedAttendant(t, conn, "admin.user", "Admin", enums.AttendantRoleAdmin)
	ctx := context.Background()

	attendant, err := svc.FindByLogin(ctx, "admin.user")
	require.NoError(t, err)
	require.NotNil(t, attendant)
	assert.Equal(t, "Admin", attendant.Name)
	assert.Equal(t, enums.AttendantRoleAdmin, attendant.Role)

	missing, err := svc.FindByLogin(ctx, "ninguem")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestList_OrdersByName(t *testing.T) {
	svc, conn := newService(t)
	seedAttendant(t, conn, "atendente.02", "Maria Souza", enums.AttendantRoleAttendant)
	seedAttendant(t, conn, "atendente.01", "João Silva", enums.AttendantRoleAttendant)

	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "João Silva", rows[0].Name)
	assert.Equal(t, "Maria Souza", rows[1].Name)
}

func TestCreate_DefaultsRoleAndGuardsLogin(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateAttendantInput{
		Login:        "atendente.03",
		Name:         "Novo Atendente",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	var attendant models.Attendant
	require.NoError(t, conn.First(&attendant, id).Error)
	assert.Equal(t, enums.AttendantRoleAttendant, attendant.Role)

	_, err = svc.Create(ctx, CreateAttendantInput{
		Login:        "atendente.03",
		Name:         "Login Repetido",
		PasswordHash: "x",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestCreate_RejectsUnknownRole(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateAttendantInput{
		Login:        "atendente.04",
		Name:         "Papel Errado",
		PasswordHash: "x",
		Role:         "supervisor",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidOperation))
}

func TestUpdateRole(t *testing.T) {
	svc, conn := newService(t)
	id := seedAttendant(t, conn, "atendente.01", "João Silva", enums.AttendantRoleAttendant)
	ctx := context.Background()

	require.NoError(t, svc.UpdateRole(ctx, id, "admin"))
	attendant, err := svc.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, enums.AttendantRoleAdmin, attendant.Role)
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	svc, conn := newService(t)
	id := seedAttendant(t, conn, "atendente.01", "João Silva", enums.AttendantRoleAttendant)

	err := svc.UpdateRole(context.Background(), id, "supervisor")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidOperation))
}

func TestUpdateRole_UnknownAttendant(t *testing.T) {
	svc, _ := newService(t)

	err := svc.UpdateRole(context.Background(), 9999, "admin")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
