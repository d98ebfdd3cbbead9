package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/postgres"
	"github.com/jhoicas/hoacuong-agri/pkg/config"
)

// newGateway conecta a la base de pruebas indicada en HOACUONG_TEST_DATABASE_URL.
// Sin la variable los tests se omiten.
func newGateway(t *testing.T) *postgres.Gateway {
	t.Helper()
	dsn := os.Getenv("HOACUONG_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HOACUONG_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	g := postgres.NewGateway(pool, zerolog.Nop())
	require.NoError(t, g.EnsureSchema(ctx))
	require.NoError(t, g.RestoreData(ctx, entity.BackupData{Version: entity.BackupVersion}), "base vacía")
	return g
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func TestGateway_CRUDConservaOrden(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	first, err := g.Areas().Add(ctx, entity.PlantingArea{Name: "Vùng A", Hectares: 2.5})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID, "el backend asigna el ID")
	second, err := g.Areas().Add(ctx, entity.PlantingArea{Name: "Vùng B"})
	require.NoError(t, err)

	first.Name = "Vùng A1"
	_, err = g.Areas().Update(ctx, first)
	require.NoError(t, err)

	data, err := g.FetchAllData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Areas, 2)
	assert.Equal(t, "Vùng A1", data.Areas[0].Name)
	assert.Equal(t, second.ID, data.Areas[1].ID)
	assert.NotNil(t, data.SystemSettings, "sin fila de configuración se usan los valores por defecto")

	_, err = g.Areas().Update(ctx, entity.PlantingArea{ID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, g.Areas().Delete(ctx, "no-existe"), domain.ErrNotFound)
	_, err = g.Areas().Add(ctx, entity.PlantingArea{ID: second.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ─── Empleados ────────────────────────────────────────────────────────────────

func TestGateway_AuthenticateConBcrypt(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	emp, err := g.Employees().Add(ctx, entity.Employee{Code: "NV001", Name: "An", Password: "secreto", Status: entity.EmployeeStatusActive})
	require.NoError(t, err)
	assert.Empty(t, emp.Password)

	got, err := g.Authenticate(ctx, "NV001", "secreto")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.ID)
	assert.Empty(t, got.Password)

	_, err = g.Authenticate(ctx, "NV001", "otra")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = g.Authenticate(ctx, "NV404", "secreto")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ─── Documentos ───────────────────────────────────────────────────────────────

func TestGateway_BorrarCarpetaEnCascada(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	root, err := g.Folders().Add(ctx, entity.Folder{Name: "Hồ sơ"})
	require.NoError(t, err)
	child, err := g.Folders().Add(ctx, entity.Folder{Name: "2026", ParentID: &root.ID})
	require.NoError(t, err)
	other, err := g.Folders().Add(ctx, entity.Folder{Name: "Khác"})
	require.NoError(t, err)

	inChild, err := g.UploadFile(ctx, entity.FileUpload{Name: "hop-dong.pdf", FolderID: &child.ID, Content: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "pdf", inChild.Type)
	kept, err := g.UploadFile(ctx, entity.FileUpload{Name: "anh.png", FolderID: &other.ID, MimeType: "image/png", Content: []byte{1, 2}})
	require.NoError(t, err)

	require.NoError(t, g.Folders().Delete(ctx, root.ID))

	data, err := g.FetchAllData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Folders, 1)
	assert.Equal(t, other.ID, data.Folders[0].ID)
	require.Len(t, data.Files, 1)
	assert.Equal(t, kept.ID, data.Files[0].ID)

	_, _, err = g.FileContent(ctx, inChild.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el contenido se borra con el archivo")
	content, mime, err := g.FileContent(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, content)
	assert.Equal(t, "image/png", mime)
}

// ─── Restauración y totales ───────────────────────────────────────────────────

func TestGateway_RestoreYTotales(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	emp, err := g.Employees().Add(ctx, entity.Employee{Code: "NV002", Name: "Bình", Password: "clave"})
	require.NoError(t, err)

	backup := entity.BackupData{
		Version: entity.BackupVersion,
		Dataset: entity.Dataset{
			Employees: []entity.Employee{emp},
			Purchases: []entity.PurchaseTransaction{
				{ID: "p1", QuantityKg: 500, PricePerKg: decimal.NewFromInt(42000), TotalAmount: decimal.NewFromInt(21000000)},
				{ID: "p2", QuantityKg: 120.5, PricePerKg: decimal.NewFromInt(10000), TotalAmount: decimal.NewFromInt(1205000)},
			},
			SystemSettings: &entity.SystemSettings{MemoTemplate: "X", Roles: []entity.Role{{ID: "r1", Name: "Kế toán"}}},
		},
	}
	require.NoError(t, g.RestoreData(ctx, backup))

	_, err = g.Authenticate(ctx, "NV002", "clave")
	require.NoError(t, err, "sin contraseña en la copia se conserva la anterior")

	data, err := g.FetchAllData(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Purchases, 2)
	require.Len(t, data.SystemSettings.Roles, 1)
	assert.Equal(t, "Kế toán", data.SystemSettings.Roles[0].Name)

	revenue, volume, err := g.PurchaseTotals(ctx)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(22205000)), "revenue = %s", revenue)
	assert.True(t, volume.Equal(decimal.RequireFromString("620.5")), "volumen = %s", volume)

	assert.ErrorIs(t, g.RestoreData(ctx, entity.BackupData{}), domain.ErrInvalidInput)
}
