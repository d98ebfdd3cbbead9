package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/bootstrap"
	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// useMemoryRuntime hace que todos los comandos compartan un runtime en memoria
// (backend y sesión sobreviven entre ejecuciones, como con un backend real).
func useMemoryRuntime(t *testing.T) *bootstrap.Runtime {
	t.Helper()
	cfg := &config.Config{
		Remote:  config.RemoteConfig{Driver: config.RemoteMemory, TimeoutSeconds: 5},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		Admin:   config.AdminConfig{Code: "ADMIN", Role: "Quản trị viên", SeedPassword: "clave"},
	}
	shared, err := bootstrap.Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	prev := buildRuntime
	buildRuntime = func(context.Context) (*bootstrap.Runtime, error) { return shared, nil }
	t.Cleanup(func() { buildRuntime = prev })
	return shared
}

// execute corre el CLI con args y devuelve la salida estándar.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputPath, importCharset, importDryRun = "", "utf-8", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func login(t *testing.T) {
	t.Helper()
	out, err := execute(t, "login", "--code", "ADMIN", "--password", "clave")
	require.NoError(t, err)
	require.Contains(t, out, "Sesión iniciada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestLoginWhoami(t *testing.T) {
	useMemoryRuntime(t)

	out, err := execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Sin sesión")

	login(t)
	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "(ADMIN)")
	assert.Contains(t, out, "dashboard, sop, areas")
	assert.Contains(t, out, "manageRoles")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	useMemoryRuntime(t)
	_, err := execute(t, "login", "--code", "ADMIN", "--password", "otra")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestBackup_SinSesion(t *testing.T) {
	useMemoryRuntime(t)
	_, err := execute(t, "backup", "-o", filepath.Join(t.TempDir(), "b.json"))
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos
// ──────────────────────────────────────────────────────────────────────────────

func TestImportBackupRestore(t *testing.T) {
	rt := useMemoryRuntime(t)
	login(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "vung.csv")
	csv := "Mã vùng;Tên vùng;Diện tích (ha)\nVT-001;Vùng Cái Bè;2,5\nVT-002;Vùng Cao Lãnh;abc\nVT-003;Vùng Tân Phước;1\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o600))

	out, err := execute(t, "import-areas", csvPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "2 zonas válidas, 1 filas omitidas")
	assert.Equal(t, 0, rt.Ctrl.Areas.Len(), "dry-run no crea nada")

	out, err = execute(t, "import-areas", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "fila 3")
	assert.Equal(t, 2, rt.Ctrl.Areas.Len())

	backupPath := filepath.Join(dir, "copia.json")
	_, err = execute(t, "backup", "-o", backupPath)
	require.NoError(t, err)

	_, err = execute(t, "import-areas", csvPath)
	require.NoError(t, err)
	require.Equal(t, 4, rt.Ctrl.Areas.Len())

	out, err = execute(t, "restore", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, workspace.MsgRestoreOK)
	assert.Equal(t, 2, rt.Ctrl.Areas.Len(), "la restauración vuelve al estado de la copia")
}

func TestExportXLSX(t *testing.T) {
	useMemoryRuntime(t)
	login(t)
	path := filepath.Join(t.TempDir(), "datos.xlsx")

	_, err := execute(t, "export-xlsx", "-o", path)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "un .xlsx es un zip")
}

func TestStats(t *testing.T) {
	useMemoryRuntime(t)
	login(t)

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Zonas:        0")
	assert.Contains(t, out, "Ingresos:")
	assert.NotContains(t, out, "Conciliación", "el backend en memoria no calcula totales")
}

func TestReceipt_CompraInexistente(t *testing.T) {
	useMemoryRuntime(t)
	login(t)
	_, err := execute(t, "receipt", "no-existe", "-o", filepath.Join(t.TempDir(), "p.pdf"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
