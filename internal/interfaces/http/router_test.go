package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/hoacuong-agri/internal/application/analytics"
	"github.com/jhoicas/hoacuong-agri/internal/application/auth"
	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/application/purchase"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/clientstore"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/inbox"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/memory"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/hoacuong-agri/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "hoacuong-test"
	testExpMin    = 60
	testPassword  = "secreto"
	roleTech      = "Kỹ thuật viên"
	roleAccount   = "Kế toán"
)

type testServer struct {
	app    *fiber.App
	remote *memory.Gateway
	ctrl   *workspace.Controller
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	remote := memory.New()
	_, err := remote.SeedEmployee(entity.Employee{Code: "ADMIN", Name: "Nguyễn Văn An", Role: "Quản trị viên"}, testPassword)
	require.NoError(t, err)
	_, err = remote.SeedEmployee(entity.Employee{Code: "KT01", Name: "Trần Thị Bình", Role: roleTech}, testPassword)
	require.NoError(t, err)
	_, err = remote.SeedEmployee(entity.Employee{Code: "KTO1", Name: "Lê Văn Cường", Role: roleAccount}, testPassword)
	require.NoError(t, err)

	settings := entity.DefaultSystemSettings()
	settings.Roles = []entity.Role{
		{ID: "r1", Name: roleTech, Permissions: entity.AppPermissions{ViewDashboard: true, ViewArea: true}},
		{ID: "r2", Name: roleAccount, Permissions: entity.AppPermissions{ViewSettings: true}},
	}
	_, err = remote.UpdateSystemSettings(context.Background(), *settings)
	require.NoError(t, err)

	box := inbox.New(zerolog.Nop())
	ctrl := workspace.New(remote, clientstore.NewMemoryStore(), box, zerolog.Nop())
	authUC := auth.NewAuthUseCase(ctrl, auth.JWTConfig{Secret: testJWTSecret, Issuer: testIssuer, ExpMinutes: testExpMin})

	app := fiber.New(fiber.Config{
		// Silenciar errores internos en los tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	apphttp.Router(app, apphttp.RouterDeps{
		Ctrl:        ctrl,
		AuthUC:      authUC,
		DashboardUC: appanalytics.NewDashboardUseCase(ctrl),
		ReceiptUC:   purchase.NewReceiptUseCase(ctrl.Purchases, ctrl.Areas, ctrl, pdf.NewMarotoReceiptGenerator()),
		Inbox:       box,
		FileContent: remote,
	})
	return &testServer{app: app, remote: remote, ctrl: ctrl}
}

// login devuelve el header Authorization del empleado.
func (s *testServer) login(t *testing.T, code string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Code: code, Password: testPassword})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "el login debe responder 200")
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token, "debe devolverse un token")
	return "Bearer " + out.Token
}

func (s *testServer) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, resp).Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_AdminObtieneTodasLasPestanas(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Code: "ADMIN", Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.LoginResponse](t, resp)
	require.NotNil(t, out.Session.Identity)
	assert.Equal(t, "ADMIN", out.Session.Identity.Code)
	assert.Empty(t, out.Session.Identity.Password, "la identidad nunca incluye la contraseña")
	assert.Len(t, out.Session.VisibleTabs, 8, "el administrador ve todas las pestañas")
	assert.True(t, out.Session.State.SignedIn)
	assert.Equal(t, "dashboard", out.Session.State.ActiveTab)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Code: "ADMIN", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

func TestLogin_CamposRequeridos(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Code: "ADMIN"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestAuthMiddleware_SinToken(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/session", "Token abc", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

func TestLogout_InvalidaElToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "NOT_SIGNED_IN", errorCode(t, resp), "sin sesión en el dispositivo el token ya no vale")
}

func TestLogin_OtroEmpleadoInvalidaTokenAnterior(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "ADMIN")
	s.login(t, "KT01")

	resp := s.do(t, http.MethodGet, "/api/session", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Colecciones
// ──────────────────────────────────────────────────────────────────────────────

func TestAreas_CRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodPost, "/api/areas", token, entity.PlantingArea{Code: "VT-001", Name: "Vùng A", Hectares: 12.5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[entity.PlantingArea](t, resp)
	require.NotEmpty(t, created.ID, "el backend asigna el ID")

	created.Name = "Vùng A1"
	resp = s.do(t, http.MethodPut, "/api/areas/"+created.ID, token, created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Vùng A1", decode[entity.PlantingArea](t, resp).Name)

	resp = s.do(t, http.MethodGet, "/api/areas", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.ListResponse[entity.PlantingArea]](t, resp)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Vùng A1", list.Items[0].Name)

	resp = s.do(t, http.MethodDelete, "/api/areas/"+created.ID, token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/areas/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAreas_IDEnCacheSobreviveAOtrasPeticiones(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodPost, "/api/areas", token, entity.PlantingArea{Code: "VT-002", Name: "Vùng C"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[entity.PlantingArea](t, resp)

	created.Name = "Vùng C1"
	resp = s.do(t, http.MethodPut, "/api/areas/"+created.ID, token, created)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Rutas con un :id del mismo largo reutilizan los buffers de la petición anterior.
	other := strings.Repeat("z", len(created.ID))
	for i := 0; i < 20; i++ {
		resp = s.do(t, http.MethodGet, "/api/areas/"+other, token, nil)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	cached, ok := s.ctrl.Areas.Get(created.ID)
	require.True(t, ok, "la zona sigue en la caché con su ID")
	assert.Equal(t, created.ID, cached.ID)
	assert.Equal(t, "Vùng C1", cached.Name)

	resp = s.do(t, http.MethodDelete, "/api/areas/"+created.ID, token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "el ID sigue sirviendo para reconciliar")
}

func TestAreas_MutacionFallida(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	s.remote.FailNext(errors.New("sheet no responde"))
	resp := s.do(t, http.MethodPost, "/api/areas", token, entity.PlantingArea{Name: "Vùng B"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "MUTATION_FAILED", errorCode(t, resp))
	assert.Equal(t, 0, s.ctrl.Areas.Len(), "la caché no se toca si el backend falla")

	resp = s.do(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[dto.ListResponse[inbox.Notification]](t, resp)
	require.Equal(t, 1, notes.Total)
	assert.Equal(t, workspace.MsgMutationFailed, notes.Items[0].Message)
}

func TestRequirePermission_SinFlagRetorna403(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "KT01")

	resp := s.do(t, http.MethodGet, "/api/areas", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "viewArea permite listar")

	resp = s.do(t, http.MethodPost, "/api/areas", token, entity.PlantingArea{Name: "Vùng C"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "sin createArea no puede crear")
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))

	resp = s.do(t, http.MethodGet, "/api/purchases", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestEmployees_NoExponenContrasenas(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodGet, "/api/employees", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"password"`)
	assert.Contains(t, string(raw), `"total":3`)
}

func TestUpdateProfile_NoCambiaCodigoCargoNiEstado(t *testing.T) {
	s := newTestServer(t)
	_, err := s.remote.SeedEmployee(entity.Employee{Code: "NV09", Name: "Võ Thị Dung", Role: "Nhân viên"}, testPassword)
	require.NoError(t, err)
	token := s.login(t, "NV09")

	resp := s.do(t, http.MethodPost, "/api/employees", token, entity.Employee{Code: "NV10", Name: "Nuevo"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode, "un cargo fuera de la tabla no tiene permisos")
	resp.Body.Close()

	resp = s.do(t, http.MethodPut, "/api/profile", token, fiber.Map{
		"code":   "ADMIN",
		"role":   "Quản trị viên",
		"status": entity.EmployeeStatusResigned,
		"name":   "Võ Thị Dung",
		"phone":  "0909 123 456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[entity.Employee](t, resp)
	assert.Equal(t, "NV09", updated.Code, "el código no se cambia desde el perfil")
	assert.Equal(t, "Nhân viên", updated.Role)
	assert.Equal(t, entity.EmployeeStatusActive, updated.Status)
	assert.Equal(t, "0909 123 456", updated.Phone, "los datos personales sí se guardan")

	identity := s.ctrl.Identity()
	require.NotNil(t, identity)
	assert.Equal(t, "NV09", identity.Code)
	assert.NotEqual(t, entity.AllPermissions(), s.ctrl.Permissions(), "el perfil no otorga la regla de administrador")

	resp = s.do(t, http.MethodPost, "/api/employees", token, entity.Employee{Code: "NV10", Name: "Nuevo"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Navegación y configuración
// ──────────────────────────────────────────────────────────────────────────────

func TestNavigate(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodPut, "/api/navigation", token, dto.NavigationRequest{Target: "purchase", SubTab: workspace.PurchaseSubTabSurvey})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[workspace.State](t, resp)
	assert.Equal(t, "purchases", state.ActiveTab)
	assert.Equal(t, workspace.PurchaseSubTabSurvey, state.PurchaseSubTab)

	resp = s.do(t, http.MethodPut, "/api/navigation", token, dto.NavigationRequest{Target: "area", SubTab: "mapa"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	open := true
	resp = s.do(t, http.MethodPut, "/api/navigation", token, dto.NavigationRequest{Target: "sidebar", Open: &open})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[workspace.State](t, resp).SidebarOpen)
}

func TestUpdateSettings_CambiarCargosRequiereManageRoles(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "KTO1")

	settings := s.ctrl.Settings()
	require.NotNil(t, settings)

	settings.MemoTemplate = "BIÊN BẢN MỚI"
	resp := s.do(t, http.MethodPut, "/api/settings", token, settings)
	require.Equal(t, http.StatusOK, resp.StatusCode, "sin tocar cargos basta viewSettings")
	assert.Equal(t, "BIÊN BẢN MỚI", decode[entity.SystemSettings](t, resp).MemoTemplate)

	settings.Roles = append(settings.Roles, entity.Role{ID: "r3", Name: "Thu mua"})
	resp = s.do(t, http.MethodPut, "/api/settings", token, settings)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}

func TestBackupRestore(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodPost, "/api/areas", token, entity.PlantingArea{Name: "Vùng A"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/backup", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "hoacuong_backup_")
	backup := decode[entity.BackupData](t, resp)
	assert.Equal(t, entity.BackupVersion, backup.Version)
	require.Len(t, backup.Areas, 1)

	resp = s.do(t, http.MethodPost, "/api/areas", token, entity.PlantingArea{Name: "Vùng B"})
	resp.Body.Close()
	require.Equal(t, 2, s.ctrl.Areas.Len())

	resp = s.do(t, http.MethodPost, "/api/restore", token, backup)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, s.ctrl.Areas.Len(), "la restauración recarga el estado de la copia")
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestFiles_SubirYDescargar(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "bien-ban.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("nội dung"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	file := decode[entity.SystemFile](t, resp)
	assert.Equal(t, "bien-ban.txt", file.Name)
	assert.Nil(t, file.FolderID)

	resp = s.do(t, http.MethodGet, "/api/files/"+file.ID+"/content", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "nội dung", string(raw))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "bien-ban.txt")
}

func TestReceipt_PDF(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ADMIN")

	resp := s.do(t, http.MethodPost, "/api/purchases", token, entity.PurchaseTransaction{
		Date:       "2026-03-15",
		QuantityKg: 1200,
		PricePerKg: decimal.NewFromInt(21000),
		Quality:    "Loại 1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[entity.PurchaseTransaction](t, resp)
	assert.True(t, decimal.NewFromInt(25200000).Equal(tx.TotalAmount), "el total se recalcula al guardar")

	resp = s.do(t, http.MethodGet, "/api/purchases/"+tx.ID+"/receipt", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")), "el cuerpo debe ser un PDF")

	resp = s.do(t, http.MethodGet, "/api/purchases/no-existe/receipt", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t)

	token := s.login(t, "ADMIN")
	resp := s.do(t, http.MethodGet, "/api/export.xlsx", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	resp.Body.Close()

	token = s.login(t, "KTO1")
	resp = s.do(t, http.MethodGet, "/api/export.xlsx", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "sin colecciones visibles no hay libro")
	resp.Body.Close()
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "KT01")

	resp := s.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[dto.DashboardStatsDTO](t, resp)
	assert.Nil(t, stats.TotalRevenue, "sin viewFinancials no se informan ingresos")

	resp = s.do(t, http.MethodGet, "/api/dashboard/reconcile", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
