package workspace_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/permission"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/clientstore"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/inbox"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const adminPassword = "secreto"

var fixedNow = time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)

type fixture struct {
	ctrl    *workspace.Controller
	remote  *memory.Gateway
	storage *clientstore.MemoryStore
	inbox   *inbox.Inbox
	admin   entity.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	remote := memory.New()
	admin, err := remote.SeedEmployee(entity.Employee{Code: "ADMIN", Name: "Nguyễn Văn An", Role: "Quản trị viên"}, adminPassword)
	require.NoError(t, err)

	storage := clientstore.NewMemoryStore()
	box := inbox.New(zerolog.Nop())
	ctrl := workspace.New(remote, storage, box, zerolog.Nop(), workspace.WithClock(func() time.Time { return fixedNow }))
	return &fixture{ctrl: ctrl, remote: remote, storage: storage, inbox: box, admin: admin}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.ctrl.Login(context.Background(), "ADMIN", adminPassword)
	require.NoError(t, err)
}

func messages(box *inbox.Inbox) []string {
	var out []string
	for _, n := range box.Drain() {
		out = append(out, n.Message)
	}
	return out
}

func sampleArea(name string) entity.PlantingArea {
	return entity.PlantingArea{
		Code:     "VT-001",
		Name:     name,
		CropType: "Sầu riêng",
		Hectares: 12.5,
		Status:   entity.AreaStatusActive,
		Priority: entity.PriorityFirst,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_AbreSesionCargaDatosYPersisteIdentidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.ctrl.Login(ctx, "ADMIN", adminPassword)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, id.ID)
	assert.Empty(t, id.Password)

	assert.Equal(t, entity.AllPermissions(), f.ctrl.Permissions(), "ADMIN sin cargo en la tabla recibe todos los permisos")
	assert.Equal(t, permission.Tabs, f.ctrl.VisibleTabs())
	assert.Equal(t, 1, f.ctrl.Employees.Len(), "la carga completa debe haberse ejecutado")
	assert.NotNil(t, f.ctrl.Settings())

	raw, ok, err := f.storage.Get(ctx, workspace.IdentityStorageKey)
	require.NoError(t, err)
	require.True(t, ok, "la identidad debe persistirse")
	assert.NotContains(t, raw, adminPassword)
	assert.NotContains(t, raw, `"password"`)

	snap := f.ctrl.Snapshot()
	assert.True(t, snap.SignedIn)
	assert.False(t, snap.Busy)
	assert.Equal(t, permission.TabDashboard, snap.ActiveTab)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Login(context.Background(), "ADMIN", "otra")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, f.ctrl.Identity())
	assert.False(t, f.ctrl.Busy())
}

func TestLogin_CamposVacios(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctrl.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_EmpleadoRetiradoRechazado(t *testing.T) {
	f := newFixture(t)
	_, err := f.remote.SeedEmployee(entity.Employee{Code: "NV005", Name: "Trần Thị B", Role: "Kế toán", Status: entity.EmployeeStatusResigned}, "x")
	require.NoError(t, err)

	_, err = f.ctrl.Login(context.Background(), "NV005", "x")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Nil(t, f.ctrl.Identity())
}

func TestLogin_FalloDeCargaNoDeshaceLaSesion(t *testing.T) {
	f := newFixture(t)
	f.remote.FailFetch(errors.New("timeout"))

	_, err := f.ctrl.Login(context.Background(), "ADMIN", adminPassword)
	require.NoError(t, err)

	assert.NotNil(t, f.ctrl.Identity(), "la sesión sigue abierta")
	assert.Equal(t, "timeout", f.ctrl.ConnectionError())
	assert.Equal(t, 0, f.ctrl.Employees.Len())
}

func TestLogout_VaciaColeccionesYBorraIdentidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	_, err := f.ctrl.Areas.Add(ctx, sampleArea("Vùng A"))
	require.NoError(t, err)
	f.ctrl.OpenSidebar()
	f.ctrl.OpenProfile()

	require.NoError(t, f.ctrl.Logout(ctx))

	ds := f.ctrl.Dataset()
	assert.Empty(t, ds.Areas)
	assert.Empty(t, ds.Employees)
	assert.Empty(t, ds.Purchases)
	assert.Empty(t, ds.Folders)
	assert.Empty(t, ds.Files)
	assert.NotNil(t, ds.SystemSettings, "la configuración se conserva para la pantalla de login")
	assert.Nil(t, f.ctrl.Identity())
	assert.True(t, f.ctrl.Permissions().IsEmpty())

	snap := f.ctrl.Snapshot()
	assert.False(t, snap.SidebarOpen)
	assert.False(t, snap.ProfileOpen)

	_, ok, err := f.storage.Get(ctx, workspace.IdentityStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// Un reinicio no restaura la sesión.
	restarted := workspace.New(f.remote, f.storage, f.inbox, zerolog.Nop())
	require.NoError(t, restarted.Start(ctx))
	assert.Nil(t, restarted.Identity())
}

func TestStart_RestauraSesionGuardada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	restarted := workspace.New(f.remote, f.storage, f.inbox, zerolog.Nop())
	require.NoError(t, restarted.Start(ctx))

	require.NotNil(t, restarted.Identity())
	assert.Equal(t, f.admin.ID, restarted.Identity().ID)
	assert.Equal(t, 1, restarted.Employees.Len(), "Start debe cargar los datos")
}

func TestStart_IdentidadCorruptaSeDescarta(t *testing.T) {
	for name, raw := range map[string]string{
		"json inválido": "{no-json",
		"sin id":        `{"name":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.storage.Set(ctx, workspace.IdentityStorageKey, raw))

			require.NoError(t, f.ctrl.Start(ctx), "un estado corrupto no es error para el llamador")
			assert.Nil(t, f.ctrl.Identity())

			_, ok, _ := f.storage.Get(ctx, workspace.IdentityStorageKey)
			assert.False(t, ok, "la clave corrupta debe borrarse")
			assert.Empty(t, f.inbox.Drain(), "no se avisa al usuario")
		})
	}
}

func TestStart_SinSesion(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Start(context.Background()))
	assert.Nil(t, f.ctrl.Identity())
	assert.Equal(t, 0, f.remote.Fetches(), "sin sesión no se cargan datos")
}

func TestUpdateProfile_ActualizaIdentidadGuardada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	me := *f.ctrl.Identity()
	me.Phone = "0909123456"
	me.Password = "nueva"
	updated, err := f.ctrl.UpdateProfile(ctx, me)
	require.NoError(t, err)
	assert.Empty(t, updated.Password)
	assert.Equal(t, "0909123456", f.ctrl.Identity().Phone)

	raw, _, _ := f.storage.Get(ctx, workspace.IdentityStorageKey)
	var stored entity.Employee
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "0909123456", stored.Phone)
	assert.Empty(t, stored.Password)

	require.NoError(t, f.ctrl.Logout(ctx))
	_, err = f.ctrl.Login(ctx, "ADMIN", "nueva")
	assert.NoError(t, err, "la nueva contraseña debe funcionar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sincronización de entidades
// ──────────────────────────────────────────────────────────────────────────────

func TestCollection_RoundTripAddUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	created, err := f.ctrl.Areas.Add(ctx, sampleArea("Vùng Krông Pắc"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID, "el backend asigna el ID")
	assert.Equal(t, []entity.PlantingArea{created}, f.ctrl.Areas.Items())

	changed := created
	changed.Hectares = 20
	updated, err := f.ctrl.Areas.Update(ctx, changed)
	require.NoError(t, err)
	items := f.ctrl.Areas.Items()
	require.Len(t, items, 1)
	assert.Equal(t, updated, items[0])
	assert.Equal(t, 20.0, items[0].Hectares)

	require.NoError(t, f.ctrl.Areas.Delete(ctx, created.ID))
	_, found := f.ctrl.Areas.Get(created.ID)
	assert.False(t, found)
	assert.False(t, f.ctrl.Busy(), "busy debe quedar apagado")
	assert.Empty(t, f.inbox.Drain())
}

func TestCollection_NuevosRegistrosAlFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	for _, name := range []string{"A", "B", "C"} {
		_, err := f.ctrl.Areas.Add(ctx, sampleArea(name))
		require.NoError(t, err)
	}
	var names []string
	for _, a := range f.ctrl.Areas.Items() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestCollection_MutacionFallidaNoSeAplicaYRecarga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	existing, err := f.ctrl.Areas.Add(ctx, sampleArea("Vùng A"))
	require.NoError(t, err)
	fetches := f.remote.Fetches()

	f.remote.FailNext(errors.New("sheet no responde"))
	_, err = f.ctrl.Areas.Add(ctx, sampleArea("Vùng B"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMutationFailed)
	assert.Equal(t, []entity.PlantingArea{existing}, f.ctrl.Areas.Items(), "la colección queda como estaba")
	assert.Equal(t, fetches+1, f.remote.Fetches(), "debe ejecutarse la recarga de recuperación")
	assert.Equal(t, []string{workspace.MsgMutationFailed}, messages(f.inbox))
	assert.False(t, f.ctrl.Busy())
}

func TestCollection_FalloReflejaLaVerdadDelServidor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	// Otro dispositivo agrega una zona directamente en el backend.
	_, err := f.remote.Areas().Add(ctx, sampleArea("Remota"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.ctrl.Areas.Len())

	f.remote.FailNext(errors.New("fallo"))
	require.Error(t, f.ctrl.Areas.Delete(ctx, "no-existe"))
	assert.Equal(t, 1, f.ctrl.Areas.Len(), "tras la recarga la caché refleja el servidor")
}

func TestCollection_FalloConBackendCaido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	before := f.ctrl.Employees.Items()

	f.remote.SetOffline(true)
	_, err := f.ctrl.Employees.Add(ctx, entity.Employee{Code: "NV010", Name: "Lê C"})
	require.ErrorIs(t, err, domain.ErrMutationFailed)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, before, f.ctrl.Employees.Items())
	assert.NotEmpty(t, f.ctrl.ConnectionError(), "la recarga fallida deja el banner")
}

func TestCollection_UpdateDeIDAusenteNoCambiaLaCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	remoteOnly, err := f.remote.Areas().Add(ctx, sampleArea("Solo remota"))
	require.NoError(t, err)

	remoteOnly.Name = "Editada"
	_, err = f.ctrl.Areas.Update(ctx, remoteOnly)
	require.NoError(t, err)
	assert.Equal(t, 0, f.ctrl.Areas.Len(), "un ID que no está en caché no se agrega")
}

func TestPurchases_RecalculaTotalYAgregaHistorial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	created, err := f.ctrl.Purchases.Add(ctx, entity.PurchaseTransaction{
		Date:       "2026-03-10",
		AreaID:     "a1",
		QuantityKg: 500,
		PricePerKg: decimal.NewFromInt(42000),
		Quality:    "Loại 1",
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(21_000_000).Equal(created.TotalAmount))
	assert.Empty(t, created.History)

	edit := created
	edit.QuantityKg = 600
	updated, err := f.ctrl.Purchases.Update(ctx, edit)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(25_200_000).Equal(updated.TotalAmount))
	require.Len(t, updated.History, 1)
	assert.Equal(t, "Nguyễn Văn An", updated.History[0].EditorName)
	assert.Equal(t, "Sửa số lượng 500 -> 600", updated.History[0].Action)
	assert.Equal(t, fixedNow.Format(time.RFC3339), updated.History[0].Date)

	cached, ok := f.ctrl.Purchases.Get(created.ID)
	require.True(t, ok)
	assert.Len(t, cached.History, 1)
}

func TestFolders_BorradoEnCascada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	parent, err := f.ctrl.Folders.Add(ctx, entity.Folder{Name: "Hợp đồng"})
	require.NoError(t, err)
	child, err := f.ctrl.Folders.Add(ctx, entity.Folder{Name: "2026", ParentID: &parent.ID})
	require.NoError(t, err)
	other, err := f.ctrl.Folders.Add(ctx, entity.Folder{Name: "Pháp lý"})
	require.NoError(t, err)

	_, err = f.ctrl.UploadFile(ctx, entity.FileUpload{Name: "hd-01.pdf", FolderID: &child.ID, MimeType: "application/pdf", Content: []byte("%PDF")})
	require.NoError(t, err)
	kept, err := f.ctrl.UploadFile(ctx, entity.FileUpload{Name: "giay-phep.png", FolderID: &other.ID, MimeType: "image/png", Content: []byte{1, 2}})
	require.NoError(t, err)
	fetches := f.remote.Fetches()

	require.NoError(t, f.ctrl.Folders.Delete(ctx, parent.ID))

	assert.Equal(t, []entity.Folder{other}, f.ctrl.Folders.Items(), "se borran la carpeta y sus subcarpetas")
	assert.Equal(t, []entity.SystemFile{kept}, f.ctrl.Files.Items(), "se borran los archivos de las carpetas borradas")
	assert.Equal(t, fetches, f.remote.Fetches(), "sin recarga adicional")

	// La caché coincide con el backend.
	require.NoError(t, f.ctrl.LoadAll(ctx))
	assert.Equal(t, []entity.Folder{other}, f.ctrl.Folders.Items())
	assert.Len(t, f.ctrl.Files.Items(), 1)
}

func TestUploadFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	file, err := f.ctrl.UploadFile(ctx, entity.FileUpload{Name: "bien-ban.pdf", MimeType: "application/pdf", Content: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "pdf", file.Type)
	assert.Equal(t, "8 B", file.Size)
	assert.Nil(t, file.FolderID)
	assert.Equal(t, []entity.SystemFile{file}, f.ctrl.Files.Items())

	content, mime, err := f.remote.FileContent(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), content)
	assert.Equal(t, "application/pdf", mime)
}

func TestUpdateSystemSettings_RecalculaPermisos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.remote.SeedEmployee(entity.Employee{Code: "NV002", Name: "Phạm D", Role: "Kế toán"}, "kt")
	require.NoError(t, err)
	f.login(t)

	settings := *f.ctrl.Settings()
	settings.Roles = []entity.Role{{ID: "r1", Name: "Kế toán", Permissions: entity.AppPermissions{ViewPurchase: true}}}
	saved, err := f.ctrl.UpdateSystemSettings(ctx, settings)
	require.NoError(t, err)
	assert.Len(t, saved.Roles, 1)

	require.NoError(t, f.ctrl.Logout(ctx))
	_, err = f.ctrl.Login(ctx, "NV002", "kt")
	require.NoError(t, err)

	perms := f.ctrl.Permissions()
	assert.True(t, perms.ViewPurchase)
	assert.False(t, perms.CreateArea)
	assert.Equal(t, []string{permission.TabPurchases}, f.ctrl.VisibleTabs())
}

func TestUpdateSystemSettings_Fallo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	before := f.ctrl.Settings()

	f.remote.FailNext(errors.New("quota"))
	changed := *before
	changed.MemoTemplate = "otro"
	_, err := f.ctrl.UpdateSystemSettings(ctx, changed)
	assert.ErrorIs(t, err, domain.ErrMutationFailed)
	assert.Equal(t, before, f.ctrl.Settings())
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga completa, copia y restauración
// ──────────────────────────────────────────────────────────────────────────────

func TestLoadAll_FalloConservaCachesYPublicaBanner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	_, err := f.ctrl.Areas.Add(ctx, sampleArea("Vùng A"))
	require.NoError(t, err)

	f.remote.SetOffline(true)
	err = f.ctrl.LoadAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, 1, f.ctrl.Areas.Len())
	assert.NotEmpty(t, f.ctrl.ConnectionError())
	assert.False(t, f.ctrl.Busy())

	f.remote.SetOffline(false)
	require.NoError(t, f.ctrl.LoadAll(ctx))
	assert.Empty(t, f.ctrl.ConnectionError(), "una carga correcta limpia el banner")
}

func TestLoadAll_ErrorSinMensajeUsaTextoPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.remote.FailNext(errors.New(""))
	require.Error(t, f.ctrl.LoadAll(context.Background()))
	assert.Equal(t, workspace.MsgConnectionDefault, f.ctrl.ConnectionError())
}

func TestBackupYRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	_, err := f.ctrl.Areas.Add(ctx, sampleArea("Vùng A"))
	require.NoError(t, err)

	backup, err := f.ctrl.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.BackupVersion, backup.Version)
	assert.Equal(t, fixedNow.Format(time.RFC3339), backup.Timestamp)
	assert.Len(t, backup.Areas, 1)

	_, err = f.ctrl.Areas.Add(ctx, sampleArea("Vùng B"))
	require.NoError(t, err)
	require.Equal(t, 2, f.ctrl.Areas.Len())
	f.inbox.Drain()

	require.NoError(t, f.ctrl.Restore(ctx, backup))
	assert.Equal(t, 1, f.ctrl.Areas.Len(), "tras restaurar se recarga el estado")
	assert.Equal(t, []string{workspace.MsgRestoreOK}, messages(f.inbox))
	assert.False(t, f.ctrl.Busy())
}

func TestRestore_FalloNoAplicaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	_, err := f.ctrl.Areas.Add(ctx, sampleArea("Vùng A"))
	require.NoError(t, err)
	fetches := f.remote.Fetches()

	err = f.ctrl.Restore(ctx, entity.BackupData{}) // sin versión: rechazada
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRestoreFailed)
	assert.Equal(t, 1, f.ctrl.Areas.Len())
	assert.Equal(t, fetches, f.remote.Fetches())
	assert.Equal(t, []string{workspace.MsgRestoreFailed}, messages(f.inbox))
}

// ──────────────────────────────────────────────────────────────────────────────
// Navegación
// ──────────────────────────────────────────────────────────────────────────────

func TestNavigation(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.NavigateToArea(workspace.AreaSubTabPriority, entity.ApproachMet))
	snap := f.ctrl.Snapshot()
	assert.Equal(t, permission.TabAreas, snap.ActiveTab)
	assert.Equal(t, workspace.AreaSubTabPriority, snap.AreaSubTab)
	assert.Equal(t, entity.ApproachMet, snap.AreaHighlightStatus)

	require.NoError(t, f.ctrl.NavigateToFarming(""))
	assert.Equal(t, entity.StageBeforeHarvest, f.ctrl.Snapshot().FarmingSubTab)

	require.NoError(t, f.ctrl.NavigateToPurchase(workspace.PurchaseSubTabSurvey))
	assert.Equal(t, permission.TabPurchases, f.ctrl.Snapshot().ActiveTab)

	f.ctrl.NavigateToDocs()
	assert.Equal(t, permission.TabDocuments, f.ctrl.Snapshot().ActiveTab)
	f.ctrl.NavigateToDashboard()
	assert.Equal(t, permission.TabDashboard, f.ctrl.Snapshot().ActiveTab)

	assert.ErrorIs(t, f.ctrl.SetActiveTab("inventario"), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.ctrl.NavigateToArea("mapa", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.ctrl.NavigateToFarming("siembra"), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.ctrl.NavigateToPurchase("pago"), domain.ErrInvalidInput)
}

var _ repository.Notifier = (*inbox.Inbox)(nil)
