package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/permission"
)

func accountantSettings() *entity.SystemSettings {
	return &entity.SystemSettings{
		Roles: []entity.Role{
			{ID: "r1", Name: "Kế toán", Permissions: entity.AppPermissions{ViewPurchase: true}},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_CargoEnTablaDevuelveSusPermisos(t *testing.T) {
	id := &entity.Employee{ID: "1", Code: "NV002", Role: "Kế toán"}
	got := permission.Resolve(id, accountantSettings())

	assert.Equal(t, entity.AppPermissions{ViewPurchase: true}, got, "debe devolver el registro del cargo campo a campo")
	assert.True(t, got.ViewPurchase)
	assert.False(t, got.CreateArea)
}

func TestResolve_CargoEnTablaGanaSobreAdministrador(t *testing.T) {
	settings := accountantSettings()
	settings.Roles = append(settings.Roles, entity.Role{ID: "r2", Name: "Quản trị viên", Permissions: entity.AppPermissions{ViewDashboard: true}})

	id := &entity.Employee{ID: "1", Code: "ADMIN", Role: "Quản trị viên"}
	got := permission.Resolve(id, settings)
	assert.Equal(t, entity.AppPermissions{ViewDashboard: true}, got,
		"si el cargo existe en la tabla no se aplica el respaldo de administrador")
}

func TestResolve_CodigoAdminSinCargo(t *testing.T) {
	id := &entity.Employee{ID: "1", Code: "ADMIN", Role: "Unknown"}
	assert.Equal(t, entity.AllPermissions(), permission.Resolve(id, accountantSettings()))
}

func TestResolve_CargoAdminSinTabla(t *testing.T) {
	id := &entity.Employee{ID: "1", Code: "NV009", Role: "Quản trị viên"}
	assert.Equal(t, entity.AllPermissions(), permission.Resolve(id, &entity.SystemSettings{}))
}

func TestResolve_SinCargoNiAdministrador(t *testing.T) {
	id := &entity.Employee{ID: "1", Code: "NV003", Role: "Thủ kho"}
	got := permission.Resolve(id, accountantSettings())
	assert.True(t, got.IsEmpty())
}

func TestResolve_IdentidadOConfiguracionNil(t *testing.T) {
	admin := &entity.Employee{ID: "1", Code: "ADMIN"}

	assert.True(t, permission.Resolve(nil, accountantSettings()).IsEmpty(), "identidad nil → vacío")
	assert.True(t, permission.Resolve(admin, nil).IsEmpty(), "configuración sin cargar → vacío incluso para el administrador")
	assert.NotPanics(t, func() { permission.Resolve(nil, nil) })
}

func TestResolve_NombresDuplicadosGanaElPrimero(t *testing.T) {
	settings := &entity.SystemSettings{Roles: []entity.Role{
		{ID: "a", Name: "Kỹ thuật", Permissions: entity.AppPermissions{ViewFarming: true}},
		{ID: "b", Name: "Kỹ thuật", Permissions: entity.AppPermissions{DeleteFarming: true}},
	}}
	got := permission.Resolve(&entity.Employee{Role: "Kỹ thuật"}, settings)
	assert.True(t, got.ViewFarming)
	assert.False(t, got.DeleteFarming)
}

func TestResolver_ReglaPersonalizada(t *testing.T) {
	r := permission.NewResolver(permission.AdminRule{Code: "ROOT"})

	assert.Equal(t, entity.AllPermissions(), r.Resolve(&entity.Employee{Code: "ROOT"}, &entity.SystemSettings{}))
	assert.True(t, r.Resolve(&entity.Employee{Code: "ADMIN"}, &entity.SystemSettings{}).IsEmpty(),
		"con una regla personalizada ADMIN deja de ser reservado")
	assert.True(t, r.Resolve(&entity.Employee{Role: "Quản trị viên"}, &entity.SystemSettings{}).IsEmpty(),
		"un cargo vacío en la regla no reconoce a nadie")
}

// ──────────────────────────────────────────────────────────────────────────────
// Pestañas
// ──────────────────────────────────────────────────────────────────────────────

func TestVisibleTabs(t *testing.T) {
	assert.Equal(t, permission.Tabs, permission.VisibleTabs(entity.AllPermissions()))
	assert.Empty(t, permission.VisibleTabs(entity.AppPermissions{}))
	assert.Equal(t, []string{permission.TabPurchases},
		permission.VisibleTabs(entity.AppPermissions{ViewPurchase: true, CreateArea: true}))
}

func TestCanOpenTab(t *testing.T) {
	perms := entity.AppPermissions{ViewDocuments: true}
	assert.True(t, permission.CanOpenTab(perms, permission.TabDocuments))
	assert.False(t, permission.CanOpenTab(perms, permission.TabSettings))
	assert.False(t, permission.CanOpenTab(entity.AllPermissions(), "inexistente"))
}
