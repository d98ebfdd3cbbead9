// Package permission resuelve el conjunto efectivo de permisos de la identidad en sesión
// a partir de la tabla de cargos de SystemSettings.
package permission

import "github.com/jhoicas/hoacuong-agri/internal/domain/entity"

// Valores reservados del administrador.
const (
	DefaultAdminCode = "ADMIN"
	DefaultAdminRole = "Quản trị viên"
)

// AdminRule reconoce al administrador cuando su cargo no está en la tabla.
// Un campo vacío no reconoce a nadie.
type AdminRule struct {
	Code     string
	RoleName string
}

// DefaultAdminRule código "ADMIN" o cargo "Quản trị viên".
var DefaultAdminRule = AdminRule{Code: DefaultAdminCode, RoleName: DefaultAdminRole}

// Matches informa si la identidad es el administrador reservado.
func (r AdminRule) Matches(identity *entity.Employee) bool {
	if identity == nil {
		return false
	}
	if r.Code != "" && identity.Code == r.Code {
		return true
	}
	return r.RoleName != "" && identity.Role == r.RoleName
}

// Resolver calcula permisos; no tiene estado más allá de la regla de administrador.
type Resolver struct {
	admin AdminRule
}

// NewResolver construye el resolver con la regla de administrador indicada.
func NewResolver(admin AdminRule) *Resolver {
	return &Resolver{admin: admin}
}

// Resolve devuelve los permisos de identity según la tabla de cargos de settings:
//   - identity o settings nil (configuración aún no cargada) → conjunto vacío.
//   - primer cargo con Name == identity.Role (orden de la tabla) → sus permisos tal cual.
//   - sin cargo y administrador reservado → todos los permisos.
//   - en otro caso → conjunto vacío.
//
// Es una función pura: se recalcula en cada llamada.
func (r *Resolver) Resolve(identity *entity.Employee, settings *entity.SystemSettings) entity.AppPermissions {
	if identity == nil || settings == nil {
		return entity.AppPermissions{}
	}
	if role, ok := FindRole(settings.Roles, identity.Role); ok {
		return role.Permissions
	}
	if r.admin.Matches(identity) {
		return entity.AllPermissions()
	}
	return entity.AppPermissions{}
}

// Resolve aplica DefaultAdminRule.
func Resolve(identity *entity.Employee, settings *entity.SystemSettings) entity.AppPermissions {
	return NewResolver(DefaultAdminRule).Resolve(identity, settings)
}

// FindRole busca por nombre exacto; con nombres duplicados gana el primero.
func FindRole(roles []entity.Role, name string) (entity.Role, bool) {
	for _, role := range roles {
		if role.Name == name {
			return role, true
		}
	}
	return entity.Role{}, false
}
