package permission

import "github.com/jhoicas/hoacuong-agri/internal/domain/entity"

// Pestañas de navegación de la aplicación.
const (
	TabDashboard = "dashboard"
	TabSOP       = "sop"
	TabAreas     = "areas"
	TabFarming   = "farming"
	TabPurchases = "purchases"
	TabStaff     = "staff"
	TabDocuments = "documents"
	TabSettings  = "settings"
)

// Tabs en el orden del sidebar.
var Tabs = []string{TabDashboard, TabSOP, TabAreas, TabFarming, TabPurchases, TabStaff, TabDocuments, TabSettings}

var tabFlag = map[string]string{
	TabDashboard: entity.PermViewDashboard,
	TabSOP:       entity.PermViewSOP,
	TabAreas:     entity.PermViewArea,
	TabFarming:   entity.PermViewFarming,
	TabPurchases: entity.PermViewPurchase,
	TabStaff:     entity.PermViewStaff,
	TabDocuments: entity.PermViewDocuments,
	TabSettings:  entity.PermViewSettings,
}

// IsTab informa si tab es una pestaña conocida.
func IsTab(tab string) bool {
	_, ok := tabFlag[tab]
	return ok
}

// CanOpenTab informa si los permisos permiten ver la pestaña.
func CanOpenTab(perms entity.AppPermissions, tab string) bool {
	flag, ok := tabFlag[tab]
	return ok && perms.Allows(flag)
}

// VisibleTabs pestañas que el sidebar debe mostrar.
func VisibleTabs(perms entity.AppPermissions) []string {
	out := make([]string, 0, len(Tabs))
	for _, tab := range Tabs {
		if CanOpenTab(perms, tab) {
			out = append(out, tab)
		}
	}
	return out
}
