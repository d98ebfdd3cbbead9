package entity

// Nombres de los flags de AppPermissions (coinciden con las claves JSON de la hoja).
const (
	PermViewDashboard = "viewDashboard"
	PermViewSOP       = "viewSOP"
	PermViewSettings  = "viewSettings"

	PermViewArea     = "viewArea"
	PermCreateArea   = "createArea"
	PermUpdateArea   = "updateArea"
	PermDeleteArea   = "deleteArea"
	PermApproveLegal = "approveLegal"

	PermViewFarming   = "viewFarming"
	PermCreateFarming = "createFarming"
	PermUpdateFarming = "updateFarming"
	PermDeleteFarming = "deleteFarming"

	PermViewPurchase   = "viewPurchase"
	PermCreatePurchase = "createPurchase"
	PermUpdatePurchase = "updatePurchase"
	PermDeletePurchase = "deletePurchase"
	PermViewFinancials = "viewFinancials"

	PermViewStaff   = "viewStaff"
	PermCreateStaff = "createStaff"
	PermUpdateStaff = "updateStaff"
	PermDeleteStaff = "deleteStaff"
	PermManageRoles = "manageRoles"

	PermViewDocuments   = "viewDocuments"
	PermManageDocuments = "manageDocuments"
)

// AppPermissions es el conjunto de capacidades de un cargo, agrupado por área funcional.
// El valor cero es el conjunto vacío (todo false).
type AppPermissions struct {
	ViewDashboard bool `json:"viewDashboard"`
	ViewSOP       bool `json:"viewSOP"`
	ViewSettings  bool `json:"viewSettings"`

	ViewArea     bool `json:"viewArea"`
	CreateArea   bool `json:"createArea"`
	UpdateArea   bool `json:"updateArea"`
	DeleteArea   bool `json:"deleteArea"`
	ApproveLegal bool `json:"approveLegal"`

	ViewFarming   bool `json:"viewFarming"`
	CreateFarming bool `json:"createFarming"`
	UpdateFarming bool `json:"updateFarming"`
	DeleteFarming bool `json:"deleteFarming"`

	ViewPurchase   bool `json:"viewPurchase"`
	CreatePurchase bool `json:"createPurchase"`
	UpdatePurchase bool `json:"updatePurchase"`
	DeletePurchase bool `json:"deletePurchase"`
	ViewFinancials bool `json:"viewFinancials"` // ver precios e ingresos

	ViewStaff   bool `json:"viewStaff"`
	CreateStaff bool `json:"createStaff"`
	UpdateStaff bool `json:"updateStaff"`
	DeleteStaff bool `json:"deleteStaff"`
	ManageRoles bool `json:"manageRoles"`

	ViewDocuments   bool `json:"viewDocuments"`
	ManageDocuments bool `json:"manageDocuments"`
}

// AllPermissions devuelve el conjunto con todos los flags en true (Quản trị viên).
func AllPermissions() AppPermissions {
	return AppPermissions{
		ViewDashboard: true, ViewSOP: true, ViewSettings: true,
		ViewArea: true, CreateArea: true, UpdateArea: true, DeleteArea: true, ApproveLegal: true,
		ViewFarming: true, CreateFarming: true, UpdateFarming: true, DeleteFarming: true,
		ViewPurchase: true, CreatePurchase: true, UpdatePurchase: true, DeletePurchase: true, ViewFinancials: true,
		ViewStaff: true, CreateStaff: true, UpdateStaff: true, DeleteStaff: true, ManageRoles: true,
		ViewDocuments: true, ManageDocuments: true,
	}
}

// Flags devuelve los flags indexados por nombre.
func (p AppPermissions) Flags() map[string]bool {
	return map[string]bool{
		PermViewDashboard: p.ViewDashboard,
		PermViewSOP:       p.ViewSOP,
		PermViewSettings:  p.ViewSettings,

		PermViewArea:     p.ViewArea,
		PermCreateArea:   p.CreateArea,
		PermUpdateArea:   p.UpdateArea,
		PermDeleteArea:   p.DeleteArea,
		PermApproveLegal: p.ApproveLegal,

		PermViewFarming:   p.ViewFarming,
		PermCreateFarming: p.CreateFarming,
		PermUpdateFarming: p.UpdateFarming,
		PermDeleteFarming: p.DeleteFarming,

		PermViewPurchase:   p.ViewPurchase,
		PermCreatePurchase: p.CreatePurchase,
		PermUpdatePurchase: p.UpdatePurchase,
		PermDeletePurchase: p.DeletePurchase,
		PermViewFinancials: p.ViewFinancials,

		PermViewStaff:   p.ViewStaff,
		PermCreateStaff: p.CreateStaff,
		PermUpdateStaff: p.UpdateStaff,
		PermDeleteStaff: p.DeleteStaff,
		PermManageRoles: p.ManageRoles,

		PermViewDocuments:   p.ViewDocuments,
		PermManageDocuments: p.ManageDocuments,
	}
}

// Allows informa si el flag indicado está activo. Un nombre desconocido nunca está permitido.
func (p AppPermissions) Allows(flag string) bool {
	return p.Flags()[flag]
}

// IsEmpty informa si ningún flag está activo.
func (p AppPermissions) IsEmpty() bool {
	return p == AppPermissions{}
}

// Role es un cargo configurable (Quản lý, Kế toán...) con sus permisos.
type Role struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Permissions AppPermissions `json:"permissions"`
}
