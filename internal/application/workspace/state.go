package workspace

import (
	"fmt"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/permission"
)

// Sub-pestañas de vùng trồng.
const (
	AreaSubTabAll      = "all"
	AreaSubTabPriority = "priority"
	AreaSubTabCalendar = "calendar"
	AreaSubTabLegal    = "legal"
)

// Sub-pestañas de thu mua.
const (
	PurchaseSubTabSurvey      = "survey"
	PurchaseSubTabNegotiation = "negotiation"
	PurchaseSubTabHarvest     = "harvest"
)

// Navigation estado de navegación del UI.
type Navigation struct {
	ActiveTab           string `json:"activeTab"`
	AreaSubTab          string `json:"areaSubTab"`
	AreaHighlightStatus string `json:"areaHighlightStatus,omitempty"`
	PurchaseSubTab      string `json:"purchaseSubTab"`
	FarmingSubTab       string `json:"farmingSubTab"`
	SidebarOpen         bool   `json:"sidebarOpen"`
	ProfileOpen         bool   `json:"profileOpen"`
}

func defaultNavigation() Navigation {
	return Navigation{
		ActiveTab:      permission.TabDashboard,
		AreaSubTab:     AreaSubTabAll,
		PurchaseSubTab: PurchaseSubTabHarvest,
		FarmingSubTab:  entity.StageBeforeHarvest,
	}
}

// State foto del estado de la aplicación para los lectores (UI, handlers).
type State struct {
	Navigation
	SignedIn        bool   `json:"signedIn"`
	Busy            bool   `json:"busy"`
	ConnectionError string `json:"connectionError,omitempty"`
}

// Snapshot devuelve una copia del estado actual.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Navigation:      c.nav,
		SignedIn:        c.identity != nil,
		Busy:            c.Busy(),
		ConnectionError: c.connErr,
	}
}

// SetActiveTab cambia la pestaña activa.
func (c *Controller) SetActiveTab(tab string) error {
	if !permission.IsTab(tab) {
		return fmt.Errorf("%w: pestaña %q", domain.ErrInvalidInput, tab)
	}
	c.mu.Lock()
	c.nav.ActiveTab = tab
	c.mu.Unlock()
	return nil
}

// NavigateToArea abre vùng trồng en la sub-pestaña indicada; approachStatus (opcional)
// resalta las filas con ese estado de acercamiento.
func (c *Controller) NavigateToArea(subTab, approachStatus string) error {
	switch subTab {
	case AreaSubTabAll, AreaSubTabPriority, AreaSubTabCalendar, AreaSubTabLegal:
	default:
		return fmt.Errorf("%w: sub-pestaña de zonas %q", domain.ErrInvalidInput, subTab)
	}
	c.mu.Lock()
	c.nav.AreaSubTab = subTab
	c.nav.AreaHighlightStatus = approachStatus
	c.nav.ActiveTab = permission.TabAreas
	c.mu.Unlock()
	return nil
}

// NavigateToDocs abre el repositorio documental.
func (c *Controller) NavigateToDocs() {
	c.mu.Lock()
	c.nav.ActiveTab = permission.TabDocuments
	c.mu.Unlock()
}

// NavigateToFarming abre canh tác en la etapa indicada (vacío = antes de cosecha).
func (c *Controller) NavigateToFarming(stage string) error {
	if stage == "" {
		stage = entity.StageBeforeHarvest
	}
	if stage != entity.StageBeforeHarvest && stage != entity.StageAfterHarvest {
		return fmt.Errorf("%w: etapa %q", domain.ErrInvalidInput, stage)
	}
	c.mu.Lock()
	c.nav.FarmingSubTab = stage
	c.nav.ActiveTab = permission.TabFarming
	c.mu.Unlock()
	return nil
}

// NavigateToPurchase abre thu mua en la sub-pestaña indicada.
func (c *Controller) NavigateToPurchase(subTab string) error {
	switch subTab {
	case PurchaseSubTabSurvey, PurchaseSubTabNegotiation, PurchaseSubTabHarvest:
	default:
		return fmt.Errorf("%w: sub-pestaña de compras %q", domain.ErrInvalidInput, subTab)
	}
	c.mu.Lock()
	c.nav.PurchaseSubTab = subTab
	c.nav.ActiveTab = permission.TabPurchases
	c.mu.Unlock()
	return nil
}

// NavigateToDashboard vuelve al tablero.
func (c *Controller) NavigateToDashboard() {
	c.mu.Lock()
	c.nav.ActiveTab = permission.TabDashboard
	c.mu.Unlock()
}

// OpenSidebar / CloseSidebar (menú móvil).
func (c *Controller) OpenSidebar()  { c.setSidebar(true) }
func (c *Controller) CloseSidebar() { c.setSidebar(false) }

// OpenProfile / CloseProfile (panel de perfil de usuario).
func (c *Controller) OpenProfile()  { c.setProfile(true) }
func (c *Controller) CloseProfile() { c.setProfile(false) }

func (c *Controller) setSidebar(open bool) {
	c.mu.Lock()
	c.nav.SidebarOpen = open
	c.mu.Unlock()
}

func (c *Controller) setProfile(open bool) {
	c.mu.Lock()
	c.nav.ProfileOpen = open
	c.mu.Unlock()
}
