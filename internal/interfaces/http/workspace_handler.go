package http

import (
	"fmt"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/inbox"
)

// WorkspaceHandler expone el estado del controlador: avisos, navegación, recarga,
// perfil, configuración y copias de seguridad.
type WorkspaceHandler struct {
	ctrl  *workspace.Controller
	inbox *inbox.Inbox
}

// NewWorkspaceHandler construye el handler.
func NewWorkspaceHandler(ctrl *workspace.Controller, inbox *inbox.Inbox) *WorkspaceHandler {
	return &WorkspaceHandler{ctrl: ctrl, inbox: inbox}
}

// Notifications godoc
// @Summary      Avisos pendientes (se vacían al leerlos)
// @Tags         workspace
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse
// @Router       /api/notifications [get]
func (h *WorkspaceHandler) Notifications(c *fiber.Ctx) error {
	return c.JSON(dto.NewListResponse(h.inbox.Drain()))
}

// Navigate godoc
// @Summary      Cambiar la navegación (pestaña, sub-pestaña, sidebar, perfil)
// @Tags         workspace
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NavigationRequest  true  "Destino"
// @Success      200   {object}  workspace.State
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/navigation [put]
func (h *WorkspaceHandler) Navigate(c *fiber.Ctx) error {
	var in dto.NavigationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	var err error
	switch in.Target {
	case "dashboard":
		h.ctrl.NavigateToDashboard()
	case "docs":
		h.ctrl.NavigateToDocs()
	case "area":
		subTab := in.SubTab
		if subTab == "" {
			subTab = workspace.AreaSubTabAll
		}
		err = h.ctrl.NavigateToArea(subTab, in.ApproachStatus)
	case "farming":
		err = h.ctrl.NavigateToFarming(in.Stage)
	case "purchase":
		err = h.ctrl.NavigateToPurchase(in.SubTab)
	case "tab":
		err = h.ctrl.SetActiveTab(in.Tab)
	case "sidebar":
		if in.Open == nil {
			return badRequest(c, "VALIDATION", "open es requerido")
		}
		if *in.Open {
			h.ctrl.OpenSidebar()
		} else {
			h.ctrl.CloseSidebar()
		}
	case "profile":
		if in.Open == nil {
			return badRequest(c, "VALIDATION", "open es requerido")
		}
		if *in.Open {
			h.ctrl.OpenProfile()
		} else {
			h.ctrl.CloseProfile()
		}
	default:
		return badRequest(c, "VALIDATION", fmt.Sprintf("target desconocido: %q", in.Target))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.ctrl.Snapshot())
}

// Reload godoc
// @Summary      Recargar todos los datos desde el backend
// @Tags         workspace
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  workspace.State
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/data/reload [post]
func (h *WorkspaceHandler) Reload(c *fiber.Ctx) error {
	if err := h.ctrl.LoadAll(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "REMOTE_UNAVAILABLE",
			Message: h.ctrl.ConnectionError(),
		})
	}
	return c.JSON(h.ctrl.Snapshot())
}

// UpdateProfile godoc
// @Summary      Actualizar el perfil del empleado en sesión
// @Tags         workspace
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.Employee  true  "Datos del perfil (password opcional)"
// @Success      200   {object}  entity.Employee
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *WorkspaceHandler) UpdateProfile(c *fiber.Ctx) error {
	emp := GetEmployee(c)
	if emp == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "NOT_SIGNED_IN", Message: "sin sesión"})
	}
	var in entity.Employee
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	// Solo el propio registro. Código, cargo y estado no se cambian desde el perfil:
	// el código decide la regla de administrador.
	in.ID = emp.ID
	in.Code = emp.Code
	in.Role = emp.Role
	in.Status = emp.Status
	out, err := h.ctrl.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSettings godoc
// @Summary      Configuración del sistema
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.SystemSettings
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/settings [get]
func (h *WorkspaceHandler) GetSettings(c *fiber.Ctx) error {
	s := h.ctrl.Settings()
	if s == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "configuración aún no cargada"})
	}
	return c.JSON(s)
}

// UpdateSettings godoc
// @Summary      Guardar la configuración del sistema (cambiar cargos requiere manageRoles)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.SystemSettings  true  "Configuración completa"
// @Success      200   {object}  entity.SystemSettings
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/settings [put]
func (h *WorkspaceHandler) UpdateSettings(c *fiber.Ctx) error {
	var in entity.SystemSettings
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if rolesChanged(h.ctrl.Settings(), in) && !h.ctrl.Permissions().ManageRoles {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "permiso requerido: " + entity.PermManageRoles,
		})
	}
	out, err := h.ctrl.UpdateSystemSettings(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func rolesChanged(current *entity.SystemSettings, next entity.SystemSettings) bool {
	if current == nil {
		return len(next.Roles) > 0
	}
	return !slices.Equal(current.Roles, next.Roles)
}

// Backup godoc
// @Summary      Descargar copia de seguridad completa (JSON)
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.BackupData
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/backup [get]
func (h *WorkspaceHandler) Backup(c *fiber.Ctx) error {
	backup, err := h.ctrl.Backup(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(fmt.Sprintf("hoacuong_backup_%s.json", time.Now().Format("2006-01-02")))
	return c.JSON(backup)
}

// Restore godoc
// @Summary      Restaurar todos los datos desde una copia
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  entity.BackupData  true  "Copia de seguridad"
// @Success      200   {object}  workspace.State
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/restore [post]
func (h *WorkspaceHandler) Restore(c *fiber.Ctx) error {
	var in entity.BackupData
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := h.ctrl.Restore(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.ctrl.Snapshot())
}
