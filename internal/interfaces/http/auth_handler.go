package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hoacuong-agri/internal/application/auth"
	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
)

// AuthHandler maneja login, logout y la sesión actual.
type AuthHandler struct {
	uc   *auth.AuthUseCase
	ctrl *workspace.Controller
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, ctrl *workspace.Controller) *AuthHandler {
	return &AuthHandler{uc: uc, ctrl: ctrl}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "code, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Code == "" || in.Password == "" {
		return badRequest(c, "VALIDATION", "code y password son requeridos")
	}
	token, _, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LoginResponse{Token: token, Session: sessionResponse(h.ctrl)})
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Security     Bearer
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Session godoc
// @Summary      Sesión actual: identidad, permisos efectivos, pestañas y estado
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(sessionResponse(h.ctrl))
}

func sessionResponse(ctrl *workspace.Controller) dto.SessionResponse {
	return dto.SessionResponse{
		Identity:    ctrl.Identity(),
		Permissions: ctrl.Permissions(),
		VisibleTabs: ctrl.VisibleTabs(),
		State:       ctrl.Snapshot(),
	}
}
