package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// LocalEmployee key de c.Locals con la identidad autorizada.
const LocalEmployee = "employee"

// authorizer lo implementa *auth.AuthUseCase.
type authorizer interface {
	Authorize(token string) (*entity.Employee, error)
}

// permissionSource lo implementa *workspace.Controller.
type permissionSource interface {
	Permissions() entity.AppPermissions
}

// busyChecker lo implementa *workspace.Controller.
type busyChecker interface {
	Busy() bool
}

// AuthMiddleware valida el Bearer Token JWT y que corresponda a la sesión del dispositivo.
// Deja la identidad en c.Locals(LocalEmployee).
func AuthMiddleware(auth authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		employee, err := auth.Authorize(tokenString)
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalEmployee, employee)
		return c.Next()
	}
}

// GetEmployee devuelve la identidad autorizada (después del middleware de auth).
func GetEmployee(c *fiber.Ctx) *entity.Employee {
	emp, _ := c.Locals(LocalEmployee).(*entity.Employee)
	return emp
}

// RequirePermission verifica que los permisos efectivos de la sesión incluyan el flag.
// Los permisos se resuelven en cada petición: un cambio en la tabla de cargos aplica de inmediato.
func RequirePermission(flag string, perms permissionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !perms.Permissions().Allows(flag) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + flag,
			})
		}
		return c.Next()
	}
}

// BusyGuard rechaza las peticiones que modifican datos mientras haya una operación remota
// en curso (el indicador bloqueante del UI).
func BusyGuard(busy busyChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if busy.Busy() {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "BUSY",
				Message: "hay una operación en curso, intente de nuevo",
			})
		}
		return c.Next()
	}
}
