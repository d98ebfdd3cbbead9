package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP + dto.ErrorResponse.
// El orden importa: una mutación fallida envuelve también la causa remota.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrMutationFailed):
		status, code = fiber.StatusBadGateway, "MUTATION_FAILED"
	case errors.Is(err, domain.ErrRestoreFailed):
		status, code = fiber.StatusBadGateway, "RESTORE_FAILED"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotSignedIn):
		status, code = fiber.StatusUnauthorized, "NOT_SIGNED_IN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "BUSY"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		status, code = fiber.StatusServiceUnavailable, "REMOTE_UNAVAILABLE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// paramID copia el :id de la ruta. Fiber reutiliza el buffer de la petición y el ID
// termina guardado en la caché.
func paramID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}
