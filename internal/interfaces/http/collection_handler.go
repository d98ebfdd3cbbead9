package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// crudCollection lo implementa *workspace.Collection[T].
type crudCollection[T entity.Record] interface {
	Kind() string
	Items() []T
	Get(id string) (T, bool)
	Add(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id string) error
}

// CollectionHandler CRUD HTTP sobre una colección en caché. Las lecturas no llaman al
// backend; las escrituras pasan por el controlador (backend primero, caché después).
type CollectionHandler[T entity.Record] struct {
	col crudCollection[T]
	// withID fija en el registro el ID de la ruta (PUT /:id).
	withID func(rec T, id string) T
	// present ajusta lo que se devuelve al cliente (ej. quitar contraseñas).
	present func(rec T) T
}

// NewCollectionHandler construye el handler.
func NewCollectionHandler[T entity.Record](col crudCollection[T], withID func(T, string) T) *CollectionHandler[T] {
	return &CollectionHandler[T]{col: col, withID: withID}
}

// Presenting fija la transformación aplicada a cada registro devuelto.
func (h *CollectionHandler[T]) Presenting(present func(T) T) *CollectionHandler[T] {
	h.present = present
	return h
}

func (h *CollectionHandler[T]) out(rec T) T {
	if h.present == nil {
		return rec
	}
	return h.present(rec)
}

// List godoc
// @Summary      Listar registros de la colección
// @Tags         collections
// @Security     Bearer
// @Produce      json
// @Param        collection  path  string  true  "areas, purchases, surveys, contracts, farming-logs, employees, linkage-statuses, folders, files"
// @Success      200  {object}  dto.ListResponse
// @Router       /api/{collection} [get]
func (h *CollectionHandler[T]) List(c *fiber.Ctx) error {
	items := h.col.Items()
	for i := range items {
		items[i] = h.out(items[i])
	}
	return c.JSON(dto.NewListResponse(items))
}

// GetByID godoc
// @Summary      Obtener registro por ID
// @Tags         collections
// @Security     Bearer
// @Produce      json
// @Param        collection  path  string  true  "Colección"
// @Param        id          path  string  true  "ID del registro"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{collection}/{id} [get]
func (h *CollectionHandler[T]) GetByID(c *fiber.Ctx) error {
	id := paramID(c)
	if id == "" {
		return badRequest(c, "MISSING_ID", "id es requerido")
	}
	rec, ok := h.col.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: h.col.Kind() + ": registro no encontrado"})
	}
	return c.JSON(h.out(rec))
}

// Create godoc
// @Summary      Crear registro
// @Tags         collections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        collection  path  string  true  "Colección"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/{collection} [post]
func (h *CollectionHandler[T]) Create(c *fiber.Ctx) error {
	var in T
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.col.Add(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.out(out))
}

// Update godoc
// @Summary      Actualizar registro
// @Tags         collections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        collection  path  string  true  "Colección"
// @Param        id          path  string  true  "ID del registro"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/{collection}/{id} [put]
func (h *CollectionHandler[T]) Update(c *fiber.Ctx) error {
	id := paramID(c)
	if id == "" {
		return badRequest(c, "MISSING_ID", "id es requerido")
	}
	var in T
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if h.withID != nil {
		in = h.withID(in, id)
	}
	out, err := h.col.Update(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.out(out))
}

// Delete godoc
// @Summary      Eliminar registro
// @Tags         collections
// @Security     Bearer
// @Param        collection  path  string  true  "Colección"
// @Param        id          path  string  true  "ID del registro"
// @Success      204
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/{collection}/{id} [delete]
func (h *CollectionHandler[T]) Delete(c *fiber.Ctx) error {
	id := paramID(c)
	if id == "" {
		return badRequest(c, "MISSING_ID", "id es requerido")
	}
	if err := h.col.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// crudPermissions flags requeridos por cada verbo.
type crudPermissions struct {
	view, create, update, remove string
}

// mountCollection registra las rutas CRUD de la colección bajo group.
func mountCollection[T entity.Record](group fiber.Router, path string, h *CollectionHandler[T], perms crudPermissions, src permissionSource) {
	r := group.Group(path)
	r.Get("/", RequirePermission(perms.view, src), h.List)
	r.Get("/:id", RequirePermission(perms.view, src), h.GetByID)
	r.Post("/", RequirePermission(perms.create, src), h.Create)
	r.Put("/:id", RequirePermission(perms.update, src), h.Update)
	r.Delete("/:id", RequirePermission(perms.remove, src), h.Delete)
}
