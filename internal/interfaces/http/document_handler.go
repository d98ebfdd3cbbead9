package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// maxUploadBytes tamaño máximo aceptado por archivo.
const maxUploadBytes = 25 << 20

// DocumentHandler subida y descarga de archivos del repositorio documental.
type DocumentHandler struct {
	ctrl    *workspace.Controller
	content repository.FileContentReader // nil con Google Sheets
}

// NewDocumentHandler construye el handler. content puede ser nil: entonces la descarga
// redirige a la URL que devolvió el backend.
func NewDocumentHandler(ctrl *workspace.Controller, content repository.FileContentReader) *DocumentHandler {
	return &DocumentHandler{ctrl: ctrl, content: content}
}

// Upload godoc
// @Summary      Subir archivo
// @Tags         documents
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Archivo"
// @Param        folderId  formData  string  false  "Carpeta destino (vacío = raíz)"
// @Success      201  {object}  entity.SystemFile
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/files [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "el campo file es requerido")
	}
	if fh.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "archivo demasiado grande"})
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "INVALID_FILE", err.Error())
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "INVALID_FILE", err.Error())
	}

	upload := entity.FileUpload{
		Name:     fh.Filename,
		MimeType: fh.Header.Get(fiber.HeaderContentType),
		Content:  content,
	}
	if folderID := c.FormValue("folderId"); folderID != "" {
		upload.FolderID = &folderID
	}
	file, err := h.ctrl.UploadFile(c.UserContext(), upload)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

// Content godoc
// @Summary      Descargar el contenido de un archivo
// @Tags         documents
// @Security     Bearer
// @Produce      octet-stream
// @Param        id  path  string  true  "ID del archivo"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/files/{id}/content [get]
func (h *DocumentHandler) Content(c *fiber.Ctx) error {
	id := paramID(c)
	file, ok := h.ctrl.Files.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "archivo no encontrado"})
	}
	if h.content == nil {
		return c.Redirect(file.URL, fiber.StatusFound)
	}
	data, mimeType, err := h.content.FileContent(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if mimeType == "" {
		mimeType = fiber.MIMEOctetStream
	}
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, mimeType)
	return c.Send(data)
}
