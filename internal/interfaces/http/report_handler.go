package http

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/hoacuong-agri/internal/application/analytics"
	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/application/purchase"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/xlsx"
)

// ReportHandler tablero, comprobantes PDF y exportación a Excel.
type ReportHandler struct {
	ctrl      *workspace.Controller
	dashboard *appanalytics.DashboardUseCase
	receipts  *purchase.ReceiptUseCase
	totals    appanalytics.RemoteTotals // nil si el backend no calcula totales
}

// NewReportHandler construye el handler.
func NewReportHandler(ctrl *workspace.Controller, dashboard *appanalytics.DashboardUseCase, receipts *purchase.ReceiptUseCase, totals appanalytics.RemoteTotals) *ReportHandler {
	return &ReportHandler{ctrl: ctrl, dashboard: dashboard, receipts: receipts, totals: totals}
}

// Dashboard godoc
// @Summary      Estadísticas del tablero
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsDTO
// @Router       /api/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	return c.JSON(h.dashboard.GetStats(c.UserContext()))
}

// Reconcile godoc
// @Summary      Comparar los totales de compras en caché con los del backend
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationDTO
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/dashboard/reconcile [get]
func (h *ReportHandler) Reconcile(c *fiber.Ctx) error {
	if h.totals == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_SUPPORTED", Message: "el backend no calcula totales"})
	}
	out, err := h.dashboard.Reconcile(c.UserContext(), h.totals)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Phiếu thu mua en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la compra"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receipt [get]
func (h *ReportHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.receipts.DownloadReceiptPDF(c.UserContext(), paramID(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdfBytes)
}

// ExportXLSX godoc
// @Summary      Exportar los datos visibles a Excel
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/export.xlsx [get]
func (h *ReportHandler) ExportXLSX(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := xlsx.Export(&buf, h.ctrl.Dataset(), h.ctrl.Permissions()); err != nil {
		if errors.Is(err, xlsx.ErrNoVisibleSheets) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
		}
		return writeError(c, err)
	}
	c.Attachment(fmt.Sprintf("hoacuong_%s.xlsx", time.Now().Format("2006-01-02")))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}
