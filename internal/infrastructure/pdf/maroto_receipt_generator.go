// Package pdf genera el phiếu thu mua (comprobante de pesaje y liquidación) en A4.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + MST        │  PHIẾU THU MUA + N° + Fecha  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VÙNG TRỒNG: nombre + chủ vườn                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ngày | Chất lượng | Số lượng | Đơn giá | Thành tiền │
//	│  TOTAL                                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS + QR con el número del comprobante                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/hoacuong-agri/internal/application/purchase"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// hidden texto en lugar de los montos cuando la identidad no puede ver finanzas.
const hidden = "***"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa purchase.ReceiptPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	printer *message.Printer
}

var _ purchase.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{printer: message.NewPrinter(language.Vietnamese)}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(_ context.Context, r purchase.Receipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Phiếu thu mua "+r.Number, true).
		WithAuthor(nonEmpty(r.Company.Name, "Hoa Cương"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(areaRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.detailRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(r))

	if len(r.Transaction.History) > 0 {
		m.AddRows(historyRows(r)...)
	}

	m.AddRows(row.New(6))
	m.AddRows(signatureRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + MST (izq) y título + número + fecha (der).
func (g *MarotoReceiptGenerator) headerRow(r purchase.Receipt) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(r.Company.Name, "Hoa Cương"), props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("MST: %s   |   ĐT: %s",
				nonEmpty(r.Company.TaxCode, "—"),
				nonEmpty(r.Company.Phone, "—"),
			), props.Text{Size: 8, Top: 8, Color: colorGray}),
			text.New(nonEmpty(r.Company.Address, ""), props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("PHIẾU THU MUA", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Số: "+r.Number, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 8,
			}),
			text.New("Ngày: "+nonEmpty(r.Transaction.Date, r.IssuedAt.Format("2006-01-02")), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// areaRow: vùng trồng de origen.
func areaRow(r purchase.Receipt) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("VÙNG TRỒNG", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(r.AreaName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Chủ vườn: "+nonEmpty(r.AreaOwner, "—"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ngày", 2, align.Left),
		h("Chất lượng", 3, align.Left),
		h("Số lượng (kg)", 2, align.Right),
		h("Đơn giá", 2, align.Right),
		h("Thành tiền", 3, align.Right),
	)
}

func (g *MarotoReceiptGenerator) detailRow(r purchase.Receipt) core.Row {
	tx := r.Transaction
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	price, total := hidden, hidden
	if r.ShowAmounts {
		price = g.FormatVND(tx.PricePerKg)
		total = g.FormatVND(tx.TotalAmount)
	}
	return row.New(8).Add(
		cell(tx.Date, 2, align.Left),
		cell(nonEmpty(tx.Quality, "—"), 3, align.Left),
		cell(g.FormatKg(tx.QuantityKg), 2, align.Right),
		cell(price, 2, align.Right),
		cell(total, 3, align.Right),
	)
}

func (g *MarotoReceiptGenerator) totalRow(r purchase.Receipt) core.Row {
	total := hidden
	if r.ShowAmounts {
		total = g.FormatVND(r.Transaction.TotalAmount)
	}
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TỔNG CỘNG:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(total, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// historyRows: historial de ediciones de la transacción.
func historyRows(r purchase.Receipt) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(text.New("LỊCH SỬ CHỈNH SỬA", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3,
		}))),
	}
	for _, h := range r.Transaction.History {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(
			fmt.Sprintf("%s  %s: %s", h.Date, h.EditorName, h.Action),
			props.Text{Size: 7, Color: colorGray, Top: 1, Left: 2},
		))))
	}
	return rows
}

// signatureRow: firmas y QR con el número del comprobante para buscarlo en el sistema.
func signatureRow(r purchase.Receipt) core.Row {
	sign := func(title, name string) core.Col {
		return col.New(4).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 2}),
			text.New("(Ký, ghi rõ họ tên)", props.Text{Size: 7, Align: align.Center, Top: 7, Color: colorGray}),
			text.New(name, props.Text{Size: 9, Align: align.Center, Top: 28}),
		)
	}
	return row.New(40).Add(
		sign("Người bán", r.AreaOwner),
		sign("Người lập phiếu", r.IssuedBy),
		col.New(4).Add(code.NewQr(r.Number, props.Rect{Percent: 70, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// FormatVND monto en đồng con separador de miles vietnamita: 25.200.000 ₫.
func (g *MarotoReceiptGenerator) FormatVND(d decimal.Decimal) string {
	return g.printer.Sprintf("%d ₫", d.Round(0).IntPart())
}

// FormatKg kilos con hasta dos decimales: 1.250,5.
func (g *MarotoReceiptGenerator) FormatKg(kg float64) string {
	d := decimal.NewFromFloat(kg).Round(2)
	if d.IsInteger() {
		return g.printer.Sprintf("%d", d.IntPart())
	}
	return g.printer.Sprintf("%.2f", d.InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
