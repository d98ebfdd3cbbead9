// Package xlsx exporta las colecciones en caché a un libro Excel, una hoja por colección.
package xlsx

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// Nombres de las hojas del libro exportado.
const (
	SheetAreas     = "Vùng trồng"
	SheetPurchases = "Thu mua"
	SheetSurveys   = "Khảo sát"
	SheetContracts = "Hợp đồng"
	SheetFarming   = "Canh tác"
	SheetStaff     = "Nhân sự"
)

// ErrNoVisibleSheets los permisos no dejan ver ninguna colección exportable.
var ErrNoVisibleSheets = errors.New("xlsx: no hay hojas visibles para estos permisos")

// sheet una hoja: encabezado y filas ya convertidas.
type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// Export escribe el libro en w. Solo incluye las hojas que los permisos dejan ver; sin
// viewFinancials las columnas de precio y monto quedan fuera.
func Export(w io.Writer, data entity.Dataset, perms entity.AppPermissions) error {
	sheets := buildSheets(data, perms)
	if len(sheets) == 0 {
		return ErrNoVisibleSheets
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"166534"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx: estilo: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("xlsx: renombrar hoja: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("xlsx: crear hoja %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: encabezado %s: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("xlsx: estilo %s: %w", s.name, err)
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("xlsx: fila %d de %s: %w", i+2, s.name, err)
		}
	}
	return f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func buildSheets(data entity.Dataset, perms entity.AppPermissions) []sheet {
	areaNames := make(map[string]string, len(data.Areas))
	for _, a := range data.Areas {
		areaNames[a.ID] = a.Name
	}

	var sheets []sheet
	if perms.ViewArea {
		s := sheet{name: SheetAreas, header: []string{"Mã vùng", "Tên vùng", "Loại cây", "Diện tích (ha)", "Địa điểm", "Chủ vườn", "Số điện thoại", "Trạng thái", "Ưu tiên", "Sản lượng dự kiến (tấn)", "Pháp lý"}}
		for _, a := range data.Areas {
			s.rows = append(s.rows, []any{a.Code, a.Name, a.CropType, a.Hectares, a.Location, a.Owner, a.Phone, a.Status, a.Priority, a.EstimatedYield, a.LegalStatus})
		}
		sheets = append(sheets, s)
	}
	if perms.ViewPurchase {
		surveys := sheet{name: SheetSurveys, header: []string{"Ngày", "Vùng trồng", "Người khảo sát", "Sản lượng ước (tấn)", "Đánh giá", "Tiêu chuẩn"}}
		for _, s := range data.Surveys {
			surveys.rows = append(surveys.rows, []any{s.Date, areaNames[s.AreaID], s.Surveyor, s.EstimatedOutput, s.QualityAssessment, s.StandardCriteria})
		}

		contracts := sheet{name: SheetContracts, header: []string{"Ngày", "Vùng trồng", "Số hợp đồng", "Trạng thái"}}
		if perms.ViewFinancials {
			contracts.header = append(contracts.header, "Giá thỏa thuận", "Tiền cọc")
		}
		for _, c := range data.Contracts {
			row := []any{c.Date, areaNames[c.AreaID], c.ContractCode, c.Status}
			if perms.ViewFinancials {
				row = append(row, c.AgreedPrice.InexactFloat64(), c.DepositAmount.InexactFloat64())
			}
			contracts.rows = append(contracts.rows, row)
		}

		purchases := sheet{name: SheetPurchases, header: []string{"Ngày", "Vùng trồng", "Số lượng (kg)", "Chất lượng"}}
		if perms.ViewFinancials {
			purchases.header = append(purchases.header, "Đơn giá", "Thành tiền")
		}
		for _, p := range data.Purchases {
			row := []any{p.Date, areaNames[p.AreaID], p.QuantityKg, p.Quality}
			if perms.ViewFinancials {
				row = append(row, p.PricePerKg.InexactFloat64(), p.TotalAmount.InexactFloat64())
			}
			purchases.rows = append(purchases.rows, row)
		}
		sheets = append(sheets, surveys, contracts, purchases)
	}
	if perms.ViewFarming {
		s := sheet{name: SheetFarming, header: []string{"Ngày", "Vùng trồng", "Công việc", "Mô tả", "Kỹ thuật viên", "Giai đoạn"}}
		if perms.ViewFinancials {
			s.header = append(s.header, "Chi phí")
		}
		for _, f := range data.FarmingLogs {
			row := []any{f.Date, areaNames[f.AreaID], f.ActivityType, f.Description, f.Technician, f.Stage}
			if perms.ViewFinancials {
				var cost any
				if f.Cost != nil {
					cost = f.Cost.InexactFloat64()
				}
				row = append(row, cost)
			}
			s.rows = append(s.rows, row)
		}
		sheets = append(sheets, s)
	}
	if perms.ViewStaff {
		s := sheet{name: SheetStaff, header: []string{"Mã NV", "Họ tên", "Chức vụ", "Số điện thoại", "Email", "Trạng thái", "Ngày vào làm"}}
		for _, e := range data.Employees {
			s.rows = append(s.rows, []any{e.Code, e.Name, e.Role, e.Phone, e.Email, e.Status, e.JoinDate})
		}
		sheets = append(sheets, s)
	}
	return sheets
}
