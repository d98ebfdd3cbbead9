package legacy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// Encabezados reconocidos (en minúsculas) por campo de PlantingArea.
var areaHeaders = map[string][]string{
	"code":     {"mã vùng", "mã", "code"},
	"name":     {"tên vùng", "tên", "name"},
	"crop":     {"loại cây", "cây trồng", "crop"},
	"hectares": {"diện tích (ha)", "diện tích", "hectares"},
	"location": {"địa điểm", "địa chỉ", "location"},
	"owner":    {"chủ vườn", "đại diện", "owner"},
	"phone":    {"số điện thoại", "sđt", "phone"},
	"status":   {"trạng thái", "status"},
	"yield":    {"sản lượng dự kiến (tấn)", "sản lượng", "yield"},
	"priority": {"ưu tiên", "priority"},
}

// RowError fila de la planilla que no se pudo convertir (Row cuenta desde 1, con encabezado).
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string { return fmt.Sprintf("fila %d: %s", e.Row, e.Reason) }

// ParseAreas convierte las filas en zonas nuevas (sin ID: lo asigna el backend al agregar).
// Las filas vacías se saltan; las inválidas se informan sin detener el resto.
func ParseAreas(rows [][]string) ([]entity.PlantingArea, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sin encabezado", domain.ErrInvalidInput)
	}
	idx := headerIndex(rows[0])
	if _, ok := idx["name"]; !ok {
		return nil, nil, fmt.Errorf("%w: falta la columna \"Tên vùng\"", domain.ErrInvalidInput)
	}

	var areas []entity.PlantingArea
	var rowErrs []RowError
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		area, err := parseArea(row, idx)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 2, Reason: err.Error()})
			continue
		}
		areas = append(areas, area)
	}
	return areas, rowErrs, nil
}

func parseArea(row []string, idx map[string]int) (entity.PlantingArea, error) {
	get := func(field string) string {
		i, ok := idx[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	a := entity.PlantingArea{
		Code:        get("code"),
		Name:        get("name"),
		CropType:    get("crop"),
		Location:    get("location"),
		Owner:       get("owner"),
		Phone:       get("phone"),
		Status:      get("status"),
		Priority:    get("priority"),
		Farmers:     []entity.Farmer{},
		Documents:   []entity.AreaDocument{},
		LegalStatus: entity.LegalPending,
	}
	if a.Name == "" {
		return a, fmt.Errorf("tên vùng vacío")
	}
	if a.Status == "" {
		a.Status = entity.AreaStatusPending
	}
	if a.Priority == "" {
		a.Priority = entity.PriorityUnrated
	}

	var err error
	if a.Hectares, err = parseNumber(get("hectares")); err != nil {
		return a, fmt.Errorf("diện tích: %w", err)
	}
	if a.EstimatedYield, err = parseNumber(get("yield")); err != nil {
		return a, fmt.Errorf("sản lượng: %w", err)
	}
	return a, nil
}

// parseNumber acepta "2,5" (coma decimal vi-VN) y "2.5"; vacío = 0.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("número inválido %q", s)
	}
	return v, nil
}

func headerIndex(header []string) map[string]int {
	idx := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, names := range areaHeaders {
			if _, seen := idx[field]; seen {
				continue
			}
			for _, n := range names {
				if h == n {
					idx[field] = i
				}
			}
		}
	}
	return idx
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
