// Package legacy importa las planillas de zonas que la empresa llevaba en Excel antes del
// sistema: CSV exportados por Excel en Windows (cp1258) o libros .xlsx.
package legacy

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
)

// Charsets aceptados para CSV.
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1258 = "windows-1258"
)

// ReadRows lee la primera hoja de un .xlsx o un CSV y devuelve sus filas en UTF-8 NFC.
// Los CSV en windows-1258 traen los diacríticos como caracteres combinantes; se recomponen.
func ReadRows(name string, data []byte, charset string) ([][]string, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(data)
	default:
		rows, err = readCSV(data, charset)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: la planilla está vacía", domain.ErrInvalidInput)
	}
	for _, row := range rows {
		for i, cell := range row {
			row[i] = norm.NFC.String(strings.TrimSpace(cell))
		}
	}
	return rows, nil
}

func readWorkbook(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx ilegible: %w", domain.ErrInvalidInput, err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: el libro no tiene hojas", domain.ErrInvalidInput)
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(data []byte, charset string) ([][]string, error) {
	var src io.Reader
	switch strings.ToLower(charset) {
	case "", CharsetUTF8, "utf8":
		// Excel agrega BOM a los CSV UTF-8.
		src = transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	case CharsetWindows1258, "cp1258":
		src = transform.NewReader(bytes.NewReader(data), charmap.Windows1258.NewDecoder())
	default:
		return nil, fmt.Errorf("%w: charset %q no soportado", domain.ErrInvalidInput, charset)
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if bytes.Count(data[:min(len(data), 512)], []byte{';'}) > bytes.Count(data[:min(len(data), 512)], []byte{','}) {
		r.Comma = ';' // Excel con configuración regional vi-VN
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %w", domain.ErrInvalidInput, err)
	}
	return rows, nil
}
