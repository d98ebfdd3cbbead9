package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/legacy"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/xlsx"
)

var (
	outputPath    string
	importCharset string
	importDryRun  bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Descargar una copia de seguridad completa (JSON)",
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <archivo.json>",
	Short: "Reemplazar todos los datos del backend por una copia",
	Long: `Envía la copia al backend, que reemplaza todas las colecciones y la configuración.
Si el backend la rechaza no se aplica nada.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

var exportCmd = &cobra.Command{
	Use:   "export-xlsx",
	Short: "Exportar a Excel las colecciones visibles para la sesión",
	RunE:  runExport,
}

var importAreasCmd = &cobra.Command{
	Use:   "import-areas <archivo.csv|archivo.xlsx>",
	Short: "Importar zonas de cultivo desde una planilla antigua",
	Long: `Lee la primera hoja de un .xlsx o un CSV exportado por Excel (coma o punto y coma).
Los CSV antiguos en windows-1258 se decodifican con --charset windows-1258.
Las filas inválidas se informan y se omiten.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportAreas,
}

func runBackup(cmd *cobra.Command, _ []string) error {
	if err := requirePermission(entity.PermViewSettings); err != nil {
		return err
	}
	backup, err := rt.Ctrl.Backup(cmd.Context())
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar copia: %w", err)
	}
	path := outputPath
	if path == "" {
		path = fmt.Sprintf("hoacuong_backup_%s.json", time.Now().Format("2006-01-02"))
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("escribir copia: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Copia guardada en %s (%d zonas, %d compras, %d empleados)\n",
		path, len(backup.Areas), len(backup.Purchases), len(backup.Employees))
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	if err := requirePermission(entity.PermViewSettings); err != nil {
		return err
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("leer copia: %w", err)
	}
	var backup entity.BackupData
	if err := json.Unmarshal(raw, &backup); err != nil {
		return fmt.Errorf("copia ilegible: %w", err)
	}
	if err := rt.Ctrl.Restore(cmd.Context(), backup); err != nil {
		return err
	}
	for _, n := range rt.Inbox.Drain() {
		fmt.Fprintln(cmd.OutOrStdout(), n.Message)
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	if err := requireSession(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := xlsx.Export(&buf, rt.Ctrl.Dataset(), rt.Ctrl.Permissions()); err != nil {
		return err
	}
	path := outputPath
	if path == "" {
		path = fmt.Sprintf("hoacuong_%s.xlsx", time.Now().Format("2006-01-02"))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("escribir libro: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Libro guardado en %s\n", path)
	return nil
}

func runImportAreas(cmd *cobra.Command, args []string) error {
	if err := requirePermission(entity.PermCreateArea); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("leer planilla: %w", err)
	}
	rows, err := legacy.ReadRows(filepath.Base(args[0]), data, importCharset)
	if err != nil {
		return err
	}
	areas, rowErrs, err := legacy.ParseAreas(rows)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, re := range rowErrs {
		fmt.Fprintf(out, "Omitida: %s\n", re.Error())
	}
	if importDryRun {
		fmt.Fprintf(out, "%d zonas válidas, %d filas omitidas (sin cambios)\n", len(areas), len(rowErrs))
		return nil
	}

	created := 0
	for _, area := range areas {
		if _, err := rt.Ctrl.Areas.Add(cmd.Context(), area); err != nil {
			return fmt.Errorf("zona %q: %w (creadas %d de %d)", area.Name, err, created, len(areas))
		}
		created++
	}
	fmt.Fprintf(out, "%d zonas creadas, %d filas omitidas\n", created, len(rowErrs))
	return nil
}
