package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	appanalytics "github.com/jhoicas/hoacuong-agri/internal/application/analytics"
	"github.com/jhoicas/hoacuong-agri/internal/application/purchase"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	infrapdf "github.com/jhoicas/hoacuong-agri/internal/infrastructure/pdf"
)

var receiptCmd = &cobra.Command{
	Use:   "receipt <id-compra>",
	Short: "Generar el phiếu thu mua (PDF) de una compra",
	Args:  cobra.ExactArgs(1),
	RunE:  runReceipt,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Estadísticas del tablero",
	Long: `Muestra las estadísticas calculadas sobre la caché. Con REMOTE_DRIVER=postgres
compara además los totales de compras con los que calcula la base de datos.`,
	RunE: runStats,
}

func runReceipt(cmd *cobra.Command, args []string) error {
	if err := requirePermission(entity.PermViewPurchase); err != nil {
		return err
	}
	uc := purchase.NewReceiptUseCase(rt.Ctrl.Purchases, rt.Ctrl.Areas, rt.Ctrl, infrapdf.NewMarotoReceiptGenerator())
	pdfBytes, filename, err := uc.DownloadReceiptPDF(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	path := outputPath
	if path == "" {
		path = filepath.Clean(filename)
	}
	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("escribir PDF: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Phiếu guardado en %s\n", path)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requirePermission(entity.PermViewDashboard); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	money := infrapdf.NewMarotoReceiptGenerator()
	uc := appanalytics.NewDashboardUseCase(rt.Ctrl)

	stats := uc.GetStats(cmd.Context())
	fmt.Fprintf(out, "Zonas:        %d\n", stats.TotalAreas)
	fmt.Fprintf(out, "Hectáreas:    %.2f\n", stats.TotalHectares)
	fmt.Fprintf(out, "Volumen:      %s kg\n", money.FormatKg(stats.TotalVolumeKg))
	if stats.TotalRevenue != nil {
		fmt.Fprintf(out, "Ingresos:     %s\n", money.FormatVND(*stats.TotalRevenue))
	}

	if rt.RemoteTotals == nil || !rt.Ctrl.Permissions().ViewFinancials {
		return nil
	}
	rec, err := uc.Reconcile(cmd.Context(), rt.RemoteTotals)
	if err != nil {
		return err
	}
	if rec.InSync {
		fmt.Fprintln(out, "Conciliación: la caché coincide con la base de datos")
		return nil
	}
	fmt.Fprintf(out, "Conciliación: DIFERENCIA caché %s / base %s; recargue los datos\n",
		money.FormatVND(rec.CachedRevenue), money.FormatVND(rec.RemoteRevenue))
	return nil
}
