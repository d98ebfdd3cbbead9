// hoacuongctl es la herramienta de operación: copias de seguridad, restauración,
// exportación a Excel, importación de zonas desde planillas antiguas y sesión del dispositivo.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/hoacuong-agri/internal/bootstrap"
	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/pkg/config"
	"github.com/jhoicas/hoacuong-agri/pkg/logger"
)

var (
	// Flags globales
	verbose bool
	timeout time.Duration

	// rt runtime compartido por los subcomandos (se arma en PersistentPreRunE).
	rt *bootstrap.Runtime

	// buildRuntime se reemplaza en los tests.
	buildRuntime = func(ctx context.Context) (*bootstrap.Runtime, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		level := cfg.App.LogLevel
		if verbose {
			level = "debug"
		}
		log := logger.New(logger.Config{Env: cfg.App.Env, Level: level})
		return bootstrap.Build(ctx, cfg, log.Zerolog())
	}
)

var rootCmd = &cobra.Command{
	Use:   "hoacuongctl",
	Short: "Operación de Hoa Cương: copias, restauración, exportación e importación",
	Long: `hoacuongctl opera sobre el mismo backend y la misma sesión de dispositivo que el
servidor HTTP (REMOTE_DRIVER, STORAGE_DRIVER, ...).

Primero abra la sesión con 'hoacuongctl login --code ... --password ...'; los demás
comandos la restauran desde el almacenamiento local.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		var err error
		rt, err = buildRuntime(ctx)
		if err != nil {
			return fmt.Errorf("inicializar: %w", err)
		}
		if err := rt.Ctrl.Start(ctx); err != nil {
			return fmt.Errorf("restaurar sesión: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if rt != nil {
			rt.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log detallado")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Tiempo máximo de cada operación")

	loginCmd.Flags().StringVar(&loginCode, "code", "", "Código de empleado")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Contraseña")
	_ = loginCmd.MarkFlagRequired("code")
	_ = loginCmd.MarkFlagRequired("password")

	backupCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archivo destino (por defecto hoacuong_backup_<fecha>.json)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archivo destino (por defecto hoacuong_<fecha>.xlsx)")
	receiptCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archivo destino (por defecto phieu_thu_mua_<número>.pdf)")
	importAreasCmd.Flags().StringVar(&importCharset, "charset", "utf-8", "Codificación del CSV: utf-8 o windows-1258")
	importAreasCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Solo validar, sin crear zonas")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importAreasCmd)
	rootCmd.AddCommand(receiptCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// requirePermission falla si no hay sesión o si la sesión no tiene el flag.
func requirePermission(flag string) error {
	if rt.Ctrl.Identity() == nil {
		return fmt.Errorf("%w: ejecute 'hoacuongctl login' primero", domain.ErrNotSignedIn)
	}
	if !rt.Ctrl.Permissions().Allows(flag) {
		return fmt.Errorf("%w: permiso requerido %s", domain.ErrForbidden, flag)
	}
	return nil
}

// requireSession falla si no hay sesión abierta.
func requireSession() error {
	if rt.Ctrl.Identity() == nil {
		return fmt.Errorf("%w: ejecute 'hoacuongctl login' primero", domain.ErrNotSignedIn)
	}
	return nil
}
