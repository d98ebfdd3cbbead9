package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

var (
	loginCode     string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Abrir la sesión del dispositivo",
	Long: `Autentica contra el backend y guarda la identidad en el almacenamiento local.
La sesión queda abierta para el servidor HTTP y para los demás comandos.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Cerrar la sesión del dispositivo",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := rt.Ctrl.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Mostrar la identidad en sesión y sus pestañas visibles",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, _ []string) error {
	emp, err := rt.Ctrl.Login(cmd.Context(), loginCode, loginPassword)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sesión iniciada: %s (%s) - %s\n", emp.Name, emp.Code, emp.Role)
	if msg := rt.Ctrl.ConnectionError(); msg != "" {
		fmt.Fprintf(out, "Advertencia: %s\n", msg)
	}
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	emp := rt.Ctrl.Identity()
	if emp == nil {
		fmt.Fprintln(out, "Sin sesión.")
		return nil
	}
	fmt.Fprintf(out, "%s (%s)\n", emp.Name, emp.Code)
	fmt.Fprintf(out, "Cargo:     %s\n", emp.Role)
	fmt.Fprintf(out, "Pestañas:  %s\n", strings.Join(rt.Ctrl.VisibleTabs(), ", "))
	fmt.Fprintf(out, "Permisos:  %s\n", strings.Join(grantedFlags(rt.Ctrl.Permissions()), ", "))
	return nil
}

func grantedFlags(perms entity.AppPermissions) []string {
	var out []string
	for flag, ok := range perms.Flags() {
		if ok {
			out = append(out, flag)
		}
	}
	slices.Sort(out)
	return out
}
