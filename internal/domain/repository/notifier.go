package repository

// Niveles de notificación visibles para el usuario.
const (
	NotifyInfo  = "info"
	NotifyError = "error"
)

// Notifier muestra avisos al usuario (alert del UI, salida del CLI...).
type Notifier interface {
	Notify(level, message string)
}
