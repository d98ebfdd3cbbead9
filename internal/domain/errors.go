package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrNotSignedIn       = errors.New("no hay sesión iniciada")
	ErrBusy              = errors.New("hay una operación en curso")
	ErrRemoteUnavailable = errors.New("backend remoto no disponible")
	ErrCorruptedState    = errors.New("estado local corrupto")
	ErrMutationFailed    = errors.New("operación fallida")
	ErrRestoreFailed     = errors.New("restauración fallida")
)
