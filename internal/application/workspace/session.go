package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// IdentityStorageKey clave del almacenamiento local donde se guarda la identidad en sesión.
const IdentityStorageKey = "hoacuong_user"

// Start restaura la sesión guardada (si existe) y carga los datos.
// Una identidad guardada ilegible se descarta: no es un error para el llamador.
func (c *Controller) Start(ctx context.Context) error {
	raw, ok, err := c.storage.Get(ctx, IdentityStorageKey)
	if err != nil {
		return fmt.Errorf("leer sesión guardada: %w", err)
	}
	if !ok {
		c.log.Debug().Msg("sin sesión guardada")
		return nil
	}

	identity, err := decodeIdentity(raw)
	if err != nil {
		c.log.Warn().Err(err).Msg("sesión guardada descartada")
		if rmErr := c.storage.Remove(ctx, IdentityStorageKey); rmErr != nil {
			c.log.Warn().Err(rmErr).Msg("no se pudo borrar la sesión guardada")
		}
		return nil
	}

	c.mu.Lock()
	c.identity = &identity
	c.mu.Unlock()
	c.log.Info().Str("code", identity.Code).Msg("sesión restaurada")

	// Un fallo de carga queda en ConnectionError (banner); la sesión sigue abierta.
	_ = c.LoadAll(ctx)
	return nil
}

func decodeIdentity(raw string) (entity.Employee, error) {
	var emp entity.Employee
	if err := json.Unmarshal([]byte(raw), &emp); err != nil {
		return entity.Employee{}, fmt.Errorf("%w: %w", domain.ErrCorruptedState, err)
	}
	if emp.ID == "" && emp.Code == "" {
		return entity.Employee{}, fmt.Errorf("%w: identidad sin id ni código", domain.ErrCorruptedState)
	}
	return emp.WithoutPassword(), nil
}

// Login autentica contra el backend y abre la sesión. Los empleados que ya no trabajan
// (Đã nghỉ việc) son rechazados con domain.ErrForbidden.
func (c *Controller) Login(ctx context.Context, code, password string) (*entity.Employee, error) {
	if code == "" || password == "" {
		return nil, fmt.Errorf("%w: código y contraseña son requeridos", domain.ErrInvalidInput)
	}

	emp, err := c.authenticate(ctx, code, password)
	if err != nil {
		return nil, err
	}
	if !emp.Active() {
		c.log.Warn().Str("code", emp.Code).Msg("login rechazado: empleado inactivo")
		return nil, fmt.Errorf("%w: empleado %s no está activo", domain.ErrForbidden, emp.Code)
	}

	identity := emp.WithoutPassword()
	c.mu.Lock()
	c.identity = &identity
	sidebar := c.nav.SidebarOpen
	c.nav = defaultNavigation()
	c.nav.SidebarOpen = sidebar
	c.mu.Unlock()

	c.persistIdentity(ctx, identity)
	c.log.Info().Str("code", identity.Code).Str("role", identity.Role).Msg("sesión iniciada")

	// Si la carga falla la sesión no se deshace: el banner muestra el error.
	_ = c.LoadAll(ctx)
	return &identity, nil
}

func (c *Controller) authenticate(ctx context.Context, code, password string) (*entity.Employee, error) {
	defer c.begin()()
	emp, err := c.gateway.Authenticate(ctx, code, password)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			c.log.Error().Err(err).Str("code", code).Msg("autenticación fallida")
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if emp == nil {
		return nil, fmt.Errorf("login: %w", domain.ErrUnauthorized)
	}
	return emp, nil
}

// Logout cierra la sesión: borra la identidad guardada, vacía todas las colecciones y
// cierra sidebar y perfil. La configuración del sistema se conserva.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.identity = nil
	c.clearCachesLocked()
	c.nav.SidebarOpen = false
	c.nav.ProfileOpen = false
	c.mu.Unlock()

	if err := c.storage.Remove(ctx, IdentityStorageKey); err != nil {
		c.log.Warn().Err(err).Msg("no se pudo borrar la sesión guardada")
		return fmt.Errorf("logout: %w", err)
	}
	c.log.Info().Msg("sesión cerrada")
	return nil
}

// UpdateProfile guarda los datos del empleado (contraseña incluida). Si es la identidad
// en sesión, la identidad guardada se actualiza también.
func (c *Controller) UpdateProfile(ctx context.Context, emp entity.Employee) (entity.Employee, error) {
	updated, err := c.Employees.Update(ctx, emp)
	if err != nil {
		return entity.Employee{}, err
	}
	updated = updated.WithoutPassword()

	c.mu.Lock()
	current := c.identity != nil && c.identity.ID == updated.ID
	if current {
		identity := updated
		c.identity = &identity
	}
	c.mu.Unlock()

	if current {
		c.persistIdentity(ctx, updated)
	}
	return updated, nil
}

func (c *Controller) persistIdentity(ctx context.Context, identity entity.Employee) {
	raw, err := json.Marshal(identity.WithoutPassword())
	if err != nil {
		c.log.Error().Err(err).Msg("serializar identidad")
		return
	}
	if err := c.storage.Set(ctx, IdentityStorageKey, string(raw)); err != nil {
		c.log.Warn().Err(err).Msg("no se pudo guardar la sesión")
	}
}
