// Package workspace contiene el controlador de la aplicación: sesión, permisos efectivos,
// cachés locales de cada entidad y su sincronización con el backend remoto.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/permission"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// Mensajes mostrados al usuario (la interfaz está en vietnamita).
const (
	MsgMutationFailed    = "Thao tác thất bại. Vui lòng kiểm tra kết nối Google Sheet."
	MsgConnectionDefault = "Không thể kết nối với Google Sheet. Vui lòng kiểm tra Deployment."
	MsgRestoreOK         = "Khôi phục thành công!"
	MsgRestoreFailed     = "Lỗi khôi phục"
)

const (
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
)

// Nombres de las colecciones.
const (
	KindAreas           = "areas"
	KindPurchases       = "purchases"
	KindSurveys         = "surveys"
	KindContracts       = "contracts"
	KindFarmingLogs     = "farmingLogs"
	KindEmployees       = "employees"
	KindLinkageStatuses = "linkageStatuses"
	KindFolders         = "folders"
	KindFiles           = "files"
	KindSettings        = "systemSettings"
)

// Controller es el único dueño del estado de la aplicación. Las vistas leen a través de
// sus métodos y solo el controlador modifica las cachés.
type Controller struct {
	gateway  repository.Gateway
	storage  repository.ClientStorage
	notifier repository.Notifier
	resolver *permission.Resolver
	log      zerolog.Logger
	now      func() time.Time

	busy atomic.Int32

	mu       sync.RWMutex
	identity *entity.Employee
	settings *entity.SystemSettings
	nav      Navigation
	connErr  string

	Areas           *Collection[entity.PlantingArea]
	Purchases       *Collection[entity.PurchaseTransaction]
	Surveys         *Collection[entity.SurveyRecord]
	Contracts       *Collection[entity.PurchaseContract]
	FarmingLogs     *Collection[entity.FarmingActivity]
	Employees       *Collection[entity.Employee]
	LinkageStatuses *Collection[entity.LinkageStatusOption]
	Folders         *Collection[entity.Folder]
	Files           *Collection[entity.SystemFile]
}

// Option personaliza el Controller.
type Option func(*Controller)

// WithResolver usa una regla de administrador distinta de la predeterminada.
func WithResolver(r *permission.Resolver) Option {
	return func(c *Controller) { c.resolver = r }
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New construye el controlador con el backend remoto, el almacenamiento local y el notificador.
func New(gateway repository.Gateway, storage repository.ClientStorage, notifier repository.Notifier, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		gateway:  gateway,
		storage:  storage,
		notifier: notifier,
		resolver: permission.NewResolver(permission.DefaultAdminRule),
		log:      log.With().Str("component", "workspace").Logger(),
		now:      time.Now,
		nav:      defaultNavigation(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Areas = newCollection(c, KindAreas, gateway.Areas())
	c.Purchases = newCollection(c, KindPurchases, gateway.Purchases())
	c.Surveys = newCollection(c, KindSurveys, gateway.Surveys())
	c.Contracts = newCollection(c, KindContracts, gateway.Contracts())
	c.FarmingLogs = newCollection(c, KindFarmingLogs, gateway.FarmingLogs())
	c.Employees = newCollection(c, KindEmployees, gateway.Employees())
	c.LinkageStatuses = newCollection(c, KindLinkageStatuses, gateway.LinkageStatuses())
	c.Folders = newCollection(c, KindFolders, gateway.Folders())
	c.Files = newCollection(c, KindFiles, gateway.Files())

	c.Purchases.prepare = c.preparePurchase
	c.Folders.onDeleteLocked = c.cascadeFolderLocked
	c.clearCachesLocked()
	return c
}

// Busy informa si hay alguna operación remota en curso (indicador bloqueante del UI).
func (c *Controller) Busy() bool {
	return c.busy.Load() > 0
}

func (c *Controller) begin() func() {
	c.busy.Add(1)
	return func() { c.busy.Add(-1) }
}

// Identity devuelve una copia de la identidad en sesión o nil.
func (c *Controller) Identity() *entity.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// Settings devuelve una copia de la configuración o nil si aún no se ha cargado.
func (c *Controller) Settings() *entity.SystemSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Clone()
}

// Permissions resuelve los permisos efectivos de la identidad actual. No se cachea:
// cada llamada refleja la identidad y la tabla de cargos vigentes.
func (c *Controller) Permissions() entity.AppPermissions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolver.Resolve(c.identity, c.settings)
}

// Dataset devuelve una copia de todas las cachés.
func (c *Controller) Dataset() entity.Dataset {
	return entity.Dataset{
		Areas:           c.Areas.Items(),
		Purchases:       c.Purchases.Items(),
		Surveys:         c.Surveys.Items(),
		Contracts:       c.Contracts.Items(),
		FarmingLogs:     c.FarmingLogs.Items(),
		Employees:       c.Employees.Items(),
		LinkageStatuses: c.LinkageStatuses.Items(),
		Folders:         c.Folders.Items(),
		Files:           c.Files.Items(),
		SystemSettings:  c.Settings(),
	}
}

// LoadAll trae todo el dataset en un único round trip y reemplaza cada caché completa.
// Si falla, las cachés quedan intactas y se publica el error de conexión (banner).
func (c *Controller) LoadAll(ctx context.Context) error {
	defer c.begin()()

	c.mu.Lock()
	c.connErr = ""
	c.mu.Unlock()

	data, err := c.gateway.FetchAllData(ctx)
	if err == nil && data == nil {
		err = fmt.Errorf("%w: respuesta vacía", domain.ErrRemoteUnavailable)
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgConnectionDefault
		}
		c.mu.Lock()
		c.connErr = msg
		c.mu.Unlock()
		c.log.Error().Err(err).Msg("carga de datos fallida")
		return fmt.Errorf("carga completa: %w", err)
	}

	c.mu.Lock()
	c.Areas.setLocked(data.Areas)
	c.Purchases.setLocked(data.Purchases)
	c.Surveys.setLocked(data.Surveys)
	c.Contracts.setLocked(data.Contracts)
	c.FarmingLogs.setLocked(data.FarmingLogs)
	c.Employees.setLocked(data.Employees)
	c.LinkageStatuses.setLocked(data.LinkageStatuses)
	c.Folders.setLocked(data.Folders)
	c.Files.setLocked(data.Files)
	c.settings = data.SystemSettings
	c.mu.Unlock()

	c.log.Debug().
		Int("areas", len(data.Areas)).
		Int("purchases", len(data.Purchases)).
		Int("employees", len(data.Employees)).
		Msg("datos cargados")
	return nil
}

// ConnectionError mensaje del último fallo de carga ("" si la última carga fue bien).
func (c *Controller) ConnectionError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connErr
}

// perform ejecuta una mutación remota con el patrón común:
// busy → llamada remota (que aplica su cambio local solo si el backend confirma) →
// ante error: aviso genérico, log y recarga completa obligatoria → busy off.
func (c *Controller) perform(ctx context.Context, kind, op string, action func(ctx context.Context) error) error {
	defer c.begin()()

	err := action(ctx)
	if err == nil {
		return nil
	}

	c.log.Error().Err(err).Str("entity", kind).Str("op", op).Msg("operación remota fallida")
	c.notifier.Notify(repository.NotifyError, MsgMutationFailed)

	// La recarga no depende de la cancelación del llamador: el estado local debe
	// volver a coincidir con el backend.
	if reloadErr := c.LoadAll(context.WithoutCancel(ctx)); reloadErr != nil {
		c.log.Warn().Err(reloadErr).Str("entity", kind).Msg("recarga de recuperación fallida")
	}
	return fmt.Errorf("%s %s: %w: %w", kind, op, domain.ErrMutationFailed, err)
}

// UpdateSystemSettings guarda la configuración (tabla de cargos incluida) y la reemplaza localmente.
func (c *Controller) UpdateSystemSettings(ctx context.Context, settings entity.SystemSettings) (*entity.SystemSettings, error) {
	var saved *entity.SystemSettings
	err := c.perform(ctx, KindSettings, opUpdate, func(ctx context.Context) error {
		out, err := c.gateway.UpdateSystemSettings(ctx, settings)
		if err != nil {
			return err
		}
		if out == nil {
			return errors.New("el backend no devolvió la configuración")
		}
		c.mu.Lock()
		c.settings = out
		c.mu.Unlock()
		saved = out.Clone()
		return nil
	})
	return saved, err
}

func (c *Controller) clearCachesLocked() {
	c.Areas.setLocked(nil)
	c.Purchases.setLocked(nil)
	c.Surveys.setLocked(nil)
	c.Contracts.setLocked(nil)
	c.FarmingLogs.setLocked(nil)
	c.Employees.setLocked(nil)
	c.LinkageStatuses.setLocked(nil)
	c.Folders.setLocked(nil)
	c.Files.setLocked(nil)
}
