// Package bootstrap arma el controlador de la aplicación a partir de la configuración:
// backend remoto, almacenamiento local del dispositivo y avisos. Lo comparten el
// servidor HTTP y el CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/hoacuong-agri/internal/application/analytics"
	"github.com/jhoicas/hoacuong-agri/internal/application/workspace"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/permission"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/clientstore"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/inbox"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/memory"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/postgres"
	"github.com/jhoicas/hoacuong-agri/internal/infrastructure/sheets"
	"github.com/jhoicas/hoacuong-agri/pkg/config"
)

// Runtime componentes ya conectados. Close libera pool y clientes.
type Runtime struct {
	Gateway repository.Gateway
	Storage repository.ClientStorage
	Inbox   *inbox.Inbox
	Ctrl    *workspace.Controller

	// Capacidades opcionales del backend (nil si no las ofrece).
	FileContent  repository.FileContentReader
	RemoteTotals appanalytics.RemoteTotals

	closers []func()
}

// Build conecta el backend y el almacenamiento según cfg y construye el controlador.
// No restaura la sesión: el llamador decide cuándo invocar Ctrl.Start.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	rt := &Runtime{Inbox: inbox.New(log)}

	gw, err := rt.openGateway(ctx, cfg, log)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Gateway = gw
	if r, ok := gw.(repository.FileContentReader); ok {
		rt.FileContent = r
	}
	if t, ok := gw.(appanalytics.RemoteTotals); ok {
		rt.RemoteTotals = t
	}

	storage, err := rt.openStorage(ctx, cfg.Storage)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Storage = storage

	resolver := permission.NewResolver(permission.AdminRule{Code: cfg.Admin.Code, RoleName: cfg.Admin.Role})
	rt.Ctrl = workspace.New(gw, storage, rt.Inbox, log, workspace.WithResolver(resolver))

	log.Info().
		Str("remote", cfg.Remote.Driver).
		Str("storage", cfg.Storage.Driver).
		Msg("runtime listo")
	return rt, nil
}

func (rt *Runtime) openGateway(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Gateway, error) {
	switch cfg.Remote.Driver {
	case config.RemoteSheets:
		return sheets.New(cfg.Remote.SheetsURL, cfg.Remote.SheetsToken, cfg.Remote.Timeout(), log), nil

	case config.RemotePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		gw := postgres.NewGateway(pool, log)
		if err := gw.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("esquema PostgreSQL: %w", err)
		}
		return gw, nil

	case config.RemoteMemory:
		gw := memory.New()
		admin := entity.Employee{Code: cfg.Admin.Code, Name: "Quản trị viên", Role: cfg.Admin.Role}
		if _, err := gw.SeedEmployee(admin, cfg.Admin.SeedPassword); err != nil {
			return nil, fmt.Errorf("crear administrador: %w", err)
		}
		log.Warn().Str("code", admin.Code).Msg("backend en memoria: los datos se pierden al salir")
		return gw, nil
	}
	return nil, fmt.Errorf("REMOTE_DRIVER desconocido %q", cfg.Remote.Driver)
}

func (rt *Runtime) openStorage(ctx context.Context, cfg config.StorageConfig) (repository.ClientStorage, error) {
	switch cfg.Driver {
	case config.StorageFile:
		s, err := clientstore.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("almacenamiento local: %w", err)
		}
		return s, nil

	case config.StorageRedis:
		s, err := clientstore.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("almacenamiento Redis: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = s.Close() })
		return s, nil

	case config.StorageMemory:
		return clientstore.NewMemoryStore(), nil
	}
	return nil, errors.New("STORAGE_DRIVER desconocido " + cfg.Driver)
}

// Close libera los recursos en orden inverso de apertura.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
