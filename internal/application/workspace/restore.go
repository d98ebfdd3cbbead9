package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// Restore reemplaza todo el estado remoto por la copia y luego recarga.
// Si el backend la rechaza no se aplica nada localmente.
func (c *Controller) Restore(ctx context.Context, backup entity.BackupData) error {
	defer c.begin()()

	if err := c.gateway.RestoreData(ctx, backup); err != nil {
		c.log.Error().Err(err).Str("version", backup.Version).Msg("restauración rechazada")
		c.notifier.Notify(repository.NotifyError, MsgRestoreFailed)
		return fmt.Errorf("%w: %w", domain.ErrRestoreFailed, err)
	}

	if err := c.LoadAll(ctx); err != nil {
		c.log.Warn().Err(err).Msg("recarga tras restauración fallida")
	}
	c.notifier.Notify(repository.NotifyInfo, MsgRestoreOK)
	c.log.Info().Str("version", backup.Version).Str("timestamp", backup.Timestamp).Msg("datos restaurados")
	return nil
}

// Backup arma una copia completa a partir de un fetch fresco del backend.
func (c *Controller) Backup(ctx context.Context) (entity.BackupData, error) {
	defer c.begin()()

	data, err := c.gateway.FetchAllData(ctx)
	if err != nil {
		return entity.BackupData{}, fmt.Errorf("backup: %w", err)
	}
	if data == nil {
		return entity.BackupData{}, fmt.Errorf("backup: %w", domain.ErrRemoteUnavailable)
	}
	return entity.BackupData{
		Version:   entity.BackupVersion,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Dataset:   *data,
	}, nil
}
