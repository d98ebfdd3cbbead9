// Package analytics contiene los casos de uso del tablero: estadísticas de zonas y compras
// y su conciliación con los totales calculados por el backend.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hoacuong-agri/internal/application/dto"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// Source caché local de la que se leen los datos (el controlador de la aplicación).
type Source interface {
	Dataset() entity.Dataset
	Permissions() entity.AppPermissions
}

// RemoteTotals totales de compras calculados por el backend (solo PostgreSQL los ofrece).
type RemoteTotals interface {
	PurchaseTotals(ctx context.Context) (revenue, volumeKg decimal.Decimal, err error)
}

// DashboardUseCase genera las estadísticas del tablero a partir de la caché.
// No hace llamadas remotas salvo en Reconcile.
type DashboardUseCase struct {
	source Source
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(source Source) *DashboardUseCase {
	return &DashboardUseCase{source: source}
}

// GetStats cuenta zonas, suma hectáreas, ingresos y kilos comprados.
// Los ingresos se omiten si la identidad no tiene viewFinancials.
func (uc *DashboardUseCase) GetStats(_ context.Context) *dto.DashboardStatsDTO {
	data := uc.source.Dataset()
	revenue, volume := purchaseSums(data.Purchases)

	stats := &dto.DashboardStatsDTO{
		TotalAreas:    len(data.Areas),
		TotalVolumeKg: volume.InexactFloat64(),
	}
	hectares := decimal.Zero
	for _, a := range data.Areas {
		hectares = hectares.Add(decimal.NewFromFloat(a.Hectares))
	}
	stats.TotalHectares = hectares.Round(2).InexactFloat64()

	if uc.source.Permissions().ViewFinancials {
		stats.TotalRevenue = &revenue
	}
	return stats
}

// Reconcile compara los totales de la caché con los del backend. Una diferencia indica
// que otro dispositivo modificó compras desde la última carga completa.
func (uc *DashboardUseCase) Reconcile(ctx context.Context, remote RemoteTotals) (*dto.ReconciliationDTO, error) {
	type totalsResult struct {
		revenue decimal.Decimal
		volume  decimal.Decimal
		err     error
	}
	remoteCh := make(chan totalsResult, 1)
	go func() {
		rev, vol, err := remote.PurchaseTotals(ctx)
		remoteCh <- totalsResult{rev, vol, err}
	}()

	revenue, volume := purchaseSums(uc.source.Dataset().Purchases)

	res := <-remoteCh
	if res.err != nil {
		return nil, fmt.Errorf("dashboard: totales remotos: %w", res.err)
	}
	return &dto.ReconciliationDTO{
		CachedRevenue:  revenue,
		RemoteRevenue:  res.revenue,
		CachedVolumeKg: volume,
		RemoteVolumeKg: res.volume,
		InSync:         revenue.Equal(res.revenue) && volume.Equal(res.volume),
	}, nil
}

func purchaseSums(purchases []entity.PurchaseTransaction) (revenue, volume decimal.Decimal) {
	for _, p := range purchases {
		revenue = revenue.Add(p.TotalAmount)
		volume = volume.Add(decimal.NewFromFloat(p.QuantityKg))
	}
	return revenue, volume
}
