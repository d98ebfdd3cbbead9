package dto

import "github.com/shopspring/decimal"

// DashboardStatsDTO respuesta de GET /api/dashboard.
// TotalRevenue solo se incluye si la identidad tiene viewFinancials.
type DashboardStatsDTO struct {
	TotalAreas    int              `json:"totalAreas"`
	TotalHectares float64          `json:"totalHectares"`
	TotalRevenue  *decimal.Decimal `json:"totalRevenue,omitempty"`
	TotalVolumeKg float64          `json:"totalVolumeKg"`
}

// ReconciliationDTO compara los totales de la caché con los calculados por el backend.
type ReconciliationDTO struct {
	CachedRevenue  decimal.Decimal `json:"cachedRevenue"`
	RemoteRevenue  decimal.Decimal `json:"remoteRevenue"`
	CachedVolumeKg decimal.Decimal `json:"cachedVolumeKg"`
	RemoteVolumeKg decimal.Decimal `json:"remoteVolumeKg"`
	InSync         bool            `json:"inSync"`
}
