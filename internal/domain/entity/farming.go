package entity

import "github.com/shopspring/decimal"

// Etapas de una actividad agrícola.
const (
	StageBeforeHarvest = "before_harvest"
	StageAfterHarvest  = "after_harvest"
)

// FarmingActivity registro de una labor agrícola (abonado, riego, fumigación...).
type FarmingActivity struct {
	ID                   string           `json:"id"`
	Date                 string           `json:"date"`
	AreaID               string           `json:"areaId"`
	ActivityType         string           `json:"activityType"`
	Description          string           `json:"description"`
	Technician           string           `json:"technician"`
	Cost                 *decimal.Decimal `json:"cost,omitempty"`
	CurrentYield         *float64         `json:"currentYield,omitempty"`
	ActualArea           *float64         `json:"actualArea,omitempty"`
	EstimatedHarvestDate string           `json:"estimatedHarvestDate,omitempty"`
	Stage                string           `json:"stage,omitempty"`
}

func (f FarmingActivity) RecordID() string { return f.ID }
