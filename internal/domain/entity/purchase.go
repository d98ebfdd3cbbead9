package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Estados de PurchaseContract.
const (
	ContractNegotiating = "Đang thương lượng"
	ContractClosed      = "Đã chốt"
	ContractCancelled   = "Đã hủy"
)

// SurveyRecord etapa 1 de la compra: inspección y evaluación del huerto.
type SurveyRecord struct {
	ID                string  `json:"id"`
	Date              string  `json:"date"`
	AreaID            string  `json:"areaId"`
	Surveyor          string  `json:"surveyor"`
	EstimatedOutput   float64 `json:"estimatedOutput"` // tấn
	QualityAssessment string  `json:"qualityAssessment"`
	StandardCriteria  string  `json:"standardCriteria"` // VietGAP, GlobalGAP...
	Notes             string  `json:"notes,omitempty"`
}

func (s SurveyRecord) RecordID() string { return s.ID }

// PurchaseContract etapa 2: compra del huerto y contrato.
type PurchaseContract struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	AreaID        string          `json:"areaId"`
	ContractCode  string          `json:"contractCode"`
	AgreedPrice   decimal.Decimal `json:"agreedPrice"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
}

func (c PurchaseContract) RecordID() string { return c.ID }

// EditLog una entrada del historial de edición de una transacción.
type EditLog struct {
	Date       string `json:"date"` // ISO 8601
	EditorName string `json:"editorName"`
	Action     string `json:"action"`
}

// PurchaseTransaction etapa 3: cosecha, pesaje y liquidación.
type PurchaseTransaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	AreaID      string          `json:"areaId"`
	QuantityKg  float64         `json:"quantityKg"`
	PricePerKg  decimal.Decimal `json:"pricePerKg"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Quality     string          `json:"quality"`
	Notes       string          `json:"notes,omitempty"`
	History     []EditLog       `json:"history,omitempty"`
}

func (t PurchaseTransaction) RecordID() string { return t.ID }

// RecalculateTotal fija TotalAmount = QuantityKg × PricePerKg, redondeado a unidades (VND).
func (t *PurchaseTransaction) RecalculateTotal() {
	t.TotalAmount = decimal.NewFromFloat(t.QuantityKg).Mul(t.PricePerKg).Round(0)
}

// DescribePurchaseChanges describe en vietnamita los cambios relevantes entre dos versiones
// de una transacción ("Sửa số lượng 500 -> 600; Sửa đơn giá ...").
func DescribePurchaseChanges(before, after PurchaseTransaction) string {
	var parts []string
	if before.QuantityKg != after.QuantityKg {
		parts = append(parts, fmt.Sprintf("Sửa số lượng %s -> %s",
			decimal.NewFromFloat(before.QuantityKg).String(), decimal.NewFromFloat(after.QuantityKg).String()))
	}
	if !before.PricePerKg.Equal(after.PricePerKg) {
		parts = append(parts, fmt.Sprintf("Sửa đơn giá %s -> %s", before.PricePerKg.String(), after.PricePerKg.String()))
	}
	if before.Quality != after.Quality {
		parts = append(parts, fmt.Sprintf("Sửa chất lượng %s -> %s", before.Quality, after.Quality))
	}
	if before.Date != after.Date {
		parts = append(parts, fmt.Sprintf("Sửa ngày %s -> %s", before.Date, after.Date))
	}
	if before.AreaID != after.AreaID {
		parts = append(parts, "Đổi vùng trồng")
	}
	if len(parts) == 0 {
		return "Cập nhật thông tin"
	}
	return strings.Join(parts, "; ")
}
