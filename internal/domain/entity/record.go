package entity

import "github.com/shopspring/decimal"

// La hoja de cálculo guarda montos como números, no como strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Record es cualquier fila sincronizada con el backend remoto.
// El ID lo asigna el servidor al crear y no cambia nunca; es la clave de reconciliación
// para update/delete.
type Record interface {
	RecordID() string
}
