package purchase

import (
	"context"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// Lookup búsqueda por ID en una colección en caché.
type Lookup[T entity.Record] interface {
	Get(id string) (T, bool)
}

// Session identidad, permisos y configuración vigentes.
type Session interface {
	Identity() *entity.Employee
	Permissions() entity.AppPermissions
	Settings() *entity.SystemSettings
}

// ReceiptPDFGenerator genera el PDF del phiếu thu mua.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt Receipt) ([]byte, error)
}
