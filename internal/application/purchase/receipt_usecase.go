// Package purchase contiene los casos de uso de compras que no son CRUD: el phiếu thu mua
// (comprobante de pesaje y liquidación).
package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// Receipt datos del comprobante. ShowAmounts es false cuando la identidad no tiene
// viewFinancials: el PDF sale sin precio ni total.
type Receipt struct {
	Number      string
	Transaction entity.PurchaseTransaction
	AreaName    string
	AreaOwner   string
	Company     entity.CompanyInfo
	IssuedBy    string
	IssuedAt    time.Time
	ShowAmounts bool
}

// ReceiptUseCase arma el comprobante de una compra en caché.
type ReceiptUseCase struct {
	purchases Lookup[entity.PurchaseTransaction]
	areas     Lookup[entity.PlantingArea]
	session   Session
	generator ReceiptPDFGenerator
	now       func() time.Time
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	purchases Lookup[entity.PurchaseTransaction],
	areas Lookup[entity.PlantingArea],
	session Session,
	generator ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		purchases: purchases,
		areas:     areas,
		session:   session,
		generator: generator,
		now:       time.Now,
	}
}

// BuildReceipt reúne los datos del comprobante.
//
// Retorna:
//   - domain.ErrNotSignedIn  si no hay sesión.
//   - domain.ErrNotFound     si la compra no está en caché.
func (uc *ReceiptUseCase) BuildReceipt(purchaseID string) (Receipt, error) {
	identity := uc.session.Identity()
	if identity == nil {
		return Receipt{}, domain.ErrNotSignedIn
	}
	tx, ok := uc.purchases.Get(purchaseID)
	if !ok {
		return Receipt{}, fmt.Errorf("%w: compra %s", domain.ErrNotFound, purchaseID)
	}

	r := Receipt{
		Number:      ReceiptNumber(tx.ID),
		Transaction: tx,
		AreaName:    "Vùng " + tx.AreaID, // fallback
		IssuedBy:    identity.Name,
		IssuedAt:    uc.now(),
		ShowAmounts: uc.session.Permissions().ViewFinancials,
	}
	if area, ok := uc.areas.Get(tx.AreaID); ok {
		r.AreaName = area.Name
		r.AreaOwner = area.Owner
	}
	if settings := uc.session.Settings(); settings != nil {
		r.Company = settings.CompanyInfo
	}
	return r, nil
}

// DownloadReceiptPDF genera el PDF y el nombre de archivo sugerido.
func (uc *ReceiptUseCase) DownloadReceiptPDF(ctx context.Context, purchaseID string) (pdfBytes []byte, filename string, err error) {
	r, err := uc.BuildReceipt(purchaseID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("phieu_thu_mua_%s.pdf", r.Number), nil
}

// ReceiptNumber número visible del comprobante: PTM- y los primeros 8 caracteres del ID.
func ReceiptNumber(id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return "PTM-" + strings.ToUpper(short)
}
