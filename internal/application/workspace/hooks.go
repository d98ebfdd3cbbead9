package workspace

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/permission"
)

const unknownEditor = "Không xác định"

// VisibleTabs pestañas del sidebar para la identidad actual.
func (c *Controller) VisibleTabs() []string {
	return permission.VisibleTabs(c.Permissions())
}

// UploadFile sube el contenido y agrega a la caché el archivo registrado por el backend.
func (c *Controller) UploadFile(ctx context.Context, upload entity.FileUpload) (entity.SystemFile, error) {
	return c.Files.addWith(ctx, func(ctx context.Context) (entity.SystemFile, error) {
		return c.gateway.UploadFile(ctx, upload)
	})
}

// preparePurchase recalcula el total y, en las ediciones, agrega la entrada de historial.
func (c *Controller) preparePurchase(op string, rec entity.PurchaseTransaction) entity.PurchaseTransaction {
	rec.RecalculateTotal()
	if op != opUpdate {
		return rec
	}

	action := "Cập nhật thông tin"
	if before, ok := c.Purchases.Get(rec.ID); ok {
		action = entity.DescribePurchaseChanges(before, rec)
	}
	editor := unknownEditor
	if id := c.Identity(); id != nil && id.Name != "" {
		editor = id.Name
	}
	rec.History = append(slices.Clone(rec.History), entity.EditLog{
		Date:       c.now().UTC().Format(time.RFC3339),
		EditorName: editor,
		Action:     action,
	})
	return rec
}

// cascadeFolderLocked replica localmente la cascada remota: al borrar una carpeta se van
// también sus subcarpetas y los archivos que contenían.
func (c *Controller) cascadeFolderLocked(id string) {
	tree := entity.FolderSubtree(c.Folders.items, id)
	c.Folders.items = slices.DeleteFunc(c.Folders.items, func(f entity.Folder) bool { return tree[f.ID] })
	c.Files.items = slices.DeleteFunc(c.Files.items, func(f entity.SystemFile) bool { return f.InFolder(tree) })
}
