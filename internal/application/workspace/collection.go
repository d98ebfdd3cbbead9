package workspace

import (
	"context"
	"slices"

	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// Collection es la caché local de un tipo de entidad, en el orden del servidor
// (los nuevos registros se agregan al final).
//
// Add, Update y Delete llaman primero al backend y solo tocan la caché cuando el backend
// confirma; ante un fallo la caché queda como estaba y el Controller recarga todo.
type Collection[T entity.Record] struct {
	kind   string
	ctrl   *Controller
	remote repository.EntityGateway[T]
	items  []T

	// prepare ajusta el registro antes de enviarlo (cálculos, historial).
	prepare func(op string, rec T) T
	// onDeleteLocked corre con el lock tomado, antes de quitar el registro borrado.
	onDeleteLocked func(id string)
}

func newCollection[T entity.Record](ctrl *Controller, kind string, remote repository.EntityGateway[T]) *Collection[T] {
	return &Collection[T]{kind: kind, ctrl: ctrl, remote: remote}
}

// Kind nombre del tipo de entidad (areas, purchases...).
func (c *Collection[T]) Kind() string { return c.kind }

// Items devuelve una copia de la colección.
func (c *Collection[T]) Items() []T {
	c.ctrl.mu.RLock()
	defer c.ctrl.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len número de registros en caché.
func (c *Collection[T]) Len() int {
	c.ctrl.mu.RLock()
	defer c.ctrl.mu.RUnlock()
	return len(c.items)
}

// Get busca un registro por ID.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.ctrl.mu.RLock()
	defer c.ctrl.mu.RUnlock()
	return c.getLocked(id)
}

func (c *Collection[T]) getLocked(id string) (T, bool) {
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Add crea el registro en el backend y agrega el registro devuelto al final de la caché.
func (c *Collection[T]) Add(ctx context.Context, rec T) (T, error) {
	if c.prepare != nil {
		rec = c.prepare(opAdd, rec)
	}
	return c.addWith(ctx, func(ctx context.Context) (T, error) {
		return c.remote.Add(ctx, rec)
	})
}

func (c *Collection[T]) addWith(ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	var created T
	err := c.ctrl.perform(ctx, c.kind, opAdd, func(ctx context.Context) error {
		out, err := call(ctx)
		if err != nil {
			return err
		}
		c.ctrl.mu.Lock()
		c.items = append(c.items, out)
		c.ctrl.mu.Unlock()
		created = out
		return nil
	})
	return created, err
}

// Update guarda el registro y reemplaza en caché el elemento con el mismo ID.
// Si el ID ya no está en caché no hace nada (no es error).
func (c *Collection[T]) Update(ctx context.Context, rec T) (T, error) {
	if c.prepare != nil {
		rec = c.prepare(opUpdate, rec)
	}
	var updated T
	err := c.ctrl.perform(ctx, c.kind, opUpdate, func(ctx context.Context) error {
		out, err := c.remote.Update(ctx, rec)
		if err != nil {
			return err
		}
		c.ctrl.mu.Lock()
		c.replaceLocked(out)
		c.ctrl.mu.Unlock()
		updated = out
		return nil
	})
	return updated, err
}

// Delete borra en el backend y quita de la caché el elemento con ese ID.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.ctrl.perform(ctx, c.kind, opDelete, func(ctx context.Context) error {
		if err := c.remote.Delete(ctx, id); err != nil {
			return err
		}
		c.ctrl.mu.Lock()
		if c.onDeleteLocked != nil {
			c.onDeleteLocked(id)
		}
		c.removeLocked(id)
		c.ctrl.mu.Unlock()
		return nil
	})
}

func (c *Collection[T]) replaceLocked(rec T) {
	for i, item := range c.items {
		if item.RecordID() == rec.RecordID() {
			c.items[i] = rec
			return
		}
	}
}

func (c *Collection[T]) removeLocked(id string) {
	c.items = slices.DeleteFunc(c.items, func(item T) bool { return item.RecordID() == id })
}

func (c *Collection[T]) setLocked(items []T) {
	if items == nil {
		items = []T{}
	}
	c.items = items
}
