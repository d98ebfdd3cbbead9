package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// table una colección del backend en memoria; comparte el lock del Gateway.
type table[T entity.Record] struct {
	g      *Gateway
	kind   string
	items  *[]T
	withID func(rec T, id string) T

	beforeSave  func(rec T) (T, error)
	afterDelete func(id string)
}

func newTable[T entity.Record](g *Gateway, kind string, items *[]T, withID func(T, string) T) *table[T] {
	*items = []T{}
	return &table[T]{g: g, kind: kind, items: items, withID: withID}
}

func (t *table[T]) indexLocked(id string) int {
	return slices.IndexFunc(*t.items, func(item T) bool { return item.RecordID() == id })
}

// Add asigna un UUID cuando el registro llega sin ID.
func (t *table[T]) Add(_ context.Context, rec T) (T, error) {
	var zero T
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if err := t.g.checkLocked(); err != nil {
		return zero, err
	}
	if rec.RecordID() == "" {
		rec = t.withID(rec, uuid.New().String())
	} else if t.indexLocked(rec.RecordID()) >= 0 {
		return zero, fmt.Errorf("%w: %s %s", domain.ErrDuplicate, t.kind, rec.RecordID())
	}
	if t.beforeSave != nil {
		var err error
		if rec, err = t.beforeSave(rec); err != nil {
			return zero, err
		}
	}
	*t.items = append(*t.items, rec)
	t.g.mutations++
	return rec, nil
}

func (t *table[T]) Update(_ context.Context, rec T) (T, error) {
	var zero T
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if err := t.g.checkLocked(); err != nil {
		return zero, err
	}
	i := t.indexLocked(rec.RecordID())
	if i < 0 {
		return zero, fmt.Errorf("%w: %s %s", domain.ErrNotFound, t.kind, rec.RecordID())
	}
	if t.beforeSave != nil {
		var err error
		if rec, err = t.beforeSave(rec); err != nil {
			return zero, err
		}
	}
	(*t.items)[i] = rec
	t.g.mutations++
	return rec, nil
}

func (t *table[T]) Delete(_ context.Context, id string) error {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if err := t.g.checkLocked(); err != nil {
		return err
	}
	i := t.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, t.kind, id)
	}
	*t.items = slices.Delete(*t.items, i, i+1)
	if t.afterDelete != nil {
		t.afterDelete(id)
	}
	t.g.mutations++
	return nil
}
