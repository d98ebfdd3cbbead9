package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/hoacuong-agri/internal/domain"
	"github.com/jhoicas/hoacuong-agri/internal/domain/entity"
)

// table operaciones CRUD de un tipo de registro sobre la tabla records.
type table[T entity.Record] struct {
	g      *Gateway
	kind   string
	withID func(rec T, id string) T

	beforeSave  func(ctx context.Context, q querier, rec T) (T, error)
	afterDelete func(ctx context.Context, q querier, id string) error
}

func newTable[T entity.Record](g *Gateway, kind string, withID func(T, string) T) *table[T] {
	return &table[T]{g: g, kind: kind, withID: withID}
}

// Add asigna un UUID cuando el registro llega sin ID.
func (t *table[T]) Add(ctx context.Context, rec T) (T, error) {
	if rec.RecordID() == "" {
		rec = t.withID(rec, uuid.New().String())
	}
	err := t.g.tx.Run(ctx, func(q querier) error {
		var err error
		if t.beforeSave != nil {
			if rec, err = t.beforeSave(ctx, q, rec); err != nil {
				return err
			}
		}
		return insertRecord(ctx, q, t.kind, rec.RecordID(), rec)
	})
	if err != nil {
		var zero T
		return zero, wrapErr(t.kind+" add", err)
	}
	return rec, nil
}

func (t *table[T]) Update(ctx context.Context, rec T) (T, error) {
	err := t.g.tx.Run(ctx, func(q querier) error {
		var err error
		if t.beforeSave != nil {
			if rec, err = t.beforeSave(ctx, q, rec); err != nil {
				return err
			}
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("serializar %s: %w", t.kind, err)
		}
		tag, err := q.Exec(ctx, `UPDATE records SET data = $3, updated_at = now() WHERE kind = $1 AND id = $2`,
			t.kind, rec.RecordID(), raw)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s %s", domain.ErrNotFound, t.kind, rec.RecordID())
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, wrapErr(t.kind+" update", err)
	}
	return rec, nil
}

func (t *table[T]) Delete(ctx context.Context, id string) error {
	err := t.g.tx.Run(ctx, func(q querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM records WHERE kind = $1 AND id = $2`, t.kind, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s %s", domain.ErrNotFound, t.kind, id)
		}
		if t.afterDelete != nil {
			return t.afterDelete(ctx, q, id)
		}
		return nil
	})
	return wrapErr(t.kind+" delete", err)
}

func insertRecord(ctx context.Context, q querier, kind, id string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serializar %s: %w", kind, err)
	}
	_, err = q.Exec(ctx, `INSERT INTO records (kind, id, data) VALUES ($1, $2, $3)`, kind, id, raw)
	return err
}
