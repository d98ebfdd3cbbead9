package postgres

import (
	"context"
	"fmt"
)

// schema un documento JSONB por registro; position conserva el orden de inserción
// (los nuevos registros van al final, como en la hoja).
const schema = `
CREATE TABLE IF NOT EXISTS records (
    kind       TEXT        NOT NULL,
    id         TEXT        NOT NULL,
    position   BIGSERIAL,
    data       JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (kind, id)
);
CREATE INDEX IF NOT EXISTS records_kind_position_idx ON records (kind, position);

CREATE TABLE IF NOT EXISTS system_settings (
    id         SMALLINT    PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    data       JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS employee_credentials (
    employee_id   TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_contents (
    file_id   TEXT  PRIMARY KEY,
    mime_type TEXT  NOT NULL DEFAULT '',
    content   BYTEA NOT NULL
);`

// EnsureSchema crea las tablas si no existen (idempotente).
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	if _, err := g.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("crear esquema: %w", err)
	}
	return nil
}
