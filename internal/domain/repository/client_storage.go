package repository

import "context"

// ClientStorage almacenamiento durable local del dispositivo (clave → valor serializado).
type ClientStorage interface {
	// Get devuelve (valor, true, nil) si la clave existe y ("", false, nil) si no.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove no falla si la clave no existe.
	Remove(ctx context.Context, key string) error
}
