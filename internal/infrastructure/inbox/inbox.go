// Package inbox guarda los avisos para el usuario hasta que la interfaz los recoge.
package inbox

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/hoacuong-agri/internal/domain/repository"
)

// maxPending avisos retenidos; los más viejos se descartan.
const maxPending = 50

// Notification un aviso pendiente.
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Inbox cola de avisos. Notify nunca bloquea.
type Inbox struct {
	mu      sync.Mutex
	pending []Notification
	log     zerolog.Logger
	now     func() time.Time
}

var _ repository.Notifier = (*Inbox)(nil)

func New(log zerolog.Logger) *Inbox {
	return &Inbox{log: log.With().Str("component", "inbox").Logger(), now: time.Now}
}

func (b *Inbox) Notify(level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, Notification{Level: level, Message: message, At: b.now()})
	if len(b.pending) > maxPending {
		b.pending = b.pending[len(b.pending)-maxPending:]
	}
	b.log.Debug().Str("level", level).Msg(message)
}

// Drain devuelve los avisos pendientes y vacía la cola.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
