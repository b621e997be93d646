package hub

import (
	"arcade/domain"
	"arcade/metrics"
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// entry is one live connection with its session.
type entry struct {
	game     domain.GameType
	play     play
	client   *client
	cancel   context.CancelFunc
	stopOnce sync.Once
	metrics  *metrics.Metrics
}

// stop cancels in-flight work, closes the session without submitting and
// closes the socket with code.
func (e *entry) stop(code string) {
	e.stopOnce.Do(func() {
		e.cancel()
		e.play.close()
		e.client.close(code)
		e.metrics.SessionClosed(string(e.game))
	})
}

// Registry keeps at most one live session per user. A second connection from
// the same user replaces the first.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	metrics *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{entries: map[string]*entry{}, metrics: m}
}

func (r *Registry) register(userID string, e *entry) {
	r.mu.Lock()
	old := r.entries[userID]
	r.entries[userID] = e
	r.mu.Unlock()

	r.metrics.SessionOpened(string(e.game))
	if old != nil {
		log.Debug().Str("user", userID).Str("game", string(old.game)).Msg("session replaced")
		old.stop(ErrReplacedStr)
	}
}

// remove drops e if it is still the user's current entry.
func (r *Registry) remove(userID string, e *entry) {
	r.mu.Lock()
	if r.entries[userID] == e {
		delete(r.entries, userID)
	}
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll stops every live session. Running sessions are abandoned, not
// submitted.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = map[string]*entry{}
	r.mu.Unlock()

	for _, e := range entries {
		e.stop(ErrServerShutdownStr)
	}
}
