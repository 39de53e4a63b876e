package persistence

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cardquest/duel-server-go/internal/game"
)

// MemoryStore keeps serialized game documents in memory. It is the default
// store for the simulator and for tests; storing encoded documents rather
// than live pointers keeps the save/load semantics identical to a durable
// store.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[string][]byte
	handler game.EventHandler
	logger  *zap.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		games:  make(map[string][]byte),
		logger: logger,
	}
}

// SetEventHandler attaches a game-event handler to every manager this
// store loads, so feeds survive the save/load cycle.
func (s *MemoryStore) SetEventHandler(handler game.EventHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Save snapshots and stores the manager's full state.
func (s *MemoryStore) Save(_ context.Context, tm *game.TurnManager) error {
	doc, err := encodeState(tm.Snapshot())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.games[tm.GameID()] = doc
	s.mu.Unlock()
	return nil
}

// Load reconstructs a TurnManager from the stored document.
func (s *MemoryStore) Load(_ context.Context, gameID string) (*game.TurnManager, error) {
	s.mu.RLock()
	doc, ok := s.games[gameID]
	handler := s.handler
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	state, err := decodeState(gameID, doc)
	if err != nil {
		return nil, err
	}
	tm := game.Restore(state, s.logger)
	if handler != nil {
		tm.SetEventHandler(handler)
	}
	return tm, nil
}

// Delete removes a game's saved state.
func (s *MemoryStore) Delete(_ context.Context, gameID string) error {
	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()
	return nil
}

// List returns every stored game id in stable order.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids, nil
}
