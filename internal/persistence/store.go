// Package persistence saves and restores duel state. The round trip is
// lossless: a loaded TurnManager's snapshot is field-for-field identical to
// the state at the last successful save.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cardquest/duel-server-go/internal/game"
)

// ErrNotFound is returned when no saved state exists for a game id.
var ErrNotFound = errors.New("game not found")

// Store persists duel state keyed by game id. Saves are atomic per game: a
// save is visible in full or not at all to the next load. Implementations
// are safe for concurrent use across distinct game ids.
type Store interface {
	Save(ctx context.Context, tm *game.TurnManager) error
	Load(ctx context.Context, gameID string) (*game.TurnManager, error)
	Delete(ctx context.Context, gameID string) error
	List(ctx context.Context) ([]string, error)
}

// CheckGameEnd applies the game-end rule to a persisted state. It is the
// same rule TurnManager.IsGameOver uses.
func CheckGameEnd(state *game.GameState) game.EndResult {
	return game.CheckGameEnd(state)
}

// encodeState serializes a snapshot to its durable document form.
func encodeState(state game.GameState) ([]byte, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game %s: %w", state.GameID, err)
	}
	return doc, nil
}

// decodeState rebuilds a snapshot from its document form. Corrupt documents
// are fatal to the caller and never auto-repaired.
func decodeState(gameID string, doc []byte) (game.GameState, error) {
	var state game.GameState
	if err := json.Unmarshal(doc, &state); err != nil {
		return game.GameState{}, fmt.Errorf("corrupt saved state for game %s: %w", gameID, err)
	}
	if state.GameID != gameID {
		return game.GameState{}, fmt.Errorf("saved state for game %s carries mismatched id %q", gameID, state.GameID)
	}
	return state, nil
}
