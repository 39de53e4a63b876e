package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/game/rules"
)

func testDeck(prefix string, n int) []cards.Card {
	deck := make([]cards.Card, n)
	for i := range deck {
		deck[i] = cards.Card{
			ID:              fmt.Sprintf("%s-%d", prefix, i),
			Name:            fmt.Sprintf("Creature %d", i),
			Cost:            2,
			Power:           3,
			Defense:         3,
			Element:         cards.ElementEarth,
			ProblemCategory: cards.CategoryLogic,
		}
	}
	return deck
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := NewMemoryStore(logger)

	tm := game.NewTurnManager("round-trip", testDeck("p", 20), testDeck("o", 20), logger)

	// Reach the player's second turn (9 advances per turn cycle) so the
	// cost 2 card is affordable, then play it and advance into combat.
	for i := 0; i < 18; i++ {
		tm.AdvancePhase()
	}
	state := tm.Snapshot()
	result := tm.ExecuteAction(game.GameAction{
		Type:     rules.ActionPlayCard,
		PlayerID: game.PlayerSelf,
		Data:     map[string]any{"cardId": state.Player.Hand[0].ID},
	})
	require.True(t, result.Success, result.Error)
	tm.AdvancePhase()
	tm.AdvancePhase()

	saved := tm.Snapshot()
	require.NoError(t, store.Save(ctx, tm))

	loaded, err := store.Load(ctx, "round-trip")
	require.NoError(t, err)
	restored := loaded.Snapshot()

	assert.Equal(t, game.Checksum(&saved), game.Checksum(&restored),
		"round trip must be lossless")
	assert.Equal(t, saved.TurnNumber, restored.TurnNumber)
	assert.Equal(t, saved.Player.Mana, restored.Player.Mana)
	assert.Equal(t, saved.CurrentPhase, restored.CurrentPhase)
	require.Len(t, restored.Player.Hand, len(saved.Player.Hand))
	for i := range saved.Player.Hand {
		assert.Equal(t, saved.Player.Hand[i].ID, restored.Player.Hand[i].ID,
			"hand order must be stable across the round trip")
	}
}

func TestLoadedGameContinuesCorrectly(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := NewMemoryStore(logger)

	tm := game.NewTurnManager("continue", testDeck("p", 20), testDeck("o", 20), logger)
	require.NoError(t, store.Save(ctx, tm))

	loaded, err := store.Load(ctx, "continue")
	require.NoError(t, err)

	// The restored manager must accept further play.
	state := loaded.Snapshot()
	result := loaded.ExecuteAction(game.GameAction{
		Type:     rules.ActionPlayCard,
		PlayerID: game.PlayerSelf,
		Data:     map[string]any{"cardId": state.Player.Hand[0].ID},
	})
	assert.False(t, result.Success, "cost 2 card on turn 1 with 1 mana is rejected")
	assert.Contains(t, result.Error, "insufficient mana")

	phase := loaded.AdvancePhase()
	assert.Equal(t, rules.PhaseBeginCombat, phase)
}

func TestLoadMissingGame(t *testing.T) {
	store := NewMemoryStore(zaptest.NewLogger(t))

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	store := NewMemoryStore(logger)

	a := game.NewTurnManager("game-a", testDeck("p", 10), testDeck("o", 10), logger)
	b := game.NewTurnManager("game-b", testDeck("p", 10), testDeck("o", 10), logger)
	require.NoError(t, store.Save(ctx, a))
	require.NoError(t, store.Save(ctx, b))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"game-a", "game-b"}, ids)

	require.NoError(t, store.Delete(ctx, "game-a"))
	_, err = store.Load(ctx, "game-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckGameEndMatchesEngineRule(t *testing.T) {
	state := game.GameState{
		Player:   game.PlayerState{Health: 0},
		Opponent: game.PlayerState{Health: 7},
	}

	fromStore := CheckGameEnd(&state)
	fromEngine := game.CheckGameEnd(&state)

	assert.Equal(t, fromEngine, fromStore, "both layers share one game-end rule")
	assert.True(t, fromStore.GameOver)
	assert.Equal(t, game.PlayerOpponent, fromStore.Winner)
}
