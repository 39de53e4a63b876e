package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
)

func creature(id string, cost, power, defense int) cards.Card {
	return cards.Card{
		ID: id, Name: id, Cost: cost, Power: power, Defense: defense,
		Element: cards.ElementFire, ProblemCategory: cards.CategoryMath,
	}
}

func boardOf(cs ...cards.Card) []cards.BoardCard {
	board := make([]cards.BoardCard, len(cs))
	for i, c := range cs {
		board[i] = cards.BoardCard{Card: c, CanAttack: true}
	}
	return board
}

func TestEvaluateCardBaseValue(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{Mana: 10, Health: 20},
		Player:   game.PlayerState{Health: 20},
	}

	// (2+3)*2 - 4 = 6; no bonuses trigger (mana 10 != cost 4, stats 5 < 10,
	// no enemy board, equal board counts, no lethal at 20 health).
	eval := EvaluateCard(creature("c", 4, 2, 3), state, game.PlayerOpponent)
	assert.Equal(t, 6, eval.Value)
}

func TestEvaluateCardOnCurveBonus(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{Mana: 4, Health: 20},
		Player:   game.PlayerState{Health: 20},
	}

	eval := EvaluateCard(creature("c", 4, 2, 3), state, game.PlayerOpponent)
	assert.Equal(t, 11, eval.Value, "base 6 plus on-curve 5")
}

func TestEvaluateCardStrongStatsBonus(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{Mana: 10, Health: 20},
		Player:   game.PlayerState{Health: 20},
	}

	// (6+5)*2 + 10 - 6 = 26
	eval := EvaluateCard(creature("c", 6, 6, 5), state, game.PlayerOpponent)
	assert.Equal(t, 26, eval.Value)
}

func TestEvaluateCardRemovesTopThreat(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{Mana: 10, Health: 20},
		Player: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("threat", 5, 7, 4)),
		},
	}

	// Power 4 >= threat defense 4: (4+3)*2 + 10 (removal) + 5 (board control,
	// 0 < 1 boards) - 4 = 25.
	eval := EvaluateCard(creature("c", 4, 4, 3), state, game.PlayerOpponent)
	assert.Equal(t, 25, eval.Value)
}

func TestEvaluateCardLethalFlag(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Mana:   10,
			Health: 20,
			Board:  boardOf(creature("b1", 3, 4, 3)),
		},
		Player: game.PlayerState{Health: 6},
	}

	// Board power 4 + card power 2 >= 6 health: lethal bonus applies.
	eval := EvaluateCard(creature("c", 2, 2, 2), state, game.PlayerOpponent)
	// (2+2)*2 + 100 - 2 = 106
	assert.Equal(t, 106, eval.Value)
}

func TestSelectBestCardFiltersByMana(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Mana:   3,
			Health: 20,
			Hand: []cards.Card{
				creature("cheap", 2, 2, 2),
				creature("big", 8, 9, 9),
				creature("mid", 3, 3, 3),
			},
		},
		Player: game.PlayerState{Health: 20},
	}

	best, _, ok := SelectBestCard(state.Opponent.Hand, state, game.PlayerOpponent)
	require.True(t, ok)
	assert.Equal(t, "mid", best.ID, "the big creature is unaffordable")
}

func TestSelectBestCardNothingPlayable(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Mana:   1,
			Health: 20,
			Hand:   []cards.Card{creature("big", 8, 9, 9)},
		},
		Player: game.PlayerState{Health: 20},
	}

	_, _, ok := SelectBestCard(state.Opponent.Hand, state, game.PlayerOpponent)
	assert.False(t, ok)
}
