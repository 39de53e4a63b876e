// Package ai implements the automated opponent: pure card-scoring and
// decision functions over game state snapshots, a probabilistic problem
// solver, and the orchestrator that drives a full turn through the same
// action contract a human client uses.
package ai

import (
	"fmt"

	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
)

// Evaluation is a card's computed play value with the reasoning trail.
type Evaluation struct {
	Value     int      `json:"value"`
	Reasoning []string `json:"reasoning"`
}

// EvaluateCard scores a card for the given seat. Base value is stat-driven;
// bonuses are additive and independently triggerable.
func EvaluateCard(card cards.Card, state game.GameState, self game.PlayerID) Evaluation {
	own := state.Seat(self)
	enemy := state.Seat(self.Other())

	value := (card.Power + card.Defense) * 2
	reasoning := []string{fmt.Sprintf("base stats %d", value)}

	if card.Cost == own.Mana {
		value += 5
		reasoning = append(reasoning, "on-curve play")
	}

	if card.Power+card.Defense >= 10 {
		value += 10
		reasoning = append(reasoning, "strong stats")
	}

	if threat, ok := strongestCreature(enemy); ok && card.Power >= threat.Card.Defense {
		value += 10
		reasoning = append(reasoning, fmt.Sprintf("can remove %s", threat.Card.Name))
	}

	if len(own.Board) < len(enemy.Board) && len(own.Board) < 5 {
		value += 5
		reasoning = append(reasoning, "board control")
	}

	if own.BoardPower()+card.Power >= enemy.Health {
		value += 100
		reasoning = append(reasoning, "sets up lethal")
	}

	value -= card.Cost
	reasoning = append(reasoning, fmt.Sprintf("cost %d", card.Cost))

	return Evaluation{Value: value, Reasoning: reasoning}
}

// strongestCreature returns the enemy board creature with the highest power.
func strongestCreature(seat *game.PlayerState) (cards.BoardCard, bool) {
	var best cards.BoardCard
	found := false
	for _, b := range seat.Board {
		if !found || b.Card.Power > best.Card.Power {
			best = b
			found = true
		}
	}
	return best, found
}

// SelectBestCard returns the highest-value affordable card in hand, or
// false when nothing is playable.
func SelectBestCard(hand []cards.Card, state game.GameState, self game.PlayerID) (cards.Card, Evaluation, bool) {
	own := state.Seat(self)

	var best cards.Card
	var bestEval Evaluation
	found := false
	for _, card := range hand {
		if card.Cost > own.Mana {
			continue
		}
		eval := EvaluateCard(card, state, self)
		if !found || eval.Value > bestEval.Value {
			best = card
			bestEval = eval
			found = true
		}
	}
	return best, bestEval, found
}
