package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/game/combat"
	"github.com/cardquest/duel-server-go/internal/game/rules"
)

func TestCheckLethalFromBoard(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board: boardOf(
				creature("a", 5, 5, 3),
				creature("b", 3, 3, 2),
				creature("c", 3, 3, 2),
			),
		},
		Player: game.PlayerState{Health: 10},
	}

	check := CheckLethal(state, game.PlayerOpponent)
	require.True(t, check.HasLethal, "5+3+3 = 11 >= 10")
	assert.Equal(t, 11, check.PotentialDamage)
	require.Len(t, check.Attacks, 3, "one attack per creature")
	for _, atk := range check.Attacks {
		assert.Equal(t, combat.TargetFace, atk.TargetID)
	}
}

func TestCheckLethalCountsAffordableHand(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Mana:   3,
			Board:  boardOf(creature("a", 4, 6, 3)),
			Hand: []cards.Card{
				creature("playable", 3, 3, 2),
				creature("too-big", 8, 9, 9),
			},
		},
		Player: game.PlayerState{Health: 9},
	}

	check := CheckLethal(state, game.PlayerOpponent)
	assert.Equal(t, 9, check.PotentialDamage, "board 6 plus affordable hand 3")
	assert.True(t, check.HasLethal)
}

func TestCheckLethalFalseWhenShort(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("a", 3, 4, 3)),
		},
		Player: game.PlayerState{Health: 10},
	}

	check := CheckLethal(state, game.PlayerOpponent)
	assert.False(t, check.HasLethal)
	assert.Empty(t, check.Attacks)
}

func TestMakeDecisionLethalBeatsTempo(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Mana:   5,
			Board:  boardOf(creature("a", 4, 6, 3), creature("b", 4, 6, 3)),
			Hand:   []cards.Card{creature("hand", 2, 2, 2)},
		},
		Player: game.PlayerState{Health: 10},
	}

	decision := MakeDecision(state, game.PlayerOpponent, rules.PhaseDeclareAttackers)
	require.NotNil(t, decision)
	assert.Equal(t, DecisionLethal, decision.Kind)
	assert.Len(t, decision.Attacks, 2)
}

func TestMakeDecisionSurvivalDefendsTopThreats(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 8,
			Board:  boardOf(creature("defender", 4, 6, 5)),
		},
		Player: game.PlayerState{
			Health: 20,
			// Enemy board power 4 + assumed 5 >= 8 health.
			Board: boardOf(creature("threat", 4, 4, 5)),
		},
	}

	decision := MakeDecision(state, game.PlayerOpponent, rules.PhaseDeclareAttackers)
	require.NotNil(t, decision)
	assert.Equal(t, DecisionSurvival, decision.Kind)
	require.Len(t, decision.Attacks, 1)
	assert.Equal(t, "defender", decision.Attacks[0].AttackerID)
	assert.Equal(t, "threat", decision.Attacks[0].TargetID, "power 6 >= threat defense 5")
}

func TestMakeDecisionTempoInMainPhase(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Mana:   3,
			Hand:   []cards.Card{creature("hand", 3, 3, 3)},
		},
		Player: game.PlayerState{Health: 20},
	}

	decision := MakeDecision(state, game.PlayerOpponent, rules.PhasePreCombatMain)
	require.NotNil(t, decision)
	assert.Equal(t, DecisionTempo, decision.Kind)
	assert.Equal(t, "hand", decision.CardID)
}

func TestMakeDecisionEndTurnWhenNothingUseful(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{Health: 20, Mana: 1},
		Player:   game.PlayerState{Health: 20},
	}

	decision := MakeDecision(state, game.PlayerOpponent, rules.PhasePreCombatMain)
	require.NotNil(t, decision)
	assert.Equal(t, DecisionEndTurn, decision.Kind)
}

func TestSelectCombatTargetsEmptyBoard(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("a", 3, 4, 3), creature("b", 3, 2, 3)),
		},
		Player: game.PlayerState{Health: 20},
	}

	attacks := SelectCombatTargets(state, game.PlayerOpponent)
	require.Len(t, attacks, 2, "one face attack per attacker")
	for _, atk := range attacks {
		assert.Equal(t, combat.TargetFace, atk.TargetID)
	}
	assert.Equal(t, 4, attacks[0].ExpectedDamage, "expected damage equals attacker power")
	assert.Equal(t, 2, attacks[1].ExpectedDamage)
}

func TestSelectCombatTargetsIgnoresSmallCreatures(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("a", 3, 4, 3)),
		},
		Player: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("small1", 2, 2, 2), creature("small2", 3, 3, 3)),
		},
	}

	attacks := SelectCombatTargets(state, game.PlayerOpponent)
	require.Len(t, attacks, 1)
	assert.Equal(t, combat.TargetFace, attacks[0].TargetID, "power <=3 defenders are ignored")
}

func TestSelectCombatTargetsFavorableTrade(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("trader", 4, 5, 6)),
		},
		Player: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("big", 5, 5, 4)),
		},
	}

	attacks := SelectCombatTargets(state, game.PlayerOpponent)
	require.Len(t, attacks, 1)
	// attacker power 5 >= target defense 4, target power 5 < attacker defense 6.
	assert.Equal(t, "big", attacks[0].TargetID)
}

func TestSelectCombatTargetsDefaultsToFaceWithoutTrade(t *testing.T) {
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("weak", 3, 3, 3)),
		},
		Player: game.PlayerState{
			Health: 20,
			Board:  boardOf(creature("wall", 5, 6, 8)),
		},
	}

	attacks := SelectCombatTargets(state, game.PlayerOpponent)
	require.Len(t, attacks, 1)
	assert.Equal(t, combat.TargetFace, attacks[0].TargetID, "no favorable trade against the wall")
}

func TestSelectCombatTargetsSkipsTappedAttackers(t *testing.T) {
	tapped := cards.BoardCard{Card: creature("tapped", 3, 4, 3), CanAttack: false, IsTapped: true}
	state := game.GameState{
		Opponent: game.PlayerState{
			Health: 20,
			Board:  append(boardOf(creature("ready", 3, 4, 3)), tapped),
		},
		Player: game.PlayerState{Health: 20},
	}

	attacks := SelectCombatTargets(state, game.PlayerOpponent)
	require.Len(t, attacks, 1)
	assert.Equal(t, "ready", attacks[0].AttackerID)
}
