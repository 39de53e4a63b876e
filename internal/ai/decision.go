package ai

import (
	"fmt"
	"sort"

	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/game/combat"
	"github.com/cardquest/duel-server-go/internal/game/rules"
)

// DecisionKind labels which priority tier produced a decision.
type DecisionKind string

const (
	DecisionLethal   DecisionKind = "lethal"
	DecisionSurvival DecisionKind = "survival"
	DecisionTempo    DecisionKind = "tempo"
	DecisionAttack   DecisionKind = "attack"
	DecisionEndTurn  DecisionKind = "end_turn"
)

// AttackTarget is one planned attack with the damage the planner expects.
type AttackTarget struct {
	AttackerID     string `json:"attackerId"`
	TargetID       string `json:"targetId"`
	ExpectedDamage int    `json:"expectedDamage"`
}

// Decision is the output of one MakeDecision call: either a card to play
// (main phases) or a set of attacks (combat), plus the reasoning tier.
type Decision struct {
	Kind      DecisionKind   `json:"kind"`
	CardID    string         `json:"cardId,omitempty"`
	Attacks   []AttackTarget `json:"attacks,omitempty"`
	Reasoning string         `json:"reasoning"`
}

// futurePlayAllowance is the power the survival check assumes the enemy
// adds with one likely future play.
const futurePlayAllowance = 5

// MakeDecision picks the seat's next move for the current phase in strict
// priority order: lethal, survival, tempo, combat targeting, end turn.
// A nil return means no useful action remains.
func MakeDecision(state game.GameState, self game.PlayerID, phase rules.Phase) *Decision {
	inCombat := phase == rules.PhaseDeclareAttackers
	inMain := rules.IsMainPhase(phase)

	if inCombat {
		if lethal := CheckLethal(state, self); lethal.HasLethal {
			return &Decision{
				Kind:      DecisionLethal,
				Attacks:   lethal.Attacks,
				Reasoning: fmt.Sprintf("lethal: %d potential damage vs %d health", lethal.PotentialDamage, state.Seat(self.Other()).Health),
			}
		}
	}

	if inMain || inCombat {
		if decision := checkSurvival(state, self, inCombat); decision != nil {
			return decision
		}
	}

	if inMain {
		if card, eval, ok := SelectBestCard(state.Seat(self).Hand, state, self); ok {
			return &Decision{
				Kind:      DecisionTempo,
				CardID:    card.ID,
				Reasoning: fmt.Sprintf("best value play %s (%d)", card.Name, eval.Value),
			}
		}
	}

	if inCombat {
		if attacks := SelectCombatTargets(state, self); len(attacks) > 0 {
			return &Decision{
				Kind:      DecisionAttack,
				Attacks:   attacks,
				Reasoning: "combat targeting",
			}
		}
	}

	return &Decision{Kind: DecisionEndTurn, Reasoning: "no useful action remains"}
}

// LethalCheck reports whether the seat can finish the duel this turn.
type LethalCheck struct {
	HasLethal       bool           `json:"hasLethal"`
	PotentialDamage int            `json:"potentialDamage"`
	Attacks         []AttackTarget `json:"attacks,omitempty"`
}

// CheckLethal sums board power plus affordable hand power against the
// enemy's health and, when lethal, plans a face attack for every creature
// able to swing.
func CheckLethal(state game.GameState, self game.PlayerID) LethalCheck {
	own := state.Seat(self)
	enemy := state.Seat(self.Other())

	potential := own.BoardPower()
	for _, card := range own.Hand {
		if card.Cost <= own.Mana {
			potential += card.Power
		}
	}

	check := LethalCheck{PotentialDamage: potential}
	if potential < enemy.Health {
		return check
	}

	check.HasLethal = true
	for _, b := range own.Board {
		if b.CanAttack && !b.IsTapped {
			check.Attacks = append(check.Attacks, AttackTarget{
				AttackerID:     b.Card.ID,
				TargetID:       combat.TargetFace,
				ExpectedDamage: b.Card.Power,
			})
		}
	}
	return check
}

// checkSurvival triggers when the enemy board threatens to finish the seat
// next turn, assuming one likely future play. In combat it answers with
// defensive attacks; in a main phase it plays the sturdiest affordable
// creature.
func checkSurvival(state game.GameState, self game.PlayerID, inCombat bool) *Decision {
	own := state.Seat(self)
	enemy := state.Seat(self.Other())

	threat := enemy.BoardPower() + futurePlayAllowance
	if threat < own.Health {
		return nil
	}

	if inCombat {
		attacks := defensiveAttacks(state, self)
		if len(attacks) == 0 {
			return nil
		}
		return &Decision{
			Kind:      DecisionSurvival,
			Attacks:   attacks,
			Reasoning: fmt.Sprintf("survival: enemy threatens %d vs %d health", threat, own.Health),
		}
	}

	card, ok := sturdiestAffordable(own)
	if !ok {
		return nil
	}
	return &Decision{
		Kind:      DecisionSurvival,
		CardID:    card.ID,
		Reasoning: fmt.Sprintf("survival: summoning %s as a defender", card.Name),
	}
}

// defensiveAttacks targets the enemy's highest-power creatures first, using
// attackers able to kill them.
func defensiveAttacks(state game.GameState, self game.PlayerID) []AttackTarget {
	own := state.Seat(self)
	enemy := state.Seat(self.Other())

	targets := append([]cards.BoardCard(nil), enemy.Board...)
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Card.Power > targets[j].Card.Power
	})

	used := make(map[string]bool)
	var attacks []AttackTarget
	for _, target := range targets {
		for _, attacker := range own.Board {
			if used[attacker.Card.ID] || !attacker.CanAttack || attacker.IsTapped {
				continue
			}
			if attacker.Card.Power >= target.Card.Defense {
				used[attacker.Card.ID] = true
				attacks = append(attacks, AttackTarget{
					AttackerID:     attacker.Card.ID,
					TargetID:       target.Card.ID,
					ExpectedDamage: attacker.Card.Power,
				})
				break
			}
		}
	}
	return attacks
}

func sturdiestAffordable(seat *game.PlayerState) (cards.Card, bool) {
	var best cards.Card
	found := false
	for _, card := range seat.Hand {
		if card.Cost > seat.Mana || !card.IsCreature() {
			continue
		}
		if !found || card.Defense > best.Defense {
			best = card
			found = true
		}
	}
	return best, found
}

// Thresholds for the combat targeting heuristics.
const (
	ignorablePower = 3 // defenders at or below this power are ignored
	threatPower    = 5 // defenders at or above this power are trade candidates
)

// SelectCombatTargets plans this turn's attacks. With an empty defending
// board everything goes to the face; a board of small creatures is ignored;
// otherwise each attacker seeks a favorable trade against a big defender
// and defaults to the face when none exists.
func SelectCombatTargets(state game.GameState, self game.PlayerID) []AttackTarget {
	own := state.Seat(self)
	enemy := state.Seat(self.Other())

	allSmall := true
	for _, b := range enemy.Board {
		if b.Card.Power > ignorablePower {
			allSmall = false
			break
		}
	}

	var attacks []AttackTarget
	for _, attacker := range own.Board {
		if !attacker.CanAttack || attacker.IsTapped {
			continue
		}

		if len(enemy.Board) == 0 || allSmall {
			attacks = append(attacks, AttackTarget{
				AttackerID:     attacker.Card.ID,
				TargetID:       combat.TargetFace,
				ExpectedDamage: attacker.Card.Power,
			})
			continue
		}

		attacks = append(attacks, pickTrade(attacker, enemy.Board))
	}
	return attacks
}

// pickTrade looks for a favorable trade against a threatening defender:
// the attacker can kill it and survives the strike back.
func pickTrade(attacker cards.BoardCard, defenders []cards.BoardCard) AttackTarget {
	for _, target := range defenders {
		if target.Card.Power < threatPower {
			continue
		}
		if attacker.Card.Power >= target.Card.Defense && target.Card.Power < attacker.Card.Defense {
			return AttackTarget{
				AttackerID:     attacker.Card.ID,
				TargetID:       target.Card.ID,
				ExpectedDamage: attacker.Card.Power,
			}
		}
	}
	return AttackTarget{
		AttackerID:     attacker.Card.ID,
		TargetID:       combat.TargetFace,
		ExpectedDamage: attacker.Card.Power,
	}
}
