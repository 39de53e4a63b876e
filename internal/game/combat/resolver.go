// Package combat implements damage and battle resolution as pure functions.
package combat

import (
	"math"

	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/problems"
)

// TargetFace is the target id for an attack aimed at the player directly.
const TargetFace = "face"

// elementalPrey maps each element to the element it has advantage over.
var elementalPrey = map[cards.Element]cards.Element{
	cards.ElementFire:  cards.ElementEarth,
	cards.ElementEarth: cards.ElementAir,
	cards.ElementAir:   cards.ElementWater,
	cards.ElementWater: cards.ElementFire,
}

// HasElementalAdvantage reports whether attacker's element beats defender's.
func HasElementalAdvantage(attacker, defender cards.Element) bool {
	return elementalPrey[attacker] == defender
}

// DamageBreakdown itemizes one attack's damage computation.
type DamageBreakdown struct {
	BaseDamage     int `json:"baseDamage"`
	AccuracyBonus  int `json:"accuracyBonus"`
	ElementalBonus int `json:"elementalBonus"`
	TotalDamage    int `json:"totalDamage"`
}

// CalculateDamage computes the damage an attacker deals to a defender.
//
// An incorrect answer fizzles the attack entirely: total damage is zero.
// On a correct answer, bonuses are added to base damage before the
// defender's defense is subtracted, and a successful attack always deals
// at least 1.
func CalculateDamage(attacker, defender cards.Card, answeredCorrectly bool) DamageBreakdown {
	base := attacker.Power
	if base < 1 {
		base = 1
	}

	breakdown := DamageBreakdown{BaseDamage: base}
	if !answeredCorrectly {
		return breakdown
	}

	breakdown.AccuracyBonus = int(math.Ceil(float64(base) * 0.5))
	if HasElementalAdvantage(attacker.Element, defender.Element) {
		breakdown.ElementalBonus = int(math.Ceil(float64(base) * 0.25))
	}

	total := base + breakdown.AccuracyBonus + breakdown.ElementalBonus - defender.Defense
	if total < 1 {
		total = 1
	}
	breakdown.TotalDamage = total
	return breakdown
}

// FaceDamage computes damage against a player directly. There is no defense
// to subtract, so a correct answer deals base plus bonuses.
func FaceDamage(attacker cards.Card, answeredCorrectly bool) DamageBreakdown {
	base := attacker.Power
	if base < 1 {
		base = 1
	}

	breakdown := DamageBreakdown{BaseDamage: base}
	if !answeredCorrectly {
		return breakdown
	}

	breakdown.AccuracyBonus = int(math.Ceil(float64(base) * 0.5))
	breakdown.TotalDamage = base + breakdown.AccuracyBonus
	return breakdown
}

// BattleOutcome identifies the winner of a head-to-head battle.
type BattleOutcome string

const (
	OutcomeAttackerWins BattleOutcome = "attacker"
	OutcomeDefenderWins BattleOutcome = "defender"
	OutcomeDraw         BattleOutcome = "draw"
)

// BattleResult reports both sides of a resolved battle.
type BattleResult struct {
	AttackerCorrect bool            `json:"attackerCorrect"`
	DefenderCorrect bool            `json:"defenderCorrect"`
	AttackerDamage  DamageBreakdown `json:"attackerDamage"`
	DefenderDamage  DamageBreakdown `json:"defenderDamage"`
	Outcome         BattleOutcome   `json:"outcome"`
}

// ResolveBattle validates both answers, computes damage in each direction,
// and declares the side that dealt more damage the winner. Equal damage is
// a draw.
func ResolveBattle(
	attacker, defender cards.Card,
	attackerProblem, defenderProblem problems.Problem,
	attackerAnswer, defenderAnswer string,
) BattleResult {
	attackerCorrect := attackerProblem.IsCorrect(attackerAnswer)
	defenderCorrect := defenderProblem.IsCorrect(defenderAnswer)

	result := BattleResult{
		AttackerCorrect: attackerCorrect,
		DefenderCorrect: defenderCorrect,
		AttackerDamage:  CalculateDamage(attacker, defender, attackerCorrect),
		DefenderDamage:  CalculateDamage(defender, attacker, defenderCorrect),
	}

	switch {
	case result.AttackerDamage.TotalDamage > result.DefenderDamage.TotalDamage:
		result.Outcome = OutcomeAttackerWins
	case result.DefenderDamage.TotalDamage > result.AttackerDamage.TotalDamage:
		result.Outcome = OutcomeDefenderWins
	default:
		result.Outcome = OutcomeDraw
	}
	return result
}
