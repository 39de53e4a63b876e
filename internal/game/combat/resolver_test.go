package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/problems"
)

func creature(power, defense int, element cards.Element) cards.Card {
	return cards.Card{
		ID:              "c-" + string(element),
		Name:            "Test Creature",
		Cost:            3,
		Power:           power,
		Defense:         defense,
		Element:         element,
		ProblemCategory: cards.CategoryMath,
	}
}

func TestElementalAdvantageCycle(t *testing.T) {
	cases := []struct {
		attacker, defender cards.Element
		advantage          bool
	}{
		{cards.ElementFire, cards.ElementEarth, true},
		{cards.ElementEarth, cards.ElementAir, true},
		{cards.ElementAir, cards.ElementWater, true},
		{cards.ElementWater, cards.ElementFire, true},
		{cards.ElementEarth, cards.ElementFire, false},
		{cards.ElementFire, cards.ElementWater, false},
		{cards.ElementFire, cards.ElementFire, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.advantage, HasElementalAdvantage(tc.attacker, tc.defender),
			"%s vs %s", tc.attacker, tc.defender)
	}
}

func TestCalculateDamageCorrectAnswer(t *testing.T) {
	attacker := creature(6, 2, cards.ElementFire)
	defender := creature(3, 4, cards.ElementEarth)

	breakdown := CalculateDamage(attacker, defender, true)

	assert.Equal(t, 6, breakdown.BaseDamage)
	assert.Equal(t, 3, breakdown.AccuracyBonus, "ceil(6*0.5)")
	assert.Equal(t, 2, breakdown.ElementalBonus, "ceil(6*0.25), Fire beats Earth")
	assert.Equal(t, 7, breakdown.TotalDamage, "6+3+2-4")
}

func TestCalculateDamageNoAdvantage(t *testing.T) {
	attacker := creature(5, 2, cards.ElementWater)
	defender := creature(3, 4, cards.ElementEarth)

	breakdown := CalculateDamage(attacker, defender, true)

	assert.Equal(t, 0, breakdown.ElementalBonus)
	assert.Equal(t, 4, breakdown.TotalDamage, "5+3+0-4")
}

func TestCalculateDamageFizzlesOnWrongAnswer(t *testing.T) {
	attacker := creature(10, 2, cards.ElementFire)
	defender := creature(1, 1, cards.ElementEarth)

	breakdown := CalculateDamage(attacker, defender, false)

	assert.Equal(t, 10, breakdown.BaseDamage)
	assert.Equal(t, 0, breakdown.AccuracyBonus)
	assert.Equal(t, 0, breakdown.ElementalBonus)
	assert.Equal(t, 0, breakdown.TotalDamage, "wrong answer deals no damage")
}

func TestCalculateDamageFloorsAtOne(t *testing.T) {
	attacker := creature(1, 1, cards.ElementWater)
	defender := creature(1, 10, cards.ElementEarth)

	breakdown := CalculateDamage(attacker, defender, true)

	assert.Equal(t, 1, breakdown.TotalDamage, "successful attack deals at least 1")
}

func TestFaceDamage(t *testing.T) {
	attacker := creature(4, 2, cards.ElementAir)

	assert.Equal(t, 6, FaceDamage(attacker, true).TotalDamage, "4 + ceil(4*0.5)")
	assert.Equal(t, 0, FaceDamage(attacker, false).TotalDamage)
}

func TestResolveBattle(t *testing.T) {
	attacker := creature(6, 5, cards.ElementFire)
	defender := creature(3, 4, cards.ElementEarth)

	attackerProblem := problems.Problem{ID: "p1", Question: "2+2?", CorrectAnswer: "4", Difficulty: 1}
	defenderProblem := problems.Problem{ID: "p2", Question: "3+3?", CorrectAnswer: "6", Difficulty: 1}

	result := ResolveBattle(attacker, defender, attackerProblem, defenderProblem, " 4 ", "seven")

	assert.True(t, result.AttackerCorrect, "answers are trimmed before comparison")
	assert.False(t, result.DefenderCorrect)
	assert.Equal(t, 7, result.AttackerDamage.TotalDamage)
	assert.Equal(t, 0, result.DefenderDamage.TotalDamage)
	assert.Equal(t, OutcomeAttackerWins, result.Outcome)
}

func TestResolveBattleCaseInsensitiveAnswers(t *testing.T) {
	attacker := creature(3, 3, cards.ElementWater)
	defender := creature(3, 3, cards.ElementEarth)

	problem := problems.Problem{ID: "p", Question: "Largest planet?", CorrectAnswer: "Jupiter", Difficulty: 2}

	result := ResolveBattle(attacker, defender, problem, problem, "JUPITER", "jupiter")

	assert.True(t, result.AttackerCorrect)
	assert.True(t, result.DefenderCorrect)
	assert.Equal(t, OutcomeDraw, result.Outcome, "mirror stats and both correct is a draw")
}
