package ai

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardquest/duel-server-go/internal/problems"
)

func TestCalculateAccuracyNormalLevel(t *testing.T) {
	cases := []struct {
		difficulty int
		want       float64
	}{
		{1, 0.93},
		{5, 0.67},
		{10, 0.33},
		{15, 0.30},
	}

	for _, tc := range cases {
		got := CalculateAccuracy(tc.difficulty, LevelNormal)
		assert.InDelta(t, tc.want, got, 0.02, "difficulty %d", tc.difficulty)
	}
}

func TestCalculateAccuracyLevelModifiers(t *testing.T) {
	normal := CalculateAccuracy(5, LevelNormal)
	assert.InDelta(t, normal-0.2, CalculateAccuracy(5, LevelEasy), 0.001)
	assert.InDelta(t, normal+0.2, CalculateAccuracy(5, LevelHard), 0.001)
}

func TestCalculateAccuracyClamps(t *testing.T) {
	assert.Equal(t, 0.95, CalculateAccuracy(1, LevelHard), "upper clamp")
	assert.InDelta(t, 0.1, CalculateAccuracy(15, LevelEasy), 0.001, "lower clamp")
}

func TestSimulateAnswerAccuracyConverges(t *testing.T) {
	solver := NewSolver(LevelNormal, rand.New(rand.NewSource(1)))
	problem := problems.Problem{
		ID: "p", Question: "6 x 7?", CorrectAnswer: "42", Difficulty: 5,
	}

	const trials = 5000
	correct := 0
	for i := 0; i < trials; i++ {
		if problem.IsCorrect(solver.SimulateAnswer(problem)) {
			correct++
		}
	}

	rate := float64(correct) / float64(trials)
	assert.InDelta(t, CalculateAccuracy(5, LevelNormal), rate, 0.03)
}

func TestWrongNumericAnswerIsNeverCorrect(t *testing.T) {
	solver := NewSolver(LevelNormal, rand.New(rand.NewSource(7)))
	problem := problems.Problem{
		ID: "p", Question: "10 + 5?", CorrectAnswer: "15", Difficulty: 3,
	}

	for i := 0; i < 200; i++ {
		wrong := solver.wrongAnswer(problem)
		assert.False(t, problem.IsCorrect(wrong), "wrong answer %q must not match", wrong)
	}
}

func TestWrongAnswerPrefersWrongOption(t *testing.T) {
	solver := NewSolver(LevelNormal, rand.New(rand.NewSource(3)))
	problem := problems.Problem{
		ID:            "p",
		Question:      "Largest planet?",
		Options:       []string{"Jupiter", "Saturn", "Neptune"},
		CorrectAnswer: "Jupiter",
		Difficulty:    4,
	}

	wrong := solver.wrongAnswer(problem)
	assert.Contains(t, []string{"Saturn", "Neptune"}, wrong)
}

func TestWrongAnswerWithoutOptionsIsPlausibleString(t *testing.T) {
	solver := NewSolver(LevelNormal, rand.New(rand.NewSource(9)))
	problem := problems.Problem{
		ID: "p", Question: "Why is the sky blue?", CorrectAnswer: "Rayleigh scattering", Difficulty: 8,
	}

	wrong := solver.wrongAnswer(problem)
	assert.Contains(t, plausibleWrongAnswers, wrong)
}
