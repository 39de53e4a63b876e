package ai

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cardquest/duel-server-go/internal/problems"
)

// Level tunes how reliably the AI answers battle problems.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelNormal Level = "normal"
	LevelHard   Level = "hard"
)

const (
	minAccuracy = 0.1
	maxAccuracy = 0.95
)

// CalculateAccuracy returns the probability the AI answers a problem of the
// given difficulty correctly. Base accuracy falls linearly with difficulty
// and floors at 0.3; the level shifts it by ±0.2; the final value is
// clamped to [0.1, 0.95].
func CalculateAccuracy(difficulty int, level Level) float64 {
	base := 1.0 - float64(difficulty)/15.0
	if base < 0.3 {
		base = 0.3
	}

	switch level {
	case LevelEasy:
		base -= 0.2
	case LevelHard:
		base += 0.2
	}

	if base < minAccuracy {
		return minAccuracy
	}
	if base > maxAccuracy {
		return maxAccuracy
	}
	return base
}

// plausibleWrongAnswers covers non-numeric problems with no option list.
var plausibleWrongAnswers = []string{
	"not sure",
	"none of the above",
	"it depends",
	"unknown",
}

// Solver simulates the AI answering battle problems. The random source is
// injected so tests are deterministic.
type Solver struct {
	level Level
	rng   *rand.Rand
}

// NewSolver creates a solver at the given level.
func NewSolver(level Level, rng *rand.Rand) *Solver {
	return &Solver{level: level, rng: rng}
}

// SimulateAnswer draws a Bernoulli trial at the problem's accuracy. On
// success it returns the correct answer; on failure a plausible wrong one.
func (s *Solver) SimulateAnswer(problem problems.Problem) string {
	accuracy := CalculateAccuracy(problem.Difficulty, s.level)
	if s.rng.Float64() < accuracy {
		return problem.CorrectAnswer
	}
	return s.wrongAnswer(problem)
}

// wrongAnswer produces an incorrect but plausible answer: numeric answers
// get a small offset or a ±20% shift, option lists yield a wrong option,
// anything else draws from a fixed set.
func (s *Solver) wrongAnswer(problem problems.Problem) string {
	correct := strings.TrimSpace(problem.CorrectAnswer)

	if n, err := strconv.Atoi(correct); err == nil {
		var wrong int
		if s.rng.Intn(2) == 0 {
			offset := s.rng.Intn(3) + 1
			if s.rng.Intn(2) == 0 {
				offset = -offset
			}
			wrong = n + offset
		} else {
			shift := n / 5
			if shift == 0 {
				shift = 1
			}
			if s.rng.Intn(2) == 0 {
				shift = -shift
			}
			wrong = n + shift
		}
		if wrong == n {
			wrong = n + 1
		}
		return fmt.Sprintf("%d", wrong)
	}

	for _, option := range problem.Options {
		if !problem.IsCorrect(option) {
			return option
		}
	}

	return plausibleWrongAnswers[s.rng.Intn(len(plausibleWrongAnswers))]
}
