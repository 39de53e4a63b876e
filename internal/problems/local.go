package problems

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// LocalGenerator produces arithmetic problems without any external service.
// Generation is deterministic in the request fields so a retried attack sees
// the same problem.
type LocalGenerator struct{}

// NewLocalGenerator creates a deterministic local problem generator.
func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{}
}

// Generate builds an arithmetic problem scaled by difficulty. The category
// in the request is echoed back, but the problem body is always arithmetic;
// richer categories belong to the external service.
func (g *LocalGenerator) Generate(_ context.Context, req Request) (Problem, error) {
	difficulty := req.Difficulty
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > 15 {
		difficulty = 15
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", req.CardName, req.CardElement, difficulty)
	seed := h.Sum64()

	// Operand magnitude grows with difficulty.
	span := uint64(difficulty * 9)
	a := int(seed%span) + difficulty
	b := int((seed/span)%span) + 1

	var question string
	var answer int
	switch seed % 3 {
	case 0:
		question = fmt.Sprintf("What is %d + %d?", a, b)
		answer = a + b
	case 1:
		question = fmt.Sprintf("What is %d - %d?", a+b, b)
		answer = a
	default:
		question = fmt.Sprintf("What is %d × %d?", a, b)
		answer = a * b
	}

	return Problem{
		ID:            uuid.NewString(),
		Question:      question,
		CorrectAnswer: fmt.Sprintf("%d", answer),
		Difficulty:    difficulty,
		Category:      req.Category,
	}, nil
}
