// Package problems defines the contract for the external battle-problem
// generation service and a deterministic local generator used when the
// service is unavailable.
package problems

import (
	"context"
	"strings"
	"time"

	"github.com/cardquest/duel-server-go/internal/game/cards"
)

// AnswerTimeout is the hard window a player has to answer a battle problem.
// On expiry the pending answer is treated as submitted-incorrect.
const AnswerTimeout = 30 * time.Second

// Problem is a generated knowledge problem attached to an attack.
// The core treats it as opaque beyond these fields.
type Problem struct {
	ID            string         `json:"id"`
	Question      string         `json:"question"`
	Options       []string       `json:"options,omitempty"`
	CorrectAnswer string         `json:"correctAnswer"`
	Difficulty    int            `json:"difficulty"`
	Category      cards.Category `json:"category"`
}

// IsCorrect validates a submitted answer against the problem's correct
// answer, case-insensitively and ignoring surrounding whitespace.
func (p Problem) IsCorrect(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(p.CorrectAnswer))
}

// Request describes the card context a problem is generated for.
type Request struct {
	Category    cards.Category `json:"category"`
	Difficulty  int            `json:"difficulty"`
	CardName    string         `json:"cardName"`
	CardElement cards.Element  `json:"cardElement"`
	CardTags    []string       `json:"cardTags,omitempty"`
}

// Source produces battle problems. Implementations must be safe for
// concurrent use across games.
type Source interface {
	Generate(ctx context.Context, req Request) (Problem, error)
}
