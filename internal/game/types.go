// Package game implements the duel engine core: the per-game TurnManager,
// its state model, and the automatic phase machinery built on the rules and
// combat packages.
package game

import (
	"time"

	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/game/rules"
)

// StartingHealth is each player's health at match start. Healing effects
// cannot raise health above it.
const StartingHealth = 20

// MaxMana is the cap on a player's mana capacity.
const MaxMana = 10

// OpeningHandSize is the number of cards drawn at match start.
const OpeningHandSize = 4

// PlayerID identifies one of the two seats in a duel.
type PlayerID string

const (
	PlayerSelf     PlayerID = "player"
	PlayerOpponent PlayerID = "opponent"
)

// Other returns the opposing seat.
func (p PlayerID) Other() PlayerID {
	if p == PlayerSelf {
		return PlayerOpponent
	}
	return PlayerSelf
}

// PlayerState is the full mutable state of one seat.
type PlayerState struct {
	Mana           int               `json:"mana"`
	MaxMana        int               `json:"maxMana"`
	Health         int               `json:"health"`
	Hand           []cards.Card      `json:"hand"`
	Board          []cards.BoardCard `json:"board"`
	Deck           []cards.Card      `json:"deck"`
	Discard        []cards.Card      `json:"discard"`
	FatigueCounter int               `json:"fatigueCounter"`
	TurnsTaken     int               `json:"turnsTaken"`
}

// BoardPower sums the power of every creature on the board.
func (p *PlayerState) BoardPower() int {
	total := 0
	for _, b := range p.Board {
		total += b.Card.Power
	}
	return total
}

// FindBoardCard returns the board entry with the given card id.
func (p *PlayerState) FindBoardCard(cardID string) (*cards.BoardCard, bool) {
	for i := range p.Board {
		if p.Board[i].Card.ID == cardID {
			return &p.Board[i], true
		}
	}
	return nil, false
}

// GameAction is one entry in the append-only action log.
type GameAction struct {
	Type      rules.ActionType `json:"type"`
	PlayerID  PlayerID         `json:"playerId"`
	Timestamp time.Time        `json:"timestamp"`
	Data      map[string]any   `json:"data,omitempty"`
}

// ActionResult is the structured outcome of ExecuteAction. Rule violations
// are reported here, never as fatal errors, and imply zero state mutation.
type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func rejected(reason string) ActionResult {
	return ActionResult{Success: false, Error: reason}
}

func accepted() ActionResult {
	return ActionResult{Success: true}
}

// PendingAttack is an attack declared during declare_attackers, waiting for
// the automatic combat_damage phase. AnsweredCorrectly carries the outcome
// of the attacker's battle problem, validated before declaration.
type PendingAttack struct {
	AttackerID        string `json:"attackerId"`
	TargetID          string `json:"targetId"`
	AnsweredCorrectly bool   `json:"answeredCorrectly"`
}

// CombatAssignments tracks declared attacks and blocker assignments for the
// current combat. Cleared when combat ends.
type CombatAssignments struct {
	Attacks []PendingAttack   `json:"attacks,omitempty"`
	Blocks  map[string]string `json:"blocks,omitempty"` // attacker card id -> blocker card id
}

// GameState is the complete persisted state of one duel.
type GameState struct {
	GameID        string            `json:"gameId"`
	TurnNumber    int               `json:"turnNumber"`
	ActivePlayer  PlayerID          `json:"activePlayer"`
	CurrentPhase  rules.Phase       `json:"currentPhase"`
	Player        PlayerState       `json:"playerState"`
	Opponent      PlayerState       `json:"opponentState"`
	Combat        CombatAssignments `json:"combat"`
	ActionHistory []GameAction      `json:"actionHistory"`
}

// Seat returns the state for the given player id.
func (s *GameState) Seat(id PlayerID) *PlayerState {
	if id == PlayerSelf {
		return &s.Player
	}
	return &s.Opponent
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() GameState {
	out := *s
	out.Player = clonePlayer(&s.Player)
	out.Opponent = clonePlayer(&s.Opponent)
	out.Combat = CombatAssignments{
		Attacks: append([]PendingAttack(nil), s.Combat.Attacks...),
	}
	if s.Combat.Blocks != nil {
		out.Combat.Blocks = make(map[string]string, len(s.Combat.Blocks))
		for k, v := range s.Combat.Blocks {
			out.Combat.Blocks[k] = v
		}
	}
	out.ActionHistory = make([]GameAction, len(s.ActionHistory))
	for i, a := range s.ActionHistory {
		out.ActionHistory[i] = cloneAction(a)
	}
	return out
}

func clonePlayer(p *PlayerState) PlayerState {
	out := *p
	out.Hand = cloneCards(p.Hand)
	out.Board = append([]cards.BoardCard(nil), p.Board...)
	for i := range out.Board {
		out.Board[i].Card = cloneCard(out.Board[i].Card)
	}
	out.Deck = cloneCards(p.Deck)
	out.Discard = cloneCards(p.Discard)
	return out
}

func cloneCards(in []cards.Card) []cards.Card {
	if in == nil {
		return nil
	}
	out := make([]cards.Card, len(in))
	for i, c := range in {
		out[i] = cloneCard(c)
	}
	return out
}

func cloneCard(c cards.Card) cards.Card {
	out := c
	out.Tags = append([]string(nil), c.Tags...)
	if c.Ability != nil {
		ability := *c.Ability
		out.Ability = &ability
	}
	return out
}

func cloneAction(a GameAction) GameAction {
	out := a
	if a.Data != nil {
		out.Data = make(map[string]any, len(a.Data))
		for k, v := range a.Data {
			out.Data[k] = v
		}
	}
	return out
}

// GameEvent is a notification emitted after a committed state transition.
// Handlers receive events in commit order, must not block, and must not
// mutate game state.
type GameEvent struct {
	Type      string         `json:"type"`
	GameID    string         `json:"gameId"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventHandler receives game events, e.g. for a spectator feed.
type EventHandler func(event GameEvent)
