package ai

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/cardquest/duel-server-go/internal/game"
	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/game/rules"
	"github.com/cardquest/duel-server-go/internal/persistence"
	"github.com/cardquest/duel-server-go/internal/problems"
)

// maxPlaysPerTurn bounds the main-phase play loop so a turn always
// terminates even if a decision repeats.
const maxPlaysPerTurn = 10

// DelayRange is a simulated thinking pause. A zero range is skipped
// entirely, which is how tests and headless simulation run at full speed.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// Delays paces the opponent's discrete steps for perceived realism.
type Delays struct {
	ChooseCard    DelayRange // picking a card or target, e.g. 1-2s
	AnswerProblem DelayRange // answering a battle problem, e.g. 3-5s
	PhaseStep     DelayRange // between phase advances
}

// Opponent plays one seat of a duel through the public action contract.
// It holds no per-turn mutable state: every step loads a snapshot, asks
// the pure decision functions, executes, and persists.
type Opponent struct {
	store  persistence.Store
	source problems.Source
	solver *Solver
	seat   game.PlayerID
	delays Delays
	rng    *rand.Rand
	logger *zap.Logger
}

// NewOpponent creates an automated player for the given seat. In a normal
// duel the AI holds the opponent seat; simulation runs one per seat.
func NewOpponent(store persistence.Store, source problems.Source, seat game.PlayerID, level Level, delays Delays, rng *rand.Rand, logger *zap.Logger) *Opponent {
	return &Opponent{
		store:  store,
		source: source,
		solver: NewSolver(level, rng),
		seat:   seat,
		delays: delays,
		rng:    rng,
		logger: logger,
	}
}

// TakeTurn plays one full turn for the AI seat: main-phase plays, combat
// with problem-gated attacks, then the end phases. State is persisted
// after every sub-step, and the turn ends with the other seat active at a
// playable phase (or the game over).
func (o *Opponent) TakeTurn(ctx context.Context, gameID string) error {
	tm, err := o.store.Load(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load game %s: %w", gameID, err)
	}

	state := tm.Snapshot()
	if state.ActivePlayer != o.seat {
		return fmt.Errorf("game %s: not the AI seat's turn (active: %s)", gameID, state.ActivePlayer)
	}
	if over := tm.IsGameOver(); over.GameOver {
		return fmt.Errorf("game %s is already over", gameID)
	}

	if err := o.playMainPhase(ctx, tm); err != nil {
		return err
	}
	if err := o.advanceTo(ctx, tm, rules.PhaseDeclareAttackers); err != nil {
		return err
	}
	if err := o.fightCombat(ctx, tm); err != nil {
		return err
	}
	if err := o.finishTurn(ctx, tm); err != nil {
		return err
	}

	if over := tm.IsGameOver(); over.GameOver {
		o.logger.Info("duel finished during AI turn",
			zap.String("game_id", gameID),
			zap.String("winner", string(over.Winner)),
			zap.Bool("draw", over.Draw),
		)
	}
	return nil
}

// playMainPhase executes plays until the decision engine passes, bounded
// to guarantee termination.
func (o *Opponent) playMainPhase(ctx context.Context, tm *game.TurnManager) error {
	for plays := 0; plays < maxPlaysPerTurn; plays++ {
		state := tm.Snapshot()
		if !rules.IsMainPhase(state.CurrentPhase) {
			return nil
		}

		decision := MakeDecision(state, o.seat, state.CurrentPhase)
		if decision == nil || decision.CardID == "" {
			return nil
		}

		if err := o.pause(ctx, o.delays.ChooseCard); err != nil {
			return err
		}

		result := tm.ExecuteAction(game.GameAction{
			Type:     rules.ActionPlayCard,
			PlayerID: o.seat,
			Data:     map[string]any{"cardId": decision.CardID},
		})
		if !result.Success {
			// The decision engine and the rules disagree; stop playing
			// rather than loop on a rejected action.
			o.logger.Warn("AI play rejected",
				zap.String("game_id", tm.GameID()),
				zap.String("card_id", decision.CardID),
				zap.String("reason", result.Error),
			)
			return nil
		}

		o.logger.Debug("AI played card",
			zap.String("game_id", tm.GameID()),
			zap.String("card_id", decision.CardID),
			zap.String("kind", string(decision.Kind)),
			zap.String("reasoning", decision.Reasoning),
		)

		if err := o.persist(ctx, tm); err != nil {
			return err
		}
	}
	return nil
}

// fightCombat plans targets, answers one battle problem per attack, and
// executes the attacks.
func (o *Opponent) fightCombat(ctx context.Context, tm *game.TurnManager) error {
	state := tm.Snapshot()
	if state.ActivePlayer != o.seat || state.CurrentPhase != rules.PhaseDeclareAttackers {
		return nil
	}
	decision := MakeDecision(state, o.seat, state.CurrentPhase)
	if decision == nil || len(decision.Attacks) == 0 {
		return nil
	}

	o.logger.Debug("AI combat plan",
		zap.String("game_id", tm.GameID()),
		zap.String("kind", string(decision.Kind)),
		zap.Int("attacks", len(decision.Attacks)),
	)

	for _, attack := range decision.Attacks {
		snap := tm.Snapshot()
		attacker, ok := snap.Seat(o.seat).FindBoardCard(attack.AttackerID)
		if !ok {
			continue
		}

		answered, err := o.answerProblem(ctx, attacker.Card)
		if err != nil {
			return err
		}

		result := tm.ExecuteAction(game.GameAction{
			Type:     rules.ActionAttack,
			PlayerID: o.seat,
			Data: map[string]any{
				"cardId":            attack.AttackerID,
				"targetId":          attack.TargetID,
				"answeredCorrectly": answered,
			},
		})
		if !result.Success {
			o.logger.Warn("AI attack rejected",
				zap.String("game_id", tm.GameID()),
				zap.String("card_id", attack.AttackerID),
				zap.String("reason", result.Error),
			)
			continue
		}

		if err := o.persist(ctx, tm); err != nil {
			return err
		}
	}
	return nil
}

// finishTurn advances through the remaining phases until the other seat is
// active at a playable phase.
func (o *Opponent) finishTurn(ctx context.Context, tm *game.TurnManager) error {
	for tm.Snapshot().ActivePlayer == o.seat {
		if err := o.pause(ctx, o.delays.PhaseStep); err != nil {
			return err
		}
		tm.AdvancePhase()
		if err := o.persist(ctx, tm); err != nil {
			return err
		}
	}
	return nil
}

// advanceTo steps forward until the given phase, persisting each step. It
// stops as soon as the turn passes to the other seat: a turn resumed past
// the target phase (the state is persisted after every sub-step) ends at
// the boundary instead of eating into the opponent's phases.
func (o *Opponent) advanceTo(ctx context.Context, tm *game.TurnManager, target rules.Phase) error {
	for {
		state := tm.Snapshot()
		if state.CurrentPhase == target || state.ActivePlayer != o.seat {
			return nil
		}
		if err := o.pause(ctx, o.delays.PhaseStep); err != nil {
			return err
		}
		tm.AdvancePhase()
		if err := o.persist(ctx, tm); err != nil {
			return err
		}
	}
}

// answerProblem requests a battle problem for the attacking card and
// simulates answering it. The answer window is a hard timeout: if it
// expires, the pending answer counts as submitted-incorrect rather than
// failing the attack.
func (o *Opponent) answerProblem(ctx context.Context, card cards.Card) (bool, error) {
	window, cancel := context.WithTimeout(ctx, problems.AnswerTimeout)
	defer cancel()

	problem, err := o.source.Generate(window, problems.Request{
		Category:    card.ProblemCategory,
		Difficulty:  card.Cost,
		CardName:    card.Name,
		CardElement: card.Element,
		CardTags:    card.Tags,
	})
	if err != nil {
		return false, fmt.Errorf("failed to generate problem for %s: %w", card.Name, err)
	}

	if err := o.pause(window, o.delays.AnswerProblem); err != nil {
		if window.Err() != nil && ctx.Err() == nil {
			// Window expired: the answer counts as wrong.
			return false, nil
		}
		return false, err
	}

	answer := o.solver.SimulateAnswer(problem)
	correct := problem.IsCorrect(answer)

	o.logger.Debug("AI answered battle problem",
		zap.String("card", card.Name),
		zap.Int("difficulty", problem.Difficulty),
		zap.Bool("correct", correct),
	)
	return correct, nil
}

func (o *Opponent) persist(ctx context.Context, tm *game.TurnManager) error {
	if err := o.store.Save(ctx, tm); err != nil {
		return fmt.Errorf("failed to persist game %s: %w", tm.GameID(), err)
	}
	return nil
}

// pause sleeps a random duration inside the range, returning early if the
// context is cancelled. Zero ranges are skipped so headless runs are
// instant. Pauses only occur between committed transitions, never inside
// a mutation.
func (o *Opponent) pause(ctx context.Context, r DelayRange) error {
	if r.Max <= 0 {
		return nil
	}
	d := r.Min
	if span := r.Max - r.Min; span > 0 {
		d += time.Duration(o.rng.Int63n(int64(span)))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
