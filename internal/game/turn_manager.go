package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cardquest/duel-server-go/internal/game/cards"
	"github.com/cardquest/duel-server-go/internal/game/combat"
	"github.com/cardquest/duel-server-go/internal/game/rules"
)

// maxBoardSize caps the number of creatures a player may control.
const maxBoardSize = 7

// TurnManager owns one duel's mutable state. It is the only component that
// mutates game state; every change flows through StartTurn, AdvancePhase,
// ExecuteAction, or ApplyDamage. TurnManager performs no internal locking:
// callers serialize access per game id.
type TurnManager struct {
	state   GameState
	logger  *zap.Logger
	handler EventHandler
	now     func() time.Time
}

// NewTurnManager creates a duel at turn 1 with both seats at starting
// health. Opening hands are drawn from the front of each deck, then the
// first turn begins for the player seat, leaving the game at
// pre_combat_main.
func NewTurnManager(gameID string, playerDeck, opponentDeck []cards.Card, logger *zap.Logger) *TurnManager {
	tm := &TurnManager{
		state: GameState{
			GameID:       gameID,
			TurnNumber:   1,
			ActivePlayer: PlayerSelf,
			CurrentPhase: rules.PhaseUntap,
			Player:       newPlayerState(playerDeck),
			Opponent:     newPlayerState(opponentDeck),
		},
		logger: logger,
		now:    time.Now,
	}

	for i := 0; i < OpeningHandSize; i++ {
		tm.draw(PlayerSelf)
		tm.draw(PlayerOpponent)
	}
	tm.StartTurn()
	return tm
}

// Restore rebuilds a TurnManager around a previously persisted state.
// The restored manager's Snapshot is field-for-field identical to the
// state that was saved.
func Restore(state GameState, logger *zap.Logger) *TurnManager {
	restored := state.Clone()
	return &TurnManager{
		state:  restored,
		logger: logger,
		now:    time.Now,
	}
}

func newPlayerState(deck []cards.Card) PlayerState {
	return PlayerState{
		Health: StartingHealth,
		Deck:   cloneCards(deck),
	}
}

// SetEventHandler registers a handler for committed state transitions.
// The handler is invoked in commit order on the mutating goroutine; it
// must not block and must not call back into the TurnManager.
func (tm *TurnManager) SetEventHandler(handler EventHandler) {
	tm.handler = handler
}

// setClock replaces the timestamp source, for deterministic tests.
func (tm *TurnManager) setClock(now func() time.Time) {
	tm.now = now
}

// GameID returns the duel's identifier.
func (tm *TurnManager) GameID() string {
	return tm.state.GameID
}

// Snapshot returns a deep-copied, read-only view of the game state.
func (tm *TurnManager) Snapshot() GameState {
	return tm.state.Clone()
}

// StartTurn runs the Beginning-group automation for the active player:
// untap the board, recharge mana, draw one card. A draw against an empty
// deck adds no card; it increments the fatigue counter and deals damage
// equal to the new counter value. The game is left at pre_combat_main.
func (tm *TurnManager) StartTurn() {
	seat := tm.state.Seat(tm.state.ActivePlayer)
	seat.TurnsTaken++

	for i := range seat.Board {
		seat.Board[i].Untap()
	}

	if seat.MaxMana < MaxMana {
		seat.MaxMana++
	}
	seat.Mana = seat.MaxMana

	drew := tm.draw(tm.state.ActivePlayer)

	tm.state.CurrentPhase = rules.PhasePreCombatMain

	tm.appendHistory(GameAction{
		Type:      rules.ActionStartTurn,
		PlayerID:  tm.state.ActivePlayer,
		Timestamp: tm.now(),
		Data: map[string]any{
			"turnNumber": tm.state.TurnNumber,
			"mana":       seat.Mana,
			"drewCard":   drew,
		},
	})

	tm.logger.Debug("turn started",
		zap.String("game_id", tm.state.GameID),
		zap.Int("turn", tm.state.TurnNumber),
		zap.String("active_player", string(tm.state.ActivePlayer)),
		zap.Int("mana", seat.Mana),
	)

	tm.emit("turn_start", map[string]any{
		"turnNumber":   tm.state.TurnNumber,
		"activePlayer": string(tm.state.ActivePlayer),
	})
}

// draw moves the top deck card to the seat's hand, or applies fatigue when
// the deck is empty. Returns whether a card was drawn.
func (tm *TurnManager) draw(id PlayerID) bool {
	seat := tm.state.Seat(id)
	if len(seat.Deck) > 0 {
		card := seat.Deck[0]
		seat.Deck = seat.Deck[1:]
		seat.Hand = append(seat.Hand, card)
		return true
	}

	seat.FatigueCounter++
	tm.dealDamage(id, seat.FatigueCounter)
	tm.logger.Warn("fatigue damage from empty deck",
		zap.String("game_id", tm.state.GameID),
		zap.String("player", string(id)),
		zap.Int("fatigue", seat.FatigueCounter),
	)
	return false
}

// AdvancePhase moves the game to the next phase. On the cleanup wrap it
// increments the turn number, flips the active player, and starts the new
// turn, so the caller always observes a playable phase afterwards. Combat
// is resolved automatically when the combat_damage phase is entered.
func (tm *TurnManager) AdvancePhase() rules.Phase {
	next, boundary := rules.NextPhase(tm.state.CurrentPhase)
	if boundary {
		tm.state.TurnNumber++
		tm.state.ActivePlayer = tm.state.ActivePlayer.Other()
		tm.state.CurrentPhase = next
		tm.StartTurn()
		return tm.state.CurrentPhase
	}

	tm.state.CurrentPhase = next
	switch next {
	case rules.PhaseCombatDamage:
		tm.resolveCombat()
	case rules.PhaseEndCombat:
		tm.state.Combat = CombatAssignments{}
	}

	tm.emit("phase_change", map[string]any{
		"phase": next.String(),
		"group": rules.GroupOf(next).String(),
	})
	return next
}

// ExecuteAction validates and applies a player action. Illegal actions are
// rejected with a structured result and zero state mutation.
func (tm *TurnManager) ExecuteAction(action GameAction) ActionResult {
	if err := rules.RequireActionAllowed(action.Type, tm.state.CurrentPhase); err != nil {
		return rejected(err.Error())
	}

	var result ActionResult
	switch action.Type {
	case rules.ActionPlayCard:
		result = tm.playCard(action)
	case rules.ActionAttack:
		result = tm.declareAttack(action)
	case rules.ActionDeclareBlocker:
		result = tm.declareBlocker(action)
	case rules.ActionEndPhase:
		result = tm.endPhase(action)
	default:
		result = rejected(fmt.Sprintf("unknown action type %q", action.Type))
	}

	if !result.Success {
		tm.logger.Debug("action rejected",
			zap.String("game_id", tm.state.GameID),
			zap.String("action", string(action.Type)),
			zap.String("reason", result.Error),
		)
	}
	return result
}

func (tm *TurnManager) playCard(action GameAction) ActionResult {
	if action.PlayerID != tm.state.ActivePlayer {
		return rejected(fmt.Sprintf("%s is not the active player", action.PlayerID))
	}

	cardID, _ := action.Data["cardId"].(string)
	if cardID == "" {
		return rejected("play_card requires a cardId")
	}

	seat := tm.state.Seat(action.PlayerID)
	handIdx := -1
	for i := range seat.Hand {
		if seat.Hand[i].ID == cardID {
			handIdx = i
			break
		}
	}
	if handIdx == -1 {
		return rejected(fmt.Sprintf("card %s is not in hand", cardID))
	}

	card := seat.Hand[handIdx]
	if card.Cost > seat.Mana {
		return rejected(fmt.Sprintf("insufficient mana for %s: cost %d, have %d", card.Name, card.Cost, seat.Mana))
	}
	if card.IsCreature() && len(seat.Board) >= maxBoardSize {
		return rejected(fmt.Sprintf("board is full (%d creatures)", maxBoardSize))
	}

	seat.Hand = append(seat.Hand[:handIdx], seat.Hand[handIdx+1:]...)
	seat.Mana -= card.Cost

	if card.IsCreature() {
		seat.Board = append(seat.Board, cards.Summon(card))
	} else {
		tm.applyEffect(action.PlayerID, card)
		seat.Discard = append(seat.Discard, card)
	}

	tm.recordAction(action)
	tm.emit("card_played", map[string]any{
		"player": string(action.PlayerID),
		"cardId": card.ID,
		"name":   card.Name,
	})
	return accepted()
}

// applyEffect resolves a non-creature card's immediate effect.
func (tm *TurnManager) applyEffect(player PlayerID, card cards.Card) {
	switch card.Ability.Kind {
	case cards.EffectDamage:
		tm.dealDamage(player.Other(), card.Ability.Amount)
	case cards.EffectHeal:
		seat := tm.state.Seat(player)
		seat.Health += card.Ability.Amount
		if seat.Health > StartingHealth {
			seat.Health = StartingHealth
		}
	}
}

func (tm *TurnManager) declareAttack(action GameAction) ActionResult {
	if action.PlayerID != tm.state.ActivePlayer {
		return rejected(fmt.Sprintf("%s is not the active player", action.PlayerID))
	}

	cardID, _ := action.Data["cardId"].(string)
	if cardID == "" {
		return rejected("attack requires a cardId")
	}
	targetID, _ := action.Data["targetId"].(string)
	if targetID == "" {
		targetID = combat.TargetFace
	}
	answered, _ := action.Data["answeredCorrectly"].(bool)

	seat := tm.state.Seat(action.PlayerID)
	attacker, ok := seat.FindBoardCard(cardID)
	if !ok {
		return rejected(fmt.Sprintf("card %s is not on the board", cardID))
	}
	if attacker.IsTapped || !attacker.CanAttack {
		return rejected(fmt.Sprintf("%s cannot attack this turn", attacker.Card.Name))
	}

	defender := tm.state.Seat(action.PlayerID.Other())
	if targetID != combat.TargetFace {
		if _, ok := defender.FindBoardCard(targetID); !ok {
			return rejected(fmt.Sprintf("target %s is not on the defending board", targetID))
		}
	}

	attacker.Tap()
	tm.state.Combat.Attacks = append(tm.state.Combat.Attacks, PendingAttack{
		AttackerID:        cardID,
		TargetID:          targetID,
		AnsweredCorrectly: answered,
	})

	tm.recordAction(action)
	tm.emit("attack_declared", map[string]any{
		"player":   string(action.PlayerID),
		"cardId":   cardID,
		"targetId": targetID,
	})
	return accepted()
}

func (tm *TurnManager) declareBlocker(action GameAction) ActionResult {
	if action.PlayerID != tm.state.ActivePlayer.Other() {
		return rejected("only the defending player may declare blockers")
	}

	attackerID, _ := action.Data["attackerId"].(string)
	blockerID, _ := action.Data["blockerId"].(string)
	if attackerID == "" || blockerID == "" {
		return rejected("declare_blocker requires attackerId and blockerId")
	}

	attacking := false
	for _, atk := range tm.state.Combat.Attacks {
		if atk.AttackerID == attackerID {
			attacking = true
			break
		}
	}
	if !attacking {
		return rejected(fmt.Sprintf("no declared attack from %s", attackerID))
	}

	seat := tm.state.Seat(action.PlayerID)
	blocker, ok := seat.FindBoardCard(blockerID)
	if !ok {
		return rejected(fmt.Sprintf("blocker %s is not on the board", blockerID))
	}
	if blocker.IsTapped {
		return rejected(fmt.Sprintf("%s is tapped and cannot block", blocker.Card.Name))
	}
	for _, assigned := range tm.state.Combat.Blocks {
		if assigned == blockerID {
			return rejected(fmt.Sprintf("%s is already blocking", blocker.Card.Name))
		}
	}
	if _, taken := tm.state.Combat.Blocks[attackerID]; taken {
		return rejected(fmt.Sprintf("attacker %s is already blocked", attackerID))
	}

	if tm.state.Combat.Blocks == nil {
		tm.state.Combat.Blocks = make(map[string]string)
	}
	tm.state.Combat.Blocks[attackerID] = blockerID

	tm.recordAction(action)
	return accepted()
}

func (tm *TurnManager) endPhase(action GameAction) ActionResult {
	if action.PlayerID != tm.state.ActivePlayer {
		return rejected(fmt.Sprintf("%s is not the active player", action.PlayerID))
	}
	tm.recordAction(action)
	tm.AdvancePhase()
	return accepted()
}

// resolveCombat applies every pending attack during the automatic
// combat_damage phase. Blocked attacks resolve attacker against blocker in
// both directions; the blocker's strike always counts as answered
// correctly, since the knowledge problem belongs to the attack. Unblocked
// attacks hit their declared target.
func (tm *TurnManager) resolveCombat() {
	attackerSeat := tm.state.Seat(tm.state.ActivePlayer)
	defenderSeat := tm.state.Seat(tm.state.ActivePlayer.Other())

	for _, atk := range tm.state.Combat.Attacks {
		attacker, ok := attackerSeat.FindBoardCard(atk.AttackerID)
		if !ok {
			continue
		}

		if blockerID, blocked := tm.state.Combat.Blocks[atk.AttackerID]; blocked {
			blocker, ok := defenderSeat.FindBoardCard(blockerID)
			if ok {
				tm.resolveClash(*attacker, *blocker, atk.AnsweredCorrectly)
				continue
			}
		}

		if atk.TargetID == combat.TargetFace {
			breakdown := combat.FaceDamage(attacker.Card, atk.AnsweredCorrectly)
			tm.dealDamage(tm.state.ActivePlayer.Other(), breakdown.TotalDamage)
			tm.emit("combat_damage", map[string]any{
				"attacker": attacker.Card.ID,
				"target":   combat.TargetFace,
				"damage":   breakdown.TotalDamage,
			})
			continue
		}

		if target, ok := defenderSeat.FindBoardCard(atk.TargetID); ok {
			breakdown := combat.CalculateDamage(attacker.Card, target.Card, atk.AnsweredCorrectly)
			tm.emit("combat_damage", map[string]any{
				"attacker": attacker.Card.ID,
				"target":   target.Card.ID,
				"damage":   breakdown.TotalDamage,
			})
			if breakdown.TotalDamage >= target.Card.Defense {
				tm.destroy(tm.state.ActivePlayer.Other(), target.Card.ID)
			}
		}
	}

	tm.state.Combat.Attacks = nil
}

// resolveClash handles a blocked attack: damage both ways, destruction
// when damage meets the creature's defense.
func (tm *TurnManager) resolveClash(attacker, blocker cards.BoardCard, answeredCorrectly bool) {
	attackDmg := combat.CalculateDamage(attacker.Card, blocker.Card, answeredCorrectly)
	blockDmg := combat.CalculateDamage(blocker.Card, attacker.Card, true)

	tm.emit("combat_clash", map[string]any{
		"attacker":       attacker.Card.ID,
		"blocker":        blocker.Card.ID,
		"attackerDamage": attackDmg.TotalDamage,
		"blockerDamage":  blockDmg.TotalDamage,
	})

	if attackDmg.TotalDamage >= blocker.Card.Defense {
		tm.destroy(tm.state.ActivePlayer.Other(), blocker.Card.ID)
	}
	if blockDmg.TotalDamage >= attacker.Card.Defense {
		tm.destroy(tm.state.ActivePlayer, attacker.Card.ID)
	}
}

// destroy moves a board creature to its controller's discard pile.
func (tm *TurnManager) destroy(owner PlayerID, cardID string) {
	seat := tm.state.Seat(owner)
	for i := range seat.Board {
		if seat.Board[i].Card.ID == cardID {
			seat.Discard = append(seat.Discard, seat.Board[i].Card)
			seat.Board = append(seat.Board[:i], seat.Board[i+1:]...)
			return
		}
	}
}

// ApplyDamage deducts health directly. Health is clamped at zero inside
// the call; game end is checked by the caller.
func (tm *TurnManager) ApplyDamage(id PlayerID, amount int) error {
	if amount < 0 {
		return fmt.Errorf("damage amount must be non-negative, got %d", amount)
	}
	tm.dealDamage(id, amount)
	return nil
}

func (tm *TurnManager) dealDamage(id PlayerID, amount int) {
	seat := tm.state.Seat(id)
	seat.Health -= amount
	if seat.Health < 0 {
		seat.Health = 0
	}
}

// EndResult reports whether a duel has finished and who won.
type EndResult struct {
	GameOver bool     `json:"gameOver"`
	Winner   PlayerID `json:"winner,omitempty"`
	Draw     bool     `json:"draw,omitempty"`
}

// CheckGameEnd applies the single game-end rule shared by the engine and
// the persistence layer: both at zero is a draw, otherwise the surviving
// side wins.
func CheckGameEnd(state *GameState) EndResult {
	playerDead := state.Player.Health <= 0
	opponentDead := state.Opponent.Health <= 0

	switch {
	case playerDead && opponentDead:
		return EndResult{GameOver: true, Draw: true}
	case playerDead:
		return EndResult{GameOver: true, Winner: PlayerOpponent}
	case opponentDead:
		return EndResult{GameOver: true, Winner: PlayerSelf}
	}
	return EndResult{}
}

// IsGameOver reports whether the duel has ended.
func (tm *TurnManager) IsGameOver() EndResult {
	return CheckGameEnd(&tm.state)
}

func (tm *TurnManager) recordAction(action GameAction) {
	if action.Timestamp.IsZero() {
		action.Timestamp = tm.now()
	}
	tm.appendHistory(action)
}

func (tm *TurnManager) appendHistory(action GameAction) {
	tm.state.ActionHistory = append(tm.state.ActionHistory, action)
}

// emit dispatches a game event on the mutating goroutine so events arrive
// in commit order. Handlers must not block; the spectator hub buffers and
// drops rather than stalling game logic.
func (tm *TurnManager) emit(eventType string, data map[string]any) {
	if tm.handler == nil {
		return
	}
	tm.handler(GameEvent{
		Type:      eventType,
		GameID:    tm.state.GameID,
		Timestamp: tm.now(),
		Data:      data,
	})
}
