package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cardquest/duel-server-go/internal/game/cards"
)

// Checksum computes a deterministic SHA-256 digest of a game state. Two
// states with equal checksums are field-for-field identical across every
// rule-relevant field, which is how the persistence round-trip contract is
// verified. Hand and deck order is included. Action history contributes
// its length, types, and actors only: timestamps and the free-form Data
// payloads are excluded, since JSON retypes numeric payload values across
// a save/load cycle while the rule-relevant state stays identical.
func Checksum(state *GameState) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%s\n",
		state.GameID,
		state.TurnNumber,
		state.ActivePlayer,
		state.CurrentPhase,
	)

	writeSeat(&buf, "PLAYER", &state.Player)
	writeSeat(&buf, "OPPONENT", &state.Opponent)

	// Pending attacks keep declaration order.
	for i, atk := range state.Combat.Attacks {
		fmt.Fprintf(&buf, "ATTACK:%d|%s|%s|%t\n", i, atk.AttackerID, atk.TargetID, atk.AnsweredCorrectly)
	}

	// Blocks are a map; sort for determinism.
	blockKeys := make([]string, 0, len(state.Combat.Blocks))
	for k := range state.Combat.Blocks {
		blockKeys = append(blockKeys, k)
	}
	sort.Strings(blockKeys)
	for _, k := range blockKeys {
		fmt.Fprintf(&buf, "BLOCK:%s|%s\n", k, state.Combat.Blocks[k])
	}

	for i, action := range state.ActionHistory {
		fmt.Fprintf(&buf, "ACTION:%d|%s|%s\n", i, action.Type, action.PlayerID)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func writeSeat(buf *bytes.Buffer, label string, seat *PlayerState) {
	fmt.Fprintf(buf, "%s:%d|%d|%d|%d|%d\n",
		label,
		seat.Mana,
		seat.MaxMana,
		seat.Health,
		seat.FatigueCounter,
		seat.TurnsTaken,
	)

	// Hand and deck order matters for the draw source.
	fmt.Fprintf(buf, "  HAND:%s\n", joinCardIDs(seat.Hand))
	fmt.Fprintf(buf, "  DECK:%s\n", joinCardIDs(seat.Deck))
	fmt.Fprintf(buf, "  DISCARD:%s\n", joinCardIDs(seat.Discard))

	for _, b := range seat.Board {
		fmt.Fprintf(buf, "  BOARD:%s|%t|%t\n", b.Card.ID, b.CanAttack, b.IsTapped)
	}
}

func joinCardIDs(in []cards.Card) string {
	ids := make([]string, len(in))
	for i, c := range in {
		ids[i] = c.ID
	}
	return strings.Join(ids, ",")
}
