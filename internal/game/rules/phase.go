package rules

import "fmt"

// Phase represents one of the twelve canonical sub-stages of a turn.
type Phase int

const (
	PhaseUntap Phase = iota
	PhaseUpkeep
	PhaseDraw
	PhasePreCombatMain
	PhaseBeginCombat
	PhaseDeclareAttackers
	PhaseDeclareBlockers
	PhaseCombatDamage
	PhaseEndCombat
	PhasePostCombatMain
	PhaseEndStep
	PhaseCleanup
)

var phaseNames = map[Phase]string{
	PhaseUntap:            "untap",
	PhaseUpkeep:           "upkeep",
	PhaseDraw:             "draw",
	PhasePreCombatMain:    "pre_combat_main",
	PhaseBeginCombat:      "begin_combat",
	PhaseDeclareAttackers: "declare_attackers",
	PhaseDeclareBlockers:  "declare_blockers",
	PhaseCombatDamage:     "combat_damage",
	PhaseEndCombat:        "end_combat",
	PhasePostCombatMain:   "post_combat_main",
	PhaseEndStep:          "end_step",
	PhaseCleanup:          "cleanup",
}

var phasesByName = func() map[string]Phase {
	m := make(map[string]Phase, len(phaseNames))
	for p, name := range phaseNames {
		m[name] = p
	}
	return m
}()

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(p))
}

// ParsePhase resolves a canonical phase name back to its Phase value.
func ParsePhase(name string) (Phase, error) {
	if p, ok := phasesByName[name]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// MarshalText implements encoding.TextMarshaler so phases persist by name,
// keeping saved documents readable and stable across reorderings.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PhaseGroup is the broad grouping other layers render against.
type PhaseGroup int

const (
	GroupBeginning PhaseGroup = iota
	GroupMain1
	GroupCombat
	GroupMain2
	GroupEnd
)

var groupNames = map[PhaseGroup]string{
	GroupBeginning: "beginning",
	GroupMain1:     "main1",
	GroupCombat:    "combat",
	GroupMain2:     "main2",
	GroupEnd:       "end",
}

func (g PhaseGroup) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return fmt.Sprintf("group_%d", int(g))
}

type phaseEntry struct {
	phase Phase
	group PhaseGroup
}

// turnSequence is the canonical order of phases within one turn.
var turnSequence = []phaseEntry{
	{PhaseUntap, GroupBeginning},
	{PhaseUpkeep, GroupBeginning},
	{PhaseDraw, GroupBeginning},
	{PhasePreCombatMain, GroupMain1},
	{PhaseBeginCombat, GroupCombat},
	{PhaseDeclareAttackers, GroupCombat},
	{PhaseDeclareBlockers, GroupCombat},
	{PhaseCombatDamage, GroupCombat},
	{PhaseEndCombat, GroupCombat},
	{PhasePostCombatMain, GroupMain2},
	{PhaseEndStep, GroupEnd},
	{PhaseCleanup, GroupEnd},
}

var sequenceIndex = func() map[Phase]int {
	m := make(map[Phase]int, len(turnSequence))
	for i, entry := range turnSequence {
		m[entry.phase] = i
	}
	return m
}()

// GroupOf returns the broad group a phase belongs to.
func GroupOf(p Phase) PhaseGroup {
	return turnSequence[sequenceIndex[p]].group
}

// NextPhase returns the successor of the given phase. The boolean reports a
// turn boundary: cleanup wraps to untap, and the caller is responsible for
// incrementing the turn number and flipping the active player.
func NextPhase(current Phase) (Phase, bool) {
	idx := sequenceIndex[current]
	next := idx + 1
	if next >= len(turnSequence) {
		return turnSequence[0].phase, true
	}
	return turnSequence[next].phase, false
}

// IsMainPhase reports whether cards may be played during the phase.
func IsMainPhase(p Phase) bool {
	return p == PhasePreCombatMain || p == PhasePostCombatMain
}

// IsCombatPhase reports whether the phase belongs to the combat group.
func IsCombatPhase(p Phase) bool {
	return GroupOf(p) == GroupCombat
}

// IsAutomatic reports whether the phase is engine-driven and accepts no
// player-initiated actions.
func IsAutomatic(p Phase) bool {
	switch p {
	case PhaseUntap, PhaseUpkeep, PhaseDraw, PhaseCombatDamage, PhaseEndStep, PhaseCleanup:
		return true
	}
	return false
}

// ActionType identifies a player-initiated action.
type ActionType string

const (
	ActionPlayCard       ActionType = "play_card"
	ActionAttack         ActionType = "attack"
	ActionDeclareBlocker ActionType = "declare_blocker"
	ActionEndPhase       ActionType = "end_phase"

	// ActionStartTurn marks the engine-automatic beginning-of-turn entry in
	// the action history. It is never accepted from a player.
	ActionStartTurn ActionType = "start_turn"
)

// legalActions is the fixed legality table: which player-initiated actions
// each phase accepts. end_phase is legal in every non-automatic phase.
var legalActions = map[Phase][]ActionType{
	PhasePreCombatMain:    {ActionPlayCard, ActionEndPhase},
	PhasePostCombatMain:   {ActionPlayCard, ActionEndPhase},
	PhaseBeginCombat:      {ActionEndPhase},
	PhaseDeclareAttackers: {ActionAttack, ActionEndPhase},
	PhaseDeclareBlockers:  {ActionDeclareBlocker, ActionEndPhase},
	PhaseEndCombat:        {ActionEndPhase},
}

// IsActionAllowed reports whether the action type is legal in the phase.
func IsActionAllowed(action ActionType, phase Phase) bool {
	for _, allowed := range legalActions[phase] {
		if allowed == action {
			return true
		}
	}
	return false
}

// RequireActionAllowed returns a structured violation error when the action
// is illegal in the phase. Violations are reported, never silently ignored.
func RequireActionAllowed(action ActionType, phase Phase) error {
	if !IsActionAllowed(action, phase) {
		return fmt.Errorf("%s not allowed in %s phase", action, phase)
	}
	return nil
}
