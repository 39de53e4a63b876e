package cards

import "fmt"

// Element is a card's elemental alignment. Advantage runs in a fixed cycle:
// Fire beats Earth, Earth beats Air, Air beats Water, Water beats Fire.
type Element string

const (
	ElementFire  Element = "Fire"
	ElementWater Element = "Water"
	ElementEarth Element = "Earth"
	ElementAir   Element = "Air"
)

// Elements lists every valid element.
var Elements = []Element{ElementFire, ElementWater, ElementEarth, ElementAir}

// Category is the knowledge domain a card's battle problems are drawn from.
type Category string

const (
	CategoryMath    Category = "Math"
	CategoryLogic   Category = "Logic"
	CategoryScience Category = "Science"
)

// EffectKind classifies a non-creature card's immediate effect.
type EffectKind string

const (
	EffectDamage EffectKind = "damage"
	EffectHeal   EffectKind = "heal"
)

// Ability is an optional immediate effect carried by a card. Cards with an
// ability resolve the effect when played instead of entering the board.
type Ability struct {
	Kind   EffectKind `json:"kind"`
	Amount int        `json:"amount"`
}

// Card is an immutable template authored by the content collaborator.
// The core never creates or edits card text, art, or stats.
type Card struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Cost            int      `json:"cost"`
	Power           int      `json:"power"`
	Defense         int      `json:"defense"`
	Element         Element  `json:"element"`
	ProblemCategory Category `json:"problemCategory"`
	Ability         *Ability `json:"ability,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// Validate checks the stat ranges the content contract promises.
func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card has no id")
	}
	if c.Cost < 1 || c.Cost > 10 {
		return fmt.Errorf("card %s: cost %d out of range [1,10]", c.ID, c.Cost)
	}
	if c.Power < 1 || c.Power > 10 {
		return fmt.Errorf("card %s: power %d out of range [1,10]", c.ID, c.Power)
	}
	if c.Defense < 1 || c.Defense > 10 {
		return fmt.Errorf("card %s: defense %d out of range [1,10]", c.ID, c.Defense)
	}
	valid := false
	for _, e := range Elements {
		if c.Element == e {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("card %s: unknown element %q", c.ID, c.Element)
	}
	return nil
}

// IsCreature reports whether the card enters the board when played.
func (c Card) IsCreature() bool {
	return c.Ability == nil
}

// BoardCard is a card instance on the battlefield with its combat flags.
// A freshly summoned creature enters tapped and unable to attack
// (summoning sickness); both flags clear on its controller's next untap.
type BoardCard struct {
	Card      Card `json:"card"`
	CanAttack bool `json:"canAttack"`
	IsTapped  bool `json:"isTapped"`
}

// Summon creates the board instance for a just-played creature.
func Summon(c Card) BoardCard {
	return BoardCard{Card: c, CanAttack: false, IsTapped: true}
}

// Untap readies the creature for a new turn.
func (b *BoardCard) Untap() {
	b.CanAttack = true
	b.IsTapped = false
}

// Tap marks the creature as used for this turn.
func (b *BoardCard) Tap() {
	b.CanAttack = false
	b.IsTapped = true
}
