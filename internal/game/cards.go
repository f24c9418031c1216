package game

import (
	"fmt"
	rand "math/rand/v2"
)

// CardKind identifies one of the seven card effects.
type CardKind string

const (
	CardConvert  CardKind = "convert"
	CardObstacle CardKind = "obstacle"
	CardStorm    CardKind = "storm"
	CardUndo     CardKind = "undo"
	CardTrap     CardKind = "trap"
	CardHint     CardKind = "hint"
	CardPeek     CardKind = "peek"
)

// AllCardKinds lists every kind in draw order. The order matters for the
// weighted draw so that a given seed always produces the same sequence.
var AllCardKinds = []CardKind{
	CardConvert,
	CardObstacle,
	CardStorm,
	CardUndo,
	CardTrap,
	CardHint,
	CardPeek,
}

// String returns the string representation of the card kind.
func (k CardKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the seven known kinds.
func (k CardKind) Valid() bool {
	switch k {
	case CardConvert, CardObstacle, CardStorm, CardUndo, CardTrap, CardHint, CardPeek:
		return true
	}
	return false
}

// Card is a single held card. Cards are fungible within a kind; the only
// identity a card has is its position in a hand.
type Card struct {
	Kind CardKind `json:"kind"`
}

// MaxHandSize caps how many cards a seat may hold.
const MaxHandSize = 5

// Weights is a draw-probability table over card kinds. Values are
// relative weights, not percentages; a zero weight disables a kind.
type Weights map[CardKind]int

// DefaultWeights returns the stock distribution: the three board-mutating
// kinds are twice as likely as the utility kinds.
func DefaultWeights() Weights {
	return Weights{
		CardConvert:  20,
		CardObstacle: 20,
		CardStorm:    20,
		CardUndo:     10,
		CardTrap:     10,
		CardHint:     10,
		CardPeek:     10,
	}
}

// Validate checks that w names only known kinds with in-range weights and
// leaves at least one kind drawable.
func (w Weights) Validate() error {
	total := 0
	for kind, weight := range w {
		if !kind.Valid() {
			return fmt.Errorf("unknown card kind %q", kind)
		}
		if weight < 0 || weight > 100 {
			return fmt.Errorf("weight for %s out of range: %d", kind, weight)
		}
		total += weight
	}
	if total <= 0 {
		return fmt.Errorf("card weights sum to %d, nothing is drawable", total)
	}
	return nil
}

// Clone returns an independent copy of the table.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Draw picks a card at random according to the weight table.
func (w Weights) Draw(rng *rand.Rand) Card {
	total := 0
	for _, kind := range AllCardKinds {
		total += w[kind]
	}
	if total <= 0 {
		return Card{Kind: AllCardKinds[0]}
	}
	n := rng.IntN(total)
	for _, kind := range AllCardKinds {
		n -= w[kind]
		if n < 0 {
			return Card{Kind: kind}
		}
	}
	return Card{Kind: AllCardKinds[0]}
}
