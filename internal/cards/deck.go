package cards

import (
	"math/rand/v2"
)

// Deck draws cards without replacement until the pool is exhausted, then
// starts over. Custom cards are surfaced before any built-in card.
type Deck struct {
	pool   []Card
	custom []Card
	used   map[Card]struct{}
	rng    *rand.Rand
	resets int
}

func NewDeck(pool []Card, custom []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		used: make(map[Card]struct{}),
		rng:  rng,
	}
	seen := make(map[Card]struct{}, len(pool)+len(custom))
	for _, card := range custom {
		if card.IsZero() {
			continue
		}
		if _, dup := seen[card]; dup {
			continue
		}
		seen[card] = struct{}{}
		d.custom = append(d.custom, card)
	}
	for _, card := range pool {
		if card.IsZero() {
			continue
		}
		if _, dup := seen[card]; dup {
			continue
		}
		seen[card] = struct{}{}
		d.pool = append(d.pool, card)
	}
	return d
}

// Size is the number of distinct cards in the deck.
func (d *Deck) Size() int {
	return len(d.pool) + len(d.custom)
}

// Remaining is the number of cards that can be drawn before a reset.
func (d *Deck) Remaining() int {
	return d.Size() - len(d.used)
}

// Resets reports how many times the used set has been cleared.
func (d *Deck) Resets() int {
	return d.resets
}

// Reset clears the used set, typically at match start.
func (d *Deck) Reset() {
	clear(d.used)
}

// Draw selects uniformly from the unused cards. Once everything has been
// drawn the used set is cleared and any card becomes selectable again.
func (d *Deck) Draw() Card {
	if d.Size() == 0 {
		return Card{}
	}
	if d.Remaining() == 0 {
		clear(d.used)
		d.resets++
	}
	for _, card := range d.custom {
		if _, ok := d.used[card]; !ok {
			d.used[card] = struct{}{}
			return card
		}
	}
	available := make([]Card, 0, d.Remaining())
	for _, card := range d.pool {
		if _, ok := d.used[card]; !ok {
			available = append(available, card)
		}
	}
	card := available[d.rng.IntN(len(available))]
	d.used[card] = struct{}{}
	return card
}

// Target draws a hidden target uniformly from [TargetMin, TargetMax].
func (d *Deck) Target() float64 {
	return float64(TargetMin + d.rng.IntN(TargetMax-TargetMin+1))
}

// Deal returns a fresh hand with unused refresh rights.
func (d *Deck) Deal() Hand {
	var hand Hand
	for i := range hand {
		hand[i] = Assignment{Card: d.Draw(), Target: d.Target()}
	}
	return hand
}

// Refresh replaces the card and target in a slot, clears its clue and
// consumes the slot's refresh right.
func (d *Deck) Refresh(hand *Hand, slot int) (Assignment, error) {
	if !ValidSlot(slot) {
		return Assignment{}, ErrInvalidSlot
	}
	if hand[slot].RefreshUsed {
		return Assignment{}, ErrRefreshUsed
	}
	hand[slot] = Assignment{
		Card:        d.Draw(),
		Target:      d.Target(),
		RefreshUsed: true,
	}
	return hand[slot], nil
}
