// Package cards holds the prompt card content and the allocator that deals
// cards and hidden targets to participants.
package cards

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Positions are measured on a 0-180 linear scale.
const (
	ScaleMin  = 0.0
	ScaleMax  = 180.0
	Center    = 90.0
	TargetMin = 5
	TargetMax = 175

	SlotsPerParticipant = 2
)

var (
	ErrRefreshUsed = errors.New("refresh already used")
	ErrInvalidSlot = errors.New("invalid card slot")
	ErrInvalidCard = errors.New("invalid card")
)

// Card is an immutable pair of opposite poles.
type Card struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

func (c Card) String() string {
	return c.Left + " | " + c.Right
}

func (c Card) IsZero() bool {
	return c.Left == "" && c.Right == ""
}

// ParseCard reads a "left|right" pair.
func ParseCard(raw string) (Card, error) {
	left, right, ok := strings.Cut(raw, "|")
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)
	if !ok || left == "" || right == "" {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, raw)
	}
	return Card{Left: left, Right: right}, nil
}

// Assignment is one dealt card with its hidden target and the clue the owner
// wrote for it.
type Assignment struct {
	Card        Card    `json:"card"`
	Target      float64 `json:"target"`
	Clue        string  `json:"clue,omitempty"`
	RefreshUsed bool    `json:"refresh_used"`
}

// Hand is the fixed set of assignments a participant receives per match.
type Hand [SlotsPerParticipant]Assignment

func ValidSlot(slot int) bool {
	return slot >= 0 && slot < SlotsPerParticipant
}

// ClampEstimate keeps the shared pointer inside the target range, away from
// the scale's ends.
func ClampEstimate(pos float64) float64 {
	if math.IsNaN(pos) {
		return Center
	}
	return min(max(pos, TargetMin), TargetMax)
}
