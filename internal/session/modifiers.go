package session

import (
	"strings"

	"wavelength/internal/cards"
)

type ModifierKind string

const (
	ModifierRevealHalf ModifierKind = "reveal-half"
	ModifierDouble     ModifierKind = "double-points"
	ModifierExtraClue  ModifierKind = "extra-clue"
)

var AllModifiers = []ModifierKind{ModifierRevealHalf, ModifierDouble, ModifierExtraClue}

func (k ModifierKind) Known() bool {
	switch k {
	case ModifierRevealHalf, ModifierDouble, ModifierExtraClue:
		return true
	}
	return false
}

type Half string

const (
	HalfLeft  Half = "left"
	HalfRight Half = "right"
)

func HalfOf(target float64) Half {
	if target < cards.Center {
		return HalfLeft
	}
	return HalfRight
}

// Effects are the modifiers active on the current turn. They are cleared on
// every advance.
type Effects struct {
	Doubled      bool   `json:"doubled,omitempty"`
	DoubledBy    string `json:"doubled_by,omitempty"`
	RevealedHalf Half   `json:"revealed_half,omitempty"`
	RevealedBy   string `json:"revealed_by,omitempty"`
	ExtraClue    string `json:"extra_clue,omitempty"`
}

func (e Effects) active(kind ModifierKind) bool {
	switch kind {
	case ModifierRevealHalf:
		return e.RevealedHalf != ""
	case ModifierDouble:
		return e.Doubled
	case ModifierExtraClue:
		return e.ExtraClue != ""
	}
	return false
}

// checkModifier enforces who may use which modifier and that each kind is
// used once per participant per match and at most once per turn.
func checkModifier(kind ModifierKind, identity, presenter string, used map[ModifierKind]bool, effects Effects) error {
	if !kind.Known() {
		return ErrModifierNotAllowed
	}
	if used[kind] {
		return ErrModifierUsed
	}
	if effects.active(kind) {
		return ErrModifierNotAllowed
	}
	switch kind {
	case ModifierRevealHalf:
		if identity == presenter {
			return ErrModifierNotAllowed
		}
	case ModifierExtraClue:
		if identity != presenter {
			return ErrModifierNotAllowed
		}
	}
	return nil
}

func normalizeExtraClue(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return truncateClue(fields[0])
}

func truncateClue(raw string) string {
	clue := strings.TrimSpace(raw)
	if r := []rune(clue); len(r) > maxClueLength {
		clue = string(r[:maxClueLength])
	}
	return clue
}
