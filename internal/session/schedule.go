package session

import (
	"fmt"

	"wavelength/internal/cards"
)

// Turn is one entry of the presentation schedule.
type Turn struct {
	Index           int        `json:"index"`
	Presenter       string     `json:"presenter"`
	PresenterAvatar string     `json:"presenter_avatar,omitempty"`
	Slot            int        `json:"slot"`
	Card            cards.Card `json:"card"`
	Clue            string     `json:"clue"`
	Target          float64    `json:"target,omitempty"`
	Hidden          bool       `json:"hidden,omitempty"`
}

// BuildSchedule orders every submitted assignment slot-major: all
// participants' first cards in roster order, then all second cards. The
// result depends only on its inputs.
func BuildSchedule(roster []Participant, hands map[string]cards.Hand) ([]Turn, error) {
	turns := make([]Turn, 0, len(roster)*cards.SlotsPerParticipant)
	for _, p := range roster {
		if _, ok := hands[p.Identity]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSubmission, p.Identity)
		}
	}
	for slot := 0; slot < cards.SlotsPerParticipant; slot++ {
		for _, p := range roster {
			a := hands[p.Identity][slot]
			turns = append(turns, Turn{
				Index:           len(turns),
				Presenter:       p.Identity,
				PresenterAvatar: p.Avatar,
				Slot:            slot,
				Card:            a.Card,
				Clue:            a.Clue,
				Target:          a.Target,
			})
		}
	}
	return turns, nil
}

// Redact returns a copy of turns with targets hidden on every turn the
// viewer does not present.
func Redact(turns []Turn, viewer string) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		if t.Presenter != viewer {
			t.Target = 0
			t.Hidden = true
		}
		out[i] = t
	}
	return out
}
