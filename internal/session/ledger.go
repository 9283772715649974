package session

import (
	"fmt"
	"slices"
	"strings"
)

type ScoringMode string

const (
	// ScoringShared keeps one cooperative running total.
	ScoringShared ScoringMode = "shared"
	// ScoringPresenter credits each turn's points to its presenter.
	ScoringPresenter ScoringMode = "presenter"
)

func ParseScoringMode(raw string) (ScoringMode, error) {
	switch mode := ScoringMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ScoringShared, ScoringPresenter:
		return mode, nil
	case "":
		return ScoringShared, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", raw)
	}
}

type Standing struct {
	Identity string `json:"identity"`
	Points   int    `json:"points"`
}

// Ledger accumulates points across a match.
type Ledger struct {
	Mode     ScoringMode
	Total    int
	Resolved int
	credited map[string]int
}

func NewLedger(mode ScoringMode) *Ledger {
	if mode == "" {
		mode = ScoringShared
	}
	return &Ledger{Mode: mode, credited: make(map[string]int)}
}

func (l *Ledger) Record(presenter string, points int) {
	l.Total += points
	l.Resolved++
	l.credited[presenter] += points
}

// Points reports the score shown for identity: the shared total in shared
// mode, the presenter credit otherwise.
func (l *Ledger) Points(identity string) int {
	if l.Mode == ScoringShared {
		return l.Total
	}
	return l.credited[identity]
}

// Standings ranks the given identities by points, ties broken by identity.
func (l *Ledger) Standings(identities []string) []Standing {
	out := make([]Standing, 0, len(identities))
	for _, id := range identities {
		out = append(out, Standing{Identity: id, Points: l.Points(id)})
	}
	slices.SortStableFunc(out, func(a, b Standing) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return strings.Compare(a.Identity, b.Identity)
	})
	return out
}

type Rating string

const (
	RatingPerfectSync Rating = "perfect sync"
	RatingGreatMinds  Rating = "great minds"
	RatingGettingWarm Rating = "getting warm"
	RatingOffWave     Rating = "different wavelengths"
)

// Rate grades a shared total against the best possible result for turns.
func Rate(total, turns int) Rating {
	best := turns * MaxTurnPoints
	if best <= 0 {
		return RatingOffWave
	}
	ratio := float64(total) / float64(best)
	switch {
	case ratio >= 0.75:
		return RatingPerfectSync
	case ratio >= 0.5:
		return RatingGreatMinds
	case ratio >= 0.3:
		return RatingGettingWarm
	default:
		return RatingOffWave
	}
}
