package session

import (
	"math"
	"strings"
	"time"

	"wavelength/internal/cards"
)

type Kind string

const (
	KindParticipantAnnounce Kind = "participant-announce"
	KindRosterSnapshot      Kind = "roster-snapshot"
	KindMatchInit           Kind = "match-init"
	KindClueSubmitted       Kind = "clue-submitted"
	KindScheduleReady       Kind = "schedule-ready"
	KindEstimateMoved       Kind = "estimate-moved"
	KindParticipantReady    Kind = "participant-ready"
	KindTurnResolved        Kind = "turn-resolved"
	KindTurnAdvanced        Kind = "turn-advanced"
	KindAdvanceRequested    Kind = "advance-requested"
	KindRefreshRequested    Kind = "refresh-requested"
	KindCardRefreshed       Kind = "card-refreshed"
	KindModifierActivated   Kind = "modifier-activated"
	KindMatchRestarted      Kind = "match-restarted"
)

// Message is the closed set of session messages. Only types in this package
// implement it.
type Message interface {
	Kind() Kind
	validate() error
}

type ParticipantAnnounce struct {
	Identity string `json:"identity"`
	Avatar   string `json:"avatar,omitempty"`
	Color    string `json:"color,omitempty"`
}

type RosterSnapshot struct {
	Participants []Participant `json:"participants"`
}

// MatchInit carries the recipient's own hand only.
type MatchInit struct {
	Hand      cards.Hand    `json:"hand"`
	TurnCount int           `json:"turn_count"`
	Scoring   ScoringMode   `json:"scoring"`
	PowerUps  bool          `json:"power_ups"`
	Deadline  time.Time     `json:"deadline"`
	Roster    []Participant `json:"roster"`
}

// ClueSubmitted travels with clues toward the authority and identity-only
// when relayed.
type ClueSubmitted struct {
	Identity string                             `json:"identity"`
	Clues    [cards.SlotsPerParticipant]string `json:"clues"`
}

type ScheduleReady struct {
	Turns    []Turn        `json:"turns"`
	Roster   []Participant `json:"roster"`
	Deadline time.Time     `json:"deadline"`
}

type EstimateMoved struct {
	Position    float64 `json:"position"`
	Mover       string  `json:"mover"`
	MoverAvatar string  `json:"mover_avatar,omitempty"`
	TurnIndex   int     `json:"turn_index"`
}

type ParticipantReady struct {
	Identity  string `json:"identity"`
	TurnIndex int    `json:"turn_index"`
}

type TurnResolved struct {
	TurnIndex int     `json:"turn_index"`
	Presenter string  `json:"presenter"`
	Target    float64 `json:"target"`
	Estimate  float64 `json:"estimate"`
	Points    int     `json:"points"`
	Doubled   bool    `json:"doubled,omitempty"`
}

type TurnAdvanced struct {
	TurnIndex int       `json:"turn_index"`
	Deadline  time.Time `json:"deadline"`
}

// AdvanceRequested names the turn being left so that concurrent requests
// advance at most once.
type AdvanceRequested struct {
	Identity  string `json:"identity"`
	TurnIndex int    `json:"turn_index"`
}

type RefreshRequested struct {
	Identity string `json:"identity"`
	Slot     int    `json:"slot"`
}

type CardRefreshed struct {
	Identity   string           `json:"identity"`
	Slot       int              `json:"slot"`
	Assignment cards.Assignment `json:"assignment"`
}

type ModifierActivated struct {
	Identity  string       `json:"identity"`
	Modifier  ModifierKind `json:"modifier"`
	TurnIndex int          `json:"turn_index"`
	Extra     string       `json:"extra,omitempty"`
	Half      Half         `json:"half,omitempty"`
}

type MatchRestarted struct{}

func (ParticipantAnnounce) Kind() Kind { return KindParticipantAnnounce }
func (RosterSnapshot) Kind() Kind      { return KindRosterSnapshot }
func (MatchInit) Kind() Kind           { return KindMatchInit }
func (ClueSubmitted) Kind() Kind       { return KindClueSubmitted }
func (ScheduleReady) Kind() Kind       { return KindScheduleReady }
func (EstimateMoved) Kind() Kind       { return KindEstimateMoved }
func (ParticipantReady) Kind() Kind    { return KindParticipantReady }
func (TurnResolved) Kind() Kind        { return KindTurnResolved }
func (TurnAdvanced) Kind() Kind        { return KindTurnAdvanced }
func (AdvanceRequested) Kind() Kind    { return KindAdvanceRequested }
func (RefreshRequested) Kind() Kind    { return KindRefreshRequested }
func (CardRefreshed) Kind() Kind       { return KindCardRefreshed }
func (ModifierActivated) Kind() Kind   { return KindModifierActivated }
func (MatchRestarted) Kind() Kind      { return KindMatchRestarted }

func requireIdentity(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return ErrMalformedMessage
	}
	return nil
}

func (m ParticipantAnnounce) validate() error { return requireIdentity(m.Identity) }

func (m RosterSnapshot) validate() error {
	for _, p := range m.Participants {
		if err := requireIdentity(p.Identity); err != nil {
			return err
		}
	}
	return nil
}

func (m MatchInit) validate() error {
	if m.TurnCount < 0 {
		return ErrMalformedMessage
	}
	return nil
}

func (m ClueSubmitted) validate() error { return requireIdentity(m.Identity) }

func (m ScheduleReady) validate() error {
	for i, t := range m.Turns {
		if t.Index != i || t.Presenter == "" || !cards.ValidSlot(t.Slot) {
			return ErrMalformedMessage
		}
	}
	return nil
}

func (m EstimateMoved) validate() error {
	if math.IsNaN(m.Position) || m.Position < cards.TargetMin || m.Position > cards.TargetMax {
		return ErrMalformedMessage
	}
	return requireIdentity(m.Mover)
}

func (m ParticipantReady) validate() error { return requireIdentity(m.Identity) }

func (m TurnResolved) validate() error {
	if m.TurnIndex < 0 || m.Points < 0 {
		return ErrMalformedMessage
	}
	return nil
}

func (m TurnAdvanced) validate() error {
	if m.TurnIndex < 0 {
		return ErrMalformedMessage
	}
	return nil
}

func (m AdvanceRequested) validate() error { return requireIdentity(m.Identity) }

func (m RefreshRequested) validate() error {
	if !cards.ValidSlot(m.Slot) {
		return ErrMalformedMessage
	}
	return requireIdentity(m.Identity)
}

func (m CardRefreshed) validate() error {
	if !cards.ValidSlot(m.Slot) {
		return ErrMalformedMessage
	}
	return requireIdentity(m.Identity)
}

func (m ModifierActivated) validate() error {
	if !m.Modifier.Known() {
		return ErrMalformedMessage
	}
	return requireIdentity(m.Identity)
}

func (MatchRestarted) validate() error { return nil }
