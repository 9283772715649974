package session

import (
	"time"

	"wavelength/internal/cards"
)

// View is a participant's copy of what it is allowed to see.
type View struct {
	Self      Participant
	Authority bool
	Phase     Phase
	Roster    []Participant
	Lost      bool

	Hand               *cards.Hand
	Submitted          []string
	PendingSubmissions []string

	TurnIndex  int
	TurnCount  int
	Turn       *Turn
	Presenting bool
	Estimate   float64
	// Mover is set only for a short while after the pointer moves.
	Mover        string
	MoverAvatar  string
	Ready        []string
	PendingReady []string
	Resolution   *TurnResolved
	Effects      Effects
	Modifiers    map[ModifierKind]bool

	Scoring   ScoringMode
	Total     int
	Points    int
	Standings []Standing
	Rating    Rating
	History   []TurnResolved

	Deadline time.Time
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	st := &s.st
	v := View{
		Self:      s.self,
		Authority: s.role.isAuthority(),
		Phase:     st.phase,
		Roster:    st.roster.Participants(),
		Lost:      s.lost,
		TurnIndex: st.turn,
		TurnCount: st.turnCount,
		Estimate:  st.estimate,
		Effects:   st.effects,
		Scoring:   st.ledger.Mode,
		Total:     st.ledger.Total,
		Points:    st.ledger.Points(s.self.Identity),
		Standings: st.ledger.Standings(st.roster.Identities()),
		History:   append([]TurnResolved(nil), st.history...),
		Deadline:  st.deadline,
		Modifiers: make(map[ModifierKind]bool, len(AllModifiers)),
	}
	if hand, ok := st.hands[s.self.Identity]; ok {
		v.Hand = &hand
	}
	if st.phase == PhaseSetup {
		v.TurnCount = st.roster.Len() * cards.SlotsPerParticipant
		v.Submitted = st.submittedIdentities()
		v.PendingSubmissions = st.pendingSubmissions()
	}
	if turn, ok := st.currentTurn(); ok && (st.phase == PhaseEstimating || st.phase == PhaseRevealed) {
		v.Presenting = turn.Presenter == s.self.Identity
		if !v.Presenting && st.phase != PhaseRevealed {
			turn.Target = 0
			turn.Hidden = true
		}
		if st.effects.ExtraClue != "" {
			turn.Clue += " " + st.effects.ExtraClue
		}
		v.Turn = &turn
		v.Ready = st.readyIdentities()
		v.PendingReady = st.pendingReady()
	}
	if st.mover != "" && s.now().Sub(st.movedAt) <= moverDisplayWindow {
		v.Mover = st.mover
		v.MoverAvatar = st.moverAvatar
	}
	if st.resolution != nil {
		r := *st.resolution
		v.Resolution = &r
	}
	if len(st.schedule) > 0 {
		v.Rating = Rate(st.ledger.Total, len(st.schedule))
	}
	if st.phase == PhaseEstimating && st.powerUps && !s.lost {
		presenter := st.presenter()
		for _, kind := range AllModifiers {
			v.Modifiers[kind] = checkModifier(kind, s.self.Identity, presenter, st.used[s.self.Identity], st.effects) == nil
		}
	}
	return v
}
