package session

import (
	"slices"
	"time"

	"wavelength/internal/cards"
)

// state is the replicated match state. Both roles mutate it through the
// same transition methods; only the authority decides when to call the
// deciding ones.
type state struct {
	phase       Phase
	roster      Roster
	scoring     ScoringMode
	powerUps    bool
	hands       map[string]cards.Hand
	submitted   map[string]bool
	turnCount   int
	schedule    []Turn
	turn        int
	estimate    float64
	mover       string
	moverAvatar string
	movedAt     time.Time
	ready       map[string]bool
	resolution  *TurnResolved
	history     []TurnResolved
	ledger      *Ledger
	used        map[string]map[ModifierKind]bool
	effects     Effects
	deadline    time.Time
	// match increases on every reset so timers armed for an earlier match
	// can be told apart.
	match uint64
}

func newState(scoring ScoringMode, powerUps bool) state {
	st := state{scoring: scoring, powerUps: powerUps}
	st.resetMatch()
	return st
}

// resetMatch discards all match progress and returns to the lobby. The
// roster survives.
func (st *state) resetMatch() {
	st.match++
	st.phase = PhaseLobby
	st.hands = make(map[string]cards.Hand)
	st.submitted = make(map[string]bool)
	st.turnCount = 0
	st.schedule = nil
	st.turn = 0
	st.estimate = cards.Center
	st.mover = ""
	st.moverAvatar = ""
	st.movedAt = time.Time{}
	st.ready = make(map[string]bool)
	st.resolution = nil
	st.history = nil
	st.ledger = NewLedger(st.scoring)
	st.used = make(map[string]map[ModifierKind]bool)
	st.effects = Effects{}
	st.deadline = time.Time{}
}

func (st *state) beginSetup(turnCount int, deadline time.Time) {
	st.resetMatch()
	st.phase = PhaseSetup
	st.turnCount = turnCount
	st.deadline = deadline
}

func (st *state) setHand(identity string, hand cards.Hand) {
	st.hands[identity] = hand
}

// recordSubmission marks identity as submitted and stores its clues when
// the hand is known locally. A second submission has no effect.
func (st *state) recordSubmission(identity string, clues *[cards.SlotsPerParticipant]string) bool {
	if st.phase != PhaseSetup || st.submitted[identity] {
		return false
	}
	st.submitted[identity] = true
	if hand, ok := st.hands[identity]; ok && clues != nil {
		for i := range hand {
			hand[i].Clue = clues[i]
		}
		st.hands[identity] = hand
	}
	return true
}

func (st *state) installSchedule(turns []Turn, deadline time.Time) {
	st.schedule = turns
	st.turnCount = len(turns)
	st.enterTurn(0, deadline)
}

// enterTurn resets per-turn state. An index past the schedule finishes the
// match.
func (st *state) enterTurn(index int, deadline time.Time) {
	st.turn = index
	st.estimate = cards.Center
	st.mover = ""
	st.moverAvatar = ""
	st.movedAt = time.Time{}
	st.ready = make(map[string]bool)
	st.resolution = nil
	st.effects = Effects{}
	if index >= len(st.schedule) {
		st.turn = len(st.schedule)
		st.phase = PhaseFinished
		st.deadline = time.Time{}
		return
	}
	st.phase = PhaseEstimating
	st.deadline = deadline
}

func (st *state) currentTurn() (Turn, bool) {
	if st.turn < 0 || st.turn >= len(st.schedule) {
		return Turn{}, false
	}
	return st.schedule[st.turn], true
}

func (st *state) presenter() string {
	t, ok := st.currentTurn()
	if !ok {
		return ""
	}
	return t.Presenter
}

func (st *state) moveEstimate(pos float64, mover, avatar string, at time.Time) bool {
	if st.phase != PhaseEstimating {
		return false
	}
	st.estimate = cards.ClampEstimate(pos)
	st.mover = mover
	st.moverAvatar = avatar
	st.movedAt = at
	return true
}

func (st *state) markReady(identity string) bool {
	if st.phase != PhaseEstimating || identity == st.presenter() || st.ready[identity] {
		return false
	}
	st.ready[identity] = true
	return true
}

// pendingReady lists the non-presenters the turn still waits on, in roster
// order.
func (st *state) pendingReady() []string {
	presenter := st.presenter()
	var pending []string
	for _, id := range st.roster.Identities() {
		if id != presenter && !st.ready[id] {
			pending = append(pending, id)
		}
	}
	return pending
}

func (st *state) estimators() int {
	n := 0
	presenter := st.presenter()
	for _, id := range st.roster.Identities() {
		if id != presenter {
			n++
		}
	}
	return n
}

func (st *state) pendingSubmissions() []string {
	var pending []string
	for _, id := range st.roster.Identities() {
		if !st.submitted[id] {
			pending = append(pending, id)
		}
	}
	return pending
}

// resolve enters Revealed for the current turn and credits the ledger. A
// resolution for any other turn is ignored.
func (st *state) resolve(r TurnResolved) bool {
	if st.phase != PhaseEstimating || r.TurnIndex != st.turn {
		return false
	}
	st.phase = PhaseRevealed
	st.resolution = &r
	st.history = append(st.history, r)
	st.ledger.Record(r.Presenter, r.Points)
	st.schedule[st.turn].Target = r.Target
	st.schedule[st.turn].Hidden = false
	st.estimate = r.Estimate
	st.deadline = time.Time{}
	return true
}

func (st *state) modifierUsed(identity string, kind ModifierKind) bool {
	return st.used[identity][kind]
}

func (st *state) applyModifier(m ModifierActivated) bool {
	if st.phase != PhaseEstimating || m.TurnIndex != st.turn {
		return false
	}
	used, ok := st.used[m.Identity]
	if !ok {
		used = make(map[ModifierKind]bool)
		st.used[m.Identity] = used
	}
	used[m.Modifier] = true
	switch m.Modifier {
	case ModifierDouble:
		st.effects.Doubled = true
		st.effects.DoubledBy = m.Identity
	case ModifierRevealHalf:
		if m.Half != "" {
			st.effects.RevealedHalf = m.Half
			st.effects.RevealedBy = m.Identity
		}
	case ModifierExtraClue:
		st.effects.ExtraClue = m.Extra
	}
	return true
}

// forget drops a departed participant from the per-match bookkeeping. Its
// scheduled turns stay in place.
func (st *state) forget(identity string) {
	delete(st.hands, identity)
	delete(st.submitted, identity)
	delete(st.ready, identity)
}

func (st *state) submittedIdentities() []string {
	var ids []string
	for _, id := range st.roster.Identities() {
		if st.submitted[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (st *state) readyIdentities() []string {
	ids := make([]string, 0, len(st.ready))
	for id := range st.ready {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
