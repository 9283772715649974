package session

import (
	"context"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"wavelength/internal/cards"
)

var tracer trace.Tracer = otel.Tracer("wavelength/internal/session")

type authority struct{}

func (authority) isAuthority() bool { return true }

func (a authority) intent(s *Session, m Message) {
	a.receive(s, LocalHandle, m)
}

func (a authority) receive(s *Session, from Handle, m Message) {
	if ann, ok := m.(ParticipantAnnounce); ok {
		a.announce(s, from, ann)
		return
	}
	sender, ok := s.st.roster.ByHandle(from)
	if !ok {
		log.Printf("session dropped message kind=%s reason=unknown_link", m.Kind())
		return
	}
	identity, ok := senderIdentity(m)
	if !ok {
		log.Printf("session dropped message kind=%s from=%s reason=authority_only", m.Kind(), sender.Identity)
		return
	}
	if identity != sender.Identity {
		log.Printf("session dropped message kind=%s from=%s claimed=%s reason=identity_mismatch", m.Kind(), sender.Identity, identity)
		return
	}

	switch msg := m.(type) {
	case ClueSubmitted:
		a.submitClues(s, sender, msg)
	case EstimateMoved:
		a.moveEstimate(s, sender, msg)
	case ParticipantReady:
		a.ready(s, sender, msg)
	case AdvanceRequested:
		if s.st.phase != PhaseRevealed || msg.TurnIndex != s.st.turn {
			return
		}
		a.advance(s)
	case RefreshRequested:
		a.refresh(s, sender, msg)
	case ModifierActivated:
		a.modifier(s, sender, msg)
	}
}

func (a authority) announce(s *Session, from Handle, m ParticipantAnnounce) {
	identity := strings.TrimSpace(m.Identity)
	if existing, ok := s.st.roster.Get(identity); ok {
		if existing.Handle != from {
			log.Printf("session rejected announce identity=%s reason=duplicate_identity", identity)
			s.disconnect(from)
		}
		return
	}
	if bound, ok := s.st.roster.ByHandle(from); ok {
		log.Printf("session rejected announce identity=%s bound=%s reason=link_already_bound", identity, bound.Identity)
		return
	}
	if s.st.roster.Len() >= s.cfg.MaxParticipants {
		log.Printf("session rejected announce identity=%s reason=roster_full max=%d", identity, s.cfg.MaxParticipants)
		s.disconnect(from)
		return
	}
	s.st.roster.Add(Participant{
		Identity: identity,
		Avatar:   m.Avatar,
		Color:    m.Color,
		Handle:   from,
	})
	p, _ := s.st.roster.Get(identity)
	log.Printf("session participant joined identity=%s roster=%d phase=%s", identity, s.st.roster.Len(), s.st.phase)
	s.broadcast(RosterSnapshot{Participants: s.st.roster.Participants()}, LocalHandle)
	a.catchUp(s, p)
}

// catchUp brings a participant who joined after the lobby into the match.
// During Setup it is dealt a hand and counted for the submission quorum.
// Later it receives its redacted schedule and the resolved turns so far.
func (a authority) catchUp(s *Session, p Participant) {
	roster := s.st.roster.Participants()
	switch s.st.phase {
	case PhaseLobby:
		return
	case PhaseSetup:
		hand := s.deck.Deal()
		s.st.setHand(p.Identity, hand)
		s.st.turnCount = s.st.roster.Len() * cards.SlotsPerParticipant
		s.send(p.Handle, MatchInit{
			Hand:      hand,
			TurnCount: s.st.turnCount,
			Scoring:   s.st.scoring,
			PowerUps:  s.st.powerUps,
			Deadline:  s.st.deadline,
			Roster:    roster,
		})
		return
	}

	s.send(p.Handle, MatchInit{
		TurnCount: len(s.st.schedule),
		Scoring:   s.st.scoring,
		PowerUps:  s.st.powerUps,
		Roster:    roster,
	})
	s.send(p.Handle, ScheduleReady{
		Turns:    Redact(s.st.schedule, p.Identity),
		Roster:   roster,
		Deadline: s.st.deadline,
	})
	last := min(s.st.turn, len(s.st.schedule)-1)
	for i := 0; i <= last; i++ {
		if i > 0 {
			s.send(p.Handle, TurnAdvanced{TurnIndex: i, Deadline: s.st.deadline})
		}
		for _, r := range s.st.history {
			if r.TurnIndex == i {
				s.send(p.Handle, r)
			}
		}
	}
	switch s.st.phase {
	case PhaseFinished:
		s.send(p.Handle, TurnAdvanced{TurnIndex: len(s.st.schedule)})
	case PhaseEstimating:
		if s.st.mover != "" {
			s.send(p.Handle, EstimateMoved{
				Position:    s.st.estimate,
				Mover:       s.st.mover,
				MoverAvatar: s.st.moverAvatar,
				TurnIndex:   s.st.turn,
			})
		}
		for _, id := range s.st.readyIdentities() {
			s.send(p.Handle, ParticipantReady{Identity: id, TurnIndex: s.st.turn})
		}
	}
}

func (a authority) startMatch(s *Session) error {
	if s.st.roster.Len() < s.cfg.MinParticipants {
		return ErrTooFewParticipants
	}
	_, span := tracer.Start(context.Background(), "session.start_match")
	defer span.End()

	s.deck.Reset()
	s.st.scoring = s.cfg.Scoring
	s.st.powerUps = s.cfg.PowerUps
	deadline := s.now().Add(s.cfg.ClueTimeout)
	s.st.beginSetup(s.st.roster.Len()*cards.SlotsPerParticipant, deadline)
	roster := s.st.roster.Participants()
	for _, p := range s.st.roster.list {
		hand := s.deck.Deal()
		s.st.setHand(p.Identity, hand)
		s.send(p.Handle, MatchInit{
			Hand:      hand,
			TurnCount: s.st.turnCount,
			Scoring:   s.st.scoring,
			PowerUps:  s.st.powerUps,
			Deadline:  deadline,
			Roster:    roster,
		})
	}
	span.SetAttributes(
		attribute.Int("participants", len(roster)),
		attribute.String("scoring", string(s.st.scoring)),
	)
	log.Printf("session match started participants=%d turns=%d scoring=%s", len(roster), s.st.turnCount, s.st.scoring)
	s.armPhaseTimer()
	return nil
}

func (a authority) restart(s *Session) {
	s.stopPhaseTimer()
	s.st.resetMatch()
	s.broadcast(MatchRestarted{}, LocalHandle)
	log.Printf("session match restarted roster=%d", s.st.roster.Len())
}

func (a authority) submitClues(s *Session, sender Participant, m ClueSubmitted) {
	if s.st.phase != PhaseSetup || s.st.submitted[sender.Identity] {
		return
	}
	if _, ok := s.st.hands[sender.Identity]; !ok {
		log.Printf("session dropped submission identity=%s reason=no_hand", sender.Identity)
		return
	}
	clues := m.Clues
	for i := range clues {
		clues[i] = truncateClue(clues[i])
		if clues[i] == "" {
			log.Printf("session dropped submission identity=%s reason=empty_clue", sender.Identity)
			return
		}
	}
	s.st.recordSubmission(sender.Identity, &clues)
	s.broadcast(ClueSubmitted{Identity: sender.Identity}, sender.Handle)
	a.checkSubmissions(s)
}

func (a authority) checkSubmissions(s *Session) {
	if s.st.phase != PhaseSetup || len(s.st.pendingSubmissions()) > 0 {
		return
	}
	a.publishSchedule(s)
}

func (a authority) publishSchedule(s *Session) {
	_, span := tracer.Start(context.Background(), "session.build_schedule")
	defer span.End()

	roster := s.st.roster.Participants()
	turns, err := BuildSchedule(roster, s.st.hands)
	if err != nil {
		span.RecordError(err)
		log.Printf("session schedule failed: %v", err)
		return
	}
	deadline := s.now().Add(s.cfg.EstimateTimeout)
	s.st.installSchedule(turns, deadline)
	for _, p := range s.st.roster.Remote() {
		s.send(p.Handle, ScheduleReady{
			Turns:    Redact(turns, p.Identity),
			Roster:   roster,
			Deadline: deadline,
		})
	}
	span.SetAttributes(attribute.Int("turns", len(turns)))
	log.Printf("session schedule ready turns=%d", len(turns))
	s.armPhaseTimer()
}

func (a authority) moveEstimate(s *Session, sender Participant, m EstimateMoved) {
	if s.st.phase != PhaseEstimating || m.TurnIndex != s.st.turn || sender.Identity == s.st.presenter() {
		return
	}
	s.st.moveEstimate(m.Position, sender.Identity, sender.Avatar, s.now())
	s.broadcast(EstimateMoved{
		Position:    s.st.estimate,
		Mover:       sender.Identity,
		MoverAvatar: sender.Avatar,
		TurnIndex:   s.st.turn,
	}, sender.Handle)
}

func (a authority) ready(s *Session, sender Participant, m ParticipantReady) {
	if s.st.phase != PhaseEstimating || m.TurnIndex != s.st.turn || sender.Identity == s.st.presenter() {
		return
	}
	s.st.markReady(sender.Identity)
	s.broadcast(ParticipantReady{Identity: sender.Identity, TurnIndex: s.st.turn}, sender.Handle)
	a.checkReady(s)
}

func (a authority) checkReady(s *Session) {
	if s.st.phase != PhaseEstimating || s.st.estimators() == 0 || len(s.st.pendingReady()) > 0 {
		return
	}
	a.resolveTurn(s)
}

func (a authority) resolveTurn(s *Session) {
	_, span := tracer.Start(context.Background(), "session.resolve_turn")
	defer span.End()

	turn, ok := s.st.currentTurn()
	if !ok {
		return
	}
	r := TurnResolved{
		TurnIndex: s.st.turn,
		Presenter: turn.Presenter,
		Target:    turn.Target,
		Estimate:  s.st.estimate,
		Points:    Score(s.st.estimate, turn.Target, s.st.effects.Doubled),
		Doubled:   s.st.effects.Doubled,
	}
	s.st.resolve(r)
	s.stopPhaseTimer()
	s.broadcast(r, LocalHandle)
	span.SetAttributes(
		attribute.Int("turn", r.TurnIndex),
		attribute.Int("points", r.Points),
		attribute.Bool("doubled", r.Doubled),
	)
	log.Printf("session turn resolved turn=%d presenter=%s target=%.0f estimate=%.0f points=%d", r.TurnIndex, r.Presenter, r.Target, r.Estimate, r.Points)
}

func (a authority) advance(s *Session) {
	a.enterTurn(s, s.st.turn+1)
}

// finish ends the match early. The remaining scheduled turns are skipped.
func (a authority) finish(s *Session) {
	a.enterTurn(s, len(s.st.schedule))
}

func (a authority) enterTurn(s *Session, index int) {
	s.st.enterTurn(index, s.now().Add(s.cfg.EstimateTimeout))
	s.broadcast(TurnAdvanced{TurnIndex: s.st.turn, Deadline: s.st.deadline}, LocalHandle)
	if s.st.phase == PhaseFinished {
		s.stopPhaseTimer()
		log.Printf("session match finished total=%d turns=%d", s.st.ledger.Total, len(s.st.schedule))
		return
	}
	s.armPhaseTimer()
}

func (a authority) refresh(s *Session, sender Participant, m RefreshRequested) {
	if s.st.phase != PhaseSetup || s.st.submitted[sender.Identity] {
		return
	}
	hand, ok := s.st.hands[sender.Identity]
	if !ok {
		return
	}
	assignment, err := s.deck.Refresh(&hand, m.Slot)
	if err != nil {
		log.Printf("session refresh rejected identity=%s slot=%d: %v", sender.Identity, m.Slot, err)
		assignment = hand[m.Slot]
	}
	s.st.setHand(sender.Identity, hand)
	s.send(sender.Handle, CardRefreshed{Identity: sender.Identity, Slot: m.Slot, Assignment: assignment})
}

func (a authority) modifier(s *Session, sender Participant, m ModifierActivated) {
	if !s.st.powerUps || s.st.phase != PhaseEstimating || m.TurnIndex != s.st.turn {
		return
	}
	turn, _ := s.st.currentTurn()
	if err := checkModifier(m.Modifier, sender.Identity, turn.Presenter, s.st.used[sender.Identity], s.st.effects); err != nil {
		log.Printf("session modifier rejected identity=%s modifier=%s: %v", sender.Identity, m.Modifier, err)
		return
	}
	m.Half = ""
	switch m.Modifier {
	case ModifierRevealHalf:
		m.Half = HalfOf(turn.Target)
	case ModifierExtraClue:
		m.Extra = normalizeExtraClue(m.Extra)
		if m.Extra == "" {
			return
		}
	default:
		m.Extra = ""
	}
	s.st.applyModifier(m)
	s.broadcast(m, LocalHandle)
	log.Printf("session modifier activated identity=%s modifier=%s turn=%d", sender.Identity, m.Modifier, m.TurnIndex)
}

func (a authority) linkClosed(s *Session, h Handle) {
	p, ok := s.st.roster.RemoveHandle(h)
	if !ok {
		return
	}
	s.st.forget(p.Identity)
	log.Printf("session participant left identity=%s roster=%d phase=%s", p.Identity, s.st.roster.Len(), s.st.phase)
	s.broadcast(RosterSnapshot{Participants: s.st.roster.Participants()}, LocalHandle)

	short := s.st.roster.Len() < s.cfg.MinParticipants
	switch s.st.phase {
	case PhaseSetup:
		if short {
			a.restart(s)
			return
		}
		a.checkSubmissions(s)
	case PhaseEstimating:
		if short {
			a.finish(s)
			return
		}
		a.checkReady(s)
	case PhaseRevealed:
		if short {
			a.finish(s)
		}
	}
}

// expire fills in whatever the phase is still waiting on so the match
// keeps moving. Timers from an earlier phase, turn or match are ignored.
func (a authority) expire(s *Session, key phaseKey) {
	if key != s.st.phaseKey() {
		return
	}
	switch key.phase {
	case PhaseSetup:
		for _, id := range s.st.pendingSubmissions() {
			hand, ok := s.st.hands[id]
			if !ok {
				continue
			}
			var clues [cards.SlotsPerParticipant]string
			for i := range clues {
				clues[i] = hand[i].Clue
				if strings.TrimSpace(clues[i]) == "" {
					clues[i] = placeholderClue
				}
			}
			s.st.recordSubmission(id, &clues)
			s.broadcast(ClueSubmitted{Identity: id}, LocalHandle)
			log.Printf("session clue timeout identity=%s", id)
		}
		a.checkSubmissions(s)
	case PhaseEstimating:
		for _, id := range s.st.pendingReady() {
			s.st.markReady(id)
			s.broadcast(ParticipantReady{Identity: id, TurnIndex: s.st.turn}, LocalHandle)
		}
		log.Printf("session estimate timeout turn=%d", s.st.turn)
		a.checkReady(s)
	}
}
