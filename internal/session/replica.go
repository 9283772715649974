package session

import "log"

type replica struct{}

func (replica) isAuthority() bool { return false }

// intent applies the optimistic part of a local action and forwards it to
// the authority, which has the final say.
func (replica) intent(s *Session, m Message) {
	switch msg := m.(type) {
	case ClueSubmitted:
		s.st.recordSubmission(msg.Identity, &msg.Clues)
	case ParticipantReady:
		s.st.markReady(msg.Identity)
	}
	s.send(s.cfg.Upstream, m)
}

func (r replica) receive(s *Session, from Handle, m Message) {
	if from != s.cfg.Upstream {
		log.Printf("session dropped message kind=%s reason=not_upstream", m.Kind())
		return
	}
	switch msg := m.(type) {
	case RosterSnapshot:
		r.replaceRoster(s, msg.Participants)
	case MatchInit:
		s.st.scoring = msg.Scoring
		s.st.powerUps = msg.PowerUps
		s.st.beginSetup(msg.TurnCount, msg.Deadline)
		if len(msg.Roster) > 0 {
			r.replaceRoster(s, msg.Roster)
		}
		if !msg.Hand[0].Card.IsZero() {
			s.st.setHand(s.self.Identity, msg.Hand)
		}
	case ClueSubmitted:
		s.st.recordSubmission(msg.Identity, nil)
	case ScheduleReady:
		if s.st.phase != PhaseSetup {
			return
		}
		if len(msg.Roster) > 0 {
			r.replaceRoster(s, msg.Roster)
		}
		s.st.installSchedule(msg.Turns, msg.Deadline)
	case EstimateMoved:
		if msg.TurnIndex == s.st.turn {
			s.st.moveEstimate(msg.Position, msg.Mover, msg.MoverAvatar, s.now())
		}
	case ParticipantReady:
		if msg.TurnIndex == s.st.turn {
			s.st.markReady(msg.Identity)
		}
	case TurnResolved:
		s.st.resolve(msg)
	case TurnAdvanced:
		if s.st.schedule == nil || msg.TurnIndex <= s.st.turn {
			return
		}
		s.st.enterTurn(msg.TurnIndex, msg.Deadline)
	case CardRefreshed:
		hand, ok := s.st.hands[msg.Identity]
		if !ok || msg.Identity != s.self.Identity || s.st.phase != PhaseSetup {
			return
		}
		hand[msg.Slot] = msg.Assignment
		s.st.setHand(msg.Identity, hand)
	case ModifierActivated:
		s.st.applyModifier(msg)
	case MatchRestarted:
		s.st.resetMatch()
	default:
		log.Printf("session dropped message kind=%s reason=participant_only", m.Kind())
	}
}

func (replica) replaceRoster(s *Session, list []Participant) {
	s.st.roster.Replace(list)
	if p, ok := s.st.roster.Get(s.self.Identity); ok {
		s.self.Avatar = p.Avatar
		s.self.Color = p.Color
	}
}

func (replica) linkClosed(s *Session, h Handle) {
	if h != s.cfg.Upstream || s.lost {
		return
	}
	s.lost = true
	s.stopPhaseTimer()
	log.Printf("session authority link lost identity=%s phase=%s", s.self.Identity, s.st.phase)
}

func (replica) expire(*Session, phaseKey) {}
