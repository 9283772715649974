package session

import "time"

// phaseKey identifies one armed deadline.
type phaseKey struct {
	match uint64
	phase Phase
	turn  int
}

func (st *state) phaseKey() phaseKey {
	return phaseKey{match: st.match, phase: st.phase, turn: st.turn}
}

// armPhaseTimer schedules the timeout for the current Setup or Estimating
// phase, replacing any earlier timer.
func (s *Session) armPhaseTimer() {
	s.stopPhaseTimer()
	var d time.Duration
	switch s.st.phase {
	case PhaseSetup:
		d = s.cfg.ClueTimeout
	case PhaseEstimating:
		d = s.cfg.EstimateTimeout
	default:
		return
	}
	key := s.st.phaseKey()
	s.phaseTimer = time.AfterFunc(d, func() {
		s.expirePhase(key)
	})
}

func (s *Session) stopPhaseTimer() {
	if s.phaseTimer != nil {
		s.phaseTimer.Stop()
		s.phaseTimer = nil
	}
}

// expirePhase runs the timeout for key if the session is still at it.
func (s *Session) expirePhase(key phaseKey) {
	_ = s.update(func() error {
		s.role.expire(s, key)
		return nil
	})
}
