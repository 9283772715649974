package session

// role decides what a session does with its inputs. The authority runs the
// deciding transitions and relays; the replica applies what it is told and
// forwards its own intents upstream. Both mutate the same state.
type role interface {
	isAuthority() bool
	// intent handles a message originated by the local participant.
	intent(s *Session, m Message)
	receive(s *Session, from Handle, m Message)
	linkClosed(s *Session, h Handle)
	expire(s *Session, key phaseKey)
}

// senderIdentity returns the participant a participant-originated message
// speaks for. Authority-originated kinds report false.
func senderIdentity(m Message) (string, bool) {
	switch msg := m.(type) {
	case ParticipantAnnounce:
		return msg.Identity, true
	case ClueSubmitted:
		return msg.Identity, true
	case EstimateMoved:
		return msg.Mover, true
	case ParticipantReady:
		return msg.Identity, true
	case AdvanceRequested:
		return msg.Identity, true
	case RefreshRequested:
		return msg.Identity, true
	case ModifierActivated:
		return msg.Identity, true
	}
	return "", false
}
