package session

import (
	"encoding/json"
	"fmt"
)

type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps m in a typed JSON envelope.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: m.Kind(), Data: data})
}

// Decode parses an envelope into its concrete message. Unknown types and
// structurally invalid payloads are reported as ErrUnknownMessage and
// ErrMalformedMessage so callers can drop them.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	var (
		msg Message
		err error
	)
	switch env.Type {
	case KindParticipantAnnounce:
		msg, err = decodeAs[ParticipantAnnounce](env.Data)
	case KindRosterSnapshot:
		msg, err = decodeAs[RosterSnapshot](env.Data)
	case KindMatchInit:
		msg, err = decodeAs[MatchInit](env.Data)
	case KindClueSubmitted:
		msg, err = decodeAs[ClueSubmitted](env.Data)
	case KindScheduleReady:
		msg, err = decodeAs[ScheduleReady](env.Data)
	case KindEstimateMoved:
		msg, err = decodeAs[EstimateMoved](env.Data)
	case KindParticipantReady:
		msg, err = decodeAs[ParticipantReady](env.Data)
	case KindTurnResolved:
		msg, err = decodeAs[TurnResolved](env.Data)
	case KindTurnAdvanced:
		msg, err = decodeAs[TurnAdvanced](env.Data)
	case KindAdvanceRequested:
		msg, err = decodeAs[AdvanceRequested](env.Data)
	case KindRefreshRequested:
		msg, err = decodeAs[RefreshRequested](env.Data)
	case KindCardRefreshed:
		msg, err = decodeAs[CardRefreshed](env.Data)
	case KindModifierActivated:
		msg, err = decodeAs[ModifierActivated](env.Data)
	case KindMatchRestarted:
		msg, err = decodeAs[MatchRestarted](env.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := msg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, env.Type)
	}
	return msg, nil
}

func decodeAs[T Message](data json.RawMessage) (Message, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return v, nil
}
