package session

import (
	"errors"

	"wavelength/internal/cards"
)

var (
	ErrNotAuthority       = errors.New("only the authority can do that")
	ErrTooFewParticipants = errors.New("not enough participants to start")
	ErrWrongPhase         = errors.New("not allowed in the current phase")
	ErrEmptyClue          = errors.New("clue text is required for both cards")
	ErrAlreadySubmitted   = errors.New("clues already submitted")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrPresenter          = errors.New("the presenter cannot do that")
	ErrModifierUsed       = errors.New("modifier already used")
	ErrModifierNotAllowed = errors.New("modifier not allowed")
	ErrDuplicateIdentity  = errors.New("identity already in use")
	ErrRosterFull         = errors.New("room is full")
	ErrAuthorityLost      = errors.New("connection to the host was lost")
	ErrUnknownMessage     = errors.New("unknown message type")
	ErrMalformedMessage   = errors.New("malformed message")
	ErrMissingSubmission  = errors.New("participant has no submitted hand")

	ErrRefreshUsed = cards.ErrRefreshUsed
	ErrInvalidSlot = cards.ErrInvalidSlot
)
