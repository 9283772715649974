// Package session implements the host-authoritative coordination core: the
// roster, the turn schedule, the round state machine, the score ledger and
// the power-up effects, replicated across participants by message.
package session

import "time"

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseSetup      Phase = "setup"
	PhaseEstimating Phase = "estimating"
	PhaseRevealed   Phase = "revealed"
	PhaseFinished   Phase = "finished"
)

// Handle identifies a transport link as seen from the local process. The
// authority's own participant has the empty handle.
type Handle string

const LocalHandle Handle = ""

const (
	DefaultClueTimeout      = 240 * time.Second
	DefaultEstimateTimeout  = 240 * time.Second
	DefaultEstimateThrottle = 30 * time.Millisecond
	DefaultMinParticipants  = 2
	DefaultMaxParticipants  = 8

	maxClueLength      = 50
	placeholderClue    = "(no clue)"
	moverDisplayWindow = 2 * time.Second
)

type Participant struct {
	Identity    string `json:"identity"`
	Avatar      string `json:"avatar,omitempty"`
	Color       string `json:"color,omitempty"`
	IsAuthority bool   `json:"is_authority,omitempty"`
	Handle      Handle `json:"-"`
}
