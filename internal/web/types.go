package web

import "time"

type StatusParticipant struct {
	Identity  string
	Avatar    string
	Color     string
	Authority bool
	Submitted bool
	Ready     bool
}

type StatusScore struct {
	Identity string
	Points   int
}

// StatusState is everything the host status page shows. It never carries a
// hidden target.
type StatusState struct {
	RoomCode   string
	JoinURL    string
	Phase      string
	TurnLabel  string
	Card       string
	Clue       string
	Presenter  string
	Estimate   float64
	Revealed   bool
	Target     float64
	Points     int
	Total      int
	Rating     string
	Scoring    string
	Deadline   time.Time
	Roster     []StatusParticipant
	Standings  []StatusScore
	ShowScores bool
}
