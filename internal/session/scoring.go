package session

import "math"

// Score bands, measured as absolute distance on the 0-180 scale.
const (
	bullseyeBand = 8
	nearBand     = 16
	outerBand    = 24

	bullseyePoints = 4
	nearPoints     = 3
	outerPoints    = 2

	MaxTurnPoints = bullseyePoints
)

// Score awards points for an estimate against a target. Closer estimates
// never score less.
func Score(estimate, target float64, doubled bool) int {
	diff := math.Abs(estimate - target)
	points := 0
	switch {
	case diff <= bullseyeBand:
		points = bullseyePoints
	case diff <= nearBand:
		points = nearPoints
	case diff <= outerBand:
		points = outerPoints
	}
	if doubled {
		points *= 2
	}
	return points
}
