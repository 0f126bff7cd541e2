// ABOUTME: Focus zone derivation from elapsed focus time.
// ABOUTME: Zones are presentational and recomputed on demand, never stored.
package flow

import "time"

// Zone is one of the three sub-periods of a focus block.
type Zone struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

var (
	ZoneFriction = Zone{Index: 0, Name: "Friction"}
	ZoneFlow     = Zone{Index: 1, Name: "Flow"}
	ZoneDecline  = Zone{Index: 2, Name: "Decline"}
)

const (
	flowStartsAfter    = 15 * time.Minute
	declineStartsAfter = 75 * time.Minute
)

// ZoneFor maps elapsed focus time to a zone using whole minutes.
func ZoneFor(elapsed time.Duration) Zone {
	minutes := elapsed.Truncate(time.Minute)
	switch {
	case minutes < flowStartsAfter:
		return ZoneFriction
	case minutes < declineStartsAfter:
		return ZoneFlow
	default:
		return ZoneDecline
	}
}
