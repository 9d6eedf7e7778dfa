// Package timezone wraps time zone database lookups behind a small
// interface so scheduling logic can be tested with deterministic or
// deliberately invalid zone identifiers.
package timezone

import "time"

// Resolver resolves an IANA time zone identifier to a location.
type Resolver interface {
	Resolve(id string) (*time.Location, error)
}

type systemResolver struct{}

// NewSystemResolver returns a Resolver backed by the host tz database.
func NewSystemResolver() Resolver {
	return systemResolver{}
}

func (systemResolver) Resolve(id string) (*time.Location, error) {
	return time.LoadLocation(id)
}

// ToUTC interprets local as a wall-clock time in loc and converts it to UTC,
// honoring the zone's offset rules including DST.
func ToUTC(local time.Time, loc *time.Location) time.Time {
	return time.Date(
		local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		loc,
	).UTC()
}
