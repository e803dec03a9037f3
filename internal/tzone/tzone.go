// Package tzone resolves the storage timezone bars are normalized to
// before they reach the store or a packet file.
package tzone

import "time"

// DefaultName is the storage timezone used when none is configured.
const DefaultName = "America/New_York"

// Load resolves a timezone by name, falling back to the default and then
// to UTC if the tz database has neither. Never returns nil.
func Load(name string) *time.Location {
	if name == "" {
		name = DefaultName
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultName); err == nil {
		return loc
	}
	return time.UTC
}

// Convert re-expresses t in loc. A nil loc means the default storage zone.
func Convert(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = Load("")
	}
	return t.In(loc)
}
