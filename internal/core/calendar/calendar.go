// Package calendar provides holiday lookups used to enrich summary rows.
package calendar

import (
	"fmt"
	"time"
)

// Calendar answers whether a period key falls on a holiday.
type Calendar interface {
	// Holiday returns the holiday name for the civil date of t (UTC),
	// or ok=false when t is not a holiday.
	Holiday(t time.Time) (name string, ok bool)
}

// ByName resolves a calendar by its profile identifier.
// An empty name yields a nil Calendar (enrichment disabled).
func ByName(name string) (Calendar, error) {
	switch name {
	case "":
		return nil, nil
	case "us":
		return US{}, nil
	default:
		return nil, fmt.Errorf("unknown holiday calendar %q", name)
	}
}
