package summary

import (
	"fmt"
	"time"
)

// DefaultWindowSize is the number of trailing periods reprocessed on an
// incremental run. Late-arriving facts older than this lag are excluded
// from re-aggregation; the window bounds reprocessing cost, it is not a
// correctness guarantee for arbitrarily old arrivals.
const DefaultWindowSize = 14

// DefaultGranularity is the period granularity: one calendar day.
const DefaultGranularity = 24 * time.Hour

// ParseGranularity parses a period granularity string.
// Supports Go duration syntax (e.g., "1h") plus "Xd" for days.
func ParseGranularity(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("granularity must not be empty")
	}

	// Handle "d" suffix (days) — not supported by time.ParseDuration.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("invalid granularity %q: %w", s, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("granularity must be positive, got %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid granularity %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("granularity must be positive, got %q", s)
	}
	return d, nil
}

// PeriodFor truncates an event timestamp to its period key.
// This is the atomic unit of summary storage.
// Example: PeriodFor(2026-03-14 10:35:42, 24h) → 2026-03-14 00:00:00 UTC
func PeriodFor(t time.Time, granularity time.Duration) time.Time {
	return t.UTC().Truncate(granularity)
}

// Plan computes the run mode for the next aggregation run from the store's
// current max period. Pure: no side effects, no I/O.
//
// An empty store (maxPeriod == nil) yields a first run over all history.
// Otherwise the reprocess boundary is maxPeriod minus windowSize periods,
// so the window always covers the trailing windowSize periods plus any
// periods newer than the stored max.
func Plan(maxPeriod *time.Time, windowSize int, granularity time.Duration) RunMode {
	if maxPeriod == nil {
		return FirstRun()
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	from := PeriodFor(*maxPeriod, granularity).Add(-time.Duration(windowSize) * granularity)
	return IncrementalFrom(from)
}
