package billing

import (
	"time"

	"equiprent-backend/internal/logger"
)

// maxMonthSegments caps calendar splitting (100 years of monthly segments) so
// malformed input can never loop forever.
const maxMonthSegments = 1200

// LoadZone resolves a named timezone. Unknown or empty names fall back to UTC
// rather than erroring: a bad tenant setting must never block a charge
// calculation.
func LoadZone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("Unknown billing timezone, falling back to UTC", "timezone", name)
		return time.UTC
	}
	return loc
}

// StartOfMonth returns local midnight on the 1st of the month containing t,
// in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns local midnight on the 1st of the month following the one
// containing t, in loc.
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month()+1, 1, 0, 0, 0, 0, loc)
}

// MonthSegment is one slice of a charge interval bounded by local calendar
// month boundaries.
type MonthSegment struct {
	StartAt     time.Time
	EndAt       time.Time
	DaysInMonth int
}

func (s MonthSegment) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// SplitIntoCalendarMonths slices [startAt, endAt) into ordered, non-overlapping
// segments that exactly tile the interval, each bounded by a local month
// boundary in loc. Returns nil when endAt is not after startAt.
func SplitIntoCalendarMonths(startAt, endAt time.Time, loc *time.Location) []MonthSegment {
	if loc == nil {
		loc = time.UTC
	}
	if !endAt.After(startAt) {
		return nil
	}

	var segments []MonthSegment
	cur := startAt
	for i := 0; i < maxMonthSegments && cur.Before(endAt); i++ {
		bound := EndOfMonth(cur, loc)
		if !bound.After(cur) {
			// DST-broken or otherwise malformed zone arithmetic; bail out
			// instead of spinning.
			break
		}
		segEnd := bound
		if segEnd.After(endAt) {
			segEnd = endAt
		}
		lt := cur.In(loc)
		segments = append(segments, MonthSegment{
			StartAt:     cur,
			EndAt:       segEnd,
			DaysInMonth: daysInMonth(lt.Year(), lt.Month()),
		})
		cur = bound
	}
	return segments
}

// daysInMonth leans on time.Date normalization: day 0 of the next month is the
// last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
