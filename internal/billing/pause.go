package billing

import (
	"sort"
	"time"

	"equiprent-backend/internal/domain"
)

// PauseSegment is one merged, clipped out-of-service interval.
type PauseSegment struct {
	StartAt time.Time
	EndAt   time.Time
}

func (s PauseSegment) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// PauseOverlap is the merged pause coverage of a target range. TotalPaused is
// only ever subtracted from chargeable time, never added.
type PauseOverlap struct {
	TotalPaused time.Duration
	Segments    []PauseSegment
}

// NormalizePauses drops entries without a valid start, entries whose end is
// not after their start, and (when allowOpen is false) open-ended entries.
func NormalizePauses(periods []domain.PausePeriod, allowOpen bool) []domain.PausePeriod {
	out := make([]domain.PausePeriod, 0, len(periods))
	for _, p := range periods {
		if p.StartAt.IsZero() {
			continue
		}
		if p.EndAt == nil {
			if !allowOpen {
				continue
			}
		} else if !p.EndAt.After(p.StartAt) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// OverlapPauses clips each normalized pause to [rangeStart, rangeEnd),
// treating an open pause's end as rangeEnd, then merges overlapping or
// touching clipped intervals and returns the total paused duration with the
// merged segments.
func OverlapPauses(periods []domain.PausePeriod, rangeStart, rangeEnd time.Time) PauseOverlap {
	if !rangeEnd.After(rangeStart) {
		return PauseOverlap{}
	}

	clipped := make([]PauseSegment, 0, len(periods))
	for _, p := range NormalizePauses(periods, true) {
		start := p.StartAt
		if start.Before(rangeStart) {
			start = rangeStart
		}
		end := rangeEnd
		if p.EndAt != nil && p.EndAt.Before(rangeEnd) {
			end = *p.EndAt
		}
		if end.After(start) {
			clipped = append(clipped, PauseSegment{StartAt: start, EndAt: end})
		}
	}
	if len(clipped) == 0 {
		return PauseOverlap{}
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].StartAt.Before(clipped[j].StartAt)
	})

	merged := []PauseSegment{clipped[0]}
	for _, seg := range clipped[1:] {
		last := &merged[len(merged)-1]
		if !seg.StartAt.After(last.EndAt) { // overlapping or touching
			if seg.EndAt.After(last.EndAt) {
				last.EndAt = seg.EndAt
			}
			continue
		}
		merged = append(merged, seg)
	}

	var total time.Duration
	for _, seg := range merged {
		total += seg.Duration()
	}
	return PauseOverlap{TotalPaused: total, Segments: merged}
}
