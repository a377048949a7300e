package billing

import (
	"math"
	"time"

	"equiprent-backend/internal/domain"
)

const (
	dayDuration  = 24 * time.Hour
	weekDuration = 7 * dayDuration

	// roundEpsilon keeps ceil/floor from flickering when float division lands
	// an ulp past an exact granularity boundary.
	roundEpsilon = 1e-9
)

// UnitsInput carries everything ComputeBillableUnits needs. Settings come in
// explicitly per call; there is no process-wide tenant cache.
type UnitsInput struct {
	StartAt       time.Time
	EndAt         time.Time
	RateBasis     domain.RateBasis
	Rounding      domain.RoundingMode
	Granularity   domain.RoundingGranularity
	MonthlyMethod domain.ProrationMethod
	TimeZone      string
	PausePeriods  []domain.PausePeriod
}

// ComputeBillableUnits computes the fractional count of rate periods a charge
// interval is billed for, after pause subtraction and rounding. ok is false
// when the input cannot be priced (missing basis, non-positive duration);
// callers treat that as "cannot price yet", not a failure.
func ComputeBillableUnits(in UnitsInput) (units float64, ok bool) {
	if !in.EndAt.After(in.StartAt) {
		return 0, false
	}

	switch in.RateBasis {
	case domain.RateBasisDaily:
		return periodUnits(in, dayDuration), true
	case domain.RateBasisWeekly:
		return periodUnits(in, weekDuration), true
	case domain.RateBasisMonthly:
		return monthlyUnits(in)
	}
	return 0, false
}

// periodUnits handles the daily and weekly bases: pause-adjusted duration,
// optional duration-level rounding at hour/day granularity, then division by
// the period length, then optional unit-level rounding.
func periodUnits(in UnitsInput, period time.Duration) float64 {
	active := in.EndAt.Sub(in.StartAt) - OverlapPauses(in.PausePeriods, in.StartAt, in.EndAt).TotalPaused
	if active < 0 {
		active = 0
	}

	if in.Rounding != domain.RoundingModeNone {
		switch in.Granularity {
		case domain.RoundingGranularityHour:
			active = roundDuration(active, time.Hour, in.Rounding)
		case domain.RoundingGranularityDay:
			active = roundDuration(active, dayDuration, in.Rounding)
		}
	}

	units := float64(active) / float64(period)
	if in.Rounding != domain.RoundingModeNone && in.Granularity == domain.RoundingGranularityUnit {
		units = roundValue(units, in.Rounding)
	}
	return units
}

// monthlyUnits prorates across local calendar months. Results are never
// unit-rounded here regardless of the tenant's rounding mode; only the
// daily/weekly bases honor it. That asymmetry is long-observed billing
// behavior and is kept as-is.
func monthlyUnits(in UnitsInput) (float64, bool) {
	loc := LoadZone(in.TimeZone)
	segments := SplitIntoCalendarMonths(in.StartAt, in.EndAt, loc)
	if len(segments) == 0 {
		return 0, false
	}

	total := 0.0
	for _, seg := range segments {
		active := seg.Duration() - OverlapPauses(in.PausePeriods, seg.StartAt, seg.EndAt).TotalPaused
		if active <= 0 {
			continue
		}
		switch in.MonthlyMethod {
		case domain.ProrationMethodDays:
			days := activeDays(active, in)
			total += days / float64(seg.DaysInMonth)
		default: // hours: true fractional proration
			total += float64(active) / (float64(seg.DaysInMonth) * float64(dayDuration))
		}
	}
	return total, true
}

// activeDays converts pause-adjusted active time to whole days. Ceil by
// default; an explicit day-granularity rounding mode applies instead.
func activeDays(active time.Duration, in UnitsInput) float64 {
	x := float64(active) / float64(dayDuration)
	if in.Rounding != domain.RoundingModeNone && in.Granularity == domain.RoundingGranularityDay {
		return roundValue(x, in.Rounding)
	}
	return math.Ceil(x - roundEpsilon)
}

// ComputeDisplayLineAmount is the presentation companion: units x rate x
// quantity in cents. Monthly bases are forced to "no rounding"; otherwise the
// same rules as ComputeBillableUnits apply.
func ComputeDisplayLineAmount(in UnitsInput, rateCents int32, quantity int32) (int32, bool) {
	if in.RateBasis == domain.RateBasisMonthly {
		in.Rounding = domain.RoundingModeNone
	}
	units, ok := ComputeBillableUnits(in)
	if !ok {
		return 0, false
	}
	if quantity <= 0 {
		quantity = 1
	}
	return int32(math.Round(units * float64(rateCents) * float64(quantity))), true
}

func roundDuration(d, granularity time.Duration, mode domain.RoundingMode) time.Duration {
	if granularity <= 0 {
		return d
	}
	x := roundValue(float64(d)/float64(granularity), mode)
	return time.Duration(x * float64(granularity))
}

func roundValue(x float64, mode domain.RoundingMode) float64 {
	switch mode {
	case domain.RoundingModeCeil:
		return math.Ceil(x - roundEpsilon)
	case domain.RoundingModeFloor:
		return math.Floor(x + roundEpsilon)
	case domain.RoundingModeNearest:
		return math.Floor(x + 0.5)
	}
	return x
}
