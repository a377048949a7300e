package domain

import "strings"

type RoundingMode string

const (
	RoundingModeNone    RoundingMode = "none"
	RoundingModeFloor   RoundingMode = "floor"
	RoundingModeCeil    RoundingMode = "ceil"
	RoundingModeNearest RoundingMode = "nearest"
)

type RoundingGranularity string

const (
	RoundingGranularityUnit RoundingGranularity = "unit"
	RoundingGranularityHour RoundingGranularity = "hour"
	RoundingGranularityDay  RoundingGranularity = "day"
)

type ProrationMethod string

const (
	ProrationMethodHours ProrationMethod = "hours"
	ProrationMethodDays  ProrationMethod = "days"
)

func NormalizeRoundingMode(raw string) RoundingMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "floor", "down":
		return RoundingModeFloor
	case "ceil", "ceiling", "up":
		return RoundingModeCeil
	case "nearest", "round":
		return RoundingModeNearest
	}
	return RoundingModeNone
}

func NormalizeRoundingGranularity(raw string) RoundingGranularity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hour", "hourly":
		return RoundingGranularityHour
	case "day", "daily":
		return RoundingGranularityDay
	}
	return RoundingGranularityUnit
}

func NormalizeProrationMethod(raw string) ProrationMethod {
	if strings.ToLower(strings.TrimSpace(raw)) == "days" {
		return ProrationMethodDays
	}
	return ProrationMethodHours
}

// CompanySettings are the tenant billing knobs. They are read-only input to
// every proration call; callers pass them explicitly rather than reading a
// process-wide cache.
type CompanySettings struct {
	CompanyID              int32               `json:"company_id"`
	RoundingMode           RoundingMode        `json:"billing_rounding_mode"`
	RoundingGranularity    RoundingGranularity `json:"billing_rounding_granularity"`
	MonthlyProrationMethod ProrationMethod     `json:"monthly_proration_method"`
	BillingTimeZone        string              `json:"billing_time_zone"`
}

// DefaultCompanySettings returns the fallback used when a tenant has no
// settings row: no rounding, hour-true monthly proration, UTC.
func DefaultCompanySettings(companyID int32) CompanySettings {
	return CompanySettings{
		CompanyID:              companyID,
		RoundingMode:           RoundingModeNone,
		RoundingGranularity:    RoundingGranularityUnit,
		MonthlyProrationMethod: ProrationMethodHours,
		BillingTimeZone:        "UTC",
	}
}
