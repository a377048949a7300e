package domain

import (
	"strings"
	"time"
)

type RateBasis string

const (
	RateBasisDaily   RateBasis = "daily"
	RateBasisWeekly  RateBasis = "weekly"
	RateBasisMonthly RateBasis = "monthly"
)

// NormalizeRateBasis maps raw rate basis strings to the canonical set. An
// empty result means no basis is known and the item cannot be priced yet.
func NormalizeRateBasis(raw string) RateBasis {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily", "day", "d":
		return RateBasisDaily
	case "weekly", "week", "w":
		return RateBasisWeekly
	case "monthly", "month", "4week", "m":
		return RateBasisMonthly
	}
	return ""
}

// PausePeriod is an interval during which a line item's equipment was out of
// service. A nil EndAt means still paused. Paused time never accrues charge
// and does not count as committed for availability checks.
type PausePeriod struct {
	ID              int32      `json:"id"`
	LineItemID      int32      `json:"line_item_id"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	Source          string     `json:"source"`
	WorkOrderNumber string     `json:"work_order_number"`
}

func (p PausePeriod) Open() bool {
	return p.EndAt == nil
}

type LineItem struct {
	ID              int32         `json:"id"`
	OrderID         int32         `json:"order_id"`
	CompanyID       int32         `json:"company_id"`
	EquipmentTypeID int32         `json:"equipment_type_id"`
	StartAt         time.Time     `json:"start_at"`
	EndAt           time.Time     `json:"end_at"`
	FulfilledAt     *time.Time    `json:"fulfilled_at,omitempty"` // actual pickup
	ReturnedAt      *time.Time    `json:"returned_at,omitempty"`  // only meaningful once fulfilled
	RateBasis       RateBasis     `json:"rate_basis"`
	RateAmountCents int32         `json:"rate_amount_cents"`
	Quantity        int32         `json:"quantity"`
	BillableUnits   *float64      `json:"billable_units,omitempty"`
	LineAmountCents *int32        `json:"line_amount_cents,omitempty"`
	BundleID        *int32        `json:"bundle_id,omitempty"`
	EquipmentIDs    []int32       `json:"equipment_ids"`
	PausePeriods    []PausePeriod `json:"pause_periods,omitempty"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

// OverdueItem pairs an overdue line item with the order contact details the
// reminder job needs.
type OverdueItem struct {
	LineItem      LineItem `json:"line_item"`
	OrderNumber   string   `json:"order_number"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
}

// HasPlannedWindow reports whether both planned timestamps are set.
func (li LineItem) HasPlannedWindow() bool {
	return !li.StartAt.IsZero() && !li.EndAt.IsZero()
}

// EffectiveStart is the instant the item actually starts occupying equipment:
// the real pickup when known, otherwise the planned start.
func (li LineItem) EffectiveStart() time.Time {
	if li.FulfilledAt != nil {
		return *li.FulfilledAt
	}
	return li.StartAt
}

// EffectiveEnd is the instant the item stops occupying equipment for billing:
// the real return when known, otherwise max(planned end, now). Charges for a
// period never reach past now, so an unreturned item is clipped here even
// though its occupancy window stays open.
func (li LineItem) EffectiveEnd(now time.Time) time.Time {
	if li.ReturnedAt != nil {
		return *li.ReturnedAt
	}
	if now.After(li.EndAt) {
		return now
	}
	return li.EndAt
}

// OccupancyEnd is the end of the window during which the item occupies its
// equipment, or nil when that end is not known yet. A picked-up item with no
// recorded return is open-ended: it keeps the equipment past any planned end
// and conflicts with every later window until it is explicitly returned.
func (li LineItem) OccupancyEnd(now time.Time) *time.Time {
	if li.FulfilledAt != nil && li.ReturnedAt == nil {
		return nil
	}
	end := li.EffectiveEnd(now)
	return &end
}

// Overdue reports whether the item is picked up, unreturned, and past its
// planned end.
func (li LineItem) Overdue(now time.Time) bool {
	return li.FulfilledAt != nil && li.ReturnedAt == nil && now.After(li.EndAt)
}
