package domain

import (
	"strings"
	"time"
)

type EquipmentCondition string

const (
	EquipmentConditionUsable   EquipmentCondition = "usable"
	EquipmentConditionUnusable EquipmentCondition = "unusable"
	EquipmentConditionLost     EquipmentCondition = "lost"
)

// Equipment is one serialized unit. At most one committed line item per
// company may hold a unit over an overlapping effective interval; maintenance
// holds carry the same exclusivity.
type Equipment struct {
	ID            int32              `json:"id"`
	CompanyID     int32              `json:"company_id"`
	TypeID        int32              `json:"type_id"`
	Serial        string             `json:"serial"`
	Condition     EquipmentCondition `json:"condition"`
	BundleID      *int32             `json:"bundle_id,omitempty"`
	BundlePrimary bool               `json:"bundle_primary"` // the unit shown for the bundle in listings
	LocationID    *int32             `json:"location_id,omitempty"`
}

// Placeholder reports whether the unit is an unallocated serial stub rather
// than real inventory. Placeholders never count toward type capacity.
func (e Equipment) Placeholder() bool {
	s := strings.ToUpper(strings.TrimSpace(e.Serial))
	return s == "" || strings.HasPrefix(s, "UNALLOCATED")
}

// Usable reports whether the unit counts as rentable stock.
func (e Equipment) Usable() bool {
	return e.Condition == EquipmentConditionUsable && !e.Placeholder()
}

// MaintenanceHold is an out-of-service interval keyed by equipment. A nil
// EndAt means the hold is open and blocks every future window.
type MaintenanceHold struct {
	ID              int32      `json:"id"`
	CompanyID       int32      `json:"company_id"`
	EquipmentID     int32      `json:"equipment_id"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	Reason          string     `json:"reason"`
	WorkOrderNumber string     `json:"work_order_number"`
}
