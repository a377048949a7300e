package domain

import (
	"fmt"
	"strings"
	"time"
)

type ConflictKind string

const (
	ConflictKindReservation ConflictKind = "reservation"
	ConflictKindMaintenance ConflictKind = "maintenance"
)

// Conflict describes one existing commitment that overlaps a proposed window,
// with enough context to explain the rejection to a user.
type Conflict struct {
	EquipmentID     int32        `json:"equipment_id"`
	Kind            ConflictKind `json:"kind"`
	OrderID         int32        `json:"order_id,omitempty"`
	OrderNumber     string       `json:"order_number,omitempty"`
	OrderStatus     OrderStatus  `json:"order_status,omitempty"`
	CustomerName    string       `json:"customer_name,omitempty"`
	WorkOrderNumber string       `json:"work_order_number,omitempty"`
	WindowStart     time.Time    `json:"window_start"`
	WindowEnd       *time.Time   `json:"window_end,omitempty"` // nil = open-ended
}

func (c Conflict) String() string {
	end := "open"
	if c.WindowEnd != nil {
		end = c.WindowEnd.Format(time.RFC3339)
	}
	if c.Kind == ConflictKindMaintenance {
		return fmt.Sprintf("equipment %d out of service (%s) from %s to %s",
			c.EquipmentID, c.WorkOrderNumber, c.WindowStart.Format(time.RFC3339), end)
	}
	return fmt.Sprintf("equipment %d held by order %s (%s, %s) from %s to %s",
		c.EquipmentID, c.OrderNumber, c.OrderStatus, c.CustomerName,
		c.WindowStart.Format(time.RFC3339), end)
}

// ConflictError is returned when a proposed window cannot be committed. It is
// surfaced to the caller to show the user, never retried automatically.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "availability conflict"
	}
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return "availability conflict: " + strings.Join(parts, "; ")
}

// CommittedAssignment pairs a committed line item holding an equipment unit
// with the order context needed to explain a conflict.
type CommittedAssignment struct {
	EquipmentID  int32       `json:"equipment_id"`
	LineItem     LineItem    `json:"line_item"`
	OrderNumber  string      `json:"order_number"`
	OrderStatus  OrderStatus `json:"order_status"`
	CustomerName string      `json:"customer_name"`
}

// TypeCapacity is the aggregate availability view for one equipment type over
// a window.
type TypeCapacity struct {
	TypeID    int32 `json:"type_id"`
	Total     int   `json:"total"`
	Demand    int   `json:"demand"`
	Available int   `json:"available"`
}
