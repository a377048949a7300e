package availability

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/metrics"
	"equiprent-backend/internal/repository"
)

// maxConflictsPerEquipment bounds the conflicts reported for one unit; the
// first found win. Enough to explain a rejection without scanning everything.
const maxConflictsPerEquipment = 3

// Detector answers whether serialized equipment can be committed to a window
// without double-booking it against committed reservations or maintenance
// holds. It holds no state of its own; construct it over the repositories of
// the transaction whose writes depend on the answer.
type Detector struct {
	lineItems repository.LineItemRepository
	holds     repository.HoldRepository
	equipment repository.EquipmentRepository
	now       func() time.Time
}

func NewDetector(lineItems repository.LineItemRepository, holds repository.HoldRepository, equipment repository.EquipmentRepository) *Detector {
	return &Detector{
		lineItems: lineItems,
		holds:     holds,
		equipment: equipment,
		now:       time.Now,
	}
}

// WithClock overrides the detector's notion of now. Tests only.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// overlaps is the right-open interval test: the committed window [aStart,aEnd)
// and the proposed window [bStart,bEnd) overlap iff aStart < bEnd and
// bStart < aEnd. A nil aEnd means the committed window is open-ended.
func overlaps(aStart time.Time, aEnd *time.Time, bStart, bEnd time.Time) bool {
	if !aStart.Before(bEnd) {
		return false
	}
	return aEnd == nil || bStart.Before(*aEnd)
}

// FindConflicts checks each equipment unit for committed line items and
// maintenance holds overlapping [proposedStart, proposedEnd). Scanning stops
// at the first unit with any conflict; the caller gets the bounded set found
// there.
func (d *Detector) FindConflicts(ctx context.Context, companyID int32, equipmentIDs []int32, proposedStart, proposedEnd time.Time, excludeOrderID *int32) ([]domain.Conflict, error) {
	if !proposedEnd.After(proposedStart) {
		return nil, fmt.Errorf("%w: proposed end must be after start", domain.ErrInvalidInput)
	}
	now := d.now()

	for _, equipmentID := range equipmentIDs {
		conflicts, err := d.conflictsForEquipment(ctx, companyID, equipmentID, proposedStart, proposedEnd, excludeOrderID, now)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			metrics.ConflictChecks.WithLabelValues("conflict").Inc()
			return conflicts, nil
		}
	}
	metrics.ConflictChecks.WithLabelValues("clear").Inc()
	return nil, nil
}

func (d *Detector) conflictsForEquipment(ctx context.Context, companyID, equipmentID int32, proposedStart, proposedEnd time.Time, excludeOrderID *int32, now time.Time) ([]domain.Conflict, error) {
	var conflicts []domain.Conflict

	assignments, err := d.lineItems.ListCommittedByEquipment(ctx, companyID, equipmentID, excludeOrderID, proposedStart)
	if err != nil {
		return nil, fmt.Errorf("listing committed line items for equipment %d: %w", equipmentID, err)
	}
	for _, a := range assignments {
		effStart := a.LineItem.EffectiveStart()
		effEnd := a.LineItem.OccupancyEnd(now)
		if !overlaps(effStart, effEnd, proposedStart, proposedEnd) {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{
			EquipmentID:  equipmentID,
			Kind:         domain.ConflictKindReservation,
			OrderID:      a.LineItem.OrderID,
			OrderNumber:  a.OrderNumber,
			OrderStatus:  a.OrderStatus,
			CustomerName: a.CustomerName,
			WindowStart:  effStart,
			WindowEnd:    effEnd,
		})
		if len(conflicts) >= maxConflictsPerEquipment {
			return conflicts, nil
		}
	}

	holds, err := d.holds.ListByEquipment(ctx, companyID, equipmentID, proposedStart)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance holds for equipment %d: %w", equipmentID, err)
	}
	for _, h := range holds {
		// An open hold's end is nil, which overlaps makes +infinity.
		if !overlaps(h.StartAt, h.EndAt, proposedStart, proposedEnd) {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{
			EquipmentID:     equipmentID,
			Kind:            domain.ConflictKindMaintenance,
			WorkOrderNumber: h.WorkOrderNumber,
			WindowStart:     h.StartAt,
			WindowEnd:       h.EndAt,
		})
		if len(conflicts) >= maxConflictsPerEquipment {
			break
		}
	}
	return conflicts, nil
}

// ListAvailable returns equipment of a type with no conflicts over the window.
// Bundles are atomic: only the bundle's primary unit is listed, and any member
// conflicting makes the whole bundle unavailable.
func (d *Detector) ListAvailable(ctx context.Context, companyID, typeID int32, proposedStart, proposedEnd time.Time, excludeOrderID *int32) ([]domain.Equipment, error) {
	if !proposedEnd.After(proposedStart) {
		return nil, fmt.Errorf("%w: proposed end must be after start", domain.ErrInvalidInput)
	}
	units, err := d.equipment.ListByType(ctx, companyID, typeID)
	if err != nil {
		return nil, fmt.Errorf("listing equipment of type %d: %w", typeID, err)
	}
	now := d.now()

	var available []domain.Equipment
	for _, unit := range units {
		if !unit.Usable() {
			continue
		}
		if unit.BundleID != nil {
			if !unit.BundlePrimary {
				continue
			}
			ok, err := d.bundleClear(ctx, companyID, *unit.BundleID, proposedStart, proposedEnd, excludeOrderID, now)
			if err != nil {
				return nil, err
			}
			if ok {
				available = append(available, unit)
			}
			continue
		}
		conflicts, err := d.conflictsForEquipment(ctx, companyID, unit.ID, proposedStart, proposedEnd, excludeOrderID, now)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			available = append(available, unit)
		}
	}
	return available, nil
}

func (d *Detector) bundleClear(ctx context.Context, companyID, bundleID int32, proposedStart, proposedEnd time.Time, excludeOrderID *int32, now time.Time) (bool, error) {
	members, err := d.equipment.ListBundleMembers(ctx, companyID, bundleID)
	if err != nil {
		return false, fmt.Errorf("listing bundle %d members: %w", bundleID, err)
	}
	for _, m := range members {
		conflicts, err := d.conflictsForEquipment(ctx, companyID, m.ID, proposedStart, proposedEnd, excludeOrderID, now)
		if err != nil {
			return false, err
		}
		if len(conflicts) > 0 {
			return false, nil
		}
	}
	return true, nil
}

// TypeCapacity is the aggregate view: usable units of the type minus demand
// from quoted and committed line items whose windows overlap the proposal.
// Line items with no assigned inventory still count as demand.
func (d *Detector) TypeCapacity(ctx context.Context, companyID, typeID int32, proposedStart, proposedEnd time.Time, excludeOrderID *int32) (domain.TypeCapacity, error) {
	if !proposedEnd.After(proposedStart) {
		return domain.TypeCapacity{}, fmt.Errorf("%w: proposed end must be after start", domain.ErrInvalidInput)
	}
	total, err := d.equipment.CountUsableByType(ctx, companyID, typeID)
	if err != nil {
		return domain.TypeCapacity{}, fmt.Errorf("counting usable equipment of type %d: %w", typeID, err)
	}

	items, err := d.lineItems.ListDemandByType(ctx, companyID, typeID, excludeOrderID, proposedStart, proposedEnd)
	if err != nil {
		return domain.TypeCapacity{}, fmt.Errorf("listing demand for type %d: %w", typeID, err)
	}
	now := d.now()

	demand := 0
	for _, li := range items {
		if !overlaps(li.EffectiveStart(), li.OccupancyEnd(now), proposedStart, proposedEnd) {
			continue
		}
		demand += demandUnits(li)
	}

	available := total - demand
	if available < 0 {
		available = 0
	}
	return domain.TypeCapacity{TypeID: typeID, Total: total, Demand: demand, Available: available}, nil
}

// demandUnits is how many units of stock a line item claims: its assigned
// inventory when present, its quantity otherwise, never less than one.
func demandUnits(li domain.LineItem) int {
	if n := len(li.EquipmentIDs); n > 0 {
		return n
	}
	if li.Quantity > 1 {
		return int(li.Quantity)
	}
	return 1
}
