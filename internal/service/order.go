package service

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/availability"
	"equiprent-backend/internal/billing"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

type orderService struct {
	store repository.Store
	now   func() time.Time
}

func NewOrderService(store repository.Store) OrderService {
	return &orderService{store: store, now: time.Now}
}

// NewOrderServiceWithClock is for tests that need a fixed notion of now.
func NewOrderServiceWithClock(store repository.Store, now func() time.Time) OrderService {
	return &orderService{store: store, now: now}
}

func (s *orderService) MarkPickedUp(ctx context.Context, companyID, orderID, lineItemID int32, at *time.Time) (*domain.RentalOrder, error) {
	var result *domain.RentalOrder
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Fulfillable() {
			return fmt.Errorf("%w: cannot pick up from status %q", domain.ErrInvalidTransition, order.Status)
		}

		li, err := tx.LineItems().GetForUpdate(ctx, companyID, lineItemID)
		if err != nil {
			return err
		}
		if li.OrderID != orderID {
			return fmt.Errorf("%w: line item %d does not belong to order %d", domain.ErrInvalidInput, lineItemID, orderID)
		}

		now := s.now()
		pickedAt := now
		if at != nil {
			pickedAt = *at
		}
		if pickedAt.After(now) {
			return fmt.Errorf("%w: pickup time cannot be in the future", domain.ErrInvalidInput)
		}
		if li.ReturnedAt != nil && !li.ReturnedAt.After(pickedAt) {
			return fmt.Errorf("%w: return time must be after pickup time", domain.ErrInvalidInput)
		}

		li.FulfilledAt = &pickedAt

		// A pickup can surface a conflict even if the planned window did not:
		// check the actual effective window, excluding this order.
		if err := s.checkConflicts(ctx, tx, li, li.EffectiveStart(), li.EffectiveEnd(now)); err != nil {
			return err
		}

		if err := s.reprice(ctx, tx, li, now); err != nil {
			return err
		}
		if err := tx.LineItems().UpdateFulfillment(ctx, li); err != nil {
			return err
		}

		result, err = s.applyDerivedStatus(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Line item picked up", "company_id", companyID, "order_id", orderID, "line_item_id", lineItemID, "status", result.Status)
	return result, nil
}

func (s *orderService) MarkReturned(ctx context.Context, companyID, orderID, lineItemID int32, at *time.Time) (*domain.RentalOrder, error) {
	var result *domain.RentalOrder
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Fulfillable() {
			return fmt.Errorf("%w: cannot return from status %q", domain.ErrInvalidTransition, order.Status)
		}

		li, err := tx.LineItems().GetForUpdate(ctx, companyID, lineItemID)
		if err != nil {
			return err
		}
		if li.OrderID != orderID {
			return fmt.Errorf("%w: line item %d does not belong to order %d", domain.ErrInvalidInput, lineItemID, orderID)
		}
		if li.FulfilledAt == nil {
			return fmt.Errorf("%w: cannot return an item that was never picked up", domain.ErrInvalidTransition)
		}

		now := s.now()
		returnedAt := now
		if at != nil {
			returnedAt = *at
		}
		if !returnedAt.After(*li.FulfilledAt) {
			return fmt.Errorf("%w: return time must be after pickup time", domain.ErrInvalidInput)
		}

		li.ReturnedAt = &returnedAt
		if err := s.reprice(ctx, tx, li, now); err != nil {
			return err
		}
		if err := tx.LineItems().UpdateFulfillment(ctx, li); err != nil {
			return err
		}

		result, err = s.applyDerivedStatus(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Line item returned", "company_id", companyID, "order_id", orderID, "line_item_id", lineItemID, "status", result.Status)
	return result, nil
}

func (s *orderService) RescheduleEndDate(ctx context.Context, companyID, orderID, lineItemID int32, newEnd time.Time) (*domain.RentalOrder, error) {
	var result *domain.RentalOrder
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if !order.Status.Reschedulable() {
			return fmt.Errorf("%w: cannot reschedule from status %q", domain.ErrInvalidTransition, order.Status)
		}

		li, err := tx.LineItems().GetForUpdate(ctx, companyID, lineItemID)
		if err != nil {
			return err
		}
		if li.OrderID != orderID {
			return fmt.Errorf("%w: line item %d does not belong to order %d", domain.ErrInvalidInput, lineItemID, orderID)
		}
		if !newEnd.After(li.EffectiveStart()) {
			return fmt.Errorf("%w: new end date must be after the start date", domain.ErrInvalidInput)
		}

		li.EndAt = newEnd
		now := s.now()
		if err := s.checkConflicts(ctx, tx, li, li.EffectiveStart(), li.EffectiveEnd(now)); err != nil {
			return err
		}

		if err := s.reprice(ctx, tx, li, now); err != nil {
			return err
		}
		if err := tx.LineItems().UpdateFulfillment(ctx, li); err != nil {
			return err
		}

		result, err = s.applyDerivedStatus(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Line item rescheduled", "company_id", companyID, "order_id", orderID, "line_item_id", lineItemID, "new_end", newEnd)
	return result, nil
}

func (s *orderService) AssignEquipment(ctx context.Context, companyID, orderID, lineItemID int32, equipmentIDs []int32) (*domain.LineItem, error) {
	var result *domain.LineItem
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		li, err := tx.LineItems().GetForUpdate(ctx, companyID, lineItemID)
		if err != nil {
			return err
		}
		if li.OrderID != orderID {
			return fmt.Errorf("%w: line item %d does not belong to order %d", domain.ErrInvalidInput, lineItemID, orderID)
		}

		now := s.now()
		detector := availability.NewDetector(tx.LineItems(), tx.Holds(), tx.Equipment())
		conflicts, err := detector.FindConflicts(ctx, companyID, equipmentIDs, li.EffectiveStart(), li.EffectiveEnd(now), &orderID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{Conflicts: conflicts}
		}

		if err := tx.LineItems().SetEquipment(ctx, companyID, lineItemID, equipmentIDs); err != nil {
			return err
		}
		li.EquipmentIDs = equipmentIDs
		result = li
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeStatus re-derives and persists the order status from its line
// items. DeriveStatus is idempotent, so running this on an already-correct
// order is a no-op.
func (s *orderService) RecomputeStatus(ctx context.Context, companyID, orderID int32) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		updated, err := s.applyDerivedStatus(ctx, tx, order)
		if err != nil {
			return err
		}
		status = updated.Status
		return nil
	})
	return status, err
}

// checkConflicts runs the availability detector over the transaction's own
// repositories so the check and the dependent write cannot be split.
func (s *orderService) checkConflicts(ctx context.Context, tx repository.Store, li *domain.LineItem, start, end time.Time) error {
	if len(li.EquipmentIDs) == 0 {
		return nil
	}
	detector := availability.NewDetector(tx.LineItems(), tx.Holds(), tx.Equipment())
	conflicts, err := detector.FindConflicts(ctx, li.CompanyID, li.EquipmentIDs, start, end, &li.OrderID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}
	return nil
}

// reprice recomputes billable units and the display amount for the item's
// current effective interval. An unpriceable item (no rate basis yet) clears
// the cached billing fields instead of failing the mutation.
func (s *orderService) reprice(ctx context.Context, tx repository.Store, li *domain.LineItem, now time.Time) error {
	settings, err := tx.Settings().GetByCompany(ctx, li.CompanyID)
	if err != nil {
		return err
	}

	chargeEnd := li.EndAt
	if li.ReturnedAt != nil {
		chargeEnd = *li.ReturnedAt
	}
	in := billing.UnitsInput{
		StartAt:       li.EffectiveStart(),
		EndAt:         chargeEnd,
		RateBasis:     li.RateBasis,
		Rounding:      settings.RoundingMode,
		Granularity:   settings.RoundingGranularity,
		MonthlyMethod: settings.MonthlyProrationMethod,
		TimeZone:      settings.BillingTimeZone,
		PausePeriods:  li.PausePeriods,
	}

	units, ok := billing.ComputeBillableUnits(in)
	if !ok {
		li.BillableUnits = nil
		li.LineAmountCents = nil
		return nil
	}
	li.BillableUnits = &units
	if amount, ok := billing.ComputeDisplayLineAmount(in, li.RateAmountCents, li.Quantity); ok {
		li.LineAmountCents = &amount
	}
	return nil
}

func (s *orderService) applyDerivedStatus(ctx context.Context, tx repository.Store, order *domain.RentalOrder) (*domain.RentalOrder, error) {
	items, err := tx.LineItems().ListByOrder(ctx, order.CompanyID, order.ID)
	if err != nil {
		return nil, err
	}
	derived := domain.DeriveStatus(order.Status, items)
	if derived != order.Status {
		if err := tx.Orders().UpdateStatus(ctx, order.CompanyID, order.ID, derived); err != nil {
			return nil, err
		}
		order.Status = derived
	}
	return order, nil
}
