package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/logger"
)

// RecomputeOrderStatuses re-derives the cached status of every active order
// from its line items. The derivation is idempotent, so orders already in the
// right status are untouched; anything that drifted (imports, manual data
// fixes) is corrected.
func (jr *JobRunner) RecomputeOrderStatuses() {
	jr.runWithRecovery("RecomputeOrderStatuses", func() {
		ctx := context.Background()

		orders, err := jr.store.Orders().ListActive(ctx)
		if err != nil {
			logger.Error("Failed to list active orders", "error", err)
			return
		}

		changed := 0
		for _, order := range orders {
			status, err := jr.services.Order.RecomputeStatus(ctx, order.CompanyID, order.ID)
			if err != nil {
				logger.Error("Failed to recompute order status",
					"company_id", order.CompanyID, "order_id", order.ID, "error", err)
				continue
			}
			if status != order.Status {
				logger.Info("Order status corrected",
					"company_id", order.CompanyID, "order_id", order.ID,
					"from", order.Status, "to", status)
				changed++
			}
		}

		logger.Info("Order statuses recomputed", "orders", len(orders), "changed", changed)
	})
}

// SendOverdueReminders emails the customer contact of every fulfilled,
// unreturned line item past its planned end date.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		items, err := jr.store.LineItems().ListOverdue(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list overdue line items", "error", err)
			return
		}

		sent := 0
		for _, item := range items {
			if err := jr.services.Email.SendOverdueReminder(ctx, item); err != nil {
				logger.Error("Failed to send overdue reminder",
					"order_number", item.OrderNumber, "line_item_id", item.LineItem.ID, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Overdue reminders sent", "overdue", len(items), "sent", sent)
	})
}
