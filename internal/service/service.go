package service

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

// OrderService owns the fulfillment mutations. Every mutation runs its
// availability check and its writes inside one store transaction and
// re-derives the order status from the full line-item set afterward.
type OrderService interface {
	MarkPickedUp(ctx context.Context, companyID, orderID, lineItemID int32, at *time.Time) (*domain.RentalOrder, error)
	MarkReturned(ctx context.Context, companyID, orderID, lineItemID int32, at *time.Time) (*domain.RentalOrder, error)
	RescheduleEndDate(ctx context.Context, companyID, orderID, lineItemID int32, newEnd time.Time) (*domain.RentalOrder, error)
	AssignEquipment(ctx context.Context, companyID, orderID, lineItemID int32, equipmentIDs []int32) (*domain.LineItem, error)
	RecomputeStatus(ctx context.Context, companyID, orderID int32) (domain.OrderStatus, error)
}

// BillingService builds charge lines for a billing period; the accounting
// sync collaborator drains them by batch.
type BillingService interface {
	BuildChargeLines(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.ChargeLine, error)
}

type EmailService interface {
	SendOverdueReminder(ctx context.Context, item domain.OverdueItem) error
}
