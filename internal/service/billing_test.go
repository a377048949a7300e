package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
)

func TestBuildChargeLines(t *testing.T) {
	ctx := context.Background()
	periodStart := day(1)
	periodEnd := day(30)

	t.Run("Invalid period", func(t *testing.T) {
		svc := NewBillingServiceWithClock(newMockStore(), fixedClock)
		_, err := svc.BuildChargeLines(ctx, testCompanyID, periodEnd, periodStart)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Prices the clipped effective interval", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		li := *testLineItem(1, 100)
		li.FulfilledAt = dayPtr(10)
		li.ReturnedAt = dayPtr(15)
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{li}, nil)
		store.charges.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.ChargeLine")).Return(nil)

		svc := NewBillingServiceWithClock(store, fixedClock)
		lines, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, lines, 1)

		line := lines[0]
		assert.Equal(t, testCompanyID, line.CompanyID)
		assert.Equal(t, int32(100), line.OrderID)
		assert.Equal(t, int32(1), line.LineItemID)
		assert.NotEmpty(t, line.BatchID)
		assert.Equal(t, day(10), line.ChargeStart)
		assert.Equal(t, day(15), line.ChargeEnd)
		assert.InDelta(t, 5.0, line.Units, 1e-9)
		assert.Equal(t, int32(50000), line.AmountCents)
		store.charges.AssertExpectations(t)
	})

	t.Run("Interval crossing the period end is clipped to it", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		// Unreturned and overdue: the effective end is now (June 20 noon),
		// inside the period, so charging stops there.
		li := *testLineItem(1, 100)
		li.FulfilledAt = dayPtr(10)
		li.EndAt = day(12)
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{li}, nil)
		store.charges.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.ChargeLine")).Return(nil)

		svc := NewBillingServiceWithClock(store, fixedClock)
		lines, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, testNow, lines[0].ChargeEnd)
		assert.InDelta(t, 10.5, lines[0].Units, 1e-9)
	})

	t.Run("Unpriceable items are skipped not failed", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		priced := *testLineItem(1, 100)
		priced.FulfilledAt = dayPtr(10)
		priced.ReturnedAt = dayPtr(12)
		unpriced := *testLineItem(2, 100)
		unpriced.RateBasis = ""
		unpriced.FulfilledAt = dayPtr(10)
		unpriced.ReturnedAt = dayPtr(12)
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{priced, unpriced}, nil)
		store.charges.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.ChargeLine")).Return(nil)

		svc := NewBillingServiceWithClock(store, fixedClock)
		lines, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, int32(1), lines[0].LineItemID)
	})

	t.Run("Zero-length clipped interval contributes nothing", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		// Returned before the period even starts.
		li := *testLineItem(1, 100)
		li.StartAt = day(1).AddDate(0, -1, 0)
		li.EndAt = day(1).AddDate(0, 0, -5)
		li.FulfilledAt = &li.StartAt
		li.ReturnedAt = &li.EndAt
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{li}, nil)

		svc := NewBillingServiceWithClock(store, fixedClock)
		lines, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		require.NoError(t, err)
		assert.Empty(t, lines)
		store.charges.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("All lines share one batch ID", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		first := *testLineItem(1, 100)
		first.FulfilledAt = dayPtr(5)
		first.ReturnedAt = dayPtr(8)
		second := *testLineItem(2, 101)
		second.FulfilledAt = dayPtr(10)
		second.ReturnedAt = dayPtr(12)
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{first, second}, nil)
		store.charges.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.ChargeLine")).Return(nil)

		svc := NewBillingServiceWithClock(store, fixedClock)
		lines, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, lines[0].BatchID, lines[1].BatchID)
	})

	t.Run("Pause time is excluded from the charge", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		li := *testLineItem(1, 100)
		li.FulfilledAt = dayPtr(10)
		li.ReturnedAt = dayPtr(15)
		li.PausePeriods = []domain.PausePeriod{
			{StartAt: day(11), EndAt: dayPtr(12)},
		}
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{li}, nil)
		store.charges.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.ChargeLine")).Return(nil)

		svc := NewBillingServiceWithClock(store, fixedClock)
		lines, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.InDelta(t, 4.0, lines[0].Units, 1e-9)
	})

	t.Run("Persistence failure propagates", func(t *testing.T) {
		store := newMockStore()
		expectSettings(store)

		li := *testLineItem(1, 100)
		li.FulfilledAt = dayPtr(10)
		li.ReturnedAt = dayPtr(15)
		store.lineItems.On("ListChargeable", ctx, testCompanyID, periodStart, periodEnd).
			Return([]domain.LineItem{li}, nil)
		store.charges.On("CreateBatch", ctx, mock.AnythingOfType("[]domain.ChargeLine")).
			Return(errors.New("insert failed"))

		svc := NewBillingServiceWithClock(store, fixedClock)
		_, err := svc.BuildChargeLines(ctx, testCompanyID, periodStart, periodEnd)
		assert.ErrorContains(t, err, "insert failed")
	})
}
