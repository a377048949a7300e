package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/billing"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/metrics"
	"equiprent-backend/internal/repository"
)

type billingService struct {
	store repository.Store
	now   func() time.Time
}

func NewBillingService(store repository.Store) BillingService {
	return &billingService{store: store, now: time.Now}
}

func NewBillingServiceWithClock(store repository.Store, now func() time.Time) BillingService {
	return &billingService{store: store, now: now}
}

// BuildChargeLines prices every line item whose effective interval overlaps
// [periodStart, periodEnd), clipped to the period, and persists the batch for
// the accounting sync to drain. Items that cannot be priced yet are skipped,
// not failed.
func (s *billingService) BuildChargeLines(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.ChargeLine, error) {
	if !periodEnd.After(periodStart) {
		return nil, fmt.Errorf("%w: billing period end must be after start", domain.ErrInvalidInput)
	}

	settings, err := s.store.Settings().GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.LineItems().ListChargeable(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	now := s.now()
	var lines []domain.ChargeLine
	for _, li := range items {
		chargeStart := li.EffectiveStart()
		if chargeStart.Before(periodStart) {
			chargeStart = periodStart
		}
		chargeEnd := li.EffectiveEnd(now)
		if chargeEnd.After(periodEnd) {
			chargeEnd = periodEnd
		}
		if !chargeEnd.After(chargeStart) {
			continue
		}

		in := billing.UnitsInput{
			StartAt:       chargeStart,
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
			logger.Warn("Skipping unpriceable line item in billing build",
				"company_id", companyID, "line_item_id", li.ID)
			continue
		}
		amount, _ := billing.ComputeDisplayLineAmount(in, li.RateAmountCents, li.Quantity)

		lines = append(lines, domain.ChargeLine{
			BatchID:         batchID,
			CompanyID:       companyID,
			OrderID:         li.OrderID,
			LineItemID:      li.ID,
			EquipmentTypeID: li.EquipmentTypeID,
			RateBasis:       li.RateBasis,
			RateAmountCents: li.RateAmountCents,
			Quantity:        li.Quantity,
			Units:           units,
			AmountCents:     amount,
			ChargeStart:     chargeStart,
			ChargeEnd:       chargeEnd,
		})
	}

	if len(lines) > 0 {
		if err := s.store.Charges().CreateBatch(ctx, lines); err != nil {
			return nil, err
		}
		metrics.ChargeLinesBuilt.Add(float64(len(lines)))
	}
	logger.Info("Charge lines built", "company_id", companyID, "batch_id", batchID,
		"period_start", periodStart, "period_end", periodEnd, "count", len(lines))
	return lines, nil
}
