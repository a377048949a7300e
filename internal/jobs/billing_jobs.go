package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/billing"
	"equiprent-backend/internal/logger"
)

// BuildMonthlyCharges builds charge lines for the previous calendar month for
// every tenant. Month boundaries are taken in each tenant's billing timezone,
// so a tenant in America/Denver bills Denver months, not UTC months.
func (jr *JobRunner) BuildMonthlyCharges() {
	jr.runWithRecovery("BuildMonthlyCharges", func() {
		ctx := context.Background()

		tenants, err := jr.store.Settings().List(ctx)
		if err != nil {
			logger.Error("Failed to list tenant settings", "error", err)
			return
		}

		now := time.Now()
		totalLines := 0
		for _, settings := range tenants {
			tz := settings.BillingTimeZone
			if tz == "" {
				tz = jr.config.Billing.DefaultTimeZone
			}
			loc := billing.LoadZone(tz)
			periodEnd := billing.StartOfMonth(now, loc)
			periodStart := billing.StartOfMonth(periodEnd.Add(-time.Hour), loc)

			lines, err := jr.services.Billing.BuildChargeLines(ctx, settings.CompanyID, periodStart, periodEnd)
			if err != nil {
				logger.Error("Failed to build monthly charges",
					"company_id", settings.CompanyID,
					"period_start", periodStart, "period_end", periodEnd,
					"error", err)
				continue
			}
			totalLines += len(lines)
		}

		logger.Info("Monthly charge build completed", "tenants", len(tenants), "charge_lines", totalLines)
	})
}
