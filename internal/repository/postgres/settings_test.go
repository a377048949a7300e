package postgres

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
)

func settingsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"company_id", "billing_rounding_mode", "billing_rounding_granularity",
		"monthly_proration_method", "billing_time_zone",
	})
}

func TestSettingsRepositoryGetByCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("Raw values are normalized", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM company_settings WHERE company_id").
			WithArgs(int32(7)).
			WillReturnRows(settingsRows().AddRow(7, "UP", "Daily", "days", "America/Denver"))

		s, err := store.Settings().GetByCompany(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.RoundingModeCeil, s.RoundingMode)
		assert.Equal(t, domain.RoundingGranularityDay, s.RoundingGranularity)
		assert.Equal(t, domain.ProrationMethodDays, s.MonthlyProrationMethod)
		assert.Equal(t, "America/Denver", s.BillingTimeZone)
	})

	t.Run("Missing row falls back to defaults", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM company_settings WHERE company_id").
			WithArgs(int32(7)).
			WillReturnRows(settingsRows())

		s, err := store.Settings().GetByCompany(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultCompanySettings(7), s)
	})

	t.Run("Query error propagates", func(t *testing.T) {
		store, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM company_settings WHERE company_id").
			WithArgs(int32(7)).
			WillReturnError(errors.New("connection reset"))

		_, err := store.Settings().GetByCompany(ctx, 7)
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestSettingsRepositoryList(t *testing.T) {
	store, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM company_settings ORDER BY company_id").
		WillReturnRows(settingsRows().
			AddRow(1, "none", "unit", "hours", "UTC").
			AddRow(2, "ceil", "unit", "days", "America/Chicago"))

	out, err := store.Settings().List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int32(2), out[1].CompanyID)
	assert.Equal(t, domain.RoundingModeCeil, out[1].RoundingMode)
}
