package postgres

import (
	"context"
	"database/sql"
	"errors"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type settingsRepository struct {
	db DBTX
}

func NewSettingsRepository(db DBTX) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

const settingsColumns = `company_id, billing_rounding_mode, billing_rounding_granularity, monthly_proration_method, billing_time_zone`

func scanSettings(scan func(dest ...interface{}) error) (domain.CompanySettings, error) {
	var s domain.CompanySettings
	var mode, granularity, method string
	if err := scan(&s.CompanyID, &mode, &granularity, &method, &s.BillingTimeZone); err != nil {
		return domain.CompanySettings{}, err
	}
	s.RoundingMode = domain.NormalizeRoundingMode(mode)
	s.RoundingGranularity = domain.NormalizeRoundingGranularity(granularity)
	s.MonthlyProrationMethod = domain.NormalizeProrationMethod(method)
	return s, nil
}

// GetByCompany falls back to defaults when the tenant has no settings row;
// a missing configuration must never block pricing.
func (r *settingsRepository) GetByCompany(ctx context.Context, companyID int32) (domain.CompanySettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM company_settings WHERE company_id = $1`
	s, err := scanSettings(r.db.QueryRowContext(ctx, query, companyID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultCompanySettings(companyID), nil
	}
	if err != nil {
		return domain.CompanySettings{}, err
	}
	return s, nil
}

func (r *settingsRepository) List(ctx context.Context) ([]domain.CompanySettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM company_settings ORDER BY company_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CompanySettings
	for rows.Next() {
		s, err := scanSettings(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
