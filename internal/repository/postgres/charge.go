package postgres

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type chargeRepository struct {
	db DBTX
}

func NewChargeRepository(db DBTX) repository.ChargeRepository {
	return &chargeRepository{db: db}
}

const chargeColumns = `id, batch_id, company_id, order_id, line_item_id, equipment_type_id, rate_basis, rate_amount_cents, quantity, units, amount_cents, charge_start, charge_end, created_on`

func (r *chargeRepository) CreateBatch(ctx context.Context, lines []domain.ChargeLine) error {
	query := `INSERT INTO charge_lines (batch_id, company_id, order_id, line_item_id, equipment_type_id, rate_basis, rate_amount_cents, quantity, units, amount_cents, charge_start, charge_end, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	for i := range lines {
		cl := &lines[i]
		err := r.db.QueryRowContext(ctx, query,
			cl.BatchID, cl.CompanyID, cl.OrderID, cl.LineItemID, cl.EquipmentTypeID,
			cl.RateBasis, cl.RateAmountCents, cl.Quantity, cl.Units, cl.AmountCents,
			cl.ChargeStart, cl.ChargeEnd, now,
		).Scan(&cl.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *chargeRepository) ListByBatch(ctx context.Context, companyID int32, batchID string) ([]domain.ChargeLine, error) {
	query := `SELECT ` + chargeColumns + ` FROM charge_lines WHERE company_id = $1 AND batch_id = $2 ORDER BY id`
	return r.list(ctx, query, companyID, batchID)
}

func (r *chargeRepository) ListForPeriod(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.ChargeLine, error) {
	query := `SELECT ` + chargeColumns + ` FROM charge_lines WHERE company_id = $1 AND charge_start < $2 AND charge_end > $3 ORDER BY id`
	return r.list(ctx, query, companyID, periodEnd, periodStart)
}

func (r *chargeRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.ChargeLine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.ChargeLine
	for rows.Next() {
		var cl domain.ChargeLine
		var basis string
		if err := rows.Scan(&cl.ID, &cl.BatchID, &cl.CompanyID, &cl.OrderID, &cl.LineItemID, &cl.EquipmentTypeID,
			&basis, &cl.RateAmountCents, &cl.Quantity, &cl.Units, &cl.AmountCents,
			&cl.ChargeStart, &cl.ChargeEnd, &cl.CreatedOn); err != nil {
			return nil, err
		}
		cl.RateBasis = domain.NormalizeRateBasis(basis)
		lines = append(lines, cl)
	}
	return lines, rows.Err()
}
