package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type lineItemRepository struct {
	db DBTX
}

func NewLineItemRepository(db DBTX) repository.LineItemRepository {
	return &lineItemRepository{db: db}
}

const lineItemColumns = `li.id, li.order_id, li.company_id, li.equipment_type_id, li.start_at, li.end_at, li.fulfilled_at, li.returned_at, li.rate_basis, li.rate_amount_cents, li.quantity, li.billable_units, li.line_amount_cents, li.bundle_id, li.created_on, li.updated_on`

func scanLineItem(scan func(dest ...interface{}) error, li *domain.LineItem) error {
	var rateBasis sql.NullString
	var units sql.NullFloat64
	var amount sql.NullInt32
	err := scan(&li.ID, &li.OrderID, &li.CompanyID, &li.EquipmentTypeID, &li.StartAt, &li.EndAt,
		&li.FulfilledAt, &li.ReturnedAt, &rateBasis, &li.RateAmountCents, &li.Quantity,
		&units, &amount, &li.BundleID, &li.CreatedOn, &li.UpdatedOn)
	if err != nil {
		return err
	}
	if rateBasis.Valid {
		li.RateBasis = domain.NormalizeRateBasis(rateBasis.String)
	}
	if units.Valid {
		v := units.Float64
		li.BillableUnits = &v
	}
	if amount.Valid {
		v := amount.Int32
		li.LineAmountCents = &v
	}
	return nil
}

func (r *lineItemRepository) Create(ctx context.Context, li *domain.LineItem) error {
	query := `INSERT INTO line_items (order_id, company_id, equipment_type_id, start_at, end_at, fulfilled_at, returned_at, rate_basis, rate_amount_cents, quantity, billable_units, line_amount_cents, bundle_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		li.OrderID, li.CompanyID, li.EquipmentTypeID, li.StartAt, li.EndAt, li.FulfilledAt, li.ReturnedAt,
		string(li.RateBasis), li.RateAmountCents, li.Quantity, li.BillableUnits, li.LineAmountCents, li.BundleID, now, now,
	).Scan(&li.ID)
}

func (r *lineItemRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items li WHERE li.company_id = $1 AND li.id = $2`
	return r.getOne(ctx, query, companyID, id)
}

func (r *lineItemRepository) GetForUpdate(ctx context.Context, companyID, id int32) (*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items li WHERE li.company_id = $1 AND li.id = $2 FOR UPDATE`
	return r.getOne(ctx, query, companyID, id)
}

func (r *lineItemRepository) getOne(ctx context.Context, query string, companyID, id int32) (*domain.LineItem, error) {
	li := &domain.LineItem{}
	row := r.db.QueryRowContext(ctx, query, companyID, id)
	if err := scanLineItem(row.Scan, li); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("line item: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	ids, err := r.equipmentIDs(ctx, li.ID)
	if err != nil {
		return nil, err
	}
	li.EquipmentIDs = ids
	pauses, err := r.ListPausePeriods(ctx, li.ID)
	if err != nil {
		return nil, err
	}
	li.PausePeriods = pauses
	return li, nil
}

func (r *lineItemRepository) equipmentIDs(ctx context.Context, lineItemID int32) ([]int32, error) {
	var ids pq.Int32Array
	query := `SELECT COALESCE(array_agg(equipment_id ORDER BY equipment_id), '{}') FROM line_item_equipment WHERE line_item_id = $1`
	if err := r.db.QueryRowContext(ctx, query, lineItemID).Scan(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *lineItemRepository) ListByOrder(ctx context.Context, companyID, orderID int32) ([]domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items li WHERE li.company_id = $1 AND li.order_id = $2 ORDER BY li.id`
	rows, err := r.db.QueryContext(ctx, query, companyID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := scanLineItem(rows.Scan, &li); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *lineItemRepository) UpdateFulfillment(ctx context.Context, li *domain.LineItem) error {
	query := `UPDATE line_items SET end_at = $1, fulfilled_at = $2, returned_at = $3, billable_units = $4, line_amount_cents = $5, updated_on = $6 WHERE company_id = $7 AND id = $8`
	res, err := r.db.ExecContext(ctx, query, li.EndAt, li.FulfilledAt, li.ReturnedAt, li.BillableUnits, li.LineAmountCents, time.Now(), li.CompanyID, li.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("line item %d: %w", li.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *lineItemRepository) SetEquipment(ctx context.Context, companyID, lineItemID int32, equipmentIDs []int32) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM line_item_equipment WHERE line_item_id = $1`, lineItemID); err != nil {
		return err
	}
	for _, eqID := range equipmentIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO line_item_equipment (line_item_id, company_id, equipment_id) VALUES ($1, $2, $3)`,
			lineItemID, companyID, eqID); err != nil {
			return err
		}
	}
	return nil
}

// ListCommittedByEquipment pre-filters in SQL (committed status, not yet
// returned before the proposal starts); the detector applies the precise
// effective-interval overlap.
func (r *lineItemRepository) ListCommittedByEquipment(ctx context.Context, companyID, equipmentID int32, excludeOrderID *int32, since time.Time) ([]domain.CommittedAssignment, error) {
	query := `SELECT ` + lineItemColumns + `, o.order_number, o.status, o.customer_name
	          FROM line_items li
	          JOIN line_item_equipment lie ON lie.line_item_id = li.id
	          JOIN rental_orders o ON o.id = li.order_id
	          WHERE li.company_id = $1 AND lie.equipment_id = $2
	            AND o.status IN ('requested', 'reservation', 'ordered')
	            AND (li.returned_at IS NULL OR li.returned_at > $3)
	            AND ($4::int IS NULL OR li.order_id <> $4)
	          ORDER BY li.start_at`
	rows, err := r.db.QueryContext(ctx, query, companyID, equipmentID, since, excludeOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CommittedAssignment
	for rows.Next() {
		var a domain.CommittedAssignment
		var orderStatus string
		scan := func(dest ...interface{}) error {
			dest = append(dest, &a.OrderNumber, &orderStatus, &a.CustomerName)
			return rows.Scan(dest...)
		}
		if err := scanLineItem(scan, &a.LineItem); err != nil {
			return nil, err
		}
		a.EquipmentID = equipmentID
		a.OrderStatus = domain.NormalizeOrderStatus(orderStatus)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *lineItemRepository) ListDemandByType(ctx context.Context, companyID, typeID int32, excludeOrderID *int32, start, end time.Time) ([]domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + `,
	            COALESCE((SELECT array_agg(e.equipment_id) FROM line_item_equipment e WHERE e.line_item_id = li.id), '{}')
	          FROM line_items li
	          JOIN rental_orders o ON o.id = li.order_id
	          WHERE li.company_id = $1 AND li.equipment_type_id = $2
	            AND o.status IN ('quote', 'requested', 'reservation', 'ordered')
	            AND li.start_at < $3
	            AND (li.returned_at IS NULL OR li.returned_at > $4)
	            AND ($5::int IS NULL OR li.order_id <> $5)
	          ORDER BY li.start_at`
	rows, err := r.db.QueryContext(ctx, query, companyID, typeID, end, start, excludeOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		var ids pq.Int32Array
		scan := func(dest ...interface{}) error {
			dest = append(dest, &ids)
			return rows.Scan(dest...)
		}
		if err := scanLineItem(scan, &li); err != nil {
			return nil, err
		}
		li.EquipmentIDs = ids
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *lineItemRepository) ListChargeable(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items li
	          JOIN rental_orders o ON o.id = li.order_id
	          WHERE li.company_id = $1
	            AND o.status IN ('requested', 'reservation', 'ordered', 'received', 'closed')
	            AND li.rate_basis IS NOT NULL
	            AND li.start_at < $2
	            AND (li.returned_at IS NULL OR li.returned_at > $3)
	          ORDER BY li.order_id, li.id`
	rows, err := r.db.QueryContext(ctx, query, companyID, periodEnd, periodStart)
	if err != nil {
		return nil, err
	}
	defer func() { rows.Close() }()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := scanLineItem(rows.Scan, &li); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range items {
		pauses, err := r.ListPausePeriods(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].PausePeriods = pauses
	}
	return items, nil
}

func (r *lineItemRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.OverdueItem, error) {
	query := `SELECT ` + lineItemColumns + `, o.order_number, o.customer_name, o.customer_email
	          FROM line_items li
	          JOIN rental_orders o ON o.id = li.order_id
	          WHERE li.fulfilled_at IS NOT NULL AND li.returned_at IS NULL AND li.end_at < $1
	            AND o.status IN ('ordered', 'received')
	          ORDER BY li.end_at`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OverdueItem
	for rows.Next() {
		var item domain.OverdueItem
		scan := func(dest ...interface{}) error {
			dest = append(dest, &item.OrderNumber, &item.CustomerName, &item.CustomerEmail)
			return rows.Scan(dest...)
		}
		if err := scanLineItem(scan, &item.LineItem); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *lineItemRepository) ListPausePeriods(ctx context.Context, lineItemID int32) ([]domain.PausePeriod, error) {
	query := `SELECT id, line_item_id, start_at, end_at, source, work_order_number FROM pause_periods WHERE line_item_id = $1 ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, query, lineItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pauses []domain.PausePeriod
	for rows.Next() {
		var p domain.PausePeriod
		if err := rows.Scan(&p.ID, &p.LineItemID, &p.StartAt, &p.EndAt, &p.Source, &p.WorkOrderNumber); err != nil {
			return nil, err
		}
		pauses = append(pauses, p)
	}
	return pauses, rows.Err()
}

func (r *lineItemRepository) CreatePausePeriod(ctx context.Context, p *domain.PausePeriod) error {
	query := `INSERT INTO pause_periods (line_item_id, start_at, end_at, source, work_order_number) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.LineItemID, p.StartAt, p.EndAt, p.Source, p.WorkOrderNumber).Scan(&p.ID)
}
