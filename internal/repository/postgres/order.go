package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type orderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, company_id, order_number, status, customer_id, customer_name, customer_email, fulfillment_method, created_on, updated_on`

func (r *orderRepository) Create(ctx context.Context, o *domain.RentalOrder) error {
	query := `INSERT INTO rental_orders (company_id, order_number, status, customer_id, customer_name, customer_email, fulfillment_method, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		o.CompanyID, o.OrderNumber, o.Status, o.CustomerID, o.CustomerName, o.CustomerEmail, o.FulfillmentMethod, now, now,
	).Scan(&o.ID)
}

func (r *orderRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.RentalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE company_id = $1 AND id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, companyID, id))
}

func (r *orderRepository) GetForUpdate(ctx context.Context, companyID, id int32) (*domain.RentalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders WHERE company_id = $1 AND id = $2 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, companyID, id))
}

func (r *orderRepository) scanOne(row *sql.Row) (*domain.RentalOrder, error) {
	o := &domain.RentalOrder{}
	var status string
	err := row.Scan(&o.ID, &o.CompanyID, &o.OrderNumber, &status, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.FulfillmentMethod, &o.CreatedOn, &o.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	o.Status = domain.NormalizeOrderStatus(status)
	return o, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, companyID, id int32, status domain.OrderStatus) error {
	query := `UPDATE rental_orders SET status = $1, updated_on = $2 WHERE company_id = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), companyID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) ListActive(ctx context.Context) ([]domain.RentalOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rental_orders
	          WHERE status IN ('requested', 'reservation', 'ordered', 'received')
	          ORDER BY company_id, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.RentalOrder
	for rows.Next() {
		var o domain.RentalOrder
		var status string
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.OrderNumber, &status, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.FulfillmentMethod, &o.CreatedOn, &o.UpdatedOn); err != nil {
			return nil, err
		}
		o.Status = domain.NormalizeOrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
