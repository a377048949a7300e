package postgres

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type holdRepository struct {
	db DBTX
}

func NewHoldRepository(db DBTX) repository.HoldRepository {
	return &holdRepository{db: db}
}

func (r *holdRepository) Create(ctx context.Context, h *domain.MaintenanceHold) error {
	query := `INSERT INTO maintenance_holds (company_id, equipment_id, start_at, end_at, reason, work_order_number)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, h.CompanyID, h.EquipmentID, h.StartAt, h.EndAt, h.Reason, h.WorkOrderNumber).Scan(&h.ID)
}

func (r *holdRepository) ListByEquipment(ctx context.Context, companyID, equipmentID int32, since time.Time) ([]domain.MaintenanceHold, error) {
	query := `SELECT id, company_id, equipment_id, start_at, end_at, reason, work_order_number
	          FROM maintenance_holds
	          WHERE company_id = $1 AND equipment_id = $2
	            AND (end_at IS NULL OR end_at > $3)
	          ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, query, companyID, equipmentID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []domain.MaintenanceHold
	for rows.Next() {
		var h domain.MaintenanceHold
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.EquipmentID, &h.StartAt, &h.EndAt, &h.Reason, &h.WorkOrderNumber); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}
