package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type equipmentRepository struct {
	db DBTX
}

func NewEquipmentRepository(db DBTX) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `id, company_id, type_id, serial, condition, bundle_id, bundle_primary, location_id`

func scanEquipment(scan func(dest ...interface{}) error, e *domain.Equipment) error {
	var condition string
	if err := scan(&e.ID, &e.CompanyID, &e.TypeID, &e.Serial, &condition, &e.BundleID, &e.BundlePrimary, &e.LocationID); err != nil {
		return err
	}
	e.Condition = domain.EquipmentCondition(condition)
	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.Equipment, error) {
	e := &domain.Equipment{}
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE company_id = $1 AND id = $2`
	row := r.db.QueryRowContext(ctx, query, companyID, id)
	if err := scanEquipment(row.Scan, e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("equipment: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return e, nil
}

func (r *equipmentRepository) ListByType(ctx context.Context, companyID, typeID int32) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE company_id = $1 AND type_id = $2 ORDER BY serial`
	return r.list(ctx, query, companyID, typeID)
}

func (r *equipmentRepository) ListBundleMembers(ctx context.Context, companyID, bundleID int32) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE company_id = $1 AND bundle_id = $2 ORDER BY id`
	return r.list(ctx, query, companyID, bundleID)
}

func (r *equipmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.Equipment
	for rows.Next() {
		var e domain.Equipment
		if err := scanEquipment(rows.Scan, &e); err != nil {
			return nil, err
		}
		units = append(units, e)
	}
	return units, rows.Err()
}

// CountUsableByType excludes unusable/lost units and unallocated placeholder
// serials, matching domain.Equipment.Usable.
func (r *equipmentRepository) CountUsableByType(ctx context.Context, companyID, typeID int32) (int, error) {
	query := `SELECT count(*) FROM equipment
	          WHERE company_id = $1 AND type_id = $2
	            AND condition = 'usable'
	            AND serial <> '' AND upper(serial) NOT LIKE 'UNALLOCATED%'`
	var count int
	err := r.db.QueryRowContext(ctx, query, companyID, typeID).Scan(&count)
	return count, err
}
