package repository

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.RentalOrder) error
	GetByID(ctx context.Context, companyID, id int32) (*domain.RentalOrder, error)
	// GetForUpdate locks the order row for the duration of the surrounding
	// transaction. Only meaningful inside Store.ExecTx.
	GetForUpdate(ctx context.Context, companyID, id int32) (*domain.RentalOrder, error)
	UpdateStatus(ctx context.Context, companyID, id int32, status domain.OrderStatus) error
	// ListActive returns orders in fulfillable statuses across all tenants,
	// for the nightly status recompute.
	ListActive(ctx context.Context) ([]domain.RentalOrder, error)
}

type LineItemRepository interface {
	Create(ctx context.Context, li *domain.LineItem) error
	GetByID(ctx context.Context, companyID, id int32) (*domain.LineItem, error)
	GetForUpdate(ctx context.Context, companyID, id int32) (*domain.LineItem, error)
	ListByOrder(ctx context.Context, companyID, orderID int32) ([]domain.LineItem, error)
	// UpdateFulfillment persists end_at, fulfilled_at, returned_at and the
	// recomputed billing fields in one write.
	UpdateFulfillment(ctx context.Context, li *domain.LineItem) error
	SetEquipment(ctx context.Context, companyID, lineItemID int32, equipmentIDs []int32) error

	// ListCommittedByEquipment returns line items in committed statuses that
	// hold the equipment unit and could still overlap a window starting at or
	// after since. Precise effective-interval overlap is the detector's job.
	ListCommittedByEquipment(ctx context.Context, companyID, equipmentID int32, excludeOrderID *int32, since time.Time) ([]domain.CommittedAssignment, error)
	// ListDemandByType returns quoted and committed line items of the type
	// whose planned-or-effective window could overlap [start, end).
	ListDemandByType(ctx context.Context, companyID, typeID int32, excludeOrderID *int32, start, end time.Time) ([]domain.LineItem, error)
	// ListChargeable returns line items whose effective interval can overlap
	// the billing period, with pause periods attached.
	ListChargeable(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.LineItem, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.OverdueItem, error)

	ListPausePeriods(ctx context.Context, lineItemID int32) ([]domain.PausePeriod, error)
	CreatePausePeriod(ctx context.Context, p *domain.PausePeriod) error
}

type EquipmentRepository interface {
	GetByID(ctx context.Context, companyID, id int32) (*domain.Equipment, error)
	ListByType(ctx context.Context, companyID, typeID int32) ([]domain.Equipment, error)
	ListBundleMembers(ctx context.Context, companyID, bundleID int32) ([]domain.Equipment, error)
	CountUsableByType(ctx context.Context, companyID, typeID int32) (int, error)
}

type HoldRepository interface {
	Create(ctx context.Context, hold *domain.MaintenanceHold) error
	// ListByEquipment returns holds that are open or end after since.
	ListByEquipment(ctx context.Context, companyID, equipmentID int32, since time.Time) ([]domain.MaintenanceHold, error)
}

type SettingsRepository interface {
	// GetByCompany returns the tenant's billing settings, falling back to
	// domain.DefaultCompanySettings when no row exists.
	GetByCompany(ctx context.Context, companyID int32) (domain.CompanySettings, error)
	List(ctx context.Context) ([]domain.CompanySettings, error)
}

type ChargeRepository interface {
	CreateBatch(ctx context.Context, lines []domain.ChargeLine) error
	ListByBatch(ctx context.Context, companyID int32, batchID string) ([]domain.ChargeLine, error)
	ListForPeriod(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.ChargeLine, error)
}

// Store bundles the repositories plus transactional execution. ExecTx runs fn
// against a Store whose repositories share one database transaction, so a
// conflict check and the write that depends on it cannot be interleaved with
// a concurrent request. fn returning an error rolls everything back.
type Store interface {
	Orders() OrderRepository
	LineItems() LineItemRepository
	Equipment() EquipmentRepository
	Holds() HoldRepository
	Settings() SettingsRepository
	Charges() ChargeRepository
	ExecTx(ctx context.Context, fn func(Store) error) error
}
