package availability

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"equiprent-backend/internal/domain"
)

type MockLineItemRepo struct {
	mock.Mock
}

func (m *MockLineItemRepo) Create(ctx context.Context, li *domain.LineItem) error {
	args := m.Called(ctx, li)
	return args.Error(0)
}

func (m *MockLineItemRepo) GetByID(ctx context.Context, companyID, id int32) (*domain.LineItem, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineItem), args.Error(1)
}

func (m *MockLineItemRepo) GetForUpdate(ctx context.Context, companyID, id int32) (*domain.LineItem, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineItem), args.Error(1)
}

func (m *MockLineItemRepo) ListByOrder(ctx context.Context, companyID, orderID int32) ([]domain.LineItem, error) {
	args := m.Called(ctx, companyID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *MockLineItemRepo) UpdateFulfillment(ctx context.Context, li *domain.LineItem) error {
	args := m.Called(ctx, li)
	return args.Error(0)
}

func (m *MockLineItemRepo) SetEquipment(ctx context.Context, companyID, lineItemID int32, equipmentIDs []int32) error {
	args := m.Called(ctx, companyID, lineItemID, equipmentIDs)
	return args.Error(0)
}

func (m *MockLineItemRepo) ListCommittedByEquipment(ctx context.Context, companyID, equipmentID int32, excludeOrderID *int32, since time.Time) ([]domain.CommittedAssignment, error) {
	args := m.Called(ctx, companyID, equipmentID, excludeOrderID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommittedAssignment), args.Error(1)
}

func (m *MockLineItemRepo) ListDemandByType(ctx context.Context, companyID, typeID int32, excludeOrderID *int32, start, end time.Time) ([]domain.LineItem, error) {
	args := m.Called(ctx, companyID, typeID, excludeOrderID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *MockLineItemRepo) ListChargeable(ctx context.Context, companyID int32, periodStart, periodEnd time.Time) ([]domain.LineItem, error) {
	args := m.Called(ctx, companyID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *MockLineItemRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.OverdueItem, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OverdueItem), args.Error(1)
}

func (m *MockLineItemRepo) ListPausePeriods(ctx context.Context, lineItemID int32) ([]domain.PausePeriod, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PausePeriod), args.Error(1)
}

func (m *MockLineItemRepo) CreatePausePeriod(ctx context.Context, p *domain.PausePeriod) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockHoldRepo struct {
	mock.Mock
}

func (m *MockHoldRepo) Create(ctx context.Context, hold *domain.MaintenanceHold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldRepo) ListByEquipment(ctx context.Context, companyID, equipmentID int32, since time.Time) ([]domain.MaintenanceHold, error) {
	args := m.Called(ctx, companyID, equipmentID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MaintenanceHold), args.Error(1)
}

type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) GetByID(ctx context.Context, companyID, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepo) ListByType(ctx context.Context, companyID, typeID int32) ([]domain.Equipment, error) {
	args := m.Called(ctx, companyID, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepo) ListBundleMembers(ctx context.Context, companyID, bundleID int32) ([]domain.Equipment, error) {
	args := m.Called(ctx, companyID, bundleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepo) CountUsableByType(ctx context.Context, companyID, typeID int32) (int, error) {
	args := m.Called(ctx, companyID, typeID)
	return args.Int(0), args.Error(1)
}
