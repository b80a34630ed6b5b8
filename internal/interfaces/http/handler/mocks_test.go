package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/storefront"
)

type MockInstanceRepository struct {
	mock.Mock
}

var _ storefront.InstanceRepository = (*MockInstanceRepository)(nil)

func (m *MockInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*storefront.Instance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storefront.Instance), args.Error(1)
}

func (m *MockInstanceRepository) FindAll(ctx context.Context) ([]storefront.Instance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.Instance), args.Error(1)
}

func (m *MockInstanceRepository) FindConnected(ctx context.Context) ([]storefront.Instance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.Instance), args.Error(1)
}

func (m *MockInstanceRepository) Save(ctx context.Context, instance *storefront.Instance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockInstanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMappingRepository struct {
	mock.Mock
}

var _ storefront.MappingRepository = (*MockMappingRepository)(nil)

func (m *MockMappingRepository) FindByInstance(ctx context.Context, instanceID uuid.UUID) ([]storefront.TemplateMapping, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.TemplateMapping), args.Error(1)
}

func (m *MockMappingRepository) FindByTemplate(ctx context.Context, instanceID, templateID uuid.UUID) (*storefront.TemplateMapping, error) {
	args := m.Called(ctx, instanceID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storefront.TemplateMapping), args.Error(1)
}

func (m *MockMappingRepository) FindByType(ctx context.Context, instanceID uuid.UUID, remoteType storefront.RemoteProductType) ([]storefront.TemplateMapping, error) {
	args := m.Called(ctx, instanceID, remoteType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.TemplateMapping), args.Error(1)
}

func (m *MockMappingRepository) SaveTemplateMapping(ctx context.Context, mapping *storefront.TemplateMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) DeleteTemplateMapping(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMappingRepository) FindByTemplateMapping(ctx context.Context, templateMappingID uuid.UUID) ([]storefront.VariantMapping, error) {
	args := m.Called(ctx, templateMappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.VariantMapping), args.Error(1)
}

func (m *MockMappingRepository) SaveVariantMapping(ctx context.Context, mapping *storefront.VariantMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) SaveVariantMappings(ctx context.Context, mappings []*storefront.VariantMapping) error {
	args := m.Called(ctx, mappings)
	return args.Error(0)
}

func (m *MockMappingRepository) DeleteVariantMappingsByRemoteIDs(ctx context.Context, templateMappingID uuid.UUID, remoteIDs []int64) error {
	args := m.Called(ctx, templateMappingID, remoteIDs)
	return args.Error(0)
}

func (m *MockMappingRepository) FindCategoryMappings(ctx context.Context, instanceID uuid.UUID) ([]storefront.CategoryMapping, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.CategoryMapping), args.Error(1)
}

func (m *MockMappingRepository) FindAttributeMappings(ctx context.Context, instanceID uuid.UUID) ([]storefront.AttributeMapping, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.AttributeMapping), args.Error(1)
}

func (m *MockMappingRepository) FindAttributeValueMappings(ctx context.Context, instanceID uuid.UUID) ([]storefront.AttributeValueMapping, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.AttributeValueMapping), args.Error(1)
}

func (m *MockMappingRepository) SaveCategoryMapping(ctx context.Context, mapping *storefront.CategoryMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) SaveAttributeMapping(ctx context.Context, mapping *storefront.AttributeMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) SaveAttributeValueMapping(ctx context.Context, mapping *storefront.AttributeValueMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

type MockLogRepository struct {
	mock.Mock
}

var _ storefront.LogRepository = (*MockLogRepository)(nil)

func (m *MockLogRepository) Append(ctx context.Context, entry *storefront.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogRepository) FindByInstance(ctx context.Context, instanceID uuid.UUID, limit int) ([]storefront.LogEntry, error) {
	args := m.Called(ctx, instanceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.LogEntry), args.Error(1)
}

type MockSyncRunner struct {
	mock.Mock
}

var _ SyncRunner = (*MockSyncRunner)(nil)

func (m *MockSyncRunner) RunFullSync(ctx context.Context, instanceID uuid.UUID) (*appsync.RunSummary, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsync.RunSummary), args.Error(1)
}

func (m *MockSyncRunner) RunStockPriceSync(ctx context.Context, instanceID uuid.UUID) error {
	args := m.Called(ctx, instanceID)
	return args.Error(0)
}

func (m *MockSyncRunner) SyncTemplate(ctx context.Context, instanceID, templateID uuid.UUID) error {
	args := m.Called(ctx, instanceID, templateID)
	return args.Error(0)
}

type MockConnectionTester struct {
	mock.Mock
}

var _ ConnectionTester = (*MockConnectionTester)(nil)

func (m *MockConnectionTester) TestConnection(ctx context.Context, instanceID uuid.UUID) error {
	args := m.Called(ctx, instanceID)
	return args.Error(0)
}
