package sync

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// MockCatalogRepository is a mock implementation of catalog.Repository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListTemplateIDs(ctx context.Context, filter catalog.TemplateFilter, includeArchived bool) ([]uuid.UUID, error) {
	args := m.Called(ctx, filter, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCatalogRepository) GetTemplates(ctx context.Context, ids []uuid.UUID) ([]catalog.Template, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Template), args.Error(1)
}

func (m *MockCatalogRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*catalog.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Template), args.Error(1)
}

func (m *MockCatalogRepository) GetCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCatalogRepository) VariantPrice(ctx context.Context, variantID uuid.UUID, pricelistID *uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, variantID, pricelistID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCatalogRepository) VariantStock(ctx context.Context, variantID uuid.UUID, policy catalog.StockPolicy) (int, error) {
	args := m.Called(ctx, variantID, policy)
	return args.Int(0), args.Error(1)
}

func (m *MockCatalogRepository) MarkImagePullPending(ctx context.Context, templateID uuid.UUID) error {
	args := m.Called(ctx, templateID)
	return args.Error(0)
}

var _ catalog.Repository = (*MockCatalogRepository)(nil)

// MockMappingRepository is a mock implementation of storefront.MappingRepository
type MockMappingRepository struct {
	mock.Mock
}

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

var _ storefront.MappingRepository = (*MockMappingRepository)(nil)

// MockInstanceRepository is a mock implementation of storefront.InstanceRepository
type MockInstanceRepository struct {
	mock.Mock
}

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

var _ storefront.InstanceRepository = (*MockInstanceRepository)(nil)

// MockLogRepository is a mock implementation of storefront.LogRepository
type MockLogRepository struct {
	mock.Mock
}

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

var _ storefront.LogRepository = (*MockLogRepository)(nil)

// MockGateway is a mock implementation of storefront.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGateway) ListProducts(ctx context.Context, page, perPage int) ([]storefront.RemoteProductSummary, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.RemoteProductSummary), args.Error(1)
}

func (m *MockGateway) FindProductsBySKU(ctx context.Context, sku string) ([]storefront.RemoteProductSummary, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.RemoteProductSummary), args.Error(1)
}

func (m *MockGateway) CreateProduct(ctx context.Context, product *storefront.RemoteProduct) (int64, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) UpdateProduct(ctx context.Context, remoteProductID int64, product *storefront.RemoteProduct) error {
	args := m.Called(ctx, remoteProductID, product)
	return args.Error(0)
}

func (m *MockGateway) UpdateProductStatus(ctx context.Context, remoteProductID int64, status storefront.RemoteStatus) error {
	args := m.Called(ctx, remoteProductID, status)
	return args.Error(0)
}

func (m *MockGateway) ListVariations(ctx context.Context, remoteProductID int64, page, perPage int) ([]storefront.RemoteVariation, error) {
	args := m.Called(ctx, remoteProductID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.RemoteVariation), args.Error(1)
}

func (m *MockGateway) BatchVariations(ctx context.Context, remoteProductID int64, batch storefront.VariationBatch) (*storefront.VariationBatchResult, error) {
	args := m.Called(ctx, remoteProductID, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storefront.VariationBatchResult), args.Error(1)
}

func (m *MockGateway) BatchUpdateProducts(ctx context.Context, updates []storefront.ProductBatchUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockGateway) CreateCategory(ctx context.Context, name string, remoteParentID int64) (int64, error) {
	args := m.Called(ctx, name, remoteParentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) FindCategoryByName(ctx context.Context, name string, remoteParentID int64) (int64, error) {
	args := m.Called(ctx, name, remoteParentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) CreateAttribute(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) FindAttributeByName(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) CreateTerm(ctx context.Context, remoteAttributeID int64, name string) (int64, error) {
	args := m.Called(ctx, remoteAttributeID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) FindTermByName(ctx context.Context, remoteAttributeID int64, name string) (int64, error) {
	args := m.Called(ctx, remoteAttributeID, name)
	return args.Get(0).(int64), args.Error(1)
}

var _ storefront.Gateway = (*MockGateway)(nil)

// staticGatewayFactory hands out one fixed gateway regardless of instance.
type staticGatewayFactory struct {
	gw storefront.Gateway
}

func (f staticGatewayFactory) ForInstance(_ *storefront.Instance) (storefront.Gateway, error) {
	return f.gw, nil
}

// passthroughTx runs the function without any transaction scope.
type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
