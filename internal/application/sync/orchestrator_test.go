package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

type orchestratorFixture struct {
	instances *MockInstanceRepository
	mappings  *MockMappingRepository
	logs      *MockLogRepository
	catalog   *MockCatalogRepository
	gateway   *MockGateway
	orch      *Orchestrator
	instance  *storefront.Instance
	ctx       context.Context
}

func newOrchestratorFixture(t *testing.T, cfg Config) *orchestratorFixture {
	t.Helper()
	f := &orchestratorFixture{
		instances: new(MockInstanceRepository),
		mappings:  new(MockMappingRepository),
		logs:      new(MockLogRepository),
		catalog:   new(MockCatalogRepository),
		gateway:   new(MockGateway),
		instance:  testInstance(t),
		ctx:       context.Background(),
	}
	f.orch = NewOrchestrator(
		f.instances, f.mappings, f.logs, f.catalog,
		staticGatewayFactory{gw: f.gateway}, passthroughTx{},
		cfg, zap.NewNop(),
	)
	f.instances.On("FindByID", f.ctx, f.instance.ID).Return(f.instance, nil)
	f.logs.On("Append", f.ctx, mock.AnythingOfType("*storefront.LogEntry")).Return(nil)
	return f
}

func (f *orchestratorFixture) emptyTaxonomy() {
	f.mappings.On("FindCategoryMappings", f.ctx, f.instance.ID).Return([]storefront.CategoryMapping{}, nil)
	f.mappings.On("FindAttributeMappings", f.ctx, f.instance.ID).Return([]storefront.AttributeMapping{}, nil)
	f.mappings.On("FindAttributeValueMappings", f.ctx, f.instance.ID).Return([]storefront.AttributeValueMapping{}, nil)
}

func simpleTemplate(name, barcode string) catalog.Template {
	return catalog.Template{
		ID:     uuid.New(),
		Name:   name,
		Active: true,
		Variants: []catalog.Variant{
			{ID: uuid.New(), Barcode: barcode, Active: true},
		},
	}
}

// ---------------------------------------------------------------------------
// Full sync
// ---------------------------------------------------------------------------

func TestRunFullSync_CreatesUnmappedSimpleProduct(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Desk Lamp", "4006381333931")
	variant := template.Variants[0]

	f.emptyTaxonomy()
	f.mappings.On("FindByInstance", f.ctx, f.instance.ID).Return([]storefront.TemplateMapping{}, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, true).
		Return([]uuid.UUID{template.ID}, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, false).
		Return([]uuid.UUID{template.ID}, nil)
	f.catalog.On("GetTemplates", f.ctx, []uuid.UUID{template.ID}).
		Return([]catalog.Template{template}, nil)

	// No remote products exist, so reconciliation finds nothing to adopt.
	f.gateway.On("ListProducts", f.ctx, 1, 100).Return([]storefront.RemoteProductSummary{}, nil)

	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)
	f.gateway.On("CreateProduct", f.ctx, mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(int64(500), nil)
	f.mappings.On("SaveTemplateMapping", f.ctx, mock.MatchedBy(func(m *storefront.TemplateMapping) bool {
		return m.TemplateID == template.ID && m.RemoteProductID == 500 && m.RemoteType == storefront.RemoteProductSimple
	})).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.MatchedBy(func(m *storefront.VariantMapping) bool {
		return m.VariantID == variant.ID && m.RemoteVariationID == storefront.SimpleVariationID
	})).Return(nil)

	summary, err := f.orch.RunFullSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 0, summary.ErrorCount)
	assert.False(t, summary.Truncated)
	f.gateway.AssertExpectations(t)
	f.mappings.AssertExpectations(t)
}

func TestRunFullSync_TimeBudgetTruncates(t *testing.T) {
	f := newOrchestratorFixture(t, Config{TimeBudget: time.Minute})

	// Both templates are archived and unmapped, so processing one is a
	// no-op; the clock jumps past the budget before the second.
	first := simpleTemplate("One", "111")
	first.Active = false
	second := simpleTemplate("Two", "222")
	second.Active = false
	ids := []uuid.UUID{first.ID, second.ID}

	f.emptyTaxonomy()
	f.mappings.On("FindByInstance", f.ctx, f.instance.ID).Return([]storefront.TemplateMapping{}, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, true).Return(ids, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, false).Return([]uuid.UUID{}, nil)
	f.catalog.On("GetTemplates", f.ctx, ids).Return([]catalog.Template{first, second}, nil)

	t0 := time.Now()
	calls := 0
	f.orch.now = func() time.Time {
		calls++
		if calls <= 2 {
			return t0
		}
		return t0.Add(2 * time.Minute)
	}

	summary, err := f.orch.RunFullSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	assert.True(t, summary.Truncated)
	assert.Equal(t, 1, summary.SuccessCount)
}

func TestRunFullSync_NotConnected(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	f.instance.State = storefront.InstanceStateDraft

	_, err := f.orch.RunFullSync(f.ctx, f.instance.ID)

	assert.ErrorIs(t, err, storefront.ErrInstanceNotConnected)
}

func TestRunFullSync_FailedTemplateDoesNotStopRun(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	failing := simpleTemplate("Broken", "111")
	healthy := simpleTemplate("Fine", "222")
	ids := []uuid.UUID{failing.ID, healthy.ID}

	f.emptyTaxonomy()
	f.mappings.On("FindByInstance", f.ctx, f.instance.ID).Return([]storefront.TemplateMapping{}, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, true).Return(ids, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, false).Return(ids, nil)
	f.catalog.On("GetTemplates", f.ctx, ids).Return([]catalog.Template{failing, healthy}, nil)
	f.gateway.On("ListProducts", f.ctx, 1, 100).Return([]storefront.RemoteProductSummary{}, nil)

	f.catalog.On("VariantPrice", f.ctx, failing.Variants[0].ID, f.instance.PricelistID).
		Return(decimal.Decimal{}, errors.New("pricelist gone"))
	f.catalog.On("VariantPrice", f.ctx, healthy.Variants[0].ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(5), nil)
	f.catalog.On("VariantStock", f.ctx, healthy.Variants[0].ID, f.instance.StockPolicy()).Return(1, nil)
	f.gateway.On("CreateProduct", f.ctx, mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(int64(600), nil)
	f.mappings.On("SaveTemplateMapping", f.ctx, mock.AnythingOfType("*storefront.TemplateMapping")).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.AnythingOfType("*storefront.VariantMapping")).Return(nil)

	summary, err := f.orch.RunFullSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 1, summary.ErrorCount)
}

func TestRunFullSync_SecondRunReusesMapping(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Desk Lamp", "4006381333931")
	variant := template.Variants[0]

	f.emptyTaxonomy()
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, true).
		Return([]uuid.UUID{template.ID}, nil)
	f.catalog.On("ListTemplateIDs", f.ctx, f.instance.ProductFilter, false).
		Return([]uuid.UUID{template.ID}, nil)
	f.catalog.On("GetTemplates", f.ctx, []uuid.UUID{template.ID}).
		Return([]catalog.Template{template}, nil)
	f.gateway.On("ListProducts", f.ctx, 1, 100).Return([]storefront.RemoteProductSummary{}, nil)
	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)

	// The mock repository retains what the first run writes, the way the
	// real one would between two scheduled runs.
	retained := make([]storefront.TemplateMapping, 1)
	f.mappings.On("FindByInstance", f.ctx, f.instance.ID).
		Return([]storefront.TemplateMapping{}, nil).Once()
	f.mappings.On("FindByInstance", f.ctx, f.instance.ID).Return(retained, nil)
	f.mappings.On("SaveTemplateMapping", f.ctx, mock.AnythingOfType("*storefront.TemplateMapping")).
		Run(func(args mock.Arguments) {
			retained[0] = *(args.Get(1).(*storefront.TemplateMapping))
		}).Return(nil)

	retainedVariants := make([]storefront.VariantMapping, 1)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{}, nil).Once()
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return(retainedVariants, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.AnythingOfType("*storefront.VariantMapping")).
		Run(func(args mock.Arguments) {
			retainedVariants[0] = *(args.Get(1).(*storefront.VariantMapping))
		}).Return(nil)

	f.gateway.On("CreateProduct", f.ctx, mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(int64(500), nil).Once()
	f.gateway.On("UpdateProduct", f.ctx, int64(500), mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(nil)

	first, err := f.orch.RunFullSync(f.ctx, f.instance.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, first.SuccessCount)

	second, err := f.orch.RunFullSync(f.ctx, f.instance.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, second.SuccessCount)

	f.gateway.AssertNumberOfCalls(t, "CreateProduct", 1)
	f.mappings.AssertNumberOfCalls(t, "SaveVariantMapping", 1)
}

// ---------------------------------------------------------------------------
// Single template sync
// ---------------------------------------------------------------------------

func TestSyncTemplate_StaleMappingRecreatesOnce(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Desk Lamp", "111")
	variant := template.Variants[0]
	mapping := &storefront.TemplateMapping{
		ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: template.ID,
		RemoteProductID: 500, RemoteType: storefront.RemoteProductSimple,
	}

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).Return(mapping, nil)

	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)

	// The storefront lost the mapped product out of band.
	f.gateway.On("UpdateProduct", f.ctx, int64(500), mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(storefront.ErrRemoteNotFound)
	f.mappings.On("DeleteTemplateMapping", f.ctx, mapping.ID).Return(nil)
	f.gateway.On("CreateProduct", f.ctx, mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(int64(900), nil).Once()
	f.mappings.On("SaveTemplateMapping", f.ctx, mock.MatchedBy(func(m *storefront.TemplateMapping) bool {
		return m.RemoteProductID == 900
	})).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.AnythingOfType("*storefront.VariantMapping")).Return(nil)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.NoError(t, err)
	f.gateway.AssertNumberOfCalls(t, "CreateProduct", 1)
	f.gateway.AssertNumberOfCalls(t, "UpdateProduct", 1)
	f.mappings.AssertExpectations(t)
}

func TestSyncTemplate_AdoptsBarcodeMatch(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Desk Lamp", "4006381333931")
	variant := template.Variants[0]

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).
		Return(nil, storefront.ErrMappingNotFound)
	f.gateway.On("FindProductsBySKU", f.ctx, "4006381333931").
		Return([]storefront.RemoteProductSummary{{ID: 800, SKU: "4006381333931", Type: storefront.RemoteProductSimple}}, nil)

	f.mappings.On("SaveTemplateMapping", f.ctx, mock.MatchedBy(func(m *storefront.TemplateMapping) bool {
		return m.RemoteProductID == 800
	})).Return(nil)
	f.catalog.On("MarkImagePullPending", f.ctx, template.ID).Return(nil)
	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)
	f.gateway.On("UpdateProduct", f.ctx, int64(800), mock.AnythingOfType("*storefront.RemoteProduct")).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.AnythingOfType("*storefront.VariantMapping")).Return(nil)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.NoError(t, err)
	f.gateway.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	f.catalog.AssertCalled(t, "MarkImagePullPending", f.ctx, template.ID)
}

func TestSyncTemplate_AdoptsVariableRemoteProduct(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Desk Lamp", "4006381333931")
	variant := template.Variants[0]

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).
		Return(nil, storefront.ErrMappingNotFound)
	// The storefront carries the product as variable even though the local
	// template is simple.
	f.gateway.On("FindProductsBySKU", f.ctx, "4006381333931").
		Return([]storefront.RemoteProductSummary{
			{ID: 800, SKU: "4006381333931", Type: storefront.RemoteProductVariable},
		}, nil)

	f.mappings.On("SaveTemplateMapping", f.ctx, mock.MatchedBy(func(m *storefront.TemplateMapping) bool {
		return m.RemoteProductID == 800 && m.RemoteType == storefront.RemoteProductVariable
	})).Return(nil)
	f.catalog.On("MarkImagePullPending", f.ctx, template.ID).Return(nil)

	f.gateway.On("ListVariations", f.ctx, int64(800), 1, 100).
		Return([]storefront.RemoteVariation{{ID: 901, SKU: "4006381333931"}}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.MatchedBy(func(m *storefront.VariantMapping) bool {
		return m.VariantID == variant.ID && m.RemoteVariationID == 901
	})).Return(nil)

	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)
	f.gateway.On("UpdateProduct", f.ctx, int64(800), mock.AnythingOfType("*storefront.RemoteProduct")).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{{VariantID: variant.ID, RemoteVariationID: 901}}, nil)
	f.gateway.On("BatchVariations", f.ctx, int64(800), mock.MatchedBy(func(b storefront.VariationBatch) bool {
		return len(b.Update) == 1 && b.Update[0].ID == 901 && len(b.Create) == 0 && len(b.Delete) == 0
	})).Return(&storefront.VariationBatchResult{
		Updated: []storefront.RemoteVariation{{ID: 901}},
	}, nil)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.NoError(t, err)
	f.gateway.AssertExpectations(t)
	f.mappings.AssertExpectations(t)
}

func TestSyncTemplate_AdoptionMatchesVariationsByBarcodeOnly(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	matched := catalog.Variant{ID: uuid.New(), Barcode: "4006381333931", Active: true}
	unmatched := catalog.Variant{ID: uuid.New(), Barcode: "4006381333948", InternalCode: "SHIRT-L", Active: true}
	template := catalog.Template{
		ID: uuid.New(), Name: "Shirt", Active: true,
		Variants: []catalog.Variant{matched, unmatched},
	}

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).
		Return(nil, storefront.ErrMappingNotFound)
	f.gateway.On("FindProductsBySKU", f.ctx, "4006381333931").
		Return([]storefront.RemoteProductSummary{
			{ID: 800, SKU: "4006381333931", Type: storefront.RemoteProductVariable},
		}, nil)
	f.gateway.On("FindProductsBySKU", f.ctx, mock.AnythingOfType("string")).
		Return([]storefront.RemoteProductSummary{}, nil)

	f.mappings.On("SaveTemplateMapping", f.ctx, mock.AnythingOfType("*storefront.TemplateMapping")).Return(nil)
	f.catalog.On("MarkImagePullPending", f.ctx, template.ID).Return(nil)

	// 902 carries the internal code of a local variant; internal codes are
	// not barcodes and must not pair the two. 903 is unknown locally and
	// stays untouched on the storefront.
	f.gateway.On("ListVariations", f.ctx, int64(800), 1, 100).
		Return([]storefront.RemoteVariation{
			{ID: 901, SKU: "4006381333931"},
			{ID: 902, SKU: "SHIRT-L"},
			{ID: 903, SKU: "discontinued"},
		}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.AnythingOfType("*storefront.VariantMapping")).Return(nil)

	f.catalog.On("VariantPrice", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.StockPolicy()).
		Return(4, nil)
	f.gateway.On("UpdateProduct", f.ctx, int64(800), mock.AnythingOfType("*storefront.RemoteProduct")).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{{VariantID: matched.ID, RemoteVariationID: 901}}, nil)
	f.gateway.On("BatchVariations", f.ctx, int64(800), mock.MatchedBy(func(b storefront.VariationBatch) bool {
		return len(b.Delete) == 0 && len(b.Create) == 1 && len(b.Update) == 1
	})).Return(&storefront.VariationBatchResult{
		Created: []storefront.RemoteVariation{{ID: 950}},
		Updated: []storefront.RemoteVariation{{ID: 901}},
	}, nil)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.NoError(t, err)
	f.mappings.AssertNotCalled(t, "SaveVariantMapping", f.ctx, mock.MatchedBy(func(m *storefront.VariantMapping) bool {
		return m.RemoteVariationID == 902 || m.RemoteVariationID == 903
	}))
	f.gateway.AssertExpectations(t)
}

func TestSyncTemplate_LooksUpInternalCodes(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := catalog.Template{
		ID: uuid.New(), Name: "Desk", Active: true, InternalCode: "DESK-01",
		Variants: []catalog.Variant{
			{ID: uuid.New(), Barcode: "4006381333931", InternalCode: "DESK-01-V", Active: true},
		},
	}
	variant := template.Variants[0]

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).
		Return(nil, storefront.ErrMappingNotFound)
	f.gateway.On("FindProductsBySKU", f.ctx, mock.AnythingOfType("string")).
		Return([]storefront.RemoteProductSummary{}, nil)

	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)
	f.gateway.On("CreateProduct", f.ctx, mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(int64(500), nil)
	f.mappings.On("SaveTemplateMapping", f.ctx, mock.AnythingOfType("*storefront.TemplateMapping")).Return(nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mock.AnythingOfType("uuid.UUID")).
		Return([]storefront.VariantMapping{}, nil)
	f.mappings.On("SaveVariantMapping", f.ctx, mock.AnythingOfType("*storefront.VariantMapping")).Return(nil)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.NoError(t, err)
	f.gateway.AssertCalled(t, "FindProductsBySKU", f.ctx, "DESK-01")
	f.gateway.AssertCalled(t, "FindProductsBySKU", f.ctx, "DESK-01-V")
	f.gateway.AssertCalled(t, "FindProductsBySKU", f.ctx, "4006381333931")
}

func TestSyncTemplate_PropagatesError(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Desk Lamp", "111")
	variant := template.Variants[0]

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).
		Return(nil, storefront.ErrMappingNotFound)
	f.gateway.On("FindProductsBySKU", f.ctx, "111").Return([]storefront.RemoteProductSummary{}, nil)
	f.catalog.On("VariantPrice", f.ctx, variant.ID, f.instance.PricelistID).
		Return(decimal.NewFromInt(10), nil)
	f.catalog.On("VariantStock", f.ctx, variant.ID, f.instance.StockPolicy()).Return(4, nil)

	remoteErr := &storefront.RemoteError{Message: "invalid sku", HTTPStatus: 400}
	f.gateway.On("CreateProduct", f.ctx, mock.AnythingOfType("*storefront.RemoteProduct")).
		Return(int64(0), remoteErr)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.Error(t, err)
	assert.ErrorContains(t, err, "invalid sku")
}

// ---------------------------------------------------------------------------
// Archived templates
// ---------------------------------------------------------------------------

func TestSyncTemplate_ArchivedDraftsRemoteProduct(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	template := simpleTemplate("Old Lamp", "111")
	template.Active = false
	mapping := &storefront.TemplateMapping{
		ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: template.ID,
		RemoteProductID: 500, RemoteType: storefront.RemoteProductSimple,
	}

	f.emptyTaxonomy()
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplate", f.ctx, f.instance.ID, template.ID).Return(mapping, nil)
	f.gateway.On("UpdateProductStatus", f.ctx, int64(500), storefront.RemoteStatusDraft).Return(nil)
	f.mappings.On("SaveTemplateMapping", f.ctx, mapping).Return(nil)

	err := f.orch.SyncTemplate(f.ctx, f.instance.ID, template.ID)

	assert.NoError(t, err)
	f.gateway.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
	f.gateway.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// Batch splitting
// ---------------------------------------------------------------------------

func TestSplitVariationBatches_CapsBatchSize(t *testing.T) {
	mockGw := new(MockGateway)
	mockCatalog := new(MockCatalogRepository)
	mockMappings := new(MockMappingRepository)
	ctx := context.Background()
	instance := testInstance(t)

	variants := make([]catalog.Variant, 120)
	for i := range variants {
		variants[i] = catalog.Variant{ID: uuid.New()}
	}
	template := &catalog.Template{ID: uuid.New(), Variants: variants}

	mockCatalog.On("VariantPrice", ctx, mock.AnythingOfType("uuid.UUID"), instance.PricelistID).
		Return(decimal.NewFromInt(1), nil)
	mockCatalog.On("VariantStock", ctx, mock.AnythingOfType("uuid.UUID"), instance.StockPolicy()).
		Return(1, nil)

	mapper := newTestMapper(instance, mockGw, storefront.NewMappingCache(), mockCatalog, mockMappings)
	diff := DiffVariations(variants, nil)

	batches, createRefs, _, err := SplitVariationBatches(ctx, diff, mapper, template, instance.EffectiveBatchSize())

	assert.NoError(t, err)
	assert.Len(t, batches, 2)
	assert.Equal(t, 100, batches[0].Size())
	assert.Equal(t, 20, batches[1].Size())
	assert.Len(t, createRefs[0], 100)
	assert.Len(t, createRefs[1], 20)
}

// ---------------------------------------------------------------------------
// Stock and price sync
// ---------------------------------------------------------------------------

func TestRunStockPriceSync_BatchesSimpleUpdates(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	f.instance.BatchSize = 2

	templates := []catalog.Template{
		simpleTemplate("A", "1"), simpleTemplate("B", "2"), simpleTemplate("C", "3"),
	}
	mappings := make([]storefront.TemplateMapping, len(templates))
	ids := make([]uuid.UUID, len(templates))
	for i, tmpl := range templates {
		ids[i] = tmpl.ID
		mappings[i] = storefront.TemplateMapping{
			ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: tmpl.ID,
			RemoteProductID: int64(100 + i), RemoteType: storefront.RemoteProductSimple,
		}
	}

	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductSimple).Return(mappings, nil)
	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductVariable).
		Return([]storefront.TemplateMapping{}, nil)
	f.catalog.On("GetTemplates", f.ctx, ids).Return(templates, nil)
	f.catalog.On("VariantPrice", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.PricelistID).
		Return(decimal.NewFromInt(5), nil)
	f.catalog.On("VariantStock", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.StockPolicy()).
		Return(2, nil)

	f.gateway.On("BatchUpdateProducts", f.ctx, mock.MatchedBy(func(u []storefront.ProductBatchUpdate) bool {
		return len(u) == 2
	})).Return(nil).Once()
	f.gateway.On("BatchUpdateProducts", f.ctx, mock.MatchedBy(func(u []storefront.ProductBatchUpdate) bool {
		return len(u) == 1
	})).Return(nil).Once()

	err := f.orch.RunStockPriceSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	f.gateway.AssertExpectations(t)
}

func TestRunStockPriceSync_UpdatesMappedVariations(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})

	variantA, variantB := uuid.New(), uuid.New()
	template := catalog.Template{
		ID:     uuid.New(),
		Name:   "Shirt",
		Active: true,
		AttributeLines: []catalog.AttributeLine{
			{Attribute: catalog.Attribute{ID: uuid.New(), Name: "Size"}},
		},
		Variants: []catalog.Variant{
			{ID: variantA, Active: true},
			{ID: variantB, Active: true},
		},
	}
	mapping := storefront.TemplateMapping{
		ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: template.ID,
		RemoteProductID: 700, RemoteType: storefront.RemoteProductVariable,
	}

	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductSimple).
		Return([]storefront.TemplateMapping{}, nil)
	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductVariable).
		Return([]storefront.TemplateMapping{mapping}, nil)
	f.catalog.On("GetTemplate", f.ctx, template.ID).Return(&template, nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, mapping.ID).Return([]storefront.VariantMapping{
		{VariantID: variantA, RemoteVariationID: 701},
		// variantB has no remote variation yet, the full sync owns it
	}, nil)
	f.catalog.On("VariantPrice", f.ctx, variantA, f.instance.PricelistID).
		Return(decimal.NewFromInt(9), nil)
	f.catalog.On("VariantStock", f.ctx, variantA, f.instance.StockPolicy()).Return(6, nil)

	f.gateway.On("BatchVariations", f.ctx, int64(700), mock.MatchedBy(func(b storefront.VariationBatch) bool {
		return len(b.Update) == 1 && b.Update[0].ID == 701 && b.Update[0].StockQuantity == 6
	})).Return(&storefront.VariationBatchResult{}, nil)

	err := f.orch.RunStockPriceSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	f.gateway.AssertExpectations(t)
	f.catalog.AssertNotCalled(t, "VariantPrice", f.ctx, variantB, f.instance.PricelistID)
}

func TestRunStockPriceSync_FailedBatchDoesNotStopSimpleUpdates(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	f.instance.BatchSize = 2

	templates := []catalog.Template{
		simpleTemplate("A", "1"), simpleTemplate("B", "2"), simpleTemplate("C", "3"),
	}
	mappings := make([]storefront.TemplateMapping, len(templates))
	ids := make([]uuid.UUID, len(templates))
	for i, tmpl := range templates {
		ids[i] = tmpl.ID
		mappings[i] = storefront.TemplateMapping{
			ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: tmpl.ID,
			RemoteProductID: int64(100 + i), RemoteType: storefront.RemoteProductSimple,
		}
	}

	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductSimple).Return(mappings, nil)
	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductVariable).
		Return([]storefront.TemplateMapping{}, nil)
	f.catalog.On("GetTemplates", f.ctx, ids).Return(templates, nil)
	f.catalog.On("VariantPrice", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.PricelistID).
		Return(decimal.NewFromInt(5), nil)
	f.catalog.On("VariantStock", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.StockPolicy()).
		Return(2, nil)

	f.gateway.On("BatchUpdateProducts", f.ctx, mock.MatchedBy(func(u []storefront.ProductBatchUpdate) bool {
		return len(u) == 2
	})).Return(&storefront.RemoteError{Message: "bad gateway", HTTPStatus: 502}).Once()
	f.gateway.On("BatchUpdateProducts", f.ctx, mock.MatchedBy(func(u []storefront.ProductBatchUpdate) bool {
		return len(u) == 1
	})).Return(nil).Once()

	err := f.orch.RunStockPriceSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	f.gateway.AssertExpectations(t)
	f.logs.AssertCalled(t, "Append", f.ctx, mock.MatchedBy(func(e *storefront.LogEntry) bool {
		return e.Category == storefront.LogCategoryStock && e.Status == storefront.LogStatusError
	}))
}

func TestRunStockPriceSync_FailedTemplateDoesNotStopVariableUpdates(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})

	brokenVariant, healthyVariant := uuid.New(), uuid.New()
	broken := catalog.Template{
		ID: uuid.New(), Name: "Broken Shirt", Active: true,
		Variants: []catalog.Variant{{ID: brokenVariant, Active: true}},
	}
	healthy := catalog.Template{
		ID: uuid.New(), Name: "Fine Shirt", Active: true,
		Variants: []catalog.Variant{{ID: healthyVariant, Active: true}},
	}
	brokenMapping := storefront.TemplateMapping{
		ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: broken.ID,
		RemoteProductID: 700, RemoteType: storefront.RemoteProductVariable,
	}
	healthyMapping := storefront.TemplateMapping{
		ID: uuid.New(), InstanceID: f.instance.ID, TemplateID: healthy.ID,
		RemoteProductID: 800, RemoteType: storefront.RemoteProductVariable,
	}

	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductSimple).
		Return([]storefront.TemplateMapping{}, nil)
	f.mappings.On("FindByType", f.ctx, f.instance.ID, storefront.RemoteProductVariable).
		Return([]storefront.TemplateMapping{brokenMapping, healthyMapping}, nil)
	f.catalog.On("GetTemplate", f.ctx, broken.ID).Return(&broken, nil)
	f.catalog.On("GetTemplate", f.ctx, healthy.ID).Return(&healthy, nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, brokenMapping.ID).
		Return([]storefront.VariantMapping{{VariantID: brokenVariant, RemoteVariationID: 701}}, nil)
	f.mappings.On("FindByTemplateMapping", f.ctx, healthyMapping.ID).
		Return([]storefront.VariantMapping{{VariantID: healthyVariant, RemoteVariationID: 801}}, nil)
	f.catalog.On("VariantPrice", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.PricelistID).
		Return(decimal.NewFromInt(9), nil)
	f.catalog.On("VariantStock", f.ctx, mock.AnythingOfType("uuid.UUID"), f.instance.StockPolicy()).
		Return(6, nil)

	f.gateway.On("BatchVariations", f.ctx, int64(700), mock.AnythingOfType("storefront.VariationBatch")).
		Return(nil, &storefront.RemoteError{Message: "bad gateway", HTTPStatus: 502}).Once()
	f.gateway.On("BatchVariations", f.ctx, int64(800), mock.MatchedBy(func(b storefront.VariationBatch) bool {
		return len(b.Update) == 1 && b.Update[0].ID == 801
	})).Return(&storefront.VariationBatchResult{}, nil).Once()

	err := f.orch.RunStockPriceSync(f.ctx, f.instance.ID)

	assert.NoError(t, err)
	f.gateway.AssertExpectations(t)
	f.logs.AssertCalled(t, "Append", f.ctx, mock.MatchedBy(func(e *storefront.LogEntry) bool {
		return e.Category == storefront.LogCategoryStock &&
			e.Status == storefront.LogStatusError &&
			e.TemplateID != nil && *e.TemplateID == broken.ID
	}))
}

// ---------------------------------------------------------------------------
// Connection test
// ---------------------------------------------------------------------------

func TestTestConnection_MarksState(t *testing.T) {
	f := newOrchestratorFixture(t, Config{})
	f.instance.State = storefront.InstanceStateDraft

	f.gateway.On("TestConnection", f.ctx).Return(nil).Once()
	f.instances.On("Save", f.ctx, f.instance).Return(nil)

	assert.NoError(t, f.orch.TestConnection(f.ctx, f.instance.ID))
	assert.Equal(t, storefront.InstanceStateConnected, f.instance.State)

	f.gateway.ExpectedCalls = nil
	f.gateway.On("TestConnection", f.ctx).Return(errors.New("unauthorized"))

	assert.Error(t, f.orch.TestConnection(f.ctx, f.instance.ID))
	assert.Equal(t, storefront.InstanceStateError, f.instance.State)
}
