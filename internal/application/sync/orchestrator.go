package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// Config tunes the sync engine. Zero values fall back to the defaults the
// engine was sized for.
type Config struct {
	// ChunkSize is the number of templates loaded and processed per chunk
	ChunkSize int
	// TimeBudget bounds a full sync run; templates left over are picked up
	// by the next run
	TimeBudget time.Duration
	// RemotePageSize is the page size used when scanning the remote catalog
	RemotePageSize int
	// ImageBaseURL is the public root under which product images are served
	ImageBaseURL string
}

const (
	defaultChunkSize      = 500
	defaultTimeBudget     = 50 * time.Minute
	defaultRemotePageSize = 100
)

func (c Config) chunkSize() int {
	if c.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return c.ChunkSize
}

func (c Config) timeBudget() time.Duration {
	if c.TimeBudget <= 0 {
		return defaultTimeBudget
	}
	return c.TimeBudget
}

func (c Config) remotePageSize() int {
	if c.RemotePageSize <= 0 {
		return defaultRemotePageSize
	}
	return c.RemotePageSize
}

// RunSummary reports the outcome of one full sync run.
type RunSummary struct {
	StartedAt    time.Time
	Elapsed      time.Duration
	SuccessCount int
	ErrorCount   int
	// Truncated is true when the time budget expired before every template
	// in scope was processed
	Truncated bool
}

// Orchestrator drives catalog synchronization runs for storefront instances.
// One run walks the in-scope templates in chunks, pushes each inside its own
// transaction and records an append-only log trail.
type Orchestrator struct {
	instances storefront.InstanceRepository
	mappings  storefront.MappingRepository
	logs      storefront.LogRepository
	catalog   catalog.Repository
	gateways  storefront.GatewayFactory
	tx        TxManager
	cache     *CacheBuilder
	cfg       Config
	logger    *zap.Logger
	// now is replaceable for deterministic time-budget behavior in tests
	now func() time.Time
}

// NewOrchestrator wires a sync orchestrator.
func NewOrchestrator(
	instances storefront.InstanceRepository,
	mappings storefront.MappingRepository,
	logs storefront.LogRepository,
	catalogRepo catalog.Repository,
	gateways storefront.GatewayFactory,
	tx TxManager,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		instances: instances,
		mappings:  mappings,
		logs:      logs,
		catalog:   catalogRepo,
		gateways:  gateways,
		tx:        tx,
		cache:     NewCacheBuilder(mappings, catalogRepo),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// ---------------------------------------------------------------------------
// Full sync
// ---------------------------------------------------------------------------

// RunFullSync pushes every in-scope template of an instance to its
// storefront: products, categories, attributes, variations, prices and
// stock. Each template commits independently, so one failure never rolls
// back its neighbors. When the time budget expires the run stops and reports
// itself truncated; the next run resumes from the current mapping state.
func (o *Orchestrator) RunFullSync(ctx context.Context, instanceID uuid.UUID) (*RunSummary, error) {
	instance, gw, err := o.connectedGateway(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	started := o.now()
	deadline := started.Add(o.cfg.timeBudget())
	summary := &RunSummary{StartedAt: started}

	o.logger.Info("full sync started",
		zap.String("instance", instance.Name),
		zap.String("instance_id", instance.ID.String()))

	allIDs, err := o.catalog.ListTemplateIDs(ctx, instance.ProductFilter, true)
	if err != nil {
		return nil, err
	}

	var index RemoteIndex
	processed := make(map[uuid.UUID]struct{}, len(allIDs))

	for {
		cache, err := o.cache.Build(ctx, instance)
		if err != nil {
			return nil, err
		}
		if index == nil && cache.HasUnmapped() {
			index = BuildRemoteIndex(ctx, gw, o.cfg.remotePageSize())
			o.logger.Info("remote index built",
				zap.String("instance", instance.Name),
				zap.Int("skus", len(index)))
		}

		chunk := nextChunk(allIDs, processed, o.cfg.chunkSize())
		if len(chunk) == 0 {
			break
		}
		for _, id := range chunk {
			processed[id] = struct{}{}
		}
		templates, err := o.catalog.GetTemplates(ctx, chunk)
		if err != nil {
			return nil, err
		}

		for i := range templates {
			template := &templates[i]

			if o.now().After(deadline) {
				summary.Truncated = true
				break
			}

			err := o.tx.Do(ctx, func(txCtx context.Context) error {
				return o.syncOneTemplate(txCtx, instance, gw, cache, index, template)
			})
			if err != nil {
				summary.ErrorCount++
				o.logger.Warn("template sync failed",
					zap.String("template_id", template.ID.String()),
					zap.Error(err))
				o.appendLog(ctx, storefront.NewLogEntry(
					instance.ID, storefront.LogCategoryProduct, storefront.LogStatusError, err.Error(),
				).ForTemplate(template.ID))
				continue
			}
			summary.SuccessCount++
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryProduct, storefront.LogStatusSuccess,
				fmt.Sprintf("synchronized %q", template.Name),
			).ForTemplate(template.ID))
		}

		if summary.Truncated {
			break
		}
	}

	summary.Elapsed = o.now().Sub(started)
	o.appendLog(ctx, storefront.NewLogEntry(
		instance.ID, storefront.LogCategoryFull, runStatus(summary),
		fmt.Sprintf("full sync finished in %s: %d ok, %d failed, truncated=%t",
			summary.Elapsed.Round(time.Second), summary.SuccessCount, summary.ErrorCount, summary.Truncated),
	))
	o.logger.Info("full sync finished",
		zap.String("instance", instance.Name),
		zap.Duration("elapsed", summary.Elapsed),
		zap.Int("ok", summary.SuccessCount),
		zap.Int("failed", summary.ErrorCount),
		zap.Bool("truncated", summary.Truncated))
	return summary, nil
}

// SyncTemplate pushes a single template immediately, outside any scheduled
// run. Unlike scheduled runs the error is propagated to the caller after
// being logged, so an operator sees why a manual push failed.
func (o *Orchestrator) SyncTemplate(ctx context.Context, instanceID, templateID uuid.UUID) error {
	instance, gw, err := o.connectedGateway(ctx, instanceID)
	if err != nil {
		return err
	}
	template, err := o.catalog.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	cache, err := o.cache.BuildForTemplate(ctx, instance, template)
	if err != nil {
		return err
	}

	// A targeted SKU lookup replaces the full catalog scan for one item. The
	// query covers every code the remote record could carry; matching stays
	// barcode-driven in the reconciler.
	var index RemoteIndex
	if cache.HasUnmapped() {
		index = LookupRemoteBySKUs(ctx, gw, template.CandidateSKUs())
	}

	err = o.tx.Do(ctx, func(txCtx context.Context) error {
		return o.syncOneTemplate(txCtx, instance, gw, cache, index, template)
	})
	if err != nil {
		o.appendLog(ctx, storefront.NewLogEntry(
			instance.ID, storefront.LogCategoryProduct, storefront.LogStatusError, err.Error(),
		).ForTemplate(template.ID))
		return err
	}
	o.appendLog(ctx, storefront.NewLogEntry(
		instance.ID, storefront.LogCategoryProduct, storefront.LogStatusSuccess,
		fmt.Sprintf("synchronized %q", template.Name),
	).ForTemplate(template.ID))
	return nil
}

// syncOneTemplate pushes one template and everything hanging off it. It runs
// inside the per-template transaction scope.
func (o *Orchestrator) syncOneTemplate(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	cache *storefront.MappingCache,
	index RemoteIndex,
	template *catalog.Template,
) error {
	mapper := NewEntityMapper(instance, gw, cache, o.catalog, o.mappings, o.cfg.ImageBaseURL)

	if !template.Active {
		return o.archiveTemplate(ctx, instance, gw, cache, template)
	}

	decision := Reconciler{}.Decide(template, cache, index)
	switch decision.Kind {
	case DecisionAlreadyMapped:
		return o.updateTemplate(ctx, instance, gw, cache, mapper, template, decision.Mapping)
	case DecisionMatchFound:
		return o.adoptTemplate(ctx, instance, gw, cache, mapper, template, decision.Remote)
	default:
		return o.createTemplate(ctx, instance, gw, cache, mapper, template)
	}
}

// archiveTemplate drafts the remote product of an archived template. Without
// a mapping or with drafting disabled there is nothing to do.
func (o *Orchestrator) archiveTemplate(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	cache *storefront.MappingCache,
	template *catalog.Template,
) error {
	mapping := cache.Template(template.ID)
	if mapping == nil || !instance.ArchiveAsDraft {
		return nil
	}
	if err := gw.UpdateProductStatus(ctx, mapping.RemoteProductID, storefront.RemoteStatusDraft); err != nil {
		if errors.Is(err, storefront.ErrRemoteNotFound) {
			// The remote product is gone, drop the mapping and stop: an
			// archived template is never recreated.
			if derr := o.mappings.DeleteTemplateMapping(ctx, mapping.ID); derr != nil {
				return derr
			}
			cache.DropTemplate(template.ID)
			return nil
		}
		return err
	}
	mapping.Touch()
	return o.mappings.SaveTemplateMapping(ctx, mapping)
}

// createTemplate creates the remote product and records its mappings.
func (o *Orchestrator) createTemplate(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	cache *storefront.MappingCache,
	mapper *EntityMapper,
	template *catalog.Template,
) error {
	product, err := mapper.BuildProduct(ctx, template)
	if err != nil {
		return err
	}
	remoteProductID, err := gw.CreateProduct(ctx, product)
	if err != nil {
		return err
	}

	mapping, err := storefront.NewTemplateMapping(instance.ID, template.ID, remoteProductID, product.Type)
	if err != nil {
		return err
	}
	if err := o.mappings.SaveTemplateMapping(ctx, mapping); err != nil {
		return err
	}
	cache.PutTemplate(mapping)

	if product.Type == storefront.RemoteProductVariable {
		return o.syncVariations(ctx, instance, gw, mapper, template, mapping)
	}
	return o.saveSimpleVariantMapping(ctx, instance, template, mapping)
}

// adoptTemplate claims a pre-existing remote product matched by barcode and
// then pushes the current local state onto it.
func (o *Orchestrator) adoptTemplate(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	cache *storefront.MappingCache,
	mapper *EntityMapper,
	template *catalog.Template,
	remote storefront.RemoteProductSummary,
) error {
	// The mapping records what the storefront says the product is, not what
	// the local template would classify as. A locally-simple template adopted
	// onto a remote variable product must keep pushing variations.
	mapping, err := storefront.NewTemplateMapping(instance.ID, template.ID, remote.ID, remote.Type)
	if err != nil {
		return err
	}
	if err := o.mappings.SaveTemplateMapping(ctx, mapping); err != nil {
		return err
	}
	cache.PutTemplate(mapping)

	// A remote product with no local image is a source worth pulling from.
	if !template.HasImage {
		if err := o.catalog.MarkImagePullPending(ctx, template.ID); err != nil {
			o.logger.Warn("image pull flag not recorded",
				zap.String("template_id", template.ID.String()), zap.Error(err))
		}
	}

	if mapping.RemoteType == storefront.RemoteProductVariable {
		if err := o.adoptVariations(ctx, instance, gw, template, mapping); err != nil {
			return err
		}
	}

	return o.pushMapped(ctx, instance, gw, mapper, template, mapping)
}

// updateTemplate pushes the current local state through an existing mapping,
// recovering once when the storefront no longer knows the mapped product.
func (o *Orchestrator) updateTemplate(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	cache *storefront.MappingCache,
	mapper *EntityMapper,
	template *catalog.Template,
	mapping *storefront.TemplateMapping,
) error {
	err := o.pushMapped(ctx, instance, gw, mapper, template, mapping)
	if !errors.Is(err, storefront.ErrRemoteNotFound) {
		return err
	}

	// Stale mapping: the remote product was deleted out of band. Drop the
	// mapping and create fresh, exactly once.
	o.logger.Info("stale mapping recovered",
		zap.String("template_id", template.ID.String()),
		zap.Int64("remote_product_id", mapping.RemoteProductID))
	if err := o.mappings.DeleteTemplateMapping(ctx, mapping.ID); err != nil {
		return err
	}
	cache.DropTemplate(template.ID)
	return o.createTemplate(ctx, instance, gw, cache, mapper, template)
}

// pushMapped updates the remote product behind a mapping and reconciles its
// variations. The variation leg follows the mapping's remote type, so an
// adopted variable product keeps its variations maintained even when the
// local template classifies as simple.
func (o *Orchestrator) pushMapped(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	mapper *EntityMapper,
	template *catalog.Template,
	mapping *storefront.TemplateMapping,
) error {
	product, err := mapper.BuildProduct(ctx, template)
	if err != nil {
		return err
	}
	if err := gw.UpdateProduct(ctx, mapping.RemoteProductID, product); err != nil {
		return err
	}

	if mapping.RemoteType == storefront.RemoteProductVariable {
		if err := o.syncVariations(ctx, instance, gw, mapper, template, mapping); err != nil {
			return err
		}
	} else if err := o.saveSimpleVariantMapping(ctx, instance, template, mapping); err != nil {
		return err
	}

	mapping.Touch()
	return o.mappings.SaveTemplateMapping(ctx, mapping)
}

// saveSimpleVariantMapping records the sentinel variant mapping of a simple
// product when missing.
func (o *Orchestrator) saveSimpleVariantMapping(
	ctx context.Context,
	instance *storefront.Instance,
	template *catalog.Template,
	mapping *storefront.TemplateMapping,
) error {
	variant := template.FirstVariant()
	if variant == nil {
		return nil
	}
	existing, err := o.mappings.FindByTemplateMapping(ctx, mapping.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	vm, err := storefront.NewVariantMapping(instance.ID, mapping.ID, variant.ID, storefront.SimpleVariationID)
	if err != nil {
		return err
	}
	return o.mappings.SaveVariantMapping(ctx, vm)
}

// adoptVariations matches the remote variations of an adopted product to
// local variants by barcode and records mappings for the matches. Remote
// variations without a local counterpart are left untouched, and unmatched
// local variants simply stay unmapped.
func (o *Orchestrator) adoptVariations(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	template *catalog.Template,
	mapping *storefront.TemplateMapping,
) error {
	byBarcode := make(map[string]*catalog.Variant, len(template.Variants))
	for i := range template.Variants {
		v := &template.Variants[i]
		if barcode := strings.TrimSpace(v.Barcode); barcode != "" {
			byBarcode[barcode] = v
		}
	}

	pageSize := o.cfg.remotePageSize()
	for page := 1; ; page++ {
		variations, err := gw.ListVariations(ctx, mapping.RemoteProductID, page, pageSize)
		if err != nil {
			return err
		}
		if len(variations) == 0 {
			break
		}
		for _, rv := range variations {
			variant, ok := byBarcode[strings.TrimSpace(rv.SKU)]
			if !ok {
				continue
			}
			vm, err := storefront.NewVariantMapping(instance.ID, mapping.ID, variant.ID, rv.ID)
			if err != nil {
				return err
			}
			if err := o.mappings.SaveVariantMapping(ctx, vm); err != nil {
				return err
			}
		}
		if len(variations) < pageSize {
			break
		}
	}
	return nil
}

// syncVariations reconciles the variations of a variable product: missing
// ones are created, existing ones updated, mappings of vanished variants
// deleted remotely and then locally. Batches never exceed the instance cap.
func (o *Orchestrator) syncVariations(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	mapper *EntityMapper,
	template *catalog.Template,
	mapping *storefront.TemplateMapping,
) error {
	variantMappings, err := o.mappings.FindByTemplateMapping(ctx, mapping.ID)
	if err != nil {
		return err
	}

	diff := DiffVariations(template.Variants, variantMappings)
	if diff.IsEmpty() {
		return nil
	}

	batches, createRefs, updateRefs, err := SplitVariationBatches(ctx, diff, mapper, template, instance.EffectiveBatchSize())
	if err != nil {
		return err
	}

	for i, batch := range batches {
		result, err := gw.BatchVariations(ctx, mapping.RemoteProductID, batch)
		if err != nil {
			return err
		}
		if err := o.applyBatchResult(ctx, instance, template, mapping, result, createRefs[i], updateRefs[i]); err != nil {
			return err
		}
	}
	return nil
}

// applyBatchResult records the mapping changes one variation batch produced.
// A per-item failure inside a successful batch is logged as a warning and
// skipped; the rest of the batch still lands.
func (o *Orchestrator) applyBatchResult(
	ctx context.Context,
	instance *storefront.Instance,
	template *catalog.Template,
	mapping *storefront.TemplateMapping,
	result *storefront.VariationBatchResult,
	created []catalog.Variant,
	updated []VariantPair,
) error {
	for i, rv := range result.Created {
		if i >= len(created) {
			break
		}
		if rv.ID == 0 {
			o.warnVariation(ctx, instance, template, created[i].ID, "variation not created by storefront")
			continue
		}
		vm, err := storefront.NewVariantMapping(instance.ID, mapping.ID, created[i].ID, rv.ID)
		if err != nil {
			return err
		}
		if err := o.mappings.SaveVariantMapping(ctx, vm); err != nil {
			return err
		}
	}
	if len(result.Created) < len(created) {
		for _, v := range created[len(result.Created):] {
			o.warnVariation(ctx, instance, template, v.ID, "variation missing from batch result")
		}
	}

	for i, rv := range result.Updated {
		if i >= len(updated) {
			break
		}
		if rv.ID == 0 {
			o.warnVariation(ctx, instance, template, updated[i].Variant.ID, "variation not updated by storefront")
			continue
		}
		m := updated[i].Mapping
		m.Touch()
		if err := o.mappings.SaveVariantMapping(ctx, &m); err != nil {
			return err
		}
	}

	// Mappings are only removed for deletions the storefront confirmed.
	if len(result.Deleted) > 0 {
		if err := o.mappings.DeleteVariantMappingsByRemoteIDs(ctx, mapping.ID, result.Deleted); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) warnVariation(ctx context.Context, instance *storefront.Instance, template *catalog.Template, variantID uuid.UUID, message string) {
	o.appendLog(ctx, storefront.NewLogEntry(
		instance.ID, storefront.LogCategoryProduct, storefront.LogStatusWarning, message,
	).ForTemplate(template.ID).ForVariant(variantID))
}

// ---------------------------------------------------------------------------
// Stock and price sync
// ---------------------------------------------------------------------------

// RunStockPriceSync pushes only prices and stock levels through existing
// mappings. Templates without a mapping are skipped; the full sync owns
// creation. Simple products go out in bulk product updates, variable ones in
// per-product variation batches.
func (o *Orchestrator) RunStockPriceSync(ctx context.Context, instanceID uuid.UUID) error {
	instance, gw, err := o.connectedGateway(ctx, instanceID)
	if err != nil {
		return err
	}

	o.logger.Info("stock and price sync started",
		zap.String("instance", instance.Name))

	if err := o.bulkUpdateSimple(ctx, instance, gw); err != nil {
		return err
	}
	if err := o.updateVariableBatches(ctx, instance, gw); err != nil {
		return err
	}

	o.appendLog(ctx, storefront.NewLogEntry(
		instance.ID, storefront.LogCategoryStock, storefront.LogStatusSuccess, "stock and price sync finished",
	))
	return nil
}

// bulkUpdateSimple refreshes price and stock of every mapped simple product
// in batches.
func (o *Orchestrator) bulkUpdateSimple(ctx context.Context, instance *storefront.Instance, gw storefront.Gateway) error {
	simpleMappings, err := o.mappings.FindByType(ctx, instance.ID, storefront.RemoteProductSimple)
	if err != nil {
		return err
	}
	if len(simpleMappings) == 0 {
		return nil
	}

	templateIDs := make([]uuid.UUID, 0, len(simpleMappings))
	remoteByTemplate := make(map[uuid.UUID]int64, len(simpleMappings))
	for _, m := range simpleMappings {
		templateIDs = append(templateIDs, m.TemplateID)
		remoteByTemplate[m.TemplateID] = m.RemoteProductID
	}
	templates, err := o.catalog.GetTemplates(ctx, templateIDs)
	if err != nil {
		return err
	}

	// A failed batch is logged and dropped; the remaining batches still go
	// out. One unreachable update must not starve every other product of its
	// stock refresh.
	limit := instance.EffectiveBatchSize()
	updates := make([]storefront.ProductBatchUpdate, 0, limit)
	flush := func() {
		if len(updates) == 0 {
			return
		}
		if err := gw.BatchUpdateProducts(ctx, updates); err != nil {
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryStock, storefront.LogStatusError,
				fmt.Sprintf("batch update of %d products failed: %v", len(updates), err),
			))
		}
		updates = updates[:0]
	}

	for i := range templates {
		template := &templates[i]
		variant := template.FirstVariant()
		if variant == nil || !template.Active {
			continue
		}
		price, err := o.catalog.VariantPrice(ctx, variant.ID, instance.PricelistID)
		if err != nil {
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryPrice, storefront.LogStatusError, err.Error(),
			).ForTemplate(template.ID).ForVariant(variant.ID))
			continue
		}
		stock, err := o.catalog.VariantStock(ctx, variant.ID, instance.StockPolicy())
		if err != nil {
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryStock, storefront.LogStatusError, err.Error(),
			).ForTemplate(template.ID).ForVariant(variant.ID))
			continue
		}
		updates = append(updates, storefront.ProductBatchUpdate{
			ID:            remoteByTemplate[template.ID],
			RegularPrice:  price.StringFixed(2),
			StockQuantity: stock,
			ManageStock:   true,
		})
		if len(updates) >= limit {
			flush()
		}
	}
	flush()
	return nil
}

// updateVariableBatches refreshes price and stock of every mapped variation,
// one variable template at a time. A failing template is logged and skipped;
// the remaining mappings still get their refresh.
func (o *Orchestrator) updateVariableBatches(ctx context.Context, instance *storefront.Instance, gw storefront.Gateway) error {
	variableMappings, err := o.mappings.FindByType(ctx, instance.ID, storefront.RemoteProductVariable)
	if err != nil {
		return err
	}

	for i := range variableMappings {
		mapping := &variableMappings[i]
		if err := o.updateVariableStock(ctx, instance, gw, mapping); err != nil {
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryStock, storefront.LogStatusError, err.Error(),
			).ForTemplate(mapping.TemplateID))
		}
	}
	return nil
}

// updateVariableStock pushes the variation stock and price batches of one
// mapped variable template.
func (o *Orchestrator) updateVariableStock(
	ctx context.Context,
	instance *storefront.Instance,
	gw storefront.Gateway,
	mapping *storefront.TemplateMapping,
) error {
	template, err := o.catalog.GetTemplate(ctx, mapping.TemplateID)
	if err != nil {
		return err
	}
	if !template.Active {
		return nil
	}
	variantMappings, err := o.mappings.FindByTemplateMapping(ctx, mapping.ID)
	if err != nil {
		return err
	}
	byVariant := make(map[uuid.UUID]int64, len(variantMappings))
	for _, vm := range variantMappings {
		byVariant[vm.VariantID] = vm.RemoteVariationID
	}

	limit := instance.EffectiveBatchSize()
	batch := storefront.VariationBatch{}
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if _, err := gw.BatchVariations(ctx, mapping.RemoteProductID, batch); err != nil {
			return err
		}
		batch = storefront.VariationBatch{}
		return nil
	}

	for j := range template.Variants {
		variant := &template.Variants[j]
		remoteVariationID, ok := byVariant[variant.ID]
		if !ok || remoteVariationID == storefront.SimpleVariationID {
			continue
		}
		price, err := o.catalog.VariantPrice(ctx, variant.ID, instance.PricelistID)
		if err != nil {
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryPrice, storefront.LogStatusError, err.Error(),
			).ForTemplate(template.ID).ForVariant(variant.ID))
			continue
		}
		stock, err := o.catalog.VariantStock(ctx, variant.ID, instance.StockPolicy())
		if err != nil {
			o.appendLog(ctx, storefront.NewLogEntry(
				instance.ID, storefront.LogCategoryStock, storefront.LogStatusError, err.Error(),
			).ForTemplate(template.ID).ForVariant(variant.ID))
			continue
		}
		batch.Update = append(batch.Update, storefront.RemoteVariation{
			ID:            remoteVariationID,
			RegularPrice:  price.StringFixed(2),
			ManageStock:   true,
			StockQuantity: stock,
		})
		if batch.Size() >= limit {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// ---------------------------------------------------------------------------
// Connection test
// ---------------------------------------------------------------------------

// TestConnection probes an instance's storefront and records the resulting
// connection state on the instance.
func (o *Orchestrator) TestConnection(ctx context.Context, instanceID uuid.UUID) error {
	instance, err := o.instances.FindByID(ctx, instanceID)
	if err != nil {
		return err
	}
	gw, err := o.gateways.ForInstance(instance)
	if err != nil {
		return err
	}

	testErr := gw.TestConnection(ctx)
	if testErr != nil {
		instance.MarkError()
	} else {
		instance.MarkConnected()
	}
	if err := o.instances.Save(ctx, instance); err != nil {
		return err
	}
	return testErr
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (o *Orchestrator) connectedGateway(ctx context.Context, instanceID uuid.UUID) (*storefront.Instance, storefront.Gateway, error) {
	instance, err := o.instances.FindByID(ctx, instanceID)
	if err != nil {
		return nil, nil, err
	}
	if !instance.IsConnected() {
		return nil, nil, storefront.ErrInstanceNotConnected
	}
	gw, err := o.gateways.ForInstance(instance)
	if err != nil {
		return nil, nil, err
	}
	return instance, gw, nil
}

// appendLog stores a log entry, downgrading an append failure to a warning
// so it never fails the sync that produced it.
func (o *Orchestrator) appendLog(ctx context.Context, entry *storefront.LogEntry) {
	if err := o.logs.Append(ctx, entry); err != nil {
		o.logger.Warn("sync log entry dropped", zap.Error(err))
	}
}

// nextChunk returns up to limit ids that have not been processed yet.
func nextChunk(ids []uuid.UUID, processed map[uuid.UUID]struct{}, limit int) []uuid.UUID {
	chunk := make([]uuid.UUID, 0, limit)
	for _, id := range ids {
		if _, ok := processed[id]; ok {
			continue
		}
		chunk = append(chunk, id)
		if len(chunk) >= limit {
			break
		}
	}
	return chunk
}

func runStatus(summary *RunSummary) storefront.LogStatus {
	switch {
	case summary.ErrorCount > 0:
		return storefront.LogStatusWarning
	case summary.Truncated:
		return storefront.LogStatusWarning
	default:
		return storefront.LogStatusSuccess
	}
}
