package sync

import (
	"context"
	"errors"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// CacheBuilder assembles the per-chunk mapping cache for an instance. The
// bundle is rebuilt after every processed chunk so that mappings written
// mid-run become visible and stale lookups never outlive a chunk.
type CacheBuilder struct {
	mappings storefront.MappingRepository
	catalog  catalog.Repository
}

// NewCacheBuilder creates a CacheBuilder.
func NewCacheBuilder(mappings storefront.MappingRepository, catalogRepo catalog.Repository) *CacheBuilder {
	return &CacheBuilder{mappings: mappings, catalog: catalogRepo}
}

// Build loads every mapping relation of the instance into lookup maps and
// computes the set of in-scope templates that have no mapping yet.
func (b *CacheBuilder) Build(ctx context.Context, instance *storefront.Instance) (*storefront.MappingCache, error) {
	cache := storefront.NewMappingCache()

	templateMappings, err := b.mappings.FindByInstance(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for i := range templateMappings {
		m := templateMappings[i]
		cache.Templates[m.TemplateID] = &m
	}

	categoryMappings, err := b.mappings.FindCategoryMappings(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range categoryMappings {
		cache.Categories[m.CategoryID] = m.RemoteCategoryID
	}

	attributeMappings, err := b.mappings.FindAttributeMappings(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range attributeMappings {
		cache.Attributes[m.AttributeID] = m.RemoteAttributeID
	}

	valueMappings, err := b.mappings.FindAttributeValueMappings(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range valueMappings {
		cache.Terms[m.AttributeValueID] = m.RemoteTermID
	}

	// Only active templates count towards the unmapped set; archived ones
	// are never candidates for creation.
	inScope, err := b.catalog.ListTemplateIDs(ctx, instance.ProductFilter, false)
	if err != nil {
		return nil, err
	}
	for _, id := range inScope {
		if _, ok := cache.Templates[id]; !ok {
			cache.Unmapped[id] = struct{}{}
		}
	}

	return cache, nil
}

// BuildForTemplate assembles a bundle scoped to a single template, skipping
// the full-catalog scan. Used by the manual single-item sync path.
func (b *CacheBuilder) BuildForTemplate(ctx context.Context, instance *storefront.Instance, template *catalog.Template) (*storefront.MappingCache, error) {
	cache := storefront.NewMappingCache()

	mapping, err := b.mappings.FindByTemplate(ctx, instance.ID, template.ID)
	switch {
	case err == nil:
		cache.Templates[template.ID] = mapping
	case errors.Is(err, storefront.ErrMappingNotFound):
		cache.Unmapped[template.ID] = struct{}{}
	default:
		return nil, err
	}

	categoryMappings, err := b.mappings.FindCategoryMappings(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range categoryMappings {
		cache.Categories[m.CategoryID] = m.RemoteCategoryID
	}

	attributeMappings, err := b.mappings.FindAttributeMappings(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range attributeMappings {
		cache.Attributes[m.AttributeID] = m.RemoteAttributeID
	}

	valueMappings, err := b.mappings.FindAttributeValueMappings(ctx, instance.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range valueMappings {
		cache.Terms[m.AttributeValueID] = m.RemoteTermID
	}

	return cache, nil
}
