package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// VariantPair joins a local variant with its existing remote variation
// mapping for the update leg of a diff.
type VariantPair struct {
	Variant catalog.Variant
	Mapping storefront.VariantMapping
}

// VariationDiff partitions the variants of a variable template against the
// variant mappings recorded for it.
type VariationDiff struct {
	// Create are local variants with no remote variation yet
	Create []catalog.Variant
	// Update are variants whose remote variation exists
	Update []VariantPair
	// Delete are mappings whose local variant is gone
	Delete []storefront.VariantMapping
}

// IsEmpty reports whether the diff contains no operations.
func (d VariationDiff) IsEmpty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// DiffVariations computes the create/update/delete partition for one variable
// template. Mappings carrying the simple-product sentinel variation id are
// treated as absent remotely: the variant is re-created as a real variation
// and the stale mapping is dropped.
func DiffVariations(variants []catalog.Variant, mappings []storefront.VariantMapping) VariationDiff {
	byVariant := make(map[uuid.UUID]storefront.VariantMapping, len(mappings))
	for _, m := range mappings {
		byVariant[m.VariantID] = m
	}

	var diff VariationDiff
	live := make(map[uuid.UUID]struct{}, len(variants))
	for _, v := range variants {
		live[v.ID] = struct{}{}
		m, ok := byVariant[v.ID]
		if !ok || m.RemoteVariationID == storefront.SimpleVariationID {
			diff.Create = append(diff.Create, v)
			continue
		}
		diff.Update = append(diff.Update, VariantPair{Variant: v, Mapping: m})
	}

	for _, m := range mappings {
		if _, ok := live[m.VariantID]; ok && m.RemoteVariationID != storefront.SimpleVariationID {
			continue
		}
		if m.RemoteVariationID == storefront.SimpleVariationID {
			// nothing to delete remotely, the mapping row alone is stale
			continue
		}
		diff.Delete = append(diff.Delete, m)
	}

	return diff
}

// SplitVariationBatches slices a diff into batches no larger than limit,
// filling creates first, then updates, then deletes. Operation order within
// each leg is preserved so batch results can be matched back positionally.
func SplitVariationBatches(ctx context.Context, diff VariationDiff, mapper *EntityMapper, template *catalog.Template, limit int) ([]storefront.VariationBatch, [][]catalog.Variant, [][]VariantPair, error) {
	if limit < 1 {
		limit = 1
	}

	var (
		batches    []storefront.VariationBatch
		createRefs [][]catalog.Variant
		updateRefs [][]VariantPair
	)

	current := storefront.VariationBatch{}
	currentCreates := []catalog.Variant(nil)
	currentUpdates := []VariantPair(nil)
	flush := func() {
		if current.Size() == 0 {
			return
		}
		batches = append(batches, current)
		createRefs = append(createRefs, currentCreates)
		updateRefs = append(updateRefs, currentUpdates)
		current = storefront.VariationBatch{}
		currentCreates = nil
		currentUpdates = nil
	}

	for _, v := range diff.Create {
		payload, err := mapper.BuildVariation(ctx, template, &v, 0)
		if err != nil {
			return nil, nil, nil, err
		}
		current.Create = append(current.Create, *payload)
		currentCreates = append(currentCreates, v)
		if current.Size() >= limit {
			flush()
		}
	}
	for _, pair := range diff.Update {
		payload, err := mapper.BuildVariation(ctx, template, &pair.Variant, pair.Mapping.RemoteVariationID)
		if err != nil {
			return nil, nil, nil, err
		}
		current.Update = append(current.Update, *payload)
		currentUpdates = append(currentUpdates, pair)
		if current.Size() >= limit {
			flush()
		}
	}
	for _, m := range diff.Delete {
		current.Delete = append(current.Delete, m.RemoteVariationID)
		if current.Size() >= limit {
			flush()
		}
	}
	flush()

	return batches, createRefs, updateRefs, nil
}
