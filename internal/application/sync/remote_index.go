package sync

import (
	"context"
	"strings"

	"github.com/storesync/backend/internal/domain/storefront"
)

// RemoteIndex maps a normalized SKU to the remote product that carries it.
type RemoteIndex map[string]storefront.RemoteProductSummary

// Lookup returns the remote product for a SKU, matching on the trimmed value.
func (idx RemoteIndex) Lookup(sku string) (storefront.RemoteProductSummary, bool) {
	summary, ok := idx[strings.TrimSpace(sku)]
	return summary, ok
}

// BuildRemoteIndex pages through the remote catalog and indexes every product
// by SKU. The index is only needed to adopt pre-existing remote products, so
// a page failure stops the scan and the partial index is returned: missing
// entries degrade reconciliation into creation, they never corrupt it.
func BuildRemoteIndex(ctx context.Context, gw storefront.Gateway, pageSize int) RemoteIndex {
	idx := make(RemoteIndex)
	for page := 1; ; page++ {
		products, err := gw.ListProducts(ctx, page, pageSize)
		if err != nil || len(products) == 0 {
			return idx
		}
		for _, p := range products {
			sku := strings.TrimSpace(p.SKU)
			if sku == "" {
				continue
			}
			if _, exists := idx[sku]; !exists {
				idx[sku] = p
			}
		}
		if len(products) < pageSize {
			return idx
		}
	}
}

// LookupRemoteBySKUs queries the remote catalog for a small set of candidate
// SKUs without paging the whole store. Used by the single-item sync path.
func LookupRemoteBySKUs(ctx context.Context, gw storefront.Gateway, skus []string) RemoteIndex {
	idx := make(RemoteIndex)
	if len(skus) == 0 {
		return idx
	}
	for _, candidate := range skus {
		products, err := gw.FindProductsBySKU(ctx, candidate)
		if err != nil {
			continue
		}
		for _, p := range products {
			sku := strings.TrimSpace(p.SKU)
			if sku == "" {
				continue
			}
			if _, exists := idx[sku]; !exists {
				idx[sku] = p
			}
		}
	}
	return idx
}
