package sync

import (
	"strings"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// DecisionKind tells the orchestrator how to treat one template.
type DecisionKind int

const (
	// DecisionAlreadyMapped means a live mapping exists, take the update path
	DecisionAlreadyMapped DecisionKind = iota
	// DecisionMatchFound means an unmapped remote product shares a barcode,
	// adopt it instead of creating a duplicate
	DecisionMatchFound
	// DecisionCreate means no mapping and no barcode match, create remotely
	DecisionCreate
)

// Decision is the reconciliation outcome for one template.
type Decision struct {
	Kind    DecisionKind
	Mapping *storefront.TemplateMapping
	Remote  storefront.RemoteProductSummary
}

// Reconciler decides, per template, between updating through an existing
// mapping, adopting a barcode-matched remote product and creating a new one.
type Reconciler struct{}

// Decide resolves one template against the mapping cache and the remote SKU
// index. Barcode matching favors the template barcode over variant barcodes,
// and only barcodes participate: internal codes are pushed as SKUs for new
// products but never claim an existing remote one.
func (Reconciler) Decide(template *catalog.Template, cache *storefront.MappingCache, index RemoteIndex) Decision {
	if mapping := cache.Template(template.ID); mapping != nil {
		return Decision{Kind: DecisionAlreadyMapped, Mapping: mapping}
	}

	for _, barcode := range reconciliationBarcodes(template) {
		if summary, ok := index.Lookup(barcode); ok {
			return Decision{Kind: DecisionMatchFound, Remote: summary}
		}
	}

	return Decision{Kind: DecisionCreate}
}

// reconciliationBarcodes returns the template barcode first, then the variant
// barcodes in variant order, trimmed and with empties dropped.
func reconciliationBarcodes(template *catalog.Template) []string {
	barcodes := make([]string, 0, len(template.Variants)+1)
	if b := strings.TrimSpace(template.Barcode); b != "" {
		barcodes = append(barcodes, b)
	}
	for _, v := range template.Variants {
		if b := strings.TrimSpace(v.Barcode); b != "" {
			barcodes = append(barcodes, b)
		}
	}
	return barcodes
}
