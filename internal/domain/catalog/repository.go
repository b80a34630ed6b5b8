package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrTemplateNotFound = errors.New("catalog: template not found")
	ErrCategoryNotFound = errors.New("catalog: category not found")
)

// StockSource selects which stock locations feed the exported quantity.
type StockSource string

const (
	// StockSourceGlobal aggregates stock across every warehouse
	StockSourceGlobal StockSource = "global"
	// StockSourceWarehouses restricts stock to a named set of warehouses
	StockSourceWarehouses StockSource = "warehouses"
)

// StockMetric selects which quantity semantics are exported.
type StockMetric string

const (
	// StockMetricOnHand is the physically present quantity
	StockMetricOnHand StockMetric = "on_hand"
	// StockMetricFree is the quantity not reserved by orders
	StockMetricFree StockMetric = "free"
	// StockMetricForecast is the forecasted quantity including inbound moves
	StockMetricForecast StockMetric = "forecast"
)

// StockPolicy describes how a variant's exported stock quantity is resolved.
type StockPolicy struct {
	Source StockSource
	// WarehouseIDs is consulted only when Source is StockSourceWarehouses.
	// An empty set under that source resolves to zero stock.
	WarehouseIDs []uuid.UUID
	Metric       StockMetric
}

// TemplateReader provides read access to the local product catalog. The sync
// engine never mutates catalog records through this interface; the one
// write-back it needs lives on TemplateFlagWriter.
type TemplateReader interface {
	// ListTemplateIDs returns the ids of templates matching the filter, in a
	// stable order. Archived templates are included when includeArchived is
	// set, so that archived-but-mapped templates can be pushed as drafts.
	ListTemplateIDs(ctx context.Context, filter TemplateFilter, includeArchived bool) ([]uuid.UUID, error)

	// GetTemplates loads the given templates with their attribute lines and
	// variants populated. Missing ids are skipped, not an error.
	GetTemplates(ctx context.Context, ids []uuid.UUID) ([]Template, error)

	// GetTemplate loads a single template with lines and variants.
	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)

	// GetCategory loads a single category node.
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
}

// PriceResolver resolves the exported price of a variant. A nil pricelist id
// falls back to the variant's list price.
type PriceResolver interface {
	VariantPrice(ctx context.Context, variantID uuid.UUID, pricelistID *uuid.UUID) (decimal.Decimal, error)
}

// StockResolver resolves the exported stock quantity of a variant under a
// stock policy.
type StockResolver interface {
	VariantStock(ctx context.Context, variantID uuid.UUID, policy StockPolicy) (int, error)
}

// TemplateFlagWriter carries the single write-back the sync engine performs
// on the catalog.
type TemplateFlagWriter interface {
	// MarkImagePullPending flags a template as awaiting an asynchronous
	// image pull from the remote side.
	MarkImagePullPending(ctx context.Context, templateID uuid.UUID) error
}

// Repository is the full local-catalog contract consumed by the sync engine.
type Repository interface {
	TemplateReader
	PriceResolver
	StockResolver
	TemplateFlagWriter
}
