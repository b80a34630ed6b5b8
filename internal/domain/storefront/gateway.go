package storefront

import (
	"context"
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Gateway errors
// ---------------------------------------------------------------------------

var (
	// ErrRemoteNotFound is returned when the storefront reports a structured
	// not-found status for a referenced id. It is the only error class that
	// triggers stale-mapping recovery.
	ErrRemoteNotFound = errors.New("sync: remote record not found")

	// ErrGatewayUnavailable is returned when a request could not complete at
	// the transport level.
	ErrGatewayUnavailable = errors.New("sync: storefront unavailable")
)

// RemoteError is a well-formed storefront response reporting failure.
type RemoteError struct {
	// Code is the storefront error code, when provided
	Code string
	// Message is the storefront error message
	Message string
	// HTTPStatus is the HTTP status of the response
	HTTPStatus int
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sync: storefront rejected request: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("sync: storefront rejected request: %s", e.Message)
}

// ---------------------------------------------------------------------------
// Remote value objects
// ---------------------------------------------------------------------------

// RemoteProductSummary is the slim product record returned by listing calls,
// enough to reconcile by SKU.
type RemoteProductSummary struct {
	ID   int64
	SKU  string
	Type RemoteProductType
}

// RemoteProduct is the full wire representation of a product pushed to the
// storefront.
type RemoteProduct struct {
	Name             string
	Type             RemoteProductType
	SKU              string
	RegularPrice     string
	Description      string
	ShortDescription string
	ManageStock      bool
	StockQuantity    int
	Weight           string
	Status           RemoteStatus
	CategoryIDs      []int64
	Images           []RemoteImage
	// Attributes is set only for variable products, in line order
	Attributes []RemoteAttributeLine
}

// RemoteImage references an image by a URL the storefront can fetch.
type RemoteImage struct {
	Src      string
	Position int
}

// RemoteAttributeLine is one attribute axis of a variable product.
type RemoteAttributeLine struct {
	ID int64
	// Name is the attribute display name
	Name string
	// Position is the stable line declaration order
	Position int
	// Visible and Variation are always set for pushed lines
	Visible   bool
	Variation bool
	// Options are the value names of this line, in order
	Options []string
}

// RemoteVariation is the wire representation of one variation of a variable
// product.
type RemoteVariation struct {
	// ID is the remote variation id, zero for creations
	ID            int64
	RegularPrice  string
	SKU           string
	ManageStock   bool
	StockQuantity int
	Weight        string
	Attributes    []RemoteVariationAttribute
}

// RemoteVariationAttribute selects one attribute option for a variation.
type RemoteVariationAttribute struct {
	ID     int64
	Name   string
	Option string
}

// ---------------------------------------------------------------------------
// Batch payloads
// ---------------------------------------------------------------------------

// VariationBatch is one batch call against a product's variations.
type VariationBatch struct {
	Create []RemoteVariation
	Update []RemoteVariation
	Delete []int64
}

// Size returns the total number of operations in the batch.
func (b VariationBatch) Size() int {
	return len(b.Create) + len(b.Update) + len(b.Delete)
}

// VariationBatchResult carries the per-operation results of a variation
// batch call. Entries align positionally with the submitted operations; an
// entry with ID zero means the storefront did not create or update that item.
type VariationBatchResult struct {
	Created []RemoteVariation
	Updated []RemoteVariation
	Deleted []int64
}

// ProductBatchUpdate is one price/stock update in a bulk product call.
type ProductBatchUpdate struct {
	ID            int64
	RegularPrice  string
	StockQuantity int
	ManageStock   bool
}

// ---------------------------------------------------------------------------
// Gateway port
// ---------------------------------------------------------------------------

// Gateway is the port to the remote storefront catalog API. The
// concrete adapter lives in the infrastructure layer; callers supply a
// context whose deadline bounds each call.
type Gateway interface {
	// TestConnection probes the storefront and returns nil when reachable
	TestConnection(ctx context.Context) error

	// ListProducts returns one page of the product listing, restricted to
	// id, SKU and type. An empty page signals the end of the listing.
	ListProducts(ctx context.Context, page, perPage int) ([]RemoteProductSummary, error)

	// FindProductsBySKU returns products whose SKU equals the given value
	FindProductsBySKU(ctx context.Context, sku string) ([]RemoteProductSummary, error)

	// CreateProduct creates a product and returns its remote id
	CreateProduct(ctx context.Context, product *RemoteProduct) (int64, error)

	// UpdateProduct updates an existing product. Returns ErrRemoteNotFound
	// when the storefront reports the id no longer exists.
	UpdateProduct(ctx context.Context, remoteProductID int64, product *RemoteProduct) error

	// UpdateProductStatus changes only the publication status of a product
	UpdateProductStatus(ctx context.Context, remoteProductID int64, status RemoteStatus) error

	// ListVariations returns one page of a product's variations
	ListVariations(ctx context.Context, remoteProductID int64, page, perPage int) ([]RemoteVariation, error)

	// BatchVariations submits a create/update/delete batch against a
	// product's variations. A failed item inside a successful batch is
	// surfaced per item in the result, not as an error.
	BatchVariations(ctx context.Context, remoteProductID int64, batch VariationBatch) (*VariationBatchResult, error)

	// BatchUpdateProducts bulk-updates price and stock of simple products
	BatchUpdateProducts(ctx context.Context, updates []ProductBatchUpdate) error

	// CreateCategory creates a category under the given remote parent
	// (zero for root) and returns its id
	CreateCategory(ctx context.Context, name string, remoteParentID int64) (int64, error)

	// FindCategoryByName searches categories by exact name under a parent,
	// returning zero when none matches
	FindCategoryByName(ctx context.Context, name string, remoteParentID int64) (int64, error)

	// CreateAttribute creates a product attribute and returns its id
	CreateAttribute(ctx context.Context, name string) (int64, error)

	// FindAttributeByName searches attributes by exact name, returning zero
	// when none matches
	FindAttributeByName(ctx context.Context, name string) (int64, error)

	// CreateTerm creates a term under a remote attribute and returns its id
	CreateTerm(ctx context.Context, remoteAttributeID int64, name string) (int64, error)

	// FindTermByName searches terms of an attribute by exact name,
	// returning zero when none matches
	FindTermByName(ctx context.Context, remoteAttributeID int64, name string) (int64, error)
}

// GatewayFactory builds a gateway bound to one instance's credentials.
type GatewayFactory interface {
	ForInstance(instance *Instance) (Gateway, error)
}
