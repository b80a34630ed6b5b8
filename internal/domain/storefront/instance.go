package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
)

// ---------------------------------------------------------------------------
// Instance errors
// ---------------------------------------------------------------------------

var (
	ErrInstanceNotFound      = errors.New("sync: instance not found")
	ErrInstanceNotConnected  = errors.New("sync: instance is not connected")
	ErrInstanceInvalidName   = errors.New("sync: instance name is required")
	ErrInstanceInvalidURL    = errors.New("sync: instance base URL is required")
	ErrInstanceMissingKey    = errors.New("sync: consumer key is required")
	ErrInstanceMissingSecret = errors.New("sync: consumer secret is required")
)

// maxBatchSize is the hard cap on items per remote batch call, regardless of
// the configured batch size.
const maxBatchSize = 100

// ---------------------------------------------------------------------------
// InstanceState
// ---------------------------------------------------------------------------

// InstanceState represents the connection state of a storefront instance.
type InstanceState string

const (
	// InstanceStateDraft is the initial state before the first successful
	// connection test
	InstanceStateDraft InstanceState = "draft"
	// InstanceStateConnected means the last connection test succeeded
	InstanceStateConnected InstanceState = "connected"
	// InstanceStateError means the last connection test failed
	InstanceStateError InstanceState = "error"
)

// IsValid returns true if the state is valid.
func (s InstanceState) IsValid() bool {
	switch s {
	case InstanceStateDraft, InstanceStateConnected, InstanceStateError:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// RemoteStatus
// ---------------------------------------------------------------------------

// RemoteStatus is the publication status a product carries on the storefront.
type RemoteStatus string

const (
	RemoteStatusPublish RemoteStatus = "publish"
	RemoteStatusDraft   RemoteStatus = "draft"
	RemoteStatusPrivate RemoteStatus = "private"
)

// IsValid returns true if the status is valid.
func (s RemoteStatus) IsValid() bool {
	switch s {
	case RemoteStatusPublish, RemoteStatusDraft, RemoteStatusPrivate:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Instance
// ---------------------------------------------------------------------------

// Instance is a connected storefront account together with its sync policy.
// It owns every mapping and log record written for it.
type Instance struct {
	// ID is the unique identifier of the instance
	ID uuid.UUID
	// Name is the operator-facing label
	Name string
	// Active is false when the instance is disabled without being deleted
	Active bool
	// State is the connection state
	State InstanceState

	// BaseURL is the storefront root URL
	BaseURL string
	// ConsumerKey and ConsumerSecret authenticate API calls
	ConsumerKey    string
	ConsumerSecret string
	// TimeoutSeconds is the per-request timeout for storefront calls
	TimeoutSeconds int
	// VerifySSL disables TLS verification when false (self-hosted shops)
	VerifySSL bool

	// PricelistID selects the price list used for exported prices, nil for
	// the variant list price
	PricelistID *uuid.UUID
	// StockSource and StockMetric select how exported stock is resolved
	StockSource catalog.StockSource
	// WarehouseIDs restricts stock to these warehouses when StockSource is
	// StockSourceWarehouses
	WarehouseIDs []uuid.UUID
	StockMetric  catalog.StockMetric

	// ProductFilter restricts which templates are in scope
	ProductFilter catalog.TemplateFilter
	// ArchiveAsDraft drafts the remote product when the local template is
	// archived, instead of leaving it published
	ArchiveAsDraft bool
	// DefaultStatus is the publication status applied on create and update
	DefaultStatus RemoteStatus
	// BatchSize is the configured maximum items per remote batch call
	BatchSize int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewInstance creates a draft instance with policy defaults.
func NewInstance(name, baseURL, consumerKey, consumerSecret string) (*Instance, error) {
	if name == "" {
		return nil, ErrInstanceInvalidName
	}
	if baseURL == "" {
		return nil, ErrInstanceInvalidURL
	}
	if consumerKey == "" {
		return nil, ErrInstanceMissingKey
	}
	if consumerSecret == "" {
		return nil, ErrInstanceMissingSecret
	}

	now := time.Now()
	return &Instance{
		ID:             uuid.New(),
		Name:           name,
		Active:         true,
		State:          InstanceStateDraft,
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		TimeoutSeconds: 40,
		VerifySSL:      true,
		StockSource:    catalog.StockSourceGlobal,
		StockMetric:    catalog.StockMetricOnHand,
		ArchiveAsDraft: true,
		DefaultStatus:  RemoteStatusPublish,
		BatchSize:      maxBatchSize,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsConnected returns true when the instance is active and connected.
func (i *Instance) IsConnected() bool {
	return i.Active && i.State == InstanceStateConnected
}

// MarkConnected records a successful connection test.
func (i *Instance) MarkConnected() {
	i.State = InstanceStateConnected
	i.UpdatedAt = time.Now()
}

// MarkError records a failed connection test.
func (i *Instance) MarkError() {
	i.State = InstanceStateError
	i.UpdatedAt = time.Now()
}

// EffectiveBatchSize returns the batch size actually used for remote batch
// calls: the configured size clamped to [1, 100].
func (i *Instance) EffectiveBatchSize() int {
	size := i.BatchSize
	if size <= 0 || size > maxBatchSize {
		size = maxBatchSize
	}
	return size
}

// StockPolicy assembles the stock resolution policy from the instance
// configuration.
func (i *Instance) StockPolicy() catalog.StockPolicy {
	return catalog.StockPolicy{
		Source:       i.StockSource,
		WarehouseIDs: i.WarehouseIDs,
		Metric:       i.StockMetric,
	}
}

// ---------------------------------------------------------------------------
// InstanceRepository
// ---------------------------------------------------------------------------

// InstanceRepository persists storefront instances.
type InstanceRepository interface {
	// FindByID finds an instance by id
	FindByID(ctx context.Context, id uuid.UUID) (*Instance, error)

	// FindAll returns every instance regardless of state
	FindAll(ctx context.Context) ([]Instance, error)

	// FindConnected returns every active, connected instance
	FindConnected(ctx context.Context) ([]Instance, error)

	// Save creates or updates an instance
	Save(ctx context.Context, instance *Instance) error

	// Delete removes an instance. Mapping and log records cascade with it.
	Delete(ctx context.Context, id uuid.UUID) error
}
