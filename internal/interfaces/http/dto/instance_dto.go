package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// FilterConditionDTO is one clause of the template filter
type FilterConditionDTO struct {
	Field    string   `json:"field" binding:"required"`
	Operator string   `json:"operator" binding:"required"`
	Values   []string `json:"values" binding:"required,min=1"`
}

// CreateInstanceRequest carries the payload for registering a storefront
type CreateInstanceRequest struct {
	Name           string `json:"name" binding:"required"`
	BaseURL        string `json:"base_url" binding:"required,url"`
	ConsumerKey    string `json:"consumer_key" binding:"required"`
	ConsumerSecret string `json:"consumer_secret" binding:"required"`

	TimeoutSeconds int   `json:"timeout_seconds" binding:"omitempty,min=1"`
	VerifySSL      *bool `json:"verify_ssl"`

	PricelistID  *uuid.UUID  `json:"pricelist_id"`
	StockSource  string      `json:"stock_source" binding:"omitempty,oneof=global warehouses"`
	WarehouseIDs []uuid.UUID `json:"warehouse_ids"`
	StockMetric  string      `json:"stock_metric" binding:"omitempty,oneof=on_hand free forecast"`

	ProductFilter  []FilterConditionDTO `json:"product_filter"`
	ArchiveAsDraft *bool                `json:"archive_as_draft"`
	DefaultStatus  string               `json:"default_status" binding:"omitempty,oneof=publish draft private"`
	BatchSize      int                  `json:"batch_size" binding:"omitempty,min=1"`
}

// UpdateInstanceRequest carries a partial instance update. Nil fields are
// left untouched.
type UpdateInstanceRequest struct {
	Name           *string `json:"name"`
	BaseURL        *string `json:"base_url" binding:"omitempty,url"`
	ConsumerKey    *string `json:"consumer_key"`
	ConsumerSecret *string `json:"consumer_secret"`
	Active         *bool   `json:"active"`

	TimeoutSeconds *int  `json:"timeout_seconds" binding:"omitempty,min=1"`
	VerifySSL      *bool `json:"verify_ssl"`

	PricelistID  *uuid.UUID  `json:"pricelist_id"`
	StockSource  *string     `json:"stock_source" binding:"omitempty,oneof=global warehouses"`
	WarehouseIDs []uuid.UUID `json:"warehouse_ids"`
	StockMetric  *string     `json:"stock_metric" binding:"omitempty,oneof=on_hand free forecast"`

	ProductFilter  []FilterConditionDTO `json:"product_filter"`
	ArchiveAsDraft *bool                `json:"archive_as_draft"`
	DefaultStatus  *string              `json:"default_status" binding:"omitempty,oneof=publish draft private"`
	BatchSize      *int                 `json:"batch_size" binding:"omitempty,min=1"`
}

// InstanceResponse is the API representation of an instance. The consumer
// secret is never echoed back.
type InstanceResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Active         bool                 `json:"active"`
	State          string               `json:"state"`
	BaseURL        string               `json:"base_url"`
	ConsumerKey    string               `json:"consumer_key"`
	TimeoutSeconds int                  `json:"timeout_seconds"`
	VerifySSL      bool                 `json:"verify_ssl"`
	PricelistID    *uuid.UUID           `json:"pricelist_id,omitempty"`
	StockSource    string               `json:"stock_source"`
	WarehouseIDs   []uuid.UUID          `json:"warehouse_ids,omitempty"`
	StockMetric    string               `json:"stock_metric"`
	ProductFilter  []FilterConditionDTO `json:"product_filter,omitempty"`
	ArchiveAsDraft bool                 `json:"archive_as_draft"`
	DefaultStatus  string               `json:"default_status"`
	BatchSize      int                  `json:"batch_size"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// TemplateFilter converts the request conditions into the domain filter
func TemplateFilter(conditions []FilterConditionDTO) catalog.TemplateFilter {
	filter := catalog.TemplateFilter{}
	for _, c := range conditions {
		filter.Conditions = append(filter.Conditions, catalog.FilterCondition{
			Field:    c.Field,
			Operator: catalog.FilterOperator(c.Operator),
			Values:   c.Values,
		})
	}
	return filter
}

// InstanceFromDomain converts a domain instance into its API representation
func InstanceFromDomain(instance *storefront.Instance) InstanceResponse {
	resp := InstanceResponse{
		ID:             instance.ID,
		Name:           instance.Name,
		Active:         instance.Active,
		State:          string(instance.State),
		BaseURL:        instance.BaseURL,
		ConsumerKey:    instance.ConsumerKey,
		TimeoutSeconds: instance.TimeoutSeconds,
		VerifySSL:      instance.VerifySSL,
		PricelistID:    instance.PricelistID,
		StockSource:    string(instance.StockSource),
		WarehouseIDs:   instance.WarehouseIDs,
		StockMetric:    string(instance.StockMetric),
		ArchiveAsDraft: instance.ArchiveAsDraft,
		DefaultStatus:  string(instance.DefaultStatus),
		BatchSize:      instance.BatchSize,
		CreatedAt:      instance.CreatedAt,
		UpdatedAt:      instance.UpdatedAt,
	}
	for _, c := range instance.ProductFilter.Conditions {
		resp.ProductFilter = append(resp.ProductFilter, FilterConditionDTO{
			Field:    c.Field,
			Operator: string(c.Operator),
			Values:   c.Values,
		})
	}
	return resp
}

// MappingResponse is the API representation of a template mapping
type MappingResponse struct {
	ID              uuid.UUID  `json:"id"`
	TemplateID      uuid.UUID  `json:"template_id"`
	RemoteProductID int64      `json:"remote_product_id"`
	RemoteType      string     `json:"remote_type"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// MappingFromDomain converts a domain template mapping
func MappingFromDomain(mapping storefront.TemplateMapping) MappingResponse {
	return MappingResponse{
		ID:              mapping.ID,
		TemplateID:      mapping.TemplateID,
		RemoteProductID: mapping.RemoteProductID,
		RemoteType:      string(mapping.RemoteType),
		LastSyncAt:      mapping.LastSyncAt,
		CreatedAt:       mapping.CreatedAt,
	}
}

// LogEntryResponse is the API representation of a sync log entry
type LogEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	Category   string     `json:"category"`
	Status     string     `json:"status"`
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
}

// LogEntryFromDomain converts a domain log entry
func LogEntryFromDomain(entry storefront.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:         entry.ID,
		Category:   string(entry.Category),
		Status:     string(entry.Status),
		TemplateID: entry.TemplateID,
		VariantID:  entry.VariantID,
		Message:    entry.Message,
		CreatedAt:  entry.CreatedAt,
	}
}

// RunSummaryResponse reports the outcome of a full sync run
type RunSummaryResponse struct {
	StartedAt    time.Time `json:"started_at"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	Truncated    bool      `json:"truncated"`
}
