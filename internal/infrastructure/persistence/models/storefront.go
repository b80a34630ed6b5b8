package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// StorefrontInstanceModel is the persistence model for a storefront instance.
type StorefrontInstanceModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name           string     `gorm:"type:varchar(100);not null"`
	Active         bool       `gorm:"not null;default:true"`
	State          string     `gorm:"type:varchar(20);not null;default:'draft'"`
	BaseURL        string     `gorm:"type:varchar(500);not null"`
	ConsumerKey    string     `gorm:"type:varchar(255);not null"`
	ConsumerSecret string     `gorm:"type:varchar(255);not null"`
	TimeoutSeconds int        `gorm:"not null;default:40"`
	VerifySSL      bool       `gorm:"not null;default:true"`
	PricelistID    *uuid.UUID `gorm:"type:uuid"`
	StockSource    string     `gorm:"type:varchar(20);not null;default:'global'"`
	// WarehouseIDsJSON holds the warehouse restriction as a JSON array
	WarehouseIDsJSON string `gorm:"type:text;column:warehouse_ids"`
	StockMetric      string `gorm:"type:varchar(20);not null;default:'on_hand'"`
	// ProductFilterJSON holds the template filter conditions as JSON
	ProductFilterJSON string    `gorm:"type:text;column:product_filter"`
	ArchiveAsDraft    bool      `gorm:"not null;default:true"`
	DefaultStatus     string    `gorm:"type:varchar(20);not null;default:'publish'"`
	BatchSize         int       `gorm:"not null;default:100"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StorefrontInstanceModel) TableName() string {
	return "storefront_instances"
}

// ToDomain converts the persistence model to a domain Instance.
func (m *StorefrontInstanceModel) ToDomain() *storefront.Instance {
	instance := &storefront.Instance{
		ID:             m.ID,
		Name:           m.Name,
		Active:         m.Active,
		State:          storefront.InstanceState(m.State),
		BaseURL:        m.BaseURL,
		ConsumerKey:    m.ConsumerKey,
		ConsumerSecret: m.ConsumerSecret,
		TimeoutSeconds: m.TimeoutSeconds,
		VerifySSL:      m.VerifySSL,
		PricelistID:    m.PricelistID,
		StockSource:    catalog.StockSource(m.StockSource),
		StockMetric:    catalog.StockMetric(m.StockMetric),
		ArchiveAsDraft: m.ArchiveAsDraft,
		DefaultStatus:  storefront.RemoteStatus(m.DefaultStatus),
		BatchSize:      m.BatchSize,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if m.WarehouseIDsJSON != "" {
		var ids []uuid.UUID
		if err := json.Unmarshal([]byte(m.WarehouseIDsJSON), &ids); err == nil {
			instance.WarehouseIDs = ids
		}
	}
	if m.ProductFilterJSON != "" {
		var filter catalog.TemplateFilter
		if err := json.Unmarshal([]byte(m.ProductFilterJSON), &filter); err == nil {
			instance.ProductFilter = filter
		}
	}
	return instance
}

// FromDomain populates the persistence model from a domain Instance.
func (m *StorefrontInstanceModel) FromDomain(i *storefront.Instance) {
	m.ID = i.ID
	m.Name = i.Name
	m.Active = i.Active
	m.State = string(i.State)
	m.BaseURL = i.BaseURL
	m.ConsumerKey = i.ConsumerKey
	m.ConsumerSecret = i.ConsumerSecret
	m.TimeoutSeconds = i.TimeoutSeconds
	m.VerifySSL = i.VerifySSL
	m.PricelistID = i.PricelistID
	m.StockSource = string(i.StockSource)
	m.StockMetric = string(i.StockMetric)
	m.ArchiveAsDraft = i.ArchiveAsDraft
	m.DefaultStatus = string(i.DefaultStatus)
	m.BatchSize = i.BatchSize
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt

	if len(i.WarehouseIDs) > 0 {
		if jsonBytes, err := json.Marshal(i.WarehouseIDs); err == nil {
			m.WarehouseIDsJSON = string(jsonBytes)
		}
	} else {
		m.WarehouseIDsJSON = "[]"
	}
	if jsonBytes, err := json.Marshal(i.ProductFilter); err == nil {
		m.ProductFilterJSON = string(jsonBytes)
	}
}

// TemplateMappingModel is the persistence model for a template mapping. One
// live mapping per (instance, template) and per (instance, remote product).
type TemplateMappingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	InstanceID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_template_mapping_instance_template,unique,priority:1;index:idx_template_mapping_instance_remote,unique,priority:1"`
	TemplateID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_template_mapping_instance_template,unique,priority:2"`
	RemoteProductID int64      `gorm:"not null;index:idx_template_mapping_instance_remote,unique,priority:2"`
	RemoteType      string     `gorm:"type:varchar(20);not null;default:'simple'"`
	LastSyncAt      *time.Time `gorm:"index"`
	CreatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TemplateMappingModel) TableName() string {
	return "storefront_template_mappings"
}

// ToDomain converts the persistence model to a domain TemplateMapping.
func (m *TemplateMappingModel) ToDomain() *storefront.TemplateMapping {
	return &storefront.TemplateMapping{
		ID:              m.ID,
		InstanceID:      m.InstanceID,
		TemplateID:      m.TemplateID,
		RemoteProductID: m.RemoteProductID,
		RemoteType:      storefront.RemoteProductType(m.RemoteType),
		LastSyncAt:      m.LastSyncAt,
		CreatedAt:       m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain TemplateMapping.
func (m *TemplateMappingModel) FromDomain(tm *storefront.TemplateMapping) {
	m.ID = tm.ID
	m.InstanceID = tm.InstanceID
	m.TemplateID = tm.TemplateID
	m.RemoteProductID = tm.RemoteProductID
	m.RemoteType = string(tm.RemoteType)
	m.LastSyncAt = tm.LastSyncAt
	m.CreatedAt = tm.CreatedAt
}

// VariantMappingModel is the persistence model for a variant mapping. One
// live mapping per (instance, variant).
type VariantMappingModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key"`
	InstanceID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_variant_mapping_instance_variant,unique,priority:1"`
	TemplateMappingID uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariantID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_variant_mapping_instance_variant,unique,priority:2"`
	RemoteVariationID int64      `gorm:"not null"`
	LastSyncAt        *time.Time ``
	CreatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariantMappingModel) TableName() string {
	return "storefront_variant_mappings"
}

// ToDomain converts the persistence model to a domain VariantMapping.
func (m *VariantMappingModel) ToDomain() *storefront.VariantMapping {
	return &storefront.VariantMapping{
		ID:                m.ID,
		InstanceID:        m.InstanceID,
		TemplateMappingID: m.TemplateMappingID,
		VariantID:         m.VariantID,
		RemoteVariationID: m.RemoteVariationID,
		LastSyncAt:        m.LastSyncAt,
		CreatedAt:         m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain VariantMapping.
func (m *VariantMappingModel) FromDomain(vm *storefront.VariantMapping) {
	m.ID = vm.ID
	m.InstanceID = vm.InstanceID
	m.TemplateMappingID = vm.TemplateMappingID
	m.VariantID = vm.VariantID
	m.RemoteVariationID = vm.RemoteVariationID
	m.LastSyncAt = vm.LastSyncAt
	m.CreatedAt = vm.CreatedAt
}

// CategoryMappingModel is the persistence model for a category mapping.
type CategoryMappingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	InstanceID       uuid.UUID `gorm:"type:uuid;not null;index:idx_category_mapping_instance_category,unique,priority:1"`
	CategoryID       uuid.UUID `gorm:"type:uuid;not null;index:idx_category_mapping_instance_category,unique,priority:2"`
	RemoteCategoryID int64     `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryMappingModel) TableName() string {
	return "storefront_category_mappings"
}

// ToDomain converts the persistence model to a domain CategoryMapping.
func (m *CategoryMappingModel) ToDomain() *storefront.CategoryMapping {
	return &storefront.CategoryMapping{
		ID:               m.ID,
		InstanceID:       m.InstanceID,
		CategoryID:       m.CategoryID,
		RemoteCategoryID: m.RemoteCategoryID,
		CreatedAt:        m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain CategoryMapping.
func (m *CategoryMappingModel) FromDomain(cm *storefront.CategoryMapping) {
	m.ID = cm.ID
	m.InstanceID = cm.InstanceID
	m.CategoryID = cm.CategoryID
	m.RemoteCategoryID = cm.RemoteCategoryID
	m.CreatedAt = cm.CreatedAt
}

// AttributeMappingModel is the persistence model for an attribute mapping.
type AttributeMappingModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	InstanceID        uuid.UUID `gorm:"type:uuid;not null;index:idx_attribute_mapping_instance_attribute,unique,priority:1"`
	AttributeID       uuid.UUID `gorm:"type:uuid;not null;index:idx_attribute_mapping_instance_attribute,unique,priority:2"`
	RemoteAttributeID int64     `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeMappingModel) TableName() string {
	return "storefront_attribute_mappings"
}

// ToDomain converts the persistence model to a domain AttributeMapping.
func (m *AttributeMappingModel) ToDomain() *storefront.AttributeMapping {
	return &storefront.AttributeMapping{
		ID:                m.ID,
		InstanceID:        m.InstanceID,
		AttributeID:       m.AttributeID,
		RemoteAttributeID: m.RemoteAttributeID,
		CreatedAt:         m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain AttributeMapping.
func (m *AttributeMappingModel) FromDomain(am *storefront.AttributeMapping) {
	m.ID = am.ID
	m.InstanceID = am.InstanceID
	m.AttributeID = am.AttributeID
	m.RemoteAttributeID = am.RemoteAttributeID
	m.CreatedAt = am.CreatedAt
}

// AttributeValueMappingModel is the persistence model for an attribute value
// mapping.
type AttributeValueMappingModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	InstanceID        uuid.UUID `gorm:"type:uuid;not null;index:idx_value_mapping_instance_value,unique,priority:1"`
	AttributeValueID  uuid.UUID `gorm:"type:uuid;not null;index:idx_value_mapping_instance_value,unique,priority:2"`
	RemoteTermID      int64     `gorm:"not null"`
	RemoteAttributeID int64     `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeValueMappingModel) TableName() string {
	return "storefront_attribute_value_mappings"
}

// ToDomain converts the persistence model to a domain AttributeValueMapping.
func (m *AttributeValueMappingModel) ToDomain() *storefront.AttributeValueMapping {
	return &storefront.AttributeValueMapping{
		ID:                m.ID,
		InstanceID:        m.InstanceID,
		AttributeValueID:  m.AttributeValueID,
		RemoteTermID:      m.RemoteTermID,
		RemoteAttributeID: m.RemoteAttributeID,
		CreatedAt:         m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain AttributeValueMapping.
func (m *AttributeValueMappingModel) FromDomain(vm *storefront.AttributeValueMapping) {
	m.ID = vm.ID
	m.InstanceID = vm.InstanceID
	m.AttributeValueID = vm.AttributeValueID
	m.RemoteTermID = vm.RemoteTermID
	m.RemoteAttributeID = vm.RemoteAttributeID
	m.CreatedAt = vm.CreatedAt
}

// SyncLogModel is the persistence model for an append-only sync log entry.
type SyncLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	InstanceID uuid.UUID  `gorm:"type:uuid;not null;index:idx_sync_log_instance_created,priority:1"`
	Category   string     `gorm:"type:varchar(20);not null"`
	Status     string     `gorm:"type:varchar(20);not null"`
	TemplateID *uuid.UUID `gorm:"type:uuid;index"`
	VariantID  *uuid.UUID `gorm:"type:uuid"`
	Message    string     `gorm:"type:text"`
	CreatedAt  time.Time  `gorm:"not null;index:idx_sync_log_instance_created,priority:2"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "storefront_sync_logs"
}

// ToDomain converts the persistence model to a domain LogEntry.
func (m *SyncLogModel) ToDomain() *storefront.LogEntry {
	return &storefront.LogEntry{
		ID:         m.ID,
		InstanceID: m.InstanceID,
		Category:   storefront.LogCategory(m.Category),
		Status:     storefront.LogStatus(m.Status),
		TemplateID: m.TemplateID,
		VariantID:  m.VariantID,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain LogEntry.
func (m *SyncLogModel) FromDomain(e *storefront.LogEntry) {
	m.ID = e.ID
	m.InstanceID = e.InstanceID
	m.Category = string(e.Category)
	m.Status = string(e.Status)
	m.TemplateID = e.TemplateID
	m.VariantID = e.VariantID
	m.Message = e.Message
	m.CreatedAt = e.CreatedAt
}
