package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Mapping errors
// ---------------------------------------------------------------------------

var (
	ErrMappingNotFound       = errors.New("sync: mapping not found")
	ErrMappingAlreadyExists  = errors.New("sync: mapping already exists")
	ErrMappingInvalidRemote  = errors.New("sync: invalid remote id")
	ErrMappingInvalidLocalID = errors.New("sync: invalid local entity id")
)

// SimpleVariationID is the sentinel remote variation id recorded for the
// single variant of a simple (non-variable) remote product, which has no
// variation of its own.
const SimpleVariationID int64 = 0

// ---------------------------------------------------------------------------
// RemoteProductType
// ---------------------------------------------------------------------------

// RemoteProductType is the storefront-side classification of a product.
type RemoteProductType string

const (
	// RemoteProductSimple has exactly one priced and stocked unit
	RemoteProductSimple RemoteProductType = "simple"
	// RemoteProductVariable has multiple variations selected by attributes
	RemoteProductVariable RemoteProductType = "variable"
)

// IsValid returns true if the type is valid.
func (t RemoteProductType) IsValid() bool {
	return t == RemoteProductSimple || t == RemoteProductVariable
}

// ---------------------------------------------------------------------------
// Mapping entities
// ---------------------------------------------------------------------------

// TemplateMapping bridges a local template to a remote product for one
// instance. At most one live mapping exists per (instance, template) and per
// (instance, remote product id).
type TemplateMapping struct {
	ID         uuid.UUID
	InstanceID uuid.UUID
	TemplateID uuid.UUID
	// RemoteProductID is the product id on the storefront
	RemoteProductID int64
	// RemoteType records whether the remote product is simple or variable
	RemoteType RemoteProductType
	// LastSyncAt is updated on every successful push
	LastSyncAt *time.Time
	CreatedAt  time.Time
}

// NewTemplateMapping creates a template mapping with the sync timestamp set.
func NewTemplateMapping(instanceID, templateID uuid.UUID, remoteProductID int64, remoteType RemoteProductType) (*TemplateMapping, error) {
	if instanceID == uuid.Nil || templateID == uuid.Nil {
		return nil, ErrMappingInvalidLocalID
	}
	if remoteProductID <= 0 {
		return nil, ErrMappingInvalidRemote
	}
	if !remoteType.IsValid() {
		remoteType = RemoteProductSimple
	}
	now := time.Now()
	return &TemplateMapping{
		ID:              uuid.New(),
		InstanceID:      instanceID,
		TemplateID:      templateID,
		RemoteProductID: remoteProductID,
		RemoteType:      remoteType,
		LastSyncAt:      &now,
		CreatedAt:       now,
	}, nil
}

// Touch records a successful push.
func (m *TemplateMapping) Touch() {
	now := time.Now()
	m.LastSyncAt = &now
}

// VariantMapping bridges a local variant to a remote variation. The remote
// variation id is SimpleVariationID for the single variant of a simple
// product. At most one live mapping exists per (instance, variant).
type VariantMapping struct {
	ID                uuid.UUID
	InstanceID        uuid.UUID
	TemplateMappingID uuid.UUID
	VariantID         uuid.UUID
	RemoteVariationID int64
	LastSyncAt        *time.Time
	CreatedAt         time.Time
}

// NewVariantMapping creates a variant mapping with the sync timestamp set.
func NewVariantMapping(instanceID, templateMappingID, variantID uuid.UUID, remoteVariationID int64) (*VariantMapping, error) {
	if instanceID == uuid.Nil || templateMappingID == uuid.Nil || variantID == uuid.Nil {
		return nil, ErrMappingInvalidLocalID
	}
	if remoteVariationID < 0 {
		return nil, ErrMappingInvalidRemote
	}
	now := time.Now()
	return &VariantMapping{
		ID:                uuid.New(),
		InstanceID:        instanceID,
		TemplateMappingID: templateMappingID,
		VariantID:         variantID,
		RemoteVariationID: remoteVariationID,
		LastSyncAt:        &now,
		CreatedAt:         now,
	}, nil
}

// Touch records a successful push.
func (m *VariantMapping) Touch() {
	now := time.Now()
	m.LastSyncAt = &now
}

// CategoryMapping bridges a local category to a remote category id.
type CategoryMapping struct {
	ID               uuid.UUID
	InstanceID       uuid.UUID
	CategoryID       uuid.UUID
	RemoteCategoryID int64
	CreatedAt        time.Time
}

// NewCategoryMapping creates a category mapping.
func NewCategoryMapping(instanceID, categoryID uuid.UUID, remoteCategoryID int64) (*CategoryMapping, error) {
	if instanceID == uuid.Nil || categoryID == uuid.Nil {
		return nil, ErrMappingInvalidLocalID
	}
	if remoteCategoryID <= 0 {
		return nil, ErrMappingInvalidRemote
	}
	return &CategoryMapping{
		ID:               uuid.New(),
		InstanceID:       instanceID,
		CategoryID:       categoryID,
		RemoteCategoryID: remoteCategoryID,
		CreatedAt:        time.Now(),
	}, nil
}

// AttributeMapping bridges a local attribute to a remote attribute id.
type AttributeMapping struct {
	ID                uuid.UUID
	InstanceID        uuid.UUID
	AttributeID       uuid.UUID
	RemoteAttributeID int64
	CreatedAt         time.Time
}

// NewAttributeMapping creates an attribute mapping.
func NewAttributeMapping(instanceID, attributeID uuid.UUID, remoteAttributeID int64) (*AttributeMapping, error) {
	if instanceID == uuid.Nil || attributeID == uuid.Nil {
		return nil, ErrMappingInvalidLocalID
	}
	if remoteAttributeID <= 0 {
		return nil, ErrMappingInvalidRemote
	}
	return &AttributeMapping{
		ID:                uuid.New(),
		InstanceID:        instanceID,
		AttributeID:       attributeID,
		RemoteAttributeID: remoteAttributeID,
		CreatedAt:         time.Now(),
	}, nil
}

// AttributeValueMapping bridges a local attribute value to a remote term id,
// scoped under its owning remote attribute.
type AttributeValueMapping struct {
	ID                uuid.UUID
	InstanceID        uuid.UUID
	AttributeValueID  uuid.UUID
	RemoteTermID      int64
	RemoteAttributeID int64
	CreatedAt         time.Time
}

// NewAttributeValueMapping creates an attribute value mapping.
func NewAttributeValueMapping(instanceID, valueID uuid.UUID, remoteTermID, remoteAttributeID int64) (*AttributeValueMapping, error) {
	if instanceID == uuid.Nil || valueID == uuid.Nil {
		return nil, ErrMappingInvalidLocalID
	}
	if remoteTermID <= 0 || remoteAttributeID <= 0 {
		return nil, ErrMappingInvalidRemote
	}
	return &AttributeValueMapping{
		ID:                uuid.New(),
		InstanceID:        instanceID,
		AttributeValueID:  valueID,
		RemoteTermID:      remoteTermID,
		RemoteAttributeID: remoteAttributeID,
		CreatedAt:         time.Now(),
	}, nil
}

// ---------------------------------------------------------------------------
// Repository interfaces
// ---------------------------------------------------------------------------

// TemplateMappingRepository persists template mappings.
type TemplateMappingRepository interface {
	// FindByInstance returns all template mappings of an instance
	FindByInstance(ctx context.Context, instanceID uuid.UUID) ([]TemplateMapping, error)

	// FindByTemplate finds the mapping of one template, ErrMappingNotFound
	// when none exists
	FindByTemplate(ctx context.Context, instanceID, templateID uuid.UUID) (*TemplateMapping, error)

	// FindByType returns the mappings of an instance with the given remote
	// type whose local template is still active
	FindByType(ctx context.Context, instanceID uuid.UUID, remoteType RemoteProductType) ([]TemplateMapping, error)

	// SaveTemplateMapping creates or updates a template mapping
	SaveTemplateMapping(ctx context.Context, mapping *TemplateMapping) error

	// DeleteTemplateMapping removes a template mapping and its variant
	// mappings. The local and remote entities are untouched.
	DeleteTemplateMapping(ctx context.Context, id uuid.UUID) error
}

// VariantMappingRepository persists variant mappings.
type VariantMappingRepository interface {
	// FindByTemplateMapping returns all variant mappings under a template
	// mapping
	FindByTemplateMapping(ctx context.Context, templateMappingID uuid.UUID) ([]VariantMapping, error)

	// SaveVariantMapping creates or updates a variant mapping
	SaveVariantMapping(ctx context.Context, mapping *VariantMapping) error

	// SaveVariantMappings creates or updates multiple variant mappings
	SaveVariantMappings(ctx context.Context, mappings []*VariantMapping) error

	// DeleteVariantMappingsByRemoteIDs removes the variant mappings of a
	// template mapping whose remote variation ids are in the given set
	DeleteVariantMappingsByRemoteIDs(ctx context.Context, templateMappingID uuid.UUID, remoteIDs []int64) error
}

// TaxonomyMappingRepository persists category, attribute and attribute value
// mappings.
type TaxonomyMappingRepository interface {
	// FindCategoryMappings returns all category mappings of an instance
	FindCategoryMappings(ctx context.Context, instanceID uuid.UUID) ([]CategoryMapping, error)

	// FindAttributeMappings returns all attribute mappings of an instance
	FindAttributeMappings(ctx context.Context, instanceID uuid.UUID) ([]AttributeMapping, error)

	// FindAttributeValueMappings returns all attribute value mappings of an
	// instance
	FindAttributeValueMappings(ctx context.Context, instanceID uuid.UUID) ([]AttributeValueMapping, error)

	// SaveCategoryMapping creates a category mapping
	SaveCategoryMapping(ctx context.Context, mapping *CategoryMapping) error

	// SaveAttributeMapping creates an attribute mapping
	SaveAttributeMapping(ctx context.Context, mapping *AttributeMapping) error

	// SaveAttributeValueMapping creates an attribute value mapping
	SaveAttributeValueMapping(ctx context.Context, mapping *AttributeValueMapping) error
}

// MappingRepository is the full mapping-store contract.
type MappingRepository interface {
	TemplateMappingRepository
	VariantMappingRepository
	TaxonomyMappingRepository
}
