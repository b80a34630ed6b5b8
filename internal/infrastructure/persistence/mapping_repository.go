package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormMappingRepository implements MappingRepository using GORM
type GormMappingRepository struct {
	db *gorm.DB
}

// NewGormMappingRepository creates a new GormMappingRepository
func NewGormMappingRepository(db *gorm.DB) *GormMappingRepository {
	return &GormMappingRepository{db: db}
}

var _ storefront.MappingRepository = (*GormMappingRepository)(nil)

// ---------------------------------------------------------------------------
// Template mappings
// ---------------------------------------------------------------------------

// FindByInstance returns all template mappings of an instance
func (r *GormMappingRepository) FindByInstance(ctx context.Context, instanceID uuid.UUID) ([]storefront.TemplateMapping, error) {
	var mappingModels []models.TemplateMappingModel
	if err := dbFromContext(ctx, r.db).
		Where("instance_id = ?", instanceID).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]storefront.TemplateMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// FindByTemplate finds the mapping of one template
func (r *GormMappingRepository) FindByTemplate(ctx context.Context, instanceID, templateID uuid.UUID) (*storefront.TemplateMapping, error) {
	var model models.TemplateMappingModel
	if err := dbFromContext(ctx, r.db).
		Where("instance_id = ? AND template_id = ?", instanceID, templateID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storefront.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByType returns the mappings of an instance with the given remote type
// whose local template is still active
func (r *GormMappingRepository) FindByType(ctx context.Context, instanceID uuid.UUID, remoteType storefront.RemoteProductType) ([]storefront.TemplateMapping, error) {
	var mappingModels []models.TemplateMappingModel
	if err := dbFromContext(ctx, r.db).
		Joins("JOIN product_templates ON product_templates.id = storefront_template_mappings.template_id").
		Where("storefront_template_mappings.instance_id = ? AND storefront_template_mappings.remote_type = ? AND product_templates.active = ?",
			instanceID, string(remoteType), true).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]storefront.TemplateMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// SaveTemplateMapping creates or updates a template mapping
func (r *GormMappingRepository) SaveTemplateMapping(ctx context.Context, mapping *storefront.TemplateMapping) error {
	model := &models.TemplateMappingModel{}
	model.FromDomain(mapping)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// DeleteTemplateMapping removes a template mapping and its variant mappings
func (r *GormMappingRepository) DeleteTemplateMapping(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	if err := db.Where("template_mapping_id = ?", id).
		Delete(&models.VariantMappingModel{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.TemplateMappingModel{}, "id = ?", id).Error
}

// ---------------------------------------------------------------------------
// Variant mappings
// ---------------------------------------------------------------------------

// FindByTemplateMapping returns all variant mappings under a template mapping
func (r *GormMappingRepository) FindByTemplateMapping(ctx context.Context, templateMappingID uuid.UUID) ([]storefront.VariantMapping, error) {
	var mappingModels []models.VariantMappingModel
	if err := dbFromContext(ctx, r.db).
		Where("template_mapping_id = ?", templateMappingID).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]storefront.VariantMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// SaveVariantMapping creates or updates a variant mapping
func (r *GormMappingRepository) SaveVariantMapping(ctx context.Context, mapping *storefront.VariantMapping) error {
	model := &models.VariantMappingModel{}
	model.FromDomain(mapping)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveVariantMappings creates or updates multiple variant mappings
func (r *GormMappingRepository) SaveVariantMappings(ctx context.Context, mappings []*storefront.VariantMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	mappingModels := make([]models.VariantMappingModel, len(mappings))
	for i, mapping := range mappings {
		mappingModels[i].FromDomain(mapping)
	}
	return dbFromContext(ctx, r.db).Save(&mappingModels).Error
}

// DeleteVariantMappingsByRemoteIDs removes the variant mappings of a
// template mapping whose remote variation ids are in the given set
func (r *GormMappingRepository) DeleteVariantMappingsByRemoteIDs(ctx context.Context, templateMappingID uuid.UUID, remoteIDs []int64) error {
	if len(remoteIDs) == 0 {
		return nil
	}
	return dbFromContext(ctx, r.db).
		Where("template_mapping_id = ? AND remote_variation_id IN ?", templateMappingID, remoteIDs).
		Delete(&models.VariantMappingModel{}).Error
}

// ---------------------------------------------------------------------------
// Taxonomy mappings
// ---------------------------------------------------------------------------

// FindCategoryMappings returns all category mappings of an instance
func (r *GormMappingRepository) FindCategoryMappings(ctx context.Context, instanceID uuid.UUID) ([]storefront.CategoryMapping, error) {
	var mappingModels []models.CategoryMappingModel
	if err := dbFromContext(ctx, r.db).
		Where("instance_id = ?", instanceID).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]storefront.CategoryMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// FindAttributeMappings returns all attribute mappings of an instance
func (r *GormMappingRepository) FindAttributeMappings(ctx context.Context, instanceID uuid.UUID) ([]storefront.AttributeMapping, error) {
	var mappingModels []models.AttributeMappingModel
	if err := dbFromContext(ctx, r.db).
		Where("instance_id = ?", instanceID).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]storefront.AttributeMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// FindAttributeValueMappings returns all attribute value mappings of an
// instance
func (r *GormMappingRepository) FindAttributeValueMappings(ctx context.Context, instanceID uuid.UUID) ([]storefront.AttributeValueMapping, error) {
	var mappingModels []models.AttributeValueMappingModel
	if err := dbFromContext(ctx, r.db).
		Where("instance_id = ?", instanceID).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]storefront.AttributeValueMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// SaveCategoryMapping creates a category mapping
func (r *GormMappingRepository) SaveCategoryMapping(ctx context.Context, mapping *storefront.CategoryMapping) error {
	model := &models.CategoryMappingModel{}
	model.FromDomain(mapping)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveAttributeMapping creates an attribute mapping
func (r *GormMappingRepository) SaveAttributeMapping(ctx context.Context, mapping *storefront.AttributeMapping) error {
	model := &models.AttributeMappingModel{}
	model.FromDomain(mapping)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveAttributeValueMapping creates an attribute value mapping
func (r *GormMappingRepository) SaveAttributeValueMapping(ctx context.Context, mapping *storefront.AttributeValueMapping) error {
	model := &models.AttributeValueMappingModel{}
	model.FromDomain(mapping)
	return dbFromContext(ctx, r.db).Save(model).Error
}
