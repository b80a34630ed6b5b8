package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormInstanceRepository implements InstanceRepository using GORM
type GormInstanceRepository struct {
	db *gorm.DB
}

// NewGormInstanceRepository creates a new GormInstanceRepository
func NewGormInstanceRepository(db *gorm.DB) *GormInstanceRepository {
	return &GormInstanceRepository{db: db}
}

var _ storefront.InstanceRepository = (*GormInstanceRepository)(nil)

// FindByID finds an instance by id
func (r *GormInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*storefront.Instance, error) {
	var model models.StorefrontInstanceModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storefront.ErrInstanceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every instance regardless of state
func (r *GormInstanceRepository) FindAll(ctx context.Context) ([]storefront.Instance, error) {
	var instanceModels []models.StorefrontInstanceModel
	if err := dbFromContext(ctx, r.db).
		Order("name ASC").
		Find(&instanceModels).Error; err != nil {
		return nil, err
	}

	instances := make([]storefront.Instance, len(instanceModels))
	for i, model := range instanceModels {
		instances[i] = *model.ToDomain()
	}
	return instances, nil
}

// FindConnected returns every active, connected instance
func (r *GormInstanceRepository) FindConnected(ctx context.Context) ([]storefront.Instance, error) {
	var instanceModels []models.StorefrontInstanceModel
	if err := dbFromContext(ctx, r.db).
		Where("active = ? AND state = ?", true, string(storefront.InstanceStateConnected)).
		Order("name ASC").
		Find(&instanceModels).Error; err != nil {
		return nil, err
	}

	instances := make([]storefront.Instance, len(instanceModels))
	for i, model := range instanceModels {
		instances[i] = *model.ToDomain()
	}
	return instances, nil
}

// Save creates or updates an instance
func (r *GormInstanceRepository) Save(ctx context.Context, instance *storefront.Instance) error {
	model := &models.StorefrontInstanceModel{}
	model.FromDomain(instance)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// Delete removes an instance together with its mapping and log records
func (r *GormInstanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("instance_id = ?", id).
			Delete(&models.VariantMappingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instance_id = ?", id).
			Delete(&models.TemplateMappingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instance_id = ?", id).
			Delete(&models.CategoryMappingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instance_id = ?", id).
			Delete(&models.AttributeValueMappingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instance_id = ?", id).
			Delete(&models.AttributeMappingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instance_id = ?", id).
			Delete(&models.SyncLogModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.StorefrontInstanceModel{}, "id = ?", id).Error
	})
}
