package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.StorefrontInstanceModel{},
		&models.TemplateMappingModel{},
		&models.VariantMappingModel{},
		&models.CategoryMappingModel{},
		&models.AttributeMappingModel{},
		&models.AttributeValueMappingModel{},
		&models.SyncLogModel{},
		&models.ProductCategoryModel{},
		&models.ProductTemplateModel{},
		&models.ProductVariantModel{},
		&models.ProductAttributeModel{},
		&models.ProductAttributeValueModel{},
		&models.TemplateAttributeLineModel{},
		&models.TemplateAttributeLineValueModel{},
		&models.VariantValueModel{},
		&models.PricelistItemModel{},
		&models.StockQuantModel{},
	)
	require.NoError(t, err)

	return db
}

func seedInstance(t *testing.T, db *gorm.DB) *storefront.Instance {
	instance, err := storefront.NewInstance("test-shop", "https://shop.example.com", "ck_test", "cs_test")
	require.NoError(t, err)
	instance.MarkConnected()

	model := &models.StorefrontInstanceModel{}
	model.FromDomain(instance)
	require.NoError(t, db.Create(model).Error)
	return instance
}
