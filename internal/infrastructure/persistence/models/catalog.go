package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/catalog"
)

// ProductCategoryModel is the persistence model for a product category node.
type ProductCategoryModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name      string     `gorm:"type:varchar(200);not null"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductCategoryModel) TableName() string {
	return "product_categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *ProductCategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:       m.ID,
		Name:     m.Name,
		ParentID: m.ParentID,
	}
}

// ProductTemplateModel is the persistence model for a product template.
type ProductTemplateModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name             string          `gorm:"type:varchar(200);not null;index"`
	Description      string          `gorm:"type:text"`
	ShortDescription string          `gorm:"type:text"`
	Barcode          string          `gorm:"type:varchar(50);index"`
	InternalCode     string          `gorm:"type:varchar(50);index"`
	Weight           decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	CategoryID       *uuid.UUID      `gorm:"type:uuid;index"`
	HasImage         bool            `gorm:"not null;default:false"`
	// ImagePullPending marks templates whose image should be fetched from an
	// adopted remote product
	ImagePullPending bool      `gorm:"not null;default:false"`
	SaleOK           bool      `gorm:"not null;default:true"`
	Active           bool      `gorm:"not null;default:true;index"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductTemplateModel) TableName() string {
	return "product_templates"
}

// ProductVariantModel is the persistence model for a sellable variant.
type ProductVariantModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	TemplateID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Barcode      string          `gorm:"type:varchar(50);index"`
	InternalCode string          `gorm:"type:varchar(50);index"`
	Weight       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	// ListPrice is the default sales price used when no pricelist applies
	ListPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	SortOrder int             `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ProductAttributeModel is the persistence model for an attribute axis.
type ProductAttributeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductAttributeModel) TableName() string {
	return "product_attributes"
}

// ProductAttributeValueModel is the persistence model for one attribute
// value.
type ProductAttributeValueModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	SortOrder   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductAttributeValueModel) TableName() string {
	return "product_attribute_values"
}

// TemplateAttributeLineModel binds a template to one attribute axis. Line
// order is significant.
type TemplateAttributeLineModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TemplateID  uuid.UUID `gorm:"type:uuid;not null;index:idx_attr_line_template_position,priority:1"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null"`
	Position    int       `gorm:"not null;default:0;index:idx_attr_line_template_position,priority:2"`
}

// TableName returns the table name for GORM
func (TemplateAttributeLineModel) TableName() string {
	return "product_template_attribute_lines"
}

// TemplateAttributeLineValueModel selects one value on an attribute line.
type TemplateAttributeLineValueModel struct {
	LineID    uuid.UUID `gorm:"type:uuid;primary_key"`
	ValueID   uuid.UUID `gorm:"type:uuid;primary_key"`
	SortOrder int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (TemplateAttributeLineValueModel) TableName() string {
	return "product_template_attribute_line_values"
}

// VariantValueModel pins one attribute value on a variant.
type VariantValueModel struct {
	VariantID   uuid.UUID `gorm:"type:uuid;primary_key"`
	AttributeID uuid.UUID `gorm:"type:uuid;primary_key"`
	ValueID     uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (VariantValueModel) TableName() string {
	return "product_variant_values"
}

// PricelistItemModel is one variant price on a price list.
type PricelistItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PricelistID uuid.UUID       `gorm:"type:uuid;not null;index:idx_pricelist_item_list_variant,unique,priority:1"`
	VariantID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_pricelist_item_list_variant,unique,priority:2"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PricelistItemModel) TableName() string {
	return "pricelist_items"
}

// StockQuantModel holds the stock levels of one variant in one warehouse.
type StockQuantModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	VariantID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_quant_variant_warehouse,unique,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_quant_variant_warehouse,unique,priority:2"`
	OnHand      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	Free        decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	Forecast    decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockQuantModel) TableName() string {
	return "stock_quants"
}
