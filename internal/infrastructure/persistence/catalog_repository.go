package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormCatalogRepository implements the read side of the local product catalog
// using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

var _ catalog.Repository = (*GormCatalogRepository)(nil)

// filterColumns maps filterable template fields onto columns. Anything
// outside this map is rejected before it reaches SQL.
var filterColumns = map[string]string{
	catalog.FilterFieldName:       "name",
	catalog.FilterFieldCategoryID: "category_id",
	catalog.FilterFieldBarcode:    "barcode",
	catalog.FilterFieldSaleOK:     "sale_ok",
	catalog.FilterFieldActive:     "active",
}

// ListTemplateIDs returns the ids of templates matching the filter, ordered
// by name then id for a stable chunk walk
func (r *GormCatalogRepository) ListTemplateIDs(ctx context.Context, filter catalog.TemplateFilter, includeArchived bool) ([]uuid.UUID, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := dbFromContext(ctx, r.db).Model(&models.ProductTemplateModel{})
	if !includeArchived {
		query = query.Where("active = ?", true)
	}
	for _, cond := range filter.Conditions {
		var err error
		query, err = applyFilterCondition(query, cond)
		if err != nil {
			return nil, err
		}
	}

	var ids []uuid.UUID
	if err := query.Order("name ASC, id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func applyFilterCondition(query *gorm.DB, cond catalog.FilterCondition) (*gorm.DB, error) {
	column, ok := filterColumns[cond.Field]
	if !ok {
		return nil, catalog.ErrInvalidFilter
	}
	values, err := filterValues(cond)
	if err != nil {
		return nil, err
	}

	switch cond.Operator {
	case catalog.FilterOpEquals:
		return query.Where(column+" = ?", values[0]), nil
	case catalog.FilterOpNotEquals:
		return query.Where(column+" <> ?", values[0]), nil
	case catalog.FilterOpIn:
		return query.Where(column+" IN ?", values), nil
	case catalog.FilterOpNotIn:
		return query.Where(column+" NOT IN ?", values), nil
	case catalog.FilterOpContains:
		pattern, ok := values[0].(string)
		if !ok {
			return nil, catalog.ErrInvalidFilter
		}
		return query.Where(column+" LIKE ?", "%"+pattern+"%"), nil
	default:
		return nil, catalog.ErrInvalidFilter
	}
}

// filterValues converts condition values into properly typed bind
// parameters: uuids for category_id, booleans for sale_ok and active
func filterValues(cond catalog.FilterCondition) ([]interface{}, error) {
	values := make([]interface{}, 0, len(cond.Values))
	for _, raw := range cond.Values {
		switch cond.Field {
		case catalog.FilterFieldCategoryID:
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: bad category id %q", catalog.ErrInvalidFilter, raw)
			}
			values = append(values, id)
		case catalog.FilterFieldSaleOK, catalog.FilterFieldActive:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: bad boolean %q", catalog.ErrInvalidFilter, raw)
			}
			values = append(values, b)
		default:
			values = append(values, raw)
		}
	}
	if len(values) == 0 {
		return nil, catalog.ErrInvalidFilter
	}
	return values, nil
}

// GetTemplates loads the given templates with attribute lines, variants and
// variant selections assembled. Missing ids are skipped.
func (r *GormCatalogRepository) GetTemplates(ctx context.Context, ids []uuid.UUID) ([]catalog.Template, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := dbFromContext(ctx, r.db)

	// Same ordering as ListTemplateIDs, so chunk processing order does not
	// depend on the database.
	var templateModels []models.ProductTemplateModel
	if err := db.Where("id IN ?", ids).Order("name ASC, id ASC").Find(&templateModels).Error; err != nil {
		return nil, err
	}
	if len(templateModels) == 0 {
		return nil, nil
	}

	foundIDs := make([]uuid.UUID, len(templateModels))
	for i, m := range templateModels {
		foundIDs[i] = m.ID
	}

	lines, lineValues, err := r.loadAttributeLines(db, foundIDs)
	if err != nil {
		return nil, err
	}
	variantModels, variantValues, err := r.loadVariants(db, foundIDs)
	if err != nil {
		return nil, err
	}
	attributes, attributeValues, err := r.loadTaxonomy(db, lines, lineValues, variantValues)
	if err != nil {
		return nil, err
	}

	templates := make([]catalog.Template, 0, len(templateModels))
	for _, m := range templateModels {
		template := catalog.Template{
			ID:               m.ID,
			Name:             m.Name,
			Description:      m.Description,
			ShortDescription: m.ShortDescription,
			Barcode:          m.Barcode,
			InternalCode:     m.InternalCode,
			Weight:           m.Weight,
			CategoryID:       m.CategoryID,
			HasImage:         m.HasImage,
			Active:           m.Active,
		}
		for _, line := range lines[m.ID] {
			attr, ok := attributes[line.AttributeID]
			if !ok {
				continue
			}
			domainLine := catalog.AttributeLine{Attribute: attr}
			for _, lv := range lineValues[line.ID] {
				if value, ok := attributeValues[lv.ValueID]; ok {
					domainLine.Values = append(domainLine.Values, catalog.AttributeValue{ID: value.ID, Name: value.Name})
				}
			}
			template.AttributeLines = append(template.AttributeLines, domainLine)
		}
		for _, vm := range variantModels[m.ID] {
			variant := catalog.Variant{
				ID:           vm.ID,
				TemplateID:   vm.TemplateID,
				Barcode:      vm.Barcode,
				InternalCode: vm.InternalCode,
				Weight:       vm.Weight,
				Active:       vm.Active,
			}
			for _, vv := range variantValues[vm.ID] {
				attr, okAttr := attributes[vv.AttributeID]
				value, okValue := attributeValues[vv.ValueID]
				if !okAttr || !okValue {
					continue
				}
				variant.Selections = append(variant.Selections, catalog.VariantSelection{
					AttributeID:   attr.ID,
					AttributeName: attr.Name,
					ValueID:       value.ID,
					ValueName:     value.Name,
				})
			}
			template.Variants = append(template.Variants, variant)
		}
		templates = append(templates, template)
	}
	return templates, nil
}

// GetTemplate loads a single template with lines and variants populated
func (r *GormCatalogRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*catalog.Template, error) {
	templates, err := r.GetTemplates(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, catalog.ErrTemplateNotFound
	}
	return &templates[0], nil
}

// GetCategory loads a single category node
func (r *GormCatalogRepository) GetCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.ProductCategoryModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// VariantPrice resolves the exported price of a variant. A pricelist entry
// wins over the variant's list price; a nil pricelist id or a pricelist with
// no entry for the variant falls back to the list price.
func (r *GormCatalogRepository) VariantPrice(ctx context.Context, variantID uuid.UUID, pricelistID *uuid.UUID) (decimal.Decimal, error) {
	db := dbFromContext(ctx, r.db)

	if pricelistID != nil {
		var item models.PricelistItemModel
		err := db.Where("pricelist_id = ? AND variant_id = ?", *pricelistID, variantID).First(&item).Error
		if err == nil {
			return item.Price, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, err
		}
	}

	var variant models.ProductVariantModel
	if err := db.Select("list_price").Where("id = ?", variantID).First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, catalog.ErrTemplateNotFound
		}
		return decimal.Zero, err
	}
	return variant.ListPrice, nil
}

// VariantStock sums the policy metric over the variant's stock quants,
// restricted to the policy's warehouses when it names any. Fractional
// quantities are truncated toward zero.
func (r *GormCatalogRepository) VariantStock(ctx context.Context, variantID uuid.UUID, policy catalog.StockPolicy) (int, error) {
	column, err := stockMetricColumn(policy.Metric)
	if err != nil {
		return 0, err
	}

	query := dbFromContext(ctx, r.db).
		Model(&models.StockQuantModel{}).
		Where("variant_id = ?", variantID)
	if policy.Source == catalog.StockSourceWarehouses {
		if len(policy.WarehouseIDs) == 0 {
			return 0, nil
		}
		query = query.Where("warehouse_id IN ?", policy.WarehouseIDs)
	}

	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&result).Error; err != nil {
		return 0, err
	}
	return int(result.Total.IntPart()), nil
}

func stockMetricColumn(metric catalog.StockMetric) (string, error) {
	switch metric {
	case catalog.StockMetricOnHand:
		return "on_hand", nil
	case catalog.StockMetricFree, "":
		return "free", nil
	case catalog.StockMetricForecast:
		return "forecast", nil
	default:
		return "", fmt.Errorf("unknown stock metric %q", metric)
	}
}

// MarkImagePullPending flags a template as awaiting an image pull from the
// remote side
func (r *GormCatalogRepository) MarkImagePullPending(ctx context.Context, templateID uuid.UUID) error {
	return dbFromContext(ctx, r.db).
		Model(&models.ProductTemplateModel{}).
		Where("id = ?", templateID).
		Update("image_pull_pending", true).Error
}

// -----------------------------------------------------------------------------
// Template assembly
// -----------------------------------------------------------------------------

func (r *GormCatalogRepository) loadAttributeLines(db *gorm.DB, templateIDs []uuid.UUID) (map[uuid.UUID][]models.TemplateAttributeLineModel, map[uuid.UUID][]models.TemplateAttributeLineValueModel, error) {
	var lineModels []models.TemplateAttributeLineModel
	if err := db.Where("template_id IN ?", templateIDs).
		Order("position ASC").
		Find(&lineModels).Error; err != nil {
		return nil, nil, err
	}

	lines := make(map[uuid.UUID][]models.TemplateAttributeLineModel)
	lineIDs := make([]uuid.UUID, 0, len(lineModels))
	for _, line := range lineModels {
		lines[line.TemplateID] = append(lines[line.TemplateID], line)
		lineIDs = append(lineIDs, line.ID)
	}

	lineValues := make(map[uuid.UUID][]models.TemplateAttributeLineValueModel)
	if len(lineIDs) > 0 {
		var valueModels []models.TemplateAttributeLineValueModel
		if err := db.Where("line_id IN ?", lineIDs).
			Order("sort_order ASC").
			Find(&valueModels).Error; err != nil {
			return nil, nil, err
		}
		for _, lv := range valueModels {
			lineValues[lv.LineID] = append(lineValues[lv.LineID], lv)
		}
	}
	return lines, lineValues, nil
}

func (r *GormCatalogRepository) loadVariants(db *gorm.DB, templateIDs []uuid.UUID) (map[uuid.UUID][]models.ProductVariantModel, map[uuid.UUID][]models.VariantValueModel, error) {
	var variantModels []models.ProductVariantModel
	if err := db.Where("template_id IN ? AND active = ?", templateIDs, true).
		Order("sort_order ASC, created_at ASC").
		Find(&variantModels).Error; err != nil {
		return nil, nil, err
	}

	variants := make(map[uuid.UUID][]models.ProductVariantModel)
	variantIDs := make([]uuid.UUID, 0, len(variantModels))
	for _, v := range variantModels {
		variants[v.TemplateID] = append(variants[v.TemplateID], v)
		variantIDs = append(variantIDs, v.ID)
	}

	variantValues := make(map[uuid.UUID][]models.VariantValueModel)
	if len(variantIDs) > 0 {
		var valueModels []models.VariantValueModel
		if err := db.Where("variant_id IN ?", variantIDs).Find(&valueModels).Error; err != nil {
			return nil, nil, err
		}
		for _, vv := range valueModels {
			variantValues[vv.VariantID] = append(variantValues[vv.VariantID], vv)
		}
	}
	return variants, variantValues, nil
}

// taxonomyValue carries an attribute value together with its owning attribute
type taxonomyValue struct {
	ID          uuid.UUID
	AttributeID uuid.UUID
	Name        string
}

func (r *GormCatalogRepository) loadTaxonomy(
	db *gorm.DB,
	lines map[uuid.UUID][]models.TemplateAttributeLineModel,
	lineValues map[uuid.UUID][]models.TemplateAttributeLineValueModel,
	variantValues map[uuid.UUID][]models.VariantValueModel,
) (map[uuid.UUID]catalog.Attribute, map[uuid.UUID]taxonomyValue, error) {
	attributeIDs := make(map[uuid.UUID]struct{})
	valueIDs := make(map[uuid.UUID]struct{})
	for _, templateLines := range lines {
		for _, line := range templateLines {
			attributeIDs[line.AttributeID] = struct{}{}
		}
	}
	for _, lvs := range lineValues {
		for _, lv := range lvs {
			valueIDs[lv.ValueID] = struct{}{}
		}
	}
	for _, vvs := range variantValues {
		for _, vv := range vvs {
			attributeIDs[vv.AttributeID] = struct{}{}
			valueIDs[vv.ValueID] = struct{}{}
		}
	}

	attributes := make(map[uuid.UUID]catalog.Attribute, len(attributeIDs))
	if len(attributeIDs) > 0 {
		var attrModels []models.ProductAttributeModel
		if err := db.Where("id IN ?", keys(attributeIDs)).Find(&attrModels).Error; err != nil {
			return nil, nil, err
		}
		for _, a := range attrModels {
			attributes[a.ID] = catalog.Attribute{ID: a.ID, Name: a.Name}
		}
	}

	values := make(map[uuid.UUID]taxonomyValue, len(valueIDs))
	if len(valueIDs) > 0 {
		var valueModels []models.ProductAttributeValueModel
		if err := db.Where("id IN ?", keys(valueIDs)).Find(&valueModels).Error; err != nil {
			return nil, nil, err
		}
		for _, v := range valueModels {
			values[v.ID] = taxonomyValue{ID: v.ID, AttributeID: v.AttributeID, Name: v.Name}
		}
	}
	return attributes, values, nil
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
