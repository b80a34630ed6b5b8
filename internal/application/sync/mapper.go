package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
)

// EntityMapper translates catalog entities into their remote wire form for
// one instance and one run. Category, attribute and term dependencies are
// resolved through the mapping cache and created remotely on demand, so a
// product payload never references an id the storefront does not know.
type EntityMapper struct {
	instance *storefront.Instance
	gateway  storefront.Gateway
	cache    *storefront.MappingCache
	catalog  catalog.Repository
	mappings storefront.MappingRepository
	// imageBaseURL is the public root under which product images are served,
	// empty when image export is disabled
	imageBaseURL string
}

// NewEntityMapper creates a mapper bound to one instance, gateway and cache.
func NewEntityMapper(
	instance *storefront.Instance,
	gateway storefront.Gateway,
	cache *storefront.MappingCache,
	catalogRepo catalog.Repository,
	mappings storefront.MappingRepository,
	imageBaseURL string,
) *EntityMapper {
	return &EntityMapper{
		instance:     instance,
		gateway:      gateway,
		cache:        cache,
		catalog:      catalogRepo,
		mappings:     mappings,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// ---------------------------------------------------------------------------
// Taxonomy resolution
// ---------------------------------------------------------------------------

// EnsureCategory resolves the remote id of a local category, creating the
// category and its ancestors remotely when missing. Parents are resolved
// first so the remote tree mirrors the local one.
func (m *EntityMapper) EnsureCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	if remoteID, ok := m.cache.Categories[categoryID]; ok {
		return remoteID, nil
	}

	category, err := m.catalog.GetCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}

	var remoteParentID int64
	if category.ParentID != nil {
		remoteParentID, err = m.EnsureCategory(ctx, *category.ParentID)
		if err != nil {
			return 0, err
		}
	}

	remoteID, err := m.gateway.CreateCategory(ctx, category.Name, remoteParentID)
	if err != nil {
		// Creation races with an existing remote category of the same name;
		// adopt it when the lookup finds one.
		existingID, findErr := m.gateway.FindCategoryByName(ctx, category.Name, remoteParentID)
		if findErr != nil || existingID == 0 {
			return 0, fmt.Errorf("create category %q: %w", category.Name, err)
		}
		remoteID = existingID
	}

	mapping, err := storefront.NewCategoryMapping(m.instance.ID, categoryID, remoteID)
	if err != nil {
		return 0, err
	}
	if err := m.mappings.SaveCategoryMapping(ctx, mapping); err != nil {
		return 0, err
	}
	m.cache.Categories[categoryID] = remoteID
	return remoteID, nil
}

// EnsureAttribute resolves the remote id of a local attribute, creating it
// remotely when missing.
func (m *EntityMapper) EnsureAttribute(ctx context.Context, attribute catalog.Attribute) (int64, error) {
	if remoteID, ok := m.cache.Attributes[attribute.ID]; ok {
		return remoteID, nil
	}

	remoteID, err := m.gateway.CreateAttribute(ctx, attribute.Name)
	if err != nil {
		existingID, findErr := m.gateway.FindAttributeByName(ctx, attribute.Name)
		if findErr != nil || existingID == 0 {
			return 0, fmt.Errorf("create attribute %q: %w", attribute.Name, err)
		}
		remoteID = existingID
	}

	mapping, err := storefront.NewAttributeMapping(m.instance.ID, attribute.ID, remoteID)
	if err != nil {
		return 0, err
	}
	if err := m.mappings.SaveAttributeMapping(ctx, mapping); err != nil {
		return 0, err
	}
	m.cache.Attributes[attribute.ID] = remoteID
	return remoteID, nil
}

// EnsureAttributeValue resolves the remote term id of a local attribute
// value under its remote attribute, creating the term when missing.
func (m *EntityMapper) EnsureAttributeValue(ctx context.Context, remoteAttributeID int64, value catalog.AttributeValue) (int64, error) {
	if remoteID, ok := m.cache.Terms[value.ID]; ok {
		return remoteID, nil
	}

	remoteID, err := m.gateway.CreateTerm(ctx, remoteAttributeID, value.Name)
	if err != nil {
		existingID, findErr := m.gateway.FindTermByName(ctx, remoteAttributeID, value.Name)
		if findErr != nil || existingID == 0 {
			return 0, fmt.Errorf("create term %q: %w", value.Name, err)
		}
		remoteID = existingID
	}

	mapping, err := storefront.NewAttributeValueMapping(m.instance.ID, value.ID, remoteID, remoteAttributeID)
	if err != nil {
		return 0, err
	}
	if err := m.mappings.SaveAttributeValueMapping(ctx, mapping); err != nil {
		return 0, err
	}
	m.cache.Terms[value.ID] = remoteID
	return remoteID, nil
}

// ---------------------------------------------------------------------------
// Product payloads
// ---------------------------------------------------------------------------

// BuildProduct assembles the full remote payload for a template. Simple
// products carry price, stock and SKU directly; variable products carry their
// attribute axes instead, with prices and stock living on the variations.
func (m *EntityMapper) BuildProduct(ctx context.Context, template *catalog.Template) (*storefront.RemoteProduct, error) {
	product := &storefront.RemoteProduct{
		Name:             template.Name,
		Description:      template.Description,
		ShortDescription: template.ShortDescription,
		Status:           m.instance.DefaultStatus,
	}
	if !template.Weight.IsZero() {
		product.Weight = template.Weight.String()
	}

	if template.CategoryID != nil {
		remoteCategoryID, err := m.EnsureCategory(ctx, *template.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryIDs = []int64{remoteCategoryID}
	}

	if m.imageBaseURL != "" && template.HasImage {
		product.Images = []storefront.RemoteImage{{
			Src:      fmt.Sprintf("%s/products/%s/image", m.imageBaseURL, template.ID),
			Position: 0,
		}}
	}

	if template.IsVariable() {
		product.Type = storefront.RemoteProductVariable
		for i, line := range template.AttributeLines {
			remoteAttributeID, err := m.EnsureAttribute(ctx, line.Attribute)
			if err != nil {
				return nil, err
			}
			options := make([]string, 0, len(line.Values))
			for _, value := range line.Values {
				if _, err := m.EnsureAttributeValue(ctx, remoteAttributeID, value); err != nil {
					return nil, err
				}
				options = append(options, value.Name)
			}
			product.Attributes = append(product.Attributes, storefront.RemoteAttributeLine{
				ID:        remoteAttributeID,
				Name:      line.Attribute.Name,
				Position:  i,
				Visible:   true,
				Variation: true,
				Options:   options,
			})
		}
		return product, nil
	}

	product.Type = storefront.RemoteProductSimple
	variant := template.FirstVariant()
	if variant == nil {
		return product, nil
	}

	price, err := m.catalog.VariantPrice(ctx, variant.ID, m.instance.PricelistID)
	if err != nil {
		return nil, err
	}
	stock, err := m.catalog.VariantStock(ctx, variant.ID, m.instance.StockPolicy())
	if err != nil {
		return nil, err
	}

	product.SKU = variant.SKU()
	product.RegularPrice = price.StringFixed(2)
	product.ManageStock = true
	product.StockQuantity = stock
	if !variant.Weight.IsZero() {
		product.Weight = variant.Weight.String()
	}
	return product, nil
}

// BuildVariation assembles the remote payload for one variant of a variable
// template. remoteVariationID is zero for creations.
func (m *EntityMapper) BuildVariation(ctx context.Context, template *catalog.Template, variant *catalog.Variant, remoteVariationID int64) (*storefront.RemoteVariation, error) {
	price, err := m.catalog.VariantPrice(ctx, variant.ID, m.instance.PricelistID)
	if err != nil {
		return nil, err
	}
	stock, err := m.catalog.VariantStock(ctx, variant.ID, m.instance.StockPolicy())
	if err != nil {
		return nil, err
	}

	variation := &storefront.RemoteVariation{
		ID:            remoteVariationID,
		RegularPrice:  price.StringFixed(2),
		SKU:           variant.SKU(),
		ManageStock:   true,
		StockQuantity: stock,
	}
	if !variant.Weight.IsZero() {
		variation.Weight = variant.Weight.String()
	} else if !template.Weight.IsZero() {
		variation.Weight = template.Weight.String()
	}

	for _, selection := range variant.Selections {
		remoteAttributeID := m.cache.Attributes[selection.AttributeID]
		variation.Attributes = append(variation.Attributes, storefront.RemoteVariationAttribute{
			ID:     remoteAttributeID,
			Name:   selection.AttributeName,
			Option: selection.ValueName,
		})
	}
	return variation, nil
}
