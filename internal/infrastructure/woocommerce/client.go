package woocommerce

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/storefront"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Client implements the storefront gateway against the WooCommerce REST API.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a WooCommerce client with the given configuration.
func NewClient(config *ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport
	if !config.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   time.Duration(config.TimeoutSeconds) * time.Second,
			Transport: transport,
		},
	}, nil
}

// Factory builds a client per storefront instance.
type Factory struct{}

// NewFactory creates a gateway factory.
func NewFactory() *Factory {
	return &Factory{}
}

// ForInstance builds a gateway bound to the instance credentials.
func (f *Factory) ForInstance(instance *storefront.Instance) (storefront.Gateway, error) {
	return NewClient(ConfigFromInstance(instance))
}

var (
	_ storefront.Gateway        = (*Client)(nil)
	_ storefront.GatewayFactory = (*Factory)(nil)
)

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

// TestConnection probes the products endpoint with a minimal request.
func (c *Client) TestConnection(ctx context.Context) error {
	query := url.Values{}
	query.Set("per_page", "1")
	query.Set("_fields", "id")
	_, err := c.doRequest(ctx, http.MethodGet, "/products", query, nil)
	return err
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// ListProducts returns one page of the product listing, restricted to the
// fields reconciliation needs.
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]storefront.RemoteProductSummary, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("_fields", "id,sku,type")
	query.Set("status", "any")

	body, err := c.doRequest(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	var products []wireProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse product listing: %w", err)
	}
	return summariesFromWire(products), nil
}

// FindProductsBySKU returns the products whose SKU equals the given value.
func (c *Client) FindProductsBySKU(ctx context.Context, sku string) ([]storefront.RemoteProductSummary, error) {
	query := url.Values{}
	query.Set("sku", sku)
	query.Set("_fields", "id,sku,type")
	query.Set("status", "any")

	body, err := c.doRequest(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	var products []wireProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse product lookup: %w", err)
	}
	return summariesFromWire(products), nil
}

// CreateProduct creates a product and returns its remote id.
func (c *Client) CreateProduct(ctx context.Context, product *storefront.RemoteProduct) (int64, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/products", nil, wireFromProduct(product))
	if err != nil {
		return 0, err
	}

	var created wireProduct
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse created product: %w", err)
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("woocommerce: create product returned no id")
	}
	return created.ID, nil
}

// UpdateProduct pushes the full product payload onto an existing product.
func (c *Client) UpdateProduct(ctx context.Context, remoteProductID int64, product *storefront.RemoteProduct) error {
	path := fmt.Sprintf("/products/%d", remoteProductID)
	_, err := c.doRequest(ctx, http.MethodPut, path, nil, wireFromProduct(product))
	return err
}

// UpdateProductStatus changes only the publication status of a product.
func (c *Client) UpdateProductStatus(ctx context.Context, remoteProductID int64, status storefront.RemoteStatus) error {
	path := fmt.Sprintf("/products/%d", remoteProductID)
	payload := struct {
		Status string `json:"status"`
	}{Status: string(status)}
	_, err := c.doRequest(ctx, http.MethodPut, path, nil, payload)
	return err
}

// BatchUpdateProducts bulk-updates price and stock of simple products.
func (c *Client) BatchUpdateProducts(ctx context.Context, updates []storefront.ProductBatchUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	request := wireProductBatchRequest{Update: make([]wireProduct, 0, len(updates))}
	for _, u := range updates {
		quantity := u.StockQuantity
		request.Update = append(request.Update, wireProduct{
			ID:            u.ID,
			RegularPrice:  u.RegularPrice,
			ManageStock:   u.ManageStock,
			StockQuantity: &quantity,
		})
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/products/batch", nil, request)
	return err
}

// ---------------------------------------------------------------------------
// Variations
// ---------------------------------------------------------------------------

// ListVariations returns one page of a product's variations.
func (c *Client) ListVariations(ctx context.Context, remoteProductID int64, page, perPage int) ([]storefront.RemoteVariation, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	path := fmt.Sprintf("/products/%d/variations", remoteProductID)
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var variations []wireVariation
	if err := json.Unmarshal(body, &variations); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse variations: %w", err)
	}
	result := make([]storefront.RemoteVariation, 0, len(variations))
	for _, v := range variations {
		result = append(result, variationFromWire(v))
	}
	return result, nil
}

// BatchVariations submits a create/update/delete batch against a product's
// variations. Items that failed inside a successful batch come back with a
// zero id so the caller can skip their mappings.
func (c *Client) BatchVariations(ctx context.Context, remoteProductID int64, batch storefront.VariationBatch) (*storefront.VariationBatchResult, error) {
	request := wireVariationBatchRequest{Delete: batch.Delete}
	for _, v := range batch.Create {
		request.Create = append(request.Create, wireFromVariation(v))
	}
	for _, v := range batch.Update {
		request.Update = append(request.Update, wireFromVariation(v))
	}

	path := fmt.Sprintf("/products/%d/variations/batch", remoteProductID)
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, request)
	if err != nil {
		return nil, err
	}

	var response wireVariationBatchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse batch response: %w", err)
	}

	result := &storefront.VariationBatchResult{}
	for _, v := range response.Create {
		if v.Error != nil {
			v.ID = 0
		}
		result.Created = append(result.Created, variationFromWire(v))
	}
	for _, v := range response.Update {
		if v.Error != nil {
			v.ID = 0
		}
		result.Updated = append(result.Updated, variationFromWire(v))
	}
	for _, v := range response.Delete {
		if v.Error != nil || v.ID == 0 {
			continue
		}
		result.Deleted = append(result.Deleted, v.ID)
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Categories, attributes, terms
// ---------------------------------------------------------------------------

// CreateCategory creates a category under the given remote parent.
func (c *Client) CreateCategory(ctx context.Context, name string, remoteParentID int64) (int64, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/products/categories", nil, wireCategory{
		Name:   name,
		Parent: remoteParentID,
	})
	if err != nil {
		return 0, err
	}
	var created wireCategory
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse created category: %w", err)
	}
	return created.ID, nil
}

// FindCategoryByName searches categories under a parent and returns the id
// of the exact name match, zero when none exists.
func (c *Client) FindCategoryByName(ctx context.Context, name string, remoteParentID int64) (int64, error) {
	query := url.Values{}
	query.Set("search", name)
	query.Set("parent", strconv.FormatInt(remoteParentID, 10))
	query.Set("per_page", "100")

	body, err := c.doRequest(ctx, http.MethodGet, "/products/categories", query, nil)
	if err != nil {
		return 0, err
	}
	var categories []wireCategory
	if err := json.Unmarshal(body, &categories); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse categories: %w", err)
	}
	for _, category := range categories {
		if strings.EqualFold(category.Name, name) {
			return category.ID, nil
		}
	}
	return 0, nil
}

// CreateAttribute creates a global product attribute.
func (c *Client) CreateAttribute(ctx context.Context, name string) (int64, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/products/attributes", nil, wireAttributeDef{
		Name: name,
		Type: "select",
	})
	if err != nil {
		return 0, err
	}
	var created wireAttributeDef
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse created attribute: %w", err)
	}
	return created.ID, nil
}

// FindAttributeByName returns the id of the attribute with the exact name,
// zero when none exists. The attributes endpoint has no search parameter, so
// the full listing is scanned.
func (c *Client) FindAttributeByName(ctx context.Context, name string) (int64, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/products/attributes", nil, nil)
	if err != nil {
		return 0, err
	}
	var attributes []wireAttributeDef
	if err := json.Unmarshal(body, &attributes); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse attributes: %w", err)
	}
	for _, attribute := range attributes {
		if strings.EqualFold(attribute.Name, name) {
			return attribute.ID, nil
		}
	}
	return 0, nil
}

// CreateTerm creates a term under a global attribute.
func (c *Client) CreateTerm(ctx context.Context, remoteAttributeID int64, name string) (int64, error) {
	path := fmt.Sprintf("/products/attributes/%d/terms", remoteAttributeID)
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, wireTerm{Name: name})
	if err != nil {
		return 0, err
	}
	var created wireTerm
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse created term: %w", err)
	}
	return created.ID, nil
}

// FindTermByName returns the id of the attribute term with the exact name,
// zero when none exists.
func (c *Client) FindTermByName(ctx context.Context, remoteAttributeID int64, name string) (int64, error) {
	query := url.Values{}
	query.Set("search", name)
	query.Set("per_page", "100")

	path := fmt.Sprintf("/products/attributes/%d/terms", remoteAttributeID)
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}
	var terms []wireTerm
	if err := json.Unmarshal(body, &terms); err != nil {
		return 0, fmt.Errorf("woocommerce: failed to parse terms: %w", err)
	}
	for _, term := range terms {
		if strings.EqualFold(term.Name, name) {
			return term.ID, nil
		}
	}
	return 0, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doRequest performs one authenticated API call and returns the raw body.
// Non-2xx responses are turned into domain errors: a structured not-found
// maps to storefront.ErrRemoteNotFound, everything else well-formed to a
// RemoteError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.config.ConsumerKey)
	query.Set("consumer_secret", c.config.ConsumerSecret)

	requestURL := c.config.APIBaseURL() + path + "?" + query.Encode()

	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storefront.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.responseError(resp.StatusCode, body)
	}
	return body, nil
}

// responseError classifies a failed response. Only a structured not-found
// becomes ErrRemoteNotFound; transport-level failures and malformed bodies
// never do, so stale-mapping recovery cannot be triggered spuriously.
func (c *Client) responseError(status int, body []byte) error {
	var remote wireError
	if err := json.Unmarshal(body, &remote); err == nil && remote.Code != "" {
		if remote.Data.Status == http.StatusNotFound || isNotFoundCode(remote.Code) {
			return fmt.Errorf("%w: %s", storefront.ErrRemoteNotFound, remote.Message)
		}
		return &storefront.RemoteError{
			Code:       remote.Code,
			Message:    remote.Message,
			HTTPStatus: status,
		}
	}
	return &storefront.RemoteError{
		Message:    http.StatusText(status),
		HTTPStatus: status,
	}
}

// isNotFoundCode reports whether a WooCommerce error code means the
// referenced record does not exist.
func isNotFoundCode(code string) bool {
	switch code {
	case "woocommerce_rest_product_invalid_id",
		"woocommerce_rest_term_invalid",
		"woocommerce_rest_invalid_id":
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func summariesFromWire(products []wireProduct) []storefront.RemoteProductSummary {
	summaries := make([]storefront.RemoteProductSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, storefront.RemoteProductSummary{
			ID:   p.ID,
			SKU:  p.SKU,
			Type: storefront.RemoteProductType(p.Type),
		})
	}
	return summaries
}

func wireFromProduct(p *storefront.RemoteProduct) wireProduct {
	product := wireProduct{
		Name:             p.Name,
		Type:             string(p.Type),
		Status:           string(p.Status),
		SKU:              p.SKU,
		RegularPrice:     p.RegularPrice,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		ManageStock:      p.ManageStock,
		Weight:           p.Weight,
	}
	if p.ManageStock {
		quantity := p.StockQuantity
		product.StockQuantity = &quantity
	}
	for _, id := range p.CategoryIDs {
		product.Categories = append(product.Categories, wireRef{ID: id})
	}
	for _, img := range p.Images {
		product.Images = append(product.Images, wireImage{Src: img.Src, Position: img.Position})
	}
	for _, attr := range p.Attributes {
		product.Attributes = append(product.Attributes, wireAttribute{
			ID:        attr.ID,
			Name:      attr.Name,
			Position:  attr.Position,
			Visible:   attr.Visible,
			Variation: attr.Variation,
			Options:   attr.Options,
		})
	}
	return product
}

func wireFromVariation(v storefront.RemoteVariation) wireVariation {
	variation := wireVariation{
		ID:           v.ID,
		SKU:          v.SKU,
		RegularPrice: v.RegularPrice,
		ManageStock:  v.ManageStock,
		Weight:       v.Weight,
	}
	if v.ManageStock {
		quantity := v.StockQuantity
		variation.StockQuantity = &quantity
	}
	for _, attr := range v.Attributes {
		variation.Attributes = append(variation.Attributes, wireVariationAttribute{
			ID:     attr.ID,
			Name:   attr.Name,
			Option: attr.Option,
		})
	}
	return variation
}

func variationFromWire(v wireVariation) storefront.RemoteVariation {
	variation := storefront.RemoteVariation{
		ID:           v.ID,
		SKU:          v.SKU,
		RegularPrice: v.RegularPrice,
		ManageStock:  v.ManageStock,
		Weight:       v.Weight,
	}
	if v.StockQuantity != nil {
		variation.StockQuantity = *v.StockQuantity
	}
	for _, attr := range v.Attributes {
		variation.Attributes = append(variation.Attributes, storefront.RemoteVariationAttribute{
			ID:     attr.ID,
			Name:   attr.Name,
			Option: attr.Option,
		})
	}
	return variation
}
