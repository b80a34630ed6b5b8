package woocommerce

// Wire types for the WooCommerce REST API v3. Only the fields the sync engine
// reads or writes are declared; the API tolerates omitted fields.

// wireError is the structured error body WooCommerce returns on failure.
type wireError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Data    wireErrorData `json:"data"`
}

type wireErrorData struct {
	Status int `json:"status"`
}

// wireProduct is a product as sent to and read from /products.
type wireProduct struct {
	ID               int64           `json:"id,omitempty"`
	Name             string          `json:"name,omitempty"`
	Type             string          `json:"type,omitempty"`
	Status           string          `json:"status,omitempty"`
	SKU              string          `json:"sku,omitempty"`
	RegularPrice     string          `json:"regular_price,omitempty"`
	Description      string          `json:"description,omitempty"`
	ShortDescription string          `json:"short_description,omitempty"`
	ManageStock      bool            `json:"manage_stock"`
	StockQuantity    *int            `json:"stock_quantity,omitempty"`
	Weight           string          `json:"weight,omitempty"`
	Categories       []wireRef       `json:"categories,omitempty"`
	Images           []wireImage     `json:"images,omitempty"`
	Attributes       []wireAttribute `json:"attributes,omitempty"`
}

// wireRef references another remote entity by id.
type wireRef struct {
	ID int64 `json:"id"`
}

type wireImage struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

// wireAttribute is one attribute axis on a variable product.
type wireAttribute struct {
	ID        int64    `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options,omitempty"`
}

// wireVariation is a variation as sent to and read from
// /products/{id}/variations.
type wireVariation struct {
	ID            int64                    `json:"id,omitempty"`
	SKU           string                   `json:"sku,omitempty"`
	RegularPrice  string                   `json:"regular_price,omitempty"`
	ManageStock   bool                     `json:"manage_stock"`
	StockQuantity *int                     `json:"stock_quantity,omitempty"`
	Weight        string                   `json:"weight,omitempty"`
	Attributes    []wireVariationAttribute `json:"attributes,omitempty"`
	// Error is set per item in batch responses when that item failed
	Error *wireError `json:"error,omitempty"`
}

type wireVariationAttribute struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Option string `json:"option"`
}

// wireVariationBatchRequest is the body of a variations batch call.
type wireVariationBatchRequest struct {
	Create []wireVariation `json:"create,omitempty"`
	Update []wireVariation `json:"update,omitempty"`
	Delete []int64         `json:"delete,omitempty"`
}

// wireVariationBatchResponse mirrors the batch request legs. Delete entries
// echo the deleted variation.
type wireVariationBatchResponse struct {
	Create []wireVariation `json:"create"`
	Update []wireVariation `json:"update"`
	Delete []wireVariation `json:"delete"`
}

// wireProductBatchRequest is the body of a products batch call. Only the
// update leg is used, for bulk price and stock refreshes.
type wireProductBatchRequest struct {
	Update []wireProduct `json:"update,omitempty"`
}

// wireCategory is a product category node.
type wireCategory struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Parent int64  `json:"parent"`
}

// wireAttributeDef is a global product attribute definition.
type wireAttributeDef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// wireTerm is one term of a global attribute.
type wireTerm struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}
