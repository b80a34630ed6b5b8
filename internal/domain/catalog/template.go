package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Template represents a sellable product definition. A template expands into
// one or more Variants through its attribute lines; a template without
// attribute lines has exactly one variant.
type Template struct {
	// ID is the unique identifier of the template
	ID uuid.UUID
	// Name is the display name of the product
	Name string
	// Description is the long product description
	Description string
	// ShortDescription is the sales description shown in listings
	ShortDescription string
	// Barcode is the template-level barcode (EAN/UPC), may be empty
	Barcode string
	// InternalCode is the internal reference code, may be empty
	InternalCode string
	// Weight is the product weight
	Weight decimal.Decimal
	// CategoryID points to the product category, nil when uncategorized
	CategoryID *uuid.UUID
	// HasImage indicates whether a primary image is stored for this template
	HasImage bool
	// Active is false when the template has been archived
	Active bool
	// AttributeLines are the attribute axes this template varies on,
	// in declaration order
	AttributeLines []AttributeLine
	// Variants are the concrete sellable units of this template
	Variants []Variant
}

// IsVariable reports whether the template maps to a variable remote product:
// it must carry at least one attribute line and expand into more than one
// variant. A single-variant template keeps its attribute metadata locally but
// is pushed as a simple product.
func (t *Template) IsVariable() bool {
	return len(t.AttributeLines) > 0 && len(t.Variants) > 1
}

// FirstVariant returns the template's first variant, or nil when the template
// has none.
func (t *Template) FirstVariant() *Variant {
	if len(t.Variants) == 0 {
		return nil
	}
	return &t.Variants[0]
}

// CandidateSKUs returns every non-empty barcode and internal code carried by
// the template and its variants, deduplicated. These are the keys a remote
// record could be matched on.
func (t *Template) CandidateSKUs() []string {
	seen := make(map[string]struct{})
	skus := make([]string, 0, 2+2*len(t.Variants))
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		skus = append(skus, s)
	}
	add(t.Barcode)
	add(t.InternalCode)
	for _, v := range t.Variants {
		add(v.Barcode)
		add(v.InternalCode)
	}
	return skus
}

// Variant represents one concrete sellable unit (a single SKU) of a template.
type Variant struct {
	// ID is the unique identifier of the variant
	ID uuid.UUID
	// TemplateID is the owning template
	TemplateID uuid.UUID
	// Barcode is the variant barcode, may be empty
	Barcode string
	// InternalCode is the internal reference code, may be empty
	InternalCode string
	// Weight is the variant weight
	Weight decimal.Decimal
	// Active is false when the variant has been archived
	Active bool
	// Selections are the attribute values that identify this variant,
	// one per attribute line of the template
	Selections []VariantSelection
}

// SKU returns the identifier pushed to the remote side: the barcode when
// present, otherwise the internal code, otherwise an empty string.
func (v *Variant) SKU() string {
	if s := strings.TrimSpace(v.Barcode); s != "" {
		return s
	}
	return strings.TrimSpace(v.InternalCode)
}

// VariantSelection pins one attribute of a variant to a concrete value.
type VariantSelection struct {
	// AttributeID is the attribute axis
	AttributeID uuid.UUID
	// AttributeName is the display name of the attribute
	AttributeName string
	// ValueID is the selected attribute value
	ValueID uuid.UUID
	// ValueName is the display name of the selected value
	ValueName string
}

// AttributeLine binds a template to one attribute and the subset of its
// values the template uses. Line order is significant and stable.
type AttributeLine struct {
	// Attribute is the attribute axis of this line
	Attribute Attribute
	// Values are the attribute values used by this line, in order
	Values []AttributeValue
}

// Attribute is one axis of the attribute taxonomy (e.g. Color, Size).
type Attribute struct {
	ID   uuid.UUID
	Name string
}

// AttributeValue is one value of an attribute (e.g. Red, XL).
type AttributeValue struct {
	ID   uuid.UUID
	Name string
}

// Category is a node of the product category tree.
type Category struct {
	// ID is the unique identifier of the category
	ID uuid.UUID
	// Name is the category display name
	Name string
	// ParentID is nil for root categories
	ParentID *uuid.UUID
}
