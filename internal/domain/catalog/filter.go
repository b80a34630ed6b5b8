package catalog

import "errors"

// FilterOperator is a comparison operator usable in a template filter.
type FilterOperator string

const (
	FilterOpEquals    FilterOperator = "eq"
	FilterOpNotEquals FilterOperator = "neq"
	FilterOpIn        FilterOperator = "in"
	FilterOpNotIn     FilterOperator = "not_in"
	FilterOpContains  FilterOperator = "contains"
)

// IsValid returns true if the operator is one of the supported operators.
func (o FilterOperator) IsValid() bool {
	switch o {
	case FilterOpEquals, FilterOpNotEquals, FilterOpIn, FilterOpNotIn, FilterOpContains:
		return true
	default:
		return false
	}
}

// Filterable template fields. The persistence layer maps these onto columns;
// anything outside this set is rejected up front.
const (
	FilterFieldName       = "name"
	FilterFieldCategoryID = "category_id"
	FilterFieldBarcode    = "barcode"
	FilterFieldSaleOK     = "sale_ok"
	FilterFieldActive     = "active"
)

var ErrInvalidFilter = errors.New("catalog: invalid template filter")

// FilterCondition is one (field, operator, values) clause of a template
// filter. Conditions are combined with AND.
type FilterCondition struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Values   []string       `json:"values"`
}

// TemplateFilter restricts which templates are in scope for an instance.
// It replaces free-form filter expressions with a small structured form that
// can be validated and translated to a query without dynamic evaluation.
type TemplateFilter struct {
	Conditions []FilterCondition `json:"conditions"`
}

// Validate checks every condition against the supported fields and operators.
func (f TemplateFilter) Validate() error {
	for _, c := range f.Conditions {
		switch c.Field {
		case FilterFieldName, FilterFieldCategoryID, FilterFieldBarcode,
			FilterFieldSaleOK, FilterFieldActive:
		default:
			return ErrInvalidFilter
		}
		if !c.Operator.IsValid() {
			return ErrInvalidFilter
		}
		if len(c.Values) == 0 {
			return ErrInvalidFilter
		}
	}
	return nil
}

// IsEmpty returns true when the filter has no conditions, meaning every
// template is in scope.
func (f TemplateFilter) IsEmpty() bool {
	return len(f.Conditions) == 0
}
