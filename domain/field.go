package domain

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
	FieldTypeProduct  FieldType = "product"
)

var AllFieldTypes []FieldType = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeTextarea,
	FieldTypeCheckbox,
	FieldTypeSelect,
	FieldTypeProduct,
}

func IsValidFieldType(s string) bool {
	for _, t := range AllFieldTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

type FieldWidth string

const (
	FieldWidthHalf FieldWidth = "half"
	FieldWidthFull FieldWidth = "full"
)

// Field is one input definition within a workflow step. Name is the key under
// which submitted values are stored; it is assumed unique within a step but
// not validated. Options are only meaningful for select fields.
type Field struct {
	Id       string     `json:"id"`
	Name     string     `json:"name"`
	Label    string     `json:"label"`
	Type     FieldType  `json:"type"`
	Required bool       `json:"required"`
	Width    FieldWidth `json:"width"`
	Options  []string   `json:"options,omitempty"`
}

// ProductItem is the value shape for product-type fields: stored values are
// always a list of these pairs, never a scalar.
type ProductItem struct {
	ProductId string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
