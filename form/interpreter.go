// Package form interprets a workflow step definition against an order's
// stored data: building render state, validating submissions, and marking
// step completion. The step schema is data, so everything here is a dispatch
// over the closed field-type enum rather than per-kind types.
package form

import (
	"strings"

	"orderdesk/domain"
)

// ProductLookup resolves a product id against the live catalog. Product
// fields always resolve at render time; they are deliberately not
// snapshotted the way proforma items are, so catalog price edits show up
// retroactively on order forms.
type ProductLookup func(productId string) (domain.Product, bool)

// CatalogLookup builds a ProductLookup from a product slice.
func CatalogLookup(products []domain.Product) ProductLookup {
	byId := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byId[p.Id] = p
	}
	return func(productId string) (domain.Product, bool) {
		p, ok := byId[productId]
		return p, ok
	}
}

const (
	errRequired        = "this field is required"
	errProductRequired = "select at least one item"
)

// Interpreter renders and validates one step at a time. Dependencies are
// injected: the catalog lookup for product fields and the completion clock.
type Interpreter struct {
	lookup ProductLookup
	now    func() string
}

func NewInterpreter(lookup ProductLookup) *Interpreter {
	return &Interpreter{
		lookup: lookup,
		now:    domain.NowISO,
	}
}

// FieldView is the render state of one field: the definition plus the current
// stored value, coerced to the shape the field type expects.
type FieldView struct {
	Field   domain.Field `json:"field"`
	Value   any          `json:"value"`
	Options []string     `json:"options,omitempty"`
	Product *ProductView `json:"product,omitempty"`
}

// FormState is the render state of a whole step.
type FormState struct {
	StepId string      `json:"stepId"`
	Fields []FieldView `json:"fields"`
}

// Result is the outcome of a submission. On failure Errors maps field name
// to message and StepsData is nil; on success StepsData is the order's full
// updated steps map with the submitted step stamped complete.
type Result struct {
	OK        bool                        `json:"ok"`
	Errors    map[string]string           `json:"errors,omitempty"`
	StepsData map[string]domain.StepState `json:"stepsData,omitempty"`
}

// Render builds the form state for one step from the order's stored data.
// Stored values the current schema no longer knows about are ignored, and
// fields with no stored value render blank; stale data never errors.
func (it *Interpreter) Render(step domain.Step, order domain.Order) FormState {
	stored := order.StepsData[step.Id].Data

	state := FormState{StepId: step.Id, Fields: make([]FieldView, 0, len(step.Fields))}
	for _, field := range step.Fields {
		view := FieldView{Field: field}
		value := stored[field.Name]

		switch field.Type {
		case domain.FieldTypeCheckbox:
			checked, _ := value.(bool)
			view.Value = checked
		case domain.FieldTypeSelect:
			view.Value = stringValue(value)
			view.Options = trimmedOptions(field.Options)
		case domain.FieldTypeProduct:
			items := ProductItems(value)
			view.Value = items
			pv := it.productView(items)
			view.Product = &pv
		default:
			view.Value = stringValue(value)
		}

		state.Fields = append(state.Fields, view)
	}
	return state
}

// Submit validates every field of the step against the given values,
// accumulating all errors rather than failing fast. With zero errors it
// returns the order's steps map updated with the submitted data and a fresh
// completion timestamp; re-submitting a completed step re-stamps it.
func (it *Interpreter) Submit(step domain.Step, order domain.Order, values map[string]any) Result {
	errors := map[string]string{}
	for _, field := range step.Fields {
		if !field.Required {
			continue
		}
		value := values[field.Name]
		if field.Type == domain.FieldTypeProduct {
			if len(ProductItems(value)) == 0 {
				errors[field.Name] = errProductRequired
			}
		} else if isBlank(value) {
			errors[field.Name] = errRequired
		}
	}

	if len(errors) > 0 {
		return Result{OK: false, Errors: errors}
	}

	updated := make(map[string]domain.StepState, len(order.StepsData)+1)
	for id, state := range order.StepsData {
		updated[id] = state
	}
	data := make(map[string]any, len(values))
	for name, value := range values {
		if pv := ProductItems(value); pv != nil {
			data[name] = pv
		} else {
			data[name] = value
		}
	}
	updated[step.Id] = domain.StepState{Data: data, CompletedAt: it.now()}

	return Result{OK: true, StepsData: updated}
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}

func trimmedOptions(options []string) []string {
	trimmed := make([]string, len(options))
	for i, o := range options {
		trimmed[i] = strings.TrimSpace(o)
	}
	return trimmed
}

// ProductItems coerces a stored value into a product item list. Values
// arrive either as typed items (in-process) or as generic JSON maps (from
// storage or the wire); anything else yields nil.
func ProductItems(value any) []domain.ProductItem {
	switch v := value.(type) {
	case []domain.ProductItem:
		return v
	case []any:
		items := make([]domain.ProductItem, 0, len(v))
		for _, raw := range v {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil
			}
			id, _ := m["productId"].(string)
			items = append(items, domain.ProductItem{
				ProductId: id,
				Quantity:  intValue(m["quantity"]),
			})
		}
		return items
	default:
		return nil
	}
}

func intValue(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
