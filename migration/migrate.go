// Package migration normalizes raw values loaded from external storage or
// backups into the current data shapes. Every function here is total: each
// field is independently defaulted when absent or of the wrong shape, and
// nothing ever fails. Migrating an already-valid value is a fixed point.
package migration

import (
	"fmt"
	"strconv"
	"time"

	"orderdesk/domain"
)

const (
	restoredWorkflowName = "Restored workflow"
	restoredOrderTitle   = "Restored order"
	restoredProductName  = "Restored product"
	restoredCompanyName  = "Restored company"
	restoredUsername     = "user_restored"
	defaultStepTitle     = "New step"
	defaultFieldLabel    = "New field"
)

// Workflow normalizes a raw workflow value.
func Workflow(raw map[string]any) domain.Workflow {
	return domain.Workflow{
		Id:    idOrNew(raw["id"], "wf"),
		Name:  stringOr(raw["name"], restoredWorkflowName),
		Steps: mapList(raw["steps"], step),
	}
}

func step(raw map[string]any) domain.Step {
	return domain.Step{
		Id:     idOrNew(raw["id"], "step"),
		Title:  stringOr(raw["title"], defaultStepTitle),
		Fields: mapList(raw["fields"], field),
	}
}

func field(raw map[string]any) domain.Field {
	fieldType := domain.FieldTypeText
	if s, ok := raw["type"].(string); ok && domain.IsValidFieldType(s) {
		fieldType = domain.FieldType(s)
	}
	width := domain.FieldWidthHalf
	if s, ok := raw["width"].(string); ok && (s == string(domain.FieldWidthHalf) || s == string(domain.FieldWidthFull)) {
		width = domain.FieldWidth(s)
	}
	return domain.Field{
		Id:       idOrNew(raw["id"], "field"),
		Name:     stringOr(raw["name"], fmt.Sprintf("field_%d", time.Now().UnixMilli())),
		Label:    stringOr(raw["label"], defaultFieldLabel),
		Type:     fieldType,
		Required: boolOr(raw["required"], false),
		Width:    width,
		Options:  stringList(raw["options"]),
	}
}

// Order normalizes a raw order value. Step-data entries survive only when
// their data member is an object; inside each data map, anything shaped like
// a legacy product list (array of objects whose first element has a
// productId key) is migrated item by item. That detection is a best-effort
// heuristic over untagged data and is deliberately not made stricter.
func Order(raw map[string]any) domain.Order {
	stepsData := map[string]domain.StepState{}
	if rawSteps, ok := raw["steps_data"].(map[string]any); ok {
		for stepId, rawState := range rawSteps {
			state, ok := rawState.(map[string]any)
			if !ok {
				continue
			}
			data, ok := state["data"].(map[string]any)
			if !ok {
				continue
			}
			migrated := make(map[string]any, len(data))
			for name, value := range data {
				if isProductList(value) {
					migrated[name] = mapList(value, productItem)
				} else {
					migrated[name] = value
				}
			}
			stepsData[stepId] = domain.StepState{
				Data:        migrated,
				CompletedAt: stringOr(state["completed_at"], ""),
			}
		}
	}

	status := domain.OrderStatus("")
	if s, ok := raw["status"].(string); ok {
		if parsed, err := domain.StringToOrderStatus(s); err == nil {
			status = parsed
		}
	}

	return domain.Order{
		Id:          idOrNew(raw["id"], "order"),
		WorkflowId:  stringOr(raw["workflowId"], ""),
		CreatedAt:   stringOr(raw["created_at"], domain.NowISO()),
		Title:       stringOr(raw["title"], restoredOrderTitle),
		Status:      status,
		IsFinalized: boolOr(raw["is_finalized"], false),
		History:     mapList(raw["history"], historyEntry),
		StepsData:   stepsData,
	}
}

func historyEntry(raw map[string]any) domain.HistoryEntry {
	return domain.HistoryEntry{
		Timestamp: stringOr(raw["timestamp"], ""),
		UserId:    stringOr(raw["userId"], ""),
		Username:  stringOr(raw["username"], ""),
		Detail:    stringOr(raw["detail"], ""),
	}
}

// isProductList reports whether the value looks like a legacy product list:
// a non-empty array of objects whose first element carries a productId key.
func isProductList(value any) bool {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return false
	}
	_, hasProductId := first["productId"]
	return hasProductId
}

func productItem(raw map[string]any) domain.ProductItem {
	return domain.ProductItem{
		ProductId: stringOr(raw["productId"], ""),
		Quantity:  intOr(raw["quantity"], 1),
	}
}

// Product normalizes a raw product value.
func Product(raw map[string]any) domain.Product {
	return domain.Product{
		Id:            idOrNew(raw["id"], "prod"),
		Name:          stringOr(raw["name"], restoredProductName),
		Code:          stringOr(raw["code"], "N/A"),
		Irc:           stringOr(raw["irc"], ""),
		NetWeight:     stringified(raw["netWeight"]),
		GrossWeight:   stringified(raw["grossWeight"]),
		Description:   stringOr(raw["description"], ""),
		CurrencyPrice: stringifiedOr(raw["currencyPrice"], "0"),
		CurrencyType:  currencyOr(raw["currencyType"]),
		Manufacturer:  stringOr(raw["manufacturer"], ""),
	}
}

// Proforma normalizes a raw proforma value.
func Proforma(raw map[string]any) domain.Proforma {
	return domain.Proforma{
		Id:          idOrNew(raw["id"], "prof"),
		CompanyName: stringOr(raw["companyName"], restoredCompanyName),
		Date:        stringOr(raw["date"], domain.NowISO()),
		Items:       mapList(raw["items"], proformaItem),
		Total:       floatOr(raw["total"], 0),
	}
}

func proformaItem(raw map[string]any) domain.ProformaItem {
	return domain.ProformaItem{
		ProductId:   stringOr(raw["productId"], ""),
		Name:        stringOr(raw["name"], ""),
		Code:        stringOr(raw["code"], ""),
		Irc:         stringOr(raw["irc"], ""),
		NetWeight:   stringified(raw["netWeight"]),
		GrossWeight: stringified(raw["grossWeight"]),
		Quantity:    intOr(raw["quantity"], 1),
		Price:       floatOr(raw["price"], 0),
		Currency:    currencyOr(raw["currency"]),
	}
}

// User normalizes a raw user value. The password is kept as-is when present.
func User(raw map[string]any) domain.User {
	role := domain.UserRoleAdmin
	if s, ok := raw["role"].(string); ok && domain.IsValidUserRole(s) {
		role = domain.UserRole(s)
	}
	return domain.User{
		Id:       idOrNew(raw["id"], "user"),
		Username: stringOr(raw["username"], restoredUsername),
		Password: stringOr(raw["password"], ""),
		Role:     role,
	}
}

// ActivityLog normalizes a raw activity log entry.
func ActivityLog(raw map[string]any) domain.ActivityLog {
	action := domain.ActivityUpdate
	if s, ok := raw["action"].(string); ok {
		for _, a := range domain.AllActivityActions {
			if string(a) == s {
				action = a
			}
		}
	}
	return domain.ActivityLog{
		Id:         idOrNew(raw["id"], "log"),
		Timestamp:  stringOr(raw["timestamp"], domain.NowISO()),
		UserId:     stringOr(raw["userId"], ""),
		Username:   stringOr(raw["username"], ""),
		Action:     action,
		EntityType: domain.EntityType(stringOr(raw["entityType"], string(domain.EntitySystem))),
		EntityId:   stringOr(raw["entityId"], ""),
		Details:    stringOr(raw["details"], ""),
	}
}

func idOrNew(value any, prefix string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return domain.NewId(prefix)
}

func stringOr(value any, def string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return def
}

// stringified coerces strings and numbers to strings, as weight fields were
// stored both ways historically.
func stringified(value any) string {
	return stringifiedOr(value, "")
}

func stringifiedOr(value any, def string) string {
	switch v := value.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case int:
		if v != 0 {
			return strconv.Itoa(v)
		}
	}
	return def
}

func boolOr(value any, def bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return def
}

func intOr(value any, def int) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func floatOr(value any, def float64) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

func currencyOr(value any) domain.CurrencyType {
	if s, ok := value.(string); ok && domain.IsValidCurrencyType(s) {
		return domain.CurrencyType(s)
	}
	return domain.CurrencyUSD
}

func stringList(value any) []string {
	list, ok := value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func mapList[T any](value any, migrate func(map[string]any) T) []T {
	list, ok := value.([]any)
	if !ok {
		return []T{}
	}
	out := make([]T, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		out = append(out, migrate(m))
	}
	return out
}
