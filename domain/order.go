package domain

import (
	"context"
	"fmt"
)

type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var AllOrderStatuses []OrderStatus = []OrderStatus{
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusOnHold,
	OrderStatusCancelled,
}

func StringToOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "in-progress":
		return OrderStatusInProgress, nil
	case "completed":
		return OrderStatusCompleted, nil
	case "on-hold":
		return OrderStatusOnHold, nil
	case "cancelled":
		return OrderStatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid OrderStatus: \"%s\"", s)
	}
}

// StepState holds what an order has recorded for one workflow step. A step is
// completed iff CompletedAt is a non-empty timestamp; an absent StepsData
// entry means "not started", which is distinct from "started but incomplete"
// (data present, no CompletedAt).
type StepState struct {
	Data        map[string]any `json:"data"`
	CompletedAt string         `json:"completed_at,omitempty"`
}

func (s StepState) Completed() bool {
	return s.CompletedAt != ""
}

// HistoryEntry is one ordered log line on an order.
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	UserId    string `json:"userId"`
	Username  string `json:"username"`
	Detail    string `json:"detail"`
}

// Order is a record progressing through one workflow. WorkflowId is resolved
// by lookup at read time, not enforced as a foreign key: deleting the
// workflow orphans the order instead of cascading. Stored step values are
// typed per the workflow's field definitions at the time of entry and are
// never retroactively migrated when the schema changes.
type Order struct {
	Id          string               `json:"id"`
	WorkflowId  string               `json:"workflowId"`
	CreatedAt   string               `json:"created_at"`
	Title       string               `json:"title"`
	Status      OrderStatus          `json:"status,omitempty"`
	IsFinalized bool                 `json:"is_finalized,omitempty"`
	History     []HistoryEntry       `json:"history,omitempty"`
	StepsData   map[string]StepState `json:"steps_data"`
}

// StepCompleted reports whether the given step has a completion timestamp.
func (o *Order) StepCompleted(stepId string) bool {
	return o.StepsData[stepId].Completed()
}

// Finalized reports whether the order is manually finalized or in the
// terminal success status. Finalized orders report 100% progress and land in
// the last kanban column regardless of per-step completion.
func (o *Order) Finalized() bool {
	return o.IsFinalized || o.Status == OrderStatusCompleted
}

// OrderStorage defines the interface for order-related database operations
type OrderStorage interface {
	PersistOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, orderId string) (Order, error)
	GetOrders(ctx context.Context, workflowId string) ([]Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	DeleteOrder(ctx context.Context, orderId string) error
	ReplaceAllOrders(ctx context.Context, orders []Order) error
}
