package domain

import "context"

type ActivityAction string

const (
	ActivityCreate ActivityAction = "CREATE"
	ActivityUpdate ActivityAction = "UPDATE"
	ActivityDelete ActivityAction = "DELETE"
	ActivityImport ActivityAction = "IMPORT"
	ActivityLogin  ActivityAction = "LOGIN"
	ActivityLogout ActivityAction = "LOGOUT"
)

var AllActivityActions []ActivityAction = []ActivityAction{
	ActivityCreate,
	ActivityUpdate,
	ActivityDelete,
	ActivityImport,
	ActivityLogin,
	ActivityLogout,
}

type EntityType string

const (
	EntityOrder    EntityType = "Order"
	EntityProduct  EntityType = "Product"
	EntityProforma EntityType = "Proforma"
	EntityUser     EntityType = "User"
	EntityWorkflow EntityType = "Workflow"
	EntitySystem   EntityType = "System"
)

// ActivityLog is one audit entry: who did what, to which entity, when.
type ActivityLog struct {
	Id         string         `json:"id"`
	Timestamp  string         `json:"timestamp"`
	UserId     string         `json:"userId"`
	Username   string         `json:"username"`
	Action     ActivityAction `json:"action"`
	EntityType EntityType     `json:"entityType"`
	EntityId   string         `json:"entityId,omitempty"`
	Details    string         `json:"details"`
}

// ActivityLogStorage defines the interface for activity-log database operations
type ActivityLogStorage interface {
	PersistActivityLog(ctx context.Context, log ActivityLog) error
	GetActivityLogs(ctx context.Context, limit int) ([]ActivityLog, error)
	ReplaceAllActivityLogs(ctx context.Context, logs []ActivityLog) error
}
