package srv

import (
	"context"

	"orderdesk/common"
	"orderdesk/domain"
)

var ErrNotFound = common.ErrNotFound

// Storage is the full persistence surface of the dashboard: one interface
// per entity, plus a connection check used at startup.
type Storage interface {
	domain.WorkflowStorage
	domain.OrderStorage
	domain.ProductStorage
	domain.ProformaStorage
	domain.UserStorage
	domain.ActivityLogStorage

	CheckConnection(ctx context.Context) error
}
