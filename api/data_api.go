package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/domain"
	"orderdesk/migration"
	"orderdesk/srv"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler checks the submitted credentials against the stored user and
// returns the user without its password on success.
func (ctrl *Controller) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}

	user, err := ctrl.service.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusUnauthorized, errors.New("Invalid credentials"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get user: %w", err))
		}
		return
	}
	if user.Password != req.Password {
		ctrl.ErrorHandler(c, http.StatusUnauthorized, errors.New("Invalid credentials"))
		return
	}

	ctrl.logActivity(c, user.Id, user.Username, domain.ActivityLogin, domain.EntityUser, user.Id, "Logged in")
	c.JSON(http.StatusOK, gin.H{"user": user.WithoutPassword()})
}

// GetDataHandler returns every collection in one payload, the shape clients
// load at startup.
func (ctrl *Controller) GetDataHandler(c *gin.Context) {
	ctx := c.Request.Context()

	workflows, err := ctrl.service.GetAllWorkflows(ctx)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflows: %w", err))
		return
	}
	orders, err := ctrl.service.GetAllOrders(ctx)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get orders: %w", err))
		return
	}
	products, err := ctrl.service.GetAllProducts(ctx)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get products: %w", err))
		return
	}
	proformas, err := ctrl.service.GetAllProformas(ctx)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get proformas: %w", err))
		return
	}
	users, err := ctrl.service.GetAllUsers(ctx)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get users: %w", err))
		return
	}
	for i := range users {
		users[i] = users[i].WithoutPassword()
	}
	activityLogs, err := ctrl.service.GetActivityLogs(ctx, 0)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get activity logs: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflows":    workflows,
		"orders":       orders,
		"products":     products,
		"proformas":    proformas,
		"users":        users,
		"activityLogs": activityLogs,
	})
}

// SaveDataHandler replaces one whole collection. Records pass through the
// migration normalizers on the way in, so partially-shaped client payloads
// are repaired rather than rejected.
func (ctrl *Controller) SaveDataHandler(c *gin.Context) {
	key := c.Param("key")

	var records []map[string]any
	if err := c.ShouldBindJSON(&records); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	var err error
	switch key {
	case "workflows":
		err = ctrl.service.ReplaceAllWorkflows(ctx, migrateEach(records, migration.Workflow))
	case "orders":
		err = ctrl.service.ReplaceAllOrders(ctx, migrateEach(records, migration.Order))
	case "products":
		err = ctrl.service.ReplaceAllProducts(ctx, migrateEach(records, migration.Product))
	case "proformas":
		err = ctrl.service.ReplaceAllProformas(ctx, migrateEach(records, migration.Proforma))
	case "users":
		err = ctrl.service.ReplaceAllUsers(ctx, migrateEach(records, migration.User))
	case "activityLogs":
		err = ctrl.service.ReplaceAllActivityLogs(ctx, migrateEach(records, migration.ActivityLog))
	default:
		ctrl.ErrorHandler(c, http.StatusBadRequest, fmt.Errorf("invalid data key: %q", key))
		return
	}
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to save %s: %w", key, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func migrateEach[T any](records []map[string]any, migrate func(map[string]any) T) []T {
	out := make([]T, 0, len(records))
	for _, record := range records {
		if record == nil {
			record = map[string]any{}
		}
		out = append(out, migrate(record))
	}
	return out
}
