package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"orderdesk/domain"
)

// GetActivityLogsHandler lists audit entries newest first. The limit query
// parameter caps the result; absent or non-positive means all.
func (ctrl *Controller) GetActivityLogsHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			ctrl.ErrorHandler(c, http.StatusBadRequest, fmt.Errorf("invalid limit: %q", raw))
			return
		}
		limit = parsed
	}

	logs, err := ctrl.service.GetActivityLogs(c.Request.Context(), limit)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get activity logs: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"activityLogs": logs})
}

// logActivity records an audit entry for a mutation. The acting user comes
// from the X-User-Id and X-Username headers unless given explicitly. Audit
// failures are logged, never surfaced to the client.
func (ctrl *Controller) logActivity(c *gin.Context, userId, username string, action domain.ActivityAction, entityType domain.EntityType, entityId, details string) {
	if userId == "" {
		userId = c.GetHeader("X-User-Id")
	}
	if username == "" {
		username = c.GetHeader("X-Username")
	}

	entry := domain.ActivityLog{
		Id:         domain.NewId("log"),
		Timestamp:  domain.NowISO(),
		UserId:     userId,
		Username:   username,
		Action:     action,
		EntityType: entityType,
		EntityId:   entityId,
		Details:    details,
	}
	if err := ctrl.service.PersistActivityLog(c.Request.Context(), entry); err != nil {
		log.Warn().Err(err).Str("action", string(action)).Str("entityId", entityId).Msg("Failed to record activity log")
	}
}
