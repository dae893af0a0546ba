package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"orderdesk/backup"
	"orderdesk/domain"
)

// BackupHandler streams the whole data set as a JSON archive download.
func (ctrl *Controller) BackupHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var snapshot backup.Snapshot
	var err error
	if snapshot.Workflows, err = ctrl.service.GetAllWorkflows(ctx); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflows: %w", err))
		return
	}
	if snapshot.Orders, err = ctrl.service.GetAllOrders(ctx); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get orders: %w", err))
		return
	}
	if snapshot.Products, err = ctrl.service.GetAllProducts(ctx); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get products: %w", err))
		return
	}
	if snapshot.Proformas, err = ctrl.service.GetAllProformas(ctx); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get proformas: %w", err))
		return
	}
	if snapshot.Users, err = ctrl.service.GetAllUsers(ctx); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get users: %w", err))
		return
	}
	if snapshot.ActivityLogs, err = ctrl.service.GetActivityLogs(ctx, 0); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get activity logs: %w", err))
		return
	}

	data, err := backup.Dump(snapshot)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to serialize backup: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename(time.Now())))
	c.Data(http.StatusOK, "application/json", data)
}

// RestoreHandler replaces every collection with the contents of an uploaded
// archive. The archive may arrive as the "file" multipart field or as the
// raw request body.
func (ctrl *Controller) RestoreHandler(c *gin.Context) {
	data, err := readArchive(c)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}

	snapshot, err := backup.Restore(data)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.service.ReplaceAllWorkflows(ctx, snapshot.Workflows); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to restore workflows: %w", err))
		return
	}
	if err := ctrl.service.ReplaceAllOrders(ctx, snapshot.Orders); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to restore orders: %w", err))
		return
	}
	if err := ctrl.service.ReplaceAllProducts(ctx, snapshot.Products); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to restore products: %w", err))
		return
	}
	if err := ctrl.service.ReplaceAllProformas(ctx, snapshot.Proformas); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to restore proformas: %w", err))
		return
	}
	if err := ctrl.service.ReplaceAllUsers(ctx, snapshot.Users); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to restore users: %w", err))
		return
	}
	if err := ctrl.service.ReplaceAllActivityLogs(ctx, snapshot.ActivityLogs); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to restore activity logs: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityImport, domain.EntitySystem, "", "Restored data from backup archive")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func readArchive(c *gin.Context) ([]byte, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("file is required: %w", err)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty archive")
	}
	return data, nil
}
