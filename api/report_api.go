package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/reports"
)

// GetReportHandler builds the aggregated dashboard report. Query parameters
// workflowId, start and end narrow it; all are optional.
func (ctrl *Controller) GetReportHandler(c *gin.Context) {
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

	filter := reports.Filter{
		WorkflowId: c.Query("workflowId"),
		Start:      c.Query("start"),
		End:        c.Query("end"),
	}

	c.JSON(http.StatusOK, gin.H{"report": reports.Build(workflows, orders, products, filter)})
}
