package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/board"
	"orderdesk/domain"
	"orderdesk/migration"
	"orderdesk/srv"
)

type WorkflowRequest struct {
	Name  string        `json:"name"`
	Steps []domain.Step `json:"steps"`
}

func (ctrl *Controller) CreateWorkflowHandler(c *gin.Context) {
	var req WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		ctrl.ErrorHandler(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	workflow := domain.Workflow{
		Id:    domain.NewId("wf"),
		Name:  req.Name,
		Steps: req.Steps,
	}
	if workflow.Steps == nil {
		workflow.Steps = []domain.Step{}
	}

	if err := ctrl.service.PersistWorkflow(c.Request.Context(), workflow); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to create workflow: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityCreate, domain.EntityWorkflow, workflow.Id, fmt.Sprintf("Created workflow %q", workflow.Name))
	c.JSON(http.StatusOK, gin.H{"workflow": workflow})
}

func (ctrl *Controller) GetWorkflowsHandler(c *gin.Context) {
	workflows, err := ctrl.service.GetAllWorkflows(c.Request.Context())
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflows: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

func (ctrl *Controller) GetWorkflowHandler(c *gin.Context) {
	workflow, err := ctrl.service.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("workflow not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflow: %w", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": workflow})
}

// UpdateWorkflowHandler replaces the workflow's schema. The body is run
// through the migration normalizer so unknown field types and missing widths
// come out valid.
func (ctrl *Controller) UpdateWorkflowHandler(c *gin.Context) {
	workflowId := c.Param("id")
	if _, err := ctrl.service.GetWorkflow(c.Request.Context(), workflowId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("workflow not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflow: %w", err))
		}
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	raw["id"] = workflowId
	workflow := migration.Workflow(raw)

	if err := ctrl.service.PersistWorkflow(c.Request.Context(), workflow); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to update workflow: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityUpdate, domain.EntityWorkflow, workflow.Id, fmt.Sprintf("Updated workflow %q", workflow.Name))
	c.JSON(http.StatusOK, gin.H{"workflow": workflow})
}

// DeleteWorkflowHandler removes the workflow. Orders referencing it are left
// in place and become orphaned.
func (ctrl *Controller) DeleteWorkflowHandler(c *gin.Context) {
	workflowId := c.Param("id")
	if err := ctrl.service.DeleteWorkflow(c.Request.Context(), workflowId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("workflow not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to delete workflow: %w", err))
		}
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityDelete, domain.EntityWorkflow, workflowId, "Deleted workflow")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetWorkflowBoardHandler returns the kanban columns for one workflow along
// with per-order progress percentages.
func (ctrl *Controller) GetWorkflowBoardHandler(c *gin.Context) {
	ctx := c.Request.Context()
	workflow, err := ctrl.service.GetWorkflow(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("workflow not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflow: %w", err))
		}
		return
	}

	orders, err := ctrl.service.GetOrders(ctx, workflow.Id)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get orders: %w", err))
		return
	}

	columns := board.Columns(workflow, orders)
	progress := make(map[string]int, len(orders))
	for _, order := range orders {
		progress[order.Id] = board.Progress(order, &workflow)
	}

	c.JSON(http.StatusOK, gin.H{"columns": columns, "progress": progress})
}
