package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/board"
	"orderdesk/domain"
	"orderdesk/form"
	"orderdesk/migration"
	"orderdesk/srv"
)

type OrderRequest struct {
	WorkflowId string `json:"workflowId"`
	Title      string `json:"title"`
}

type SubmitStepRequest struct {
	Values map[string]any `json:"values"`
}

func (ctrl *Controller) CreateOrderHandler(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" {
		ctrl.ErrorHandler(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	ctx := c.Request.Context()
	if _, err := ctrl.service.GetWorkflow(ctx, req.WorkflowId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusBadRequest, errors.New("workflow not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflow: %w", err))
		}
		return
	}

	order := domain.Order{
		Id:         domain.NewId("order"),
		WorkflowId: req.WorkflowId,
		CreatedAt:  domain.NowISO(),
		Title:      req.Title,
		Status:     domain.OrderStatusInProgress,
		History:    []domain.HistoryEntry{},
		StepsData:  map[string]domain.StepState{},
	}

	if err := ctrl.service.PersistOrder(ctx, order); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to create order: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityCreate, domain.EntityOrder, order.Id, fmt.Sprintf("Created order %q", order.Title))
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetOrdersHandler lists orders, optionally narrowed to one workflow via the
// workflowId query parameter.
func (ctrl *Controller) GetOrdersHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var orders []domain.Order
	var err error
	if workflowId := c.Query("workflowId"); workflowId != "" {
		orders, err = ctrl.service.GetOrders(ctx, workflowId)
	} else {
		orders, err = ctrl.service.GetAllOrders(ctx)
	}
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get orders: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (ctrl *Controller) GetOrderHandler(c *gin.Context) {
	order, err := ctrl.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("order not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get order: %w", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderHandler replaces the order. The body passes through the
// migration normalizer, which drops malformed step entries and coerces
// legacy product lists.
func (ctrl *Controller) UpdateOrderHandler(c *gin.Context) {
	orderId := c.Param("id")
	if _, err := ctrl.service.GetOrder(c.Request.Context(), orderId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("order not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get order: %w", err))
		}
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	raw["id"] = orderId
	order := migration.Order(raw)

	if err := ctrl.service.PersistOrder(c.Request.Context(), order); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to update order: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityUpdate, domain.EntityOrder, order.Id, fmt.Sprintf("Updated order %q", order.Title))
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (ctrl *Controller) DeleteOrderHandler(c *gin.Context) {
	orderId := c.Param("id")
	if err := ctrl.service.DeleteOrder(c.Request.Context(), orderId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("order not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to delete order: %w", err))
		}
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityDelete, domain.EntityOrder, orderId, "Deleted order")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RenderOrderStepHandler returns the form state for one step of an order:
// each field's definition, stored value, and for product fields the resolved
// catalog lines.
func (ctrl *Controller) RenderOrderStepHandler(c *gin.Context) {
	order, step, interpreter, ok := ctrl.resolveStep(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": interpreter.Render(*step, order)})
}

// SubmitOrderStepHandler validates the submitted values against the step's
// fields. On success the step is stamped complete and the order persisted;
// on validation failure nothing is stored and the per-field errors are
// returned with a 422.
func (ctrl *Controller) SubmitOrderStepHandler(c *gin.Context) {
	order, step, interpreter, ok := ctrl.resolveStep(c)
	if !ok {
		return
	}

	var req SubmitStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	if req.Values == nil {
		req.Values = map[string]any{}
	}

	result := interpreter.Submit(*step, order, req.Values)
	if !result.OK {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.Errors})
		return
	}

	order.StepsData = result.StepsData
	order.History = append(order.History, domain.HistoryEntry{
		Timestamp: domain.NowISO(),
		UserId:    c.GetHeader("X-User-Id"),
		Username:  c.GetHeader("X-Username"),
		Detail:    fmt.Sprintf("Completed step %q", step.Title),
	})

	ctx := c.Request.Context()
	if err := ctrl.service.PersistOrder(ctx, order); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to persist order: %w", err))
		return
	}

	workflow, err := ctrl.service.GetWorkflow(ctx, order.WorkflowId)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflow: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityUpdate, domain.EntityOrder, order.Id, fmt.Sprintf("Completed step %q on order %q", step.Title, order.Title))
	c.JSON(http.StatusOK, gin.H{"order": order, "progress": board.Progress(order, &workflow)})
}

// resolveStep loads the order, its workflow and the addressed step, writing
// the error response itself when any of them is missing. An order whose
// workflow was deleted yields a 409.
func (ctrl *Controller) resolveStep(c *gin.Context) (domain.Order, *domain.Step, *form.Interpreter, bool) {
	ctx := c.Request.Context()

	order, err := ctrl.service.GetOrder(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("order not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get order: %w", err))
		}
		return domain.Order{}, nil, nil, false
	}

	workflow, err := ctrl.service.GetWorkflow(ctx, order.WorkflowId)
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusConflict, errors.New("order's workflow no longer exists"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get workflow: %w", err))
		}
		return domain.Order{}, nil, nil, false
	}

	step := workflow.FindStep(c.Param("stepId"))
	if step == nil {
		ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("step not found"))
		return domain.Order{}, nil, nil, false
	}

	products, err := ctrl.service.GetAllProducts(ctx)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get products: %w", err))
		return domain.Order{}, nil, nil, false
	}

	return order, step, form.NewInterpreter(form.CatalogLookup(products)), true
}
