package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/domain"
)

func setupOrderFixtures(t *testing.T, ctrl Controller) domain.Workflow {
	t.Helper()
	ctx := context.Background()

	workflow := domain.Workflow{
		Id:   "wf_orders",
		Name: "Import",
		Steps: []domain.Step{
			{
				Id:    "step_quote",
				Title: "Quote",
				Fields: []domain.Field{
					{Id: "f1", Name: "customer_name", Label: "Customer", Type: domain.FieldTypeText, Required: true, Width: domain.FieldWidthHalf},
					{Id: "f2", Name: "products", Label: "Products", Type: domain.FieldTypeProduct, Required: true, Width: domain.FieldWidthFull},
				},
			},
			{
				Id:    "step_ship",
				Title: "Shipping",
				Fields: []domain.Field{
					{Id: "f3", Name: "carrier", Label: "Carrier", Type: domain.FieldTypeText, Width: domain.FieldWidthHalf},
				},
			},
		},
	}
	require.NoError(t, ctrl.service.PersistWorkflow(ctx, workflow))
	require.NoError(t, ctrl.service.PersistProduct(ctx, domain.Product{
		Id: "prod_widget", Name: "Widget", Code: "W-1", CurrencyPrice: "10", CurrencyType: domain.CurrencyUSD,
	}))
	return workflow
}

func TestOrderCrud(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)
	setupOrderFixtures(t, ctrl)

	t.Run("create rejects unknown workflow", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/api/v1/orders", gin.H{"workflowId": "missing", "title": "First"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var orderId string
	t.Run("create", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/api/v1/orders", gin.H{"workflowId": "wf_orders", "title": "First"})
		require.Equal(t, http.StatusOK, w.Code)

		order := decodeBody(t, w)["order"].(map[string]any)
		orderId = order["id"].(string)
		assert.Equal(t, "First", order["title"])
		assert.Equal(t, string(domain.OrderStatusInProgress), order["status"])
		assert.NotEmpty(t, order["created_at"])
	})

	t.Run("list filters by workflow", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/api/v1/orders?workflowId=wf_orders", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["orders"], 1)

		w = performRequest(t, router, http.MethodGet, "/api/v1/orders?workflowId=other", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["orders"], 0)
	})

	t.Run("update migrates the payload", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPut, "/api/v1/orders/"+orderId, gin.H{
			"workflowId": "wf_orders",
			"title":      "First updated",
			"status":     "on-hold",
			"steps_data": gin.H{
				"step_quote": gin.H{"data": gin.H{"customer_name": "Acme"}},
				"step_bad":   gin.H{"data": "not an object"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		stored, err := ctrl.service.GetOrder(context.Background(), orderId)
		require.NoError(t, err)
		assert.Equal(t, "First updated", stored.Title)
		assert.Equal(t, domain.OrderStatusOnHold, stored.Status)
		assert.Contains(t, stored.StepsData, "step_quote")
		assert.NotContains(t, stored.StepsData, "step_bad")
	})

	t.Run("delete", func(t *testing.T) {
		w := performRequest(t, router, http.MethodDelete, "/api/v1/orders/"+orderId, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w = performRequest(t, router, http.MethodDelete, "/api/v1/orders/"+orderId, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRenderOrderStepHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)
	setupOrderFixtures(t, ctrl)

	ctx := context.Background()
	order := domain.Order{
		Id: "order_render", WorkflowId: "wf_orders", CreatedAt: domain.NowISO(), Title: "Render",
		StepsData: map[string]domain.StepState{
			"step_quote": {Data: map[string]any{
				"customer_name": "Acme",
				"products":      []domain.ProductItem{{ProductId: "prod_widget", Quantity: 3}},
			}},
		},
	}
	require.NoError(t, ctrl.service.PersistOrder(ctx, order))

	w := performRequest(t, router, http.MethodGet, "/api/v1/orders/order_render/steps/step_quote", nil)
	require.Equal(t, http.StatusOK, w.Code)

	form := decodeBody(t, w)["form"].(map[string]any)
	assert.Equal(t, "step_quote", form["stepId"])
	fields := form["fields"].([]any)
	require.Len(t, fields, 2)

	customer := fields[0].(map[string]any)
	assert.Equal(t, "Acme", customer["value"])

	products := fields[1].(map[string]any)
	productView := products["product"].(map[string]any)
	lines := productView["lines"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.Equal(t, "Widget", line["product"].(map[string]any)["name"])
	assert.Equal(t, float64(30), line["lineTotal"])
	assert.Equal(t, float64(30), productView["grandTotal"])

	t.Run("unknown step", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/api/v1/orders/order_render/steps/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("orphaned workflow conflicts", func(t *testing.T) {
		orphan := domain.Order{Id: "order_orphan", WorkflowId: "wf_gone", CreatedAt: domain.NowISO(), Title: "Orphan", StepsData: map[string]domain.StepState{}}
		require.NoError(t, ctrl.service.PersistOrder(ctx, orphan))

		w := performRequest(t, router, http.MethodGet, "/api/v1/orders/order_orphan/steps/step_quote", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSubmitOrderStepHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)
	setupOrderFixtures(t, ctrl)

	ctx := context.Background()
	order := domain.Order{
		Id: "order_submit", WorkflowId: "wf_orders", CreatedAt: domain.NowISO(), Title: "Submit",
		StepsData: map[string]domain.StepState{},
	}
	require.NoError(t, ctrl.service.PersistOrder(ctx, order))

	t.Run("validation failure keeps the order untouched", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/api/v1/orders/order_submit/steps/step_quote/submit", gin.H{
			"values": gin.H{"customer_name": "   "},
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		errs := decodeBody(t, w)["errors"].(map[string]any)
		assert.Contains(t, errs, "customer_name")
		assert.Contains(t, errs, "products")

		stored, err := ctrl.service.GetOrder(ctx, "order_submit")
		require.NoError(t, err)
		assert.Empty(t, stored.StepsData)
	})

	t.Run("valid submission stamps the step and reports progress", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/api/v1/orders/order_submit/steps/step_quote/submit", gin.H{
			"values": gin.H{
				"customer_name": "Acme",
				"products":      []gin.H{{"productId": "prod_widget", "quantity": 2}},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, float64(50), body["progress"])

		stored, err := ctrl.service.GetOrder(ctx, "order_submit")
		require.NoError(t, err)
		assert.True(t, stored.StepCompleted("step_quote"))
		require.Len(t, stored.History, 1)
		assert.Contains(t, stored.History[0].Detail, "Quote")
	})
}
