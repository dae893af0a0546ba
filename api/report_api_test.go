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

func TestGetReportHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	ctx := context.Background()
	workflow := domain.Workflow{
		Id:   "wf_report",
		Name: "Import",
		Steps: []domain.Step{
			{Id: "step_1", Title: "Quote", Fields: []domain.Field{
				{Id: "f1", Name: "customer_name", Label: "Customer", Type: domain.FieldTypeText, Width: domain.FieldWidthHalf},
			}},
		},
	}
	require.NoError(t, ctrl.service.PersistWorkflow(ctx, workflow))

	require.NoError(t, ctrl.service.PersistOrder(ctx, domain.Order{
		Id: "order_1", WorkflowId: "wf_report", CreatedAt: "2024-03-20T10:00:00.000Z", Title: "First",
		StepsData: map[string]domain.StepState{
			"step_1": {Data: map[string]any{"customer_name": "Acme"}, CompletedAt: "2024-03-20T11:00:00.000Z"},
		},
	}))
	require.NoError(t, ctrl.service.PersistOrder(ctx, domain.Order{
		Id: "order_2", WorkflowId: "wf_other", CreatedAt: "2024-03-21T10:00:00.000Z", Title: "Second",
		StepsData: map[string]domain.StepState{},
	}))

	t.Run("unfiltered", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/api/v1/reports", nil)
		require.Equal(t, http.StatusOK, w.Code)

		report := decodeBody(t, w)["report"].(map[string]any)
		assert.Equal(t, float64(2), report["totalOrders"])
		assert.Equal(t, float64(1), report["uniqueCustomers"])
	})

	t.Run("filtered by workflow", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/api/v1/reports?workflowId=wf_report", nil)
		require.Equal(t, http.StatusOK, w.Code)

		report := decodeBody(t, w)["report"].(map[string]any)
		assert.Equal(t, float64(1), report["totalOrders"])
	})
}
