package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/domain"
)

func TestBackupHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	ctx := context.Background()
	require.NoError(t, ctrl.service.PersistWorkflow(ctx, domain.Workflow{Id: "wf_1", Name: "Import", Steps: []domain.Step{}}))
	require.NoError(t, ctrl.service.PersistUser(ctx, domain.User{Id: "user_1", Username: "admin", Password: "secret", Role: domain.UserRoleAdmin}))

	w := performRequest(t, router, http.MethodGet, "/api/v1/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dashboard-backup-")

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["backupDate"])
	assert.Len(t, body["workflows"], 1)
	assert.Len(t, body["orders"], 0)

	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "secret", users[0].(map[string]any)["password"])
}

func TestRestoreHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	ctx := context.Background()
	require.NoError(t, ctrl.service.PersistWorkflow(ctx, domain.Workflow{Id: "wf_old", Name: "Old", Steps: []domain.Step{}}))

	t.Run("replaces every collection", func(t *testing.T) {
		archive := `{
			"workflows": [{"id": "wf_new", "name": "New"}],
			"orders": [],
			"products": [{"name": "Widget"}],
			"proformas": [],
			"users": [],
			"activityLogs": []
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/restore", strings.NewReader(archive))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		workflows, err := ctrl.service.GetAllWorkflows(ctx)
		require.NoError(t, err)
		require.Len(t, workflows, 1)
		assert.Equal(t, "wf_new", workflows[0].Id)

		products, err := ctrl.service.GetAllProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Widget", products[0].Name)
		assert.Equal(t, "N/A", products[0].Code)
	})

	t.Run("accepts a multipart upload", func(t *testing.T) {
		archive := `{"workflows": [], "orders": [], "products": []}`
		w := performUpload(t, router, "/api/v1/restore", "backup.json", []byte(archive))
		require.Equal(t, http.StatusOK, w.Code)

		workflows, err := ctrl.service.GetAllWorkflows(ctx)
		require.NoError(t, err)
		assert.Empty(t, workflows)
	})

	t.Run("rejects archives missing required collections", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/restore", strings.NewReader(`{"workflows": [], "orders": []}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
