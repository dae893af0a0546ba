package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/domain"
)

func TestProformaCrud(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	t.Run("create requires a company name", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/api/v1/proformas", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var proformaId string
	t.Run("create recomputes the total", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPost, "/api/v1/proformas", gin.H{
			"companyName": "Acme GmbH",
			"total":       999,
			"items": []gin.H{
				{"productId": "prod_1", "name": "Widget", "code": "W-1", "quantity": 3, "price": 10},
				{"productId": "prod_2", "name": "Gadget", "code": "G-1", "quantity": 2, "price": 5.5},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		proforma := decodeBody(t, w)["proforma"].(map[string]any)
		proformaId = proforma["id"].(string)
		assert.Equal(t, float64(41), proforma["total"])
	})

	t.Run("update recomputes the total", func(t *testing.T) {
		w := performRequest(t, router, http.MethodPut, "/api/v1/proformas/"+proformaId, gin.H{
			"companyName": "Acme GmbH",
			"items": []gin.H{
				{"productId": "prod_1", "name": "Widget", "code": "W-1", "quantity": 1, "price": 10},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		stored, err := ctrl.service.GetProforma(context.Background(), proformaId)
		require.NoError(t, err)
		assert.Equal(t, float64(10), stored.Total)
	})

	t.Run("delete", func(t *testing.T) {
		w := performRequest(t, router, http.MethodDelete, "/api/v1/proformas/"+proformaId, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w = performRequest(t, router, http.MethodDelete, "/api/v1/proformas/"+proformaId, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExportProformaHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	proforma := domain.Proforma{
		Id:          "prof_export",
		CompanyName: "Acme GmbH",
		Date:        "2024-01-01T00:00:00.000Z",
		Items: []domain.ProformaItem{
			{ProductId: "prod_1", Name: "Widget", Code: "W-1", Quantity: 3, Price: 10, Currency: domain.CurrencyUSD},
		},
		Total: 30,
	}
	require.NoError(t, ctrl.service.PersistProforma(context.Background(), proforma))

	w := performRequest(t, router, http.MethodGet, "/api/v1/proformas/prof_export/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "proforma-Acme_GmbH.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "\ufeff"))
	assert.Contains(t, w.Body.String(), "Widget,W-1")
	assert.Contains(t, w.Body.String(), "total,30")

	w = performRequest(t, router, http.MethodGet, "/api/v1/proformas/missing/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportProformaItemsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	ctx := context.Background()
	require.NoError(t, ctrl.service.PersistProduct(ctx, domain.Product{
		Id: "prod_widget", Name: "Widget", Code: "W-1", CurrencyPrice: "10", CurrencyType: domain.CurrencyUSD,
	}))

	csv := "product_code,quantity\nW-1,3\nMISSING,2\nW-1,0\n"
	w := performUpload(t, router, "/api/v1/proformas/items/import", "items.csv", []byte(csv))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "W-1", item["code"])
	assert.Equal(t, float64(3), item["quantity"])

	rowErrors := body["errors"].([]any)
	assert.Len(t, rowErrors, 2)
}

func TestProformaItemsSampleHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewTestController(t)
	router := DefineRoutes(ctrl)

	w := performRequest(t, router, http.MethodGet, "/api/v1/proformas/items/import/sample", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "proforma-items-sample.csv")
	assert.Contains(t, w.Body.String(), "product_code,quantity")
}
