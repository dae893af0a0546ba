package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/csvio"
	"orderdesk/domain"
	"orderdesk/migration"
	"orderdesk/srv"
)

func (ctrl *Controller) CreateProductHandler(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	if name, _ := raw["name"].(string); name == "" {
		ctrl.ErrorHandler(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	if currency, _ := raw["currencyType"].(string); currency == "" && ctrl.defaultCurrency != "" {
		raw["currencyType"] = string(ctrl.defaultCurrency)
	}

	delete(raw, "id")
	product := migration.Product(raw)

	if err := ctrl.service.PersistProduct(c.Request.Context(), product); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to create product: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityCreate, domain.EntityProduct, product.Id, fmt.Sprintf("Created product %q", product.Name))
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (ctrl *Controller) GetProductsHandler(c *gin.Context) {
	products, err := ctrl.service.GetAllProducts(c.Request.Context())
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get products: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (ctrl *Controller) GetProductHandler(c *gin.Context) {
	product, err := ctrl.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("product not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get product: %w", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (ctrl *Controller) UpdateProductHandler(c *gin.Context) {
	productId := c.Param("id")
	if _, err := ctrl.service.GetProduct(c.Request.Context(), productId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("product not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get product: %w", err))
		}
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	raw["id"] = productId
	product := migration.Product(raw)

	if err := ctrl.service.PersistProduct(c.Request.Context(), product); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to update product: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityUpdate, domain.EntityProduct, product.Id, fmt.Sprintf("Updated product %q", product.Name))
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (ctrl *Controller) DeleteProductHandler(c *gin.Context) {
	productId := c.Param("id")
	if err := ctrl.service.DeleteProduct(c.Request.Context(), productId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("product not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to delete product: %w", err))
		}
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityDelete, domain.EntityProduct, productId, "Deleted product")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ImportProductsHandler ingests a CSV file uploaded as the "file" form
// field. The whole file is rejected on the first malformed row; nothing is
// persisted in that case.
func (ctrl *Controller) ImportProductsHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, errors.New("file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	products, err := csvio.ImportProducts(file)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	for _, product := range products {
		if err := ctrl.service.PersistProduct(ctx, product); err != nil {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to persist product %q: %w", product.Code, err))
			return
		}
	}

	ctrl.logActivity(c, "", "", domain.ActivityImport, domain.EntityProduct, "", fmt.Sprintf("Imported %d products from CSV", len(products)))
	c.JSON(http.StatusOK, gin.H{"imported": len(products), "products": products})
}

func (ctrl *Controller) ProductImportSampleHandler(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="products-sample.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvio.ProductImportSample())
}
