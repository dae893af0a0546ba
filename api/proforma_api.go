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

func (ctrl *Controller) CreateProformaHandler(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	if companyName, _ := raw["companyName"].(string); companyName == "" {
		ctrl.ErrorHandler(c, http.StatusBadRequest, errors.New("companyName is required"))
		return
	}

	delete(raw, "id")
	proforma := migration.Proforma(raw)
	proforma.Total = proforma.ItemsTotal()

	if err := ctrl.service.PersistProforma(c.Request.Context(), proforma); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to create proforma: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityCreate, domain.EntityProforma, proforma.Id, fmt.Sprintf("Created proforma for %q", proforma.CompanyName))
	c.JSON(http.StatusOK, gin.H{"proforma": proforma})
}

func (ctrl *Controller) GetProformasHandler(c *gin.Context) {
	proformas, err := ctrl.service.GetAllProformas(c.Request.Context())
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get proformas: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"proformas": proformas})
}

func (ctrl *Controller) GetProformaHandler(c *gin.Context) {
	proforma, err := ctrl.service.GetProforma(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("proforma not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get proforma: %w", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"proforma": proforma})
}

// UpdateProformaHandler replaces the proforma. Total is recomputed from the
// items at save time; a client-supplied total is ignored.
func (ctrl *Controller) UpdateProformaHandler(c *gin.Context) {
	proformaId := c.Param("id")
	if _, err := ctrl.service.GetProforma(c.Request.Context(), proformaId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("proforma not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get proforma: %w", err))
		}
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}
	raw["id"] = proformaId
	proforma := migration.Proforma(raw)
	proforma.Total = proforma.ItemsTotal()

	if err := ctrl.service.PersistProforma(c.Request.Context(), proforma); err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to update proforma: %w", err))
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityUpdate, domain.EntityProforma, proforma.Id, fmt.Sprintf("Updated proforma for %q", proforma.CompanyName))
	c.JSON(http.StatusOK, gin.H{"proforma": proforma})
}

func (ctrl *Controller) DeleteProformaHandler(c *gin.Context) {
	proformaId := c.Param("id")
	if err := ctrl.service.DeleteProforma(c.Request.Context(), proformaId); err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("proforma not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to delete proforma: %w", err))
		}
		return
	}

	ctrl.logActivity(c, "", "", domain.ActivityDelete, domain.EntityProforma, proformaId, "Deleted proforma")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportProformaHandler streams the proforma as a BOM-prefixed CSV download.
func (ctrl *Controller) ExportProformaHandler(c *gin.Context) {
	proforma, err := ctrl.service.GetProforma(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, srv.ErrNotFound) {
			ctrl.ErrorHandler(c, http.StatusNotFound, errors.New("proforma not found"))
		} else {
			ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get proforma: %w", err))
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvio.ExportFilename(proforma)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvio.ExportProforma(proforma))
}

// ImportProformaItemsHandler parses an uploaded CSV of product codes and
// quantities against the current catalog. Bad rows are reported per row, not
// fatal; nothing is persisted here, the client merges the items into the
// proforma it is editing.
func (ctrl *Controller) ImportProformaItemsHandler(c *gin.Context) {
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

	catalog, err := ctrl.service.GetAllProducts(c.Request.Context())
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusInternalServerError, fmt.Errorf("failed to get products: %w", err))
		return
	}

	items, rowErrors, err := csvio.ImportProformaItems(file, catalog)
	if err != nil {
		ctrl.ErrorHandler(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "errors": rowErrors})
}

func (ctrl *Controller) ProformaItemsSampleHandler(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="proforma-items-sample.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvio.ProformaItemsSample())
}
