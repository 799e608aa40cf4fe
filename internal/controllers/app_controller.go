package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/metrics"
	"github.com/zaqqye/app_catalog/internal/models"
	"github.com/zaqqye/app_catalog/internal/utils"
)

type AppController struct {
	Catalog *catalog.Service
}

// saveAppRequest is an AppRecord whose id may arrive as a number.
type saveAppRequest struct {
	models.AppRecord
	ID flexibleID `json:"id"`
}

type deleteAppRequest struct {
	ID flexibleID `json:"id"`
}

// List serves the assembled catalog.
func (a *AppController) List(c *gin.Context) {
	apps, err := a.Catalog.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to read apps", err)
		return
	}
	body, err := json.Marshal(apps)
	if err != nil {
		respondError(c, "Failed to read apps", err)
		return
	}
	etag := utils.ETag(body)
	c.Header("Cache-Control", "no-cache")
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Save creates or fully replaces an app.
func (a *AppController) Save(c *gin.Context) {
	var req saveAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid app payload", "details": err.Error()})
		return
	}
	rec := req.AppRecord
	rec.ID = string(req.ID)
	saved, created, err := a.Catalog.Save(c.Request.Context(), rec)
	op := catalog.OpUpdate
	if created {
		op = catalog.OpCreate
	}
	metrics.ObserveMutation(op, err)
	if err != nil {
		respondError(c, "Failed to save app", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "id": saved.ID, "created": created})
}

// Delete removes an app by id.
func (a *AppController) Delete(c *gin.Context) {
	var req deleteAppRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	err := a.Catalog.Delete(c.Request.Context(), string(req.ID))
	metrics.ObserveMutation(catalog.OpDelete, err)
	if err != nil {
		respondError(c, "Failed to delete app", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
