package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/metrics"
)

type OrderController struct {
	Catalog *catalog.Service
}

func (o *OrderController) List(c *gin.Context) {
	ids, err := o.Catalog.Orders(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to read orders", err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

// Update replaces the display order with the posted JSON array of ids.
func (o *OrderController) Update(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid orders format"})
		return
	}
	ids, err := catalog.DecodeOrder(raw)
	if err != nil {
		respondError(c, "Failed to save orders", err)
		return
	}
	err = o.Catalog.Reorder(c.Request.Context(), ids)
	metrics.ObserveMutation(catalog.OpReorder, err)
	if err != nil {
		respondError(c, "Failed to save orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
