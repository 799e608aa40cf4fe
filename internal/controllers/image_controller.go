package controllers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/app_catalog/internal/images"
	"github.com/zaqqye/app_catalog/internal/metrics"
)

type ImageController struct {
	Images *images.Service
}

func (ic *ImageController) Upload(c *gin.Context) {
	var req images.Upload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image payload"})
		return
	}
	p, err := ic.Images.Ingest(c.Request.Context(), req)
	metrics.ObserveImageUpload(err)
	if err != nil {
		respondError(c, "Failed to save image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": p})
}

func (ic *ImageController) Serve(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("file"), "/")
	if !images.ValidName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid path"})
		return
	}
	rc, err := ic.Images.Open(c.Request.Context(), name)
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	if err != nil {
		respondError(c, "Failed to serve image", err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
