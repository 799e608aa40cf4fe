package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/zaqqye/app_catalog/internal/catalog"
)

// respondError maps catalog errors onto status codes and {error, details}
// bodies. fallback is the message used for unexpected failures.
func respondError(c *gin.Context, fallback string, err error) {
	var (
		validation *catalog.ValidationError
		notFound   *catalog.NotFoundError
		conflict   *catalog.RemoteConflictError
		remote     *catalog.RemoteWriteError
		partial    *catalog.PartialWriteError
	)
	_ = c.Error(err)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
	case errors.Is(err, catalog.ErrWritesDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &partial):
		log.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": partial.Error(), "resync": true})
	case errors.As(err, &conflict):
		log.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit to GitHub", "details": conflict.Error()})
	case errors.As(err, &remote):
		log.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit to GitHub", "details": remote.Error()})
	default:
		log.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
	}
}
