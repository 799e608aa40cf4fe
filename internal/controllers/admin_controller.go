package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/database"
)

type AdminController struct {
	Catalog *catalog.Service
	Audit   *database.AuditLog // nil when no audit database is configured
}

const adminPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>App catalog admin</title></head>
<body>
<h1>App catalog admin</h1>
<p>Storage backend: <code>{{backend}}</code></p>
<p>Sign in with <code>POST /api/auth</code>, then manage apps through
<code>/api/apps</code>, <code>/api/orders</code> and <code>/api/images</code>.
Changes are announced on <code>/ws/catalog</code>.</p>
</body>
</html>`

// Page serves the admin landing page. Routing hides it in production.
func (a *AdminController) Page(c *gin.Context) {
	body := []byte(strings.Replace(adminPage, "{{backend}}", string(a.Catalog.Mode()), 1))
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// Events lists recent audit log entries.
func (a *AdminController) Events(c *gin.Context) {
	if a.Audit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit log is not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := a.Audit.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (a *AdminController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": a.Catalog.Mode()})
}
