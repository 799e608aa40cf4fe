package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/config"
	"github.com/zaqqye/app_catalog/internal/controllers"
	"github.com/zaqqye/app_catalog/internal/database"
	"github.com/zaqqye/app_catalog/internal/images"
	"github.com/zaqqye/app_catalog/internal/middleware"
	"github.com/zaqqye/app_catalog/internal/utils"
	"github.com/zaqqye/app_catalog/internal/ws"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Catalog     *catalog.Service
	Images      *images.Service
	Hub         *ws.CatalogHub
	Credentials *utils.Credentials
	Audit       *database.AuditLog // optional
}

func Register(r *gin.Engine, deps Deps, cfg *config.Config) {
	authCfg := middleware.AuthConfig{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    time.Duration(cfg.SessionTTLHoursInt()) * time.Hour,
		SecureCookie:  cfg.Production,
	}

	// Controllers
	appCtrl := &controllers.AppController{Catalog: deps.Catalog}
	orderCtrl := &controllers.OrderController{Catalog: deps.Catalog}
	authCtrl := &controllers.AuthController{Credentials: deps.Credentials, Auth: authCfg}
	imageCtrl := &controllers.ImageController{Images: deps.Images}
	adminCtrl := &controllers.AdminController{Catalog: deps.Catalog, Audit: deps.Audit}

	r.GET("/healthz", adminCtrl.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/catalog", ws.CatalogHandler(deps.Hub))
	r.GET("/images/apps/*file", imageCtrl.Serve)

	// Public
	api := r.Group("/api")
	{
		api.GET("/apps", appCtrl.List)
		api.GET("/orders", orderCtrl.List)
		api.GET("/auth", authCtrl.Status)
		api.POST("/auth", authCtrl.Handle)
	}

	// Admin session required
	admin := api.Group("", middleware.RequireAdmin(authCfg))
	{
		admin.POST("/apps", appCtrl.Save)
		admin.DELETE("/apps", appCtrl.Delete)
		admin.POST("/orders", orderCtrl.Update)
		admin.POST("/images", imageCtrl.Upload)
		admin.GET("/audit", adminCtrl.Events)
	}

	// Admin UI is never served in production
	r.GET("/admin", middleware.HideInProduction(cfg.Production), adminCtrl.Page)
}
