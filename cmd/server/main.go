package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/config"
	"github.com/zaqqye/app_catalog/internal/database"
	"github.com/zaqqye/app_catalog/internal/github"
	"github.com/zaqqye/app_catalog/internal/images"
	"github.com/zaqqye/app_catalog/internal/metrics"
	"github.com/zaqqye/app_catalog/internal/middleware"
	"github.com/zaqqye/app_catalog/internal/routes"
	"github.com/zaqqye/app_catalog/internal/utils"
	"github.com/zaqqye/app_catalog/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg)

	ctx := context.Background()

	var gh *github.Client
	if cfg.HasGitHubCredentials() {
		timeout, _ := strconv.Atoi(cfg.GitHubTimeoutSec)
		client, err := github.New(github.Config{
			APIURL:  cfg.GitHubAPIURL,
			Token:   cfg.GitHubToken,
			Repo:    cfg.GitHubRepo,
			Branch:  cfg.GitHubBranch,
			Timeout: time.Duration(timeout) * time.Second,
		}, nil)
		if err != nil {
			log.Fatalf("github client: %v", err)
		}
		gh = client
	}

	backend, err := openBackend(cfg, gh)
	if err != nil {
		log.Fatalf("storage backend: %v", err)
	}

	hub := ws.NewCatalogHub()
	go hub.Run()

	notifiers := catalog.Notifiers{hub}
	warnings := []catalog.WarningFunc{logWarning}

	var audit *database.AuditLog
	if database.Enabled(cfg) {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		audit = &database.AuditLog{DB: db, Backend: string(backend.Mode())}
		notifiers = append(notifiers, audit)
		warnings = append(warnings, audit.Warn)
	}
	warn := catalog.Warnings(warnings...)

	svc := catalog.NewService(backend, catalog.WithNotifier(notifiers), catalog.WithWarnings(warn))

	var imageCommitter catalog.Committer
	if gh != nil {
		imageCommitter = github.Scoped{Client: gh, Prefix: cfg.GitHubImagesPath}
	}
	imageStore, err := images.OpenStore(ctx, images.StoreConfig{
		Driver:    cfg.ImageDriver(),
		Dir:       cfg.ImagesDir,
		ReadOnly:  backend.Mode() == catalog.ModeReadOnly,
		Committer: imageCommitter,
		S3: images.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		},
	})
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	creds, err := utils.NewCredentials(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("admin credentials: %v", err)
	}

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	routes.Register(r, routes.Deps{
		Catalog:     svc,
		Images:      images.NewService(imageStore, warn),
		Hub:         hub,
		Credentials: creds,
		Audit:       audit,
	}, cfg)

	log.WithFields(log.Fields{
		"backend":    backend.Mode(),
		"images":     cfg.ImageDriver(),
		"production": cfg.Production,
		"audit":      audit != nil,
	}).Info("app catalog starting")

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Println("server exited with error:", err)
		os.Exit(1)
	}
}

func openBackend(cfg *config.Config, gh *github.Client) (catalog.Backend, error) {
	switch cfg.Backend() {
	case config.BackendLocal:
		return catalog.NewLocalBackend(cfg.DataDir), nil
	case config.BackendGitHub:
		if gh == nil {
			return nil, fmt.Errorf("STORAGE_BACKEND=github requires GITHUB_TOKEN and GITHUB_REPO")
		}
		return catalog.NewRemoteBackend(cfg.DataDir, github.Scoped{Client: gh, Prefix: cfg.GitHubDataPath}), nil
	default:
		return catalog.NewReadOnlyBackend(cfg.DataDir), nil
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Production {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func logWarning(w catalog.Warning) {
	metrics.ObserveWarning(w.Op)
	log.WithFields(log.Fields{
		"op":     w.Op,
		"path":   w.Path,
		"app_id": w.AppID,
	}).WithError(w.Err).Warn("catalog storage drift")
}
