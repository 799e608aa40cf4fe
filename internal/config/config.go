package config

import (
	"os"
	"strconv"
	"strings"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendLocal    = "local"
	BackendGitHub   = "github"
	BackendReadOnly = "readonly"
)

type Config struct {
	Port       string
	AppEnv     string
	Production bool // VERCEL=1 or APP_ENV=production; computed once
	LogLevel   string
	// Storage
	StorageBackend string // empty: chosen from Production and GitHub credentials
	DataDir        string
	ImagesDir      string
	ImageStore     string // fs | s3 | github
	// GitHub Contents API
	GitHubAPIURL     string
	GitHubToken      string
	GitHubRepo       string // owner/name
	GitHubBranch     string
	GitHubDataPath   string
	GitHubImagesPath string
	GitHubTimeoutSec string
	// S3 image store
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3PathStyle bool
	// Admin session
	AdminUsername   string
	AdminPassword   string
	SessionSecret   string
	SessionTTLHours string
	// Audit log (disabled when DBHost is empty)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func Load() *Config {
	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		AppEnv:           getenv("APP_ENV", "development"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		StorageBackend:   strings.ToLower(getenv("STORAGE_BACKEND", "")),
		DataDir:          getenv("DATA_DIR", "data"),
		ImagesDir:        getenv("IMAGES_DIR", "public/images/apps"),
		ImageStore:       strings.ToLower(getenv("IMAGE_STORE", "")),
		GitHubAPIURL:     getenv("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:      getenv("GITHUB_TOKEN", ""),
		GitHubRepo:       getenv("GITHUB_REPO", ""),
		GitHubBranch:     getenv("GITHUB_BRANCH", "main"),
		GitHubDataPath:   getenv("GITHUB_DATA_PATH", "data"),
		GitHubImagesPath: getenv("GITHUB_IMAGES_PATH", "public/images/apps"),
		GitHubTimeoutSec: getenv("GITHUB_TIMEOUT_SECONDS", "15"),
		S3Bucket:         getenv("S3_BUCKET", ""),
		S3Region:         getenv("S3_REGION", "us-east-1"),
		S3Endpoint:       getenv("S3_ENDPOINT", ""),
		S3Prefix:         getenv("S3_PREFIX", "images/apps"),
		S3PathStyle:      strings.EqualFold(getenv("S3_PATH_STYLE", "false"), "true"),
		AdminUsername:    getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getenv("ADMIN_PASSWORD", "emojot2024"),
		SessionSecret:    getenv("SESSION_SECRET", "supersecret_change_me"),
		SessionTTLHours:  getenv("SESSION_TTL_HOURS", "168"),
		DBHost:           getenv("DB_HOST", ""),
		DBPort:           getenv("DB_PORT", "5432"),
		DBUser:           getenv("DB_USER", "postgres"),
		DBPassword:       getenv("DB_PASSWORD", "postgres"),
		DBName:           getenv("DB_NAME", "app_catalog"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
	}
	cfg.Production = os.Getenv("VERCEL") == "1" || strings.EqualFold(cfg.AppEnv, "production")
	return cfg
}

// HasGitHubCredentials reports whether commits to GitHub can be made.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != "" && c.GitHubRepo != ""
}

// Backend resolves which storage backend the process runs with. Development
// always writes locally; production commits to GitHub when credentials are
// present and is read-only otherwise.
func (c *Config) Backend() string {
	switch c.StorageBackend {
	case BackendLocal, BackendGitHub, BackendReadOnly:
		return c.StorageBackend
	}
	if !c.Production {
		return BackendLocal
	}
	if c.HasGitHubCredentials() {
		return BackendGitHub
	}
	return BackendReadOnly
}

// ImageDriver resolves the image store driver, following the storage backend
// unless IMAGE_STORE is set.
func (c *Config) ImageDriver() string {
	if c.ImageStore != "" {
		return c.ImageStore
	}
	if c.Backend() == BackendGitHub {
		return "github"
	}
	return "fs"
}

// SessionTTLHoursInt parses SessionTTLHours, defaulting to a week.
func (c *Config) SessionTTLHoursInt() int {
	n, err := strconv.Atoi(c.SessionTTLHours)
	if err != nil || n <= 0 {
		return 24 * 7
	}
	return n
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
