package images

import (
	"context"
	"fmt"

	"github.com/zaqqye/app_catalog/internal/catalog"
)

// Store drivers.
const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
	DriverGitHub     = "github"
)

type StoreConfig struct {
	Driver string
	// Dir is the image directory for the fs and github drivers.
	Dir string
	// ReadOnly makes the fs driver refuse writes.
	ReadOnly bool
	// Committer receives writes for the github driver.
	Committer catalog.Committer
	S3        S3Config
}

// OpenStore selects a Store implementation. Driver defaults to fs.
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		if cfg.ReadOnly {
			return NewBackendStore(catalog.NewReadOnlyBackend(cfg.Dir)), nil
		}
		return NewBackendStore(catalog.NewLocalBackend(cfg.Dir)), nil
	case DriverGitHub:
		if cfg.Committer == nil {
			return nil, fmt.Errorf("github image store requires GitHub credentials")
		}
		return NewBackendStore(catalog.NewRemoteBackend(cfg.Dir, cfg.Committer)), nil
	case DriverS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown image store driver %s", cfg.Driver)
	}
}
