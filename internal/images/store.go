package images

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/zaqqye/app_catalog/internal/catalog"
)

// Store holds image blobs by flat filename.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// BackendStore keeps images in a catalog backend rooted at the images
// directory, so local, GitHub and read-only deployments store images the same
// way they store app records.
type BackendStore struct {
	backend catalog.Backend
}

func NewBackendStore(backend catalog.Backend) *BackendStore {
	return &BackendStore{backend: backend}
}

func (s *BackendStore) Put(ctx context.Context, name string, data []byte) error {
	return s.backend.Write(ctx, name, data, "Add image "+name)
}

func (s *BackendStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, err := s.backend.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *BackendStore) List(ctx context.Context, prefix string) ([]string, error) {
	files, err := s.backend.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *BackendStore) Delete(ctx context.Context, name string) error {
	return s.backend.Remove(ctx, name, "Remove image "+name)
}
