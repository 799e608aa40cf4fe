package catalog

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"
)

// Mode names a storage backend.
type Mode string

const (
	ModeLocal    Mode = "local"
	ModeRemote   Mode = "github"
	ModeReadOnly Mode = "readonly"
)

// Backend persists catalog files. Paths are slash separated and relative to
// the data root (for example "apps/foo.json" or "orders.json").
// Read returns an error satisfying errors.Is(err, fs.ErrNotExist) for missing
// files.
type Backend interface {
	Mode() Mode
	List(ctx context.Context, dir string) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte, message string) error
	Remove(ctx context.Context, name string, message string) error
}

// Committer performs versioned writes against a remote file store.
type Committer interface {
	Commit(ctx context.Context, name string, content []byte, message string) error
	Delete(ctx context.Context, name string, message string) error
}

// checkout reads files from a directory on disk.
type checkout struct {
	root string
}

func (c checkout) abs(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", invalid("path", "invalid storage path "+name)
	}
	return filepath.Join(c.root, filepath.FromSlash(clean[1:])), nil
}

func (c checkout) list(dir string, create bool) ([]string, error) {
	p := c.root
	if dir != "" {
		var err error
		if p, err = c.abs(dir); err != nil {
			return nil, err
		}
	}
	entries, err := os.ReadDir(p)
	if errors.Is(err, fs.ErrNotExist) {
		if create {
			if err := os.MkdirAll(p, 0o755); err != nil {
				return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
			}
		}
		return []string{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "list", Path: dir, Err: err}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func (c checkout) read(name string) ([]byte, error) {
	p, err := c.abs(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: name, Err: err}
	}
	return data, nil
}

// LocalBackend reads and writes a writable data directory.
type LocalBackend struct {
	checkout
}

func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{checkout{root: root}}
}

func (b *LocalBackend) Mode() Mode { return ModeLocal }

func (b *LocalBackend) List(_ context.Context, dir string) ([]string, error) {
	return b.list(dir, true)
}

func (b *LocalBackend) Read(_ context.Context, name string) ([]byte, error) {
	return b.read(name)
}

func (b *LocalBackend) Write(_ context.Context, name string, data []byte, _ string) error {
	p, err := b.abs(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: name, Err: err}
	}
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return &StorageError{Op: "write", Path: name, Err: err}
	}
	return nil
}

func (b *LocalBackend) Remove(_ context.Context, name string, _ string) error {
	p, err := b.abs(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return &StorageError{Op: "remove", Path: name, Err: err}
	}
	return nil
}

// RemoteBackend reads the deployed checkout and sends every write to a
// Committer. Reads never reach the remote store; committed changes become
// visible once the deployment picks them up.
type RemoteBackend struct {
	checkout
	committer Committer
}

func NewRemoteBackend(root string, committer Committer) *RemoteBackend {
	return &RemoteBackend{checkout: checkout{root: root}, committer: committer}
}

func (b *RemoteBackend) Mode() Mode { return ModeRemote }

func (b *RemoteBackend) List(_ context.Context, dir string) ([]string, error) {
	return b.list(dir, false)
}

func (b *RemoteBackend) Read(_ context.Context, name string) ([]byte, error) {
	return b.read(name)
}

func (b *RemoteBackend) Write(ctx context.Context, name string, data []byte, message string) error {
	if _, err := b.abs(name); err != nil {
		return err
	}
	return b.committer.Commit(ctx, name, data, message)
}

func (b *RemoteBackend) Remove(ctx context.Context, name string, message string) error {
	if _, err := b.abs(name); err != nil {
		return err
	}
	return b.committer.Delete(ctx, name, message)
}

// ReadOnlyBackend serves the checkout and refuses all writes.
type ReadOnlyBackend struct {
	checkout
}

func NewReadOnlyBackend(root string) *ReadOnlyBackend {
	return &ReadOnlyBackend{checkout{root: root}}
}

func (b *ReadOnlyBackend) Mode() Mode { return ModeReadOnly }

func (b *ReadOnlyBackend) List(_ context.Context, dir string) ([]string, error) {
	return b.list(dir, false)
}

func (b *ReadOnlyBackend) Read(_ context.Context, name string) ([]byte, error) {
	return b.read(name)
}

func (b *ReadOnlyBackend) Write(context.Context, string, []byte, string) error {
	return ErrWritesDisabled
}

func (b *ReadOnlyBackend) Remove(context.Context, string, string) error {
	return ErrWritesDisabled
}
