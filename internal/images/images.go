// Package images ingests PNG uploads for app cards and serves them back.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/zaqqye/app_catalog/internal/catalog"
)

const (
	// MaxImageSize is the largest accepted decoded image.
	MaxImageSize   = 100 * 1024
	pngDataPrefix  = "data:image/png;base64,"
	pngContentType = "image/png"
	// PublicPrefix is the URL path images are served under.
	PublicPrefix = "/images/apps/"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Upload is one image submitted from the admin form.
type Upload struct {
	Title string `json:"title"`
	// Image is a data URL; only PNG is accepted.
	Image         string `json:"image"`
	IsReplacement bool   `json:"isReplacement"`
	// OldTitle, when it differs from Title, causes the images stored under the
	// old title to be removed.
	OldTitle string `json:"oldTitle"`
}

type Service struct {
	store Store
	warn  catalog.WarningFunc
}

func NewService(store Store, warn catalog.WarningFunc) *Service {
	if warn == nil {
		warn = func(catalog.Warning) {}
	}
	return &Service{store: store, warn: warn}
}

// Ingest validates and stores an upload, returning the public path. Images of
// one title are named <title>-a.png, <title>-b.png, ... in upload order; a
// replacement always rewrites the -a image.
func (s *Service) Ingest(ctx context.Context, up Upload) (string, error) {
	if strings.TrimSpace(up.Title) == "" {
		return "", &catalog.ValidationError{Field: "title", Message: "Title is required"}
	}
	data, err := decodePNG(up.Image)
	if err != nil {
		return "", err
	}
	stem := catalog.Sanitize(up.Title)
	if stem == "" {
		return "", &catalog.ValidationError{Field: "title", Message: "title must contain at least one letter or digit"}
	}

	letter := byte('a')
	if !up.IsReplacement {
		existing, err := s.store.List(ctx, stem+"-")
		if err != nil {
			return "", err
		}
		letter, err = nextLetter(stem, existing)
		if err != nil {
			return "", err
		}
	}

	if up.OldTitle != "" && up.OldTitle != up.Title {
		s.removeTitle(ctx, catalog.Sanitize(up.OldTitle))
	}

	// A replacement overwrites the -a image in place.
	name := fmt.Sprintf("%s-%c.png", stem, letter)
	if err := s.store.Put(ctx, name, data); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

// Open returns a stored image by filename.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, &catalog.ValidationError{Field: "path", Message: "Invalid path"}
	}
	return s.store.Open(ctx, name)
}

// ValidName reports whether name is a flat .png filename.
func ValidName(name string) bool {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return path.Ext(name) == ".png"
}

func (s *Service) removeTitle(ctx context.Context, stem string) {
	if stem == "" {
		return
	}
	names, err := s.store.List(ctx, stem+"-")
	if err != nil {
		s.warn(catalog.Warning{Op: "image-cleanup", Path: stem, Err: err})
		return
	}
	for _, n := range names {
		if _, ok := imageLetter(stem, n); !ok {
			continue
		}
		if err := s.store.Delete(ctx, n); err != nil {
			s.warn(catalog.Warning{Op: "image-cleanup", Path: n, Err: err})
		}
	}
}

func decodePNG(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, pngDataPrefix) {
		return nil, &catalog.ValidationError{Field: "image", Message: "Only PNG images are allowed"}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataPrefix))
	if err != nil {
		return nil, &catalog.ValidationError{Field: "image", Message: "image is not valid base64"}
	}
	if len(data) > MaxImageSize {
		return nil, &catalog.ValidationError{
			Field:   "image",
			Message: fmt.Sprintf("Image size exceeds 100KB limit (%dKB)", (len(data)+512)/1024),
		}
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, &catalog.ValidationError{Field: "image", Message: "Only PNG images are allowed"}
	}
	return data, nil
}

// imageLetter extracts the suffix letter of <stem>-<letter>.png.
func imageLetter(stem, name string) (byte, bool) {
	rest, ok := strings.CutPrefix(name, stem+"-")
	if !ok || len(rest) != len("a.png") || !strings.HasSuffix(rest, ".png") {
		return 0, false
	}
	if rest[0] < 'a' || rest[0] > 'z' {
		return 0, false
	}
	return rest[0], true
}

func nextLetter(stem string, existing []string) (byte, error) {
	next := byte('a')
	for _, n := range existing {
		if l, ok := imageLetter(stem, n); ok && l >= next {
			next = l + 1
		}
	}
	if next > 'z' {
		return 0, &catalog.ValidationError{Field: "image", Message: "too many images for this title"}
	}
	return next, nil
}
