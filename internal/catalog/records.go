package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/zaqqye/app_catalog/internal/models"
)

const appsDir = "apps"

// RecordStore keeps one JSON file per app under apps/. The filename follows
// the title; the id inside the file is the identity.
type RecordStore struct {
	backend Backend
	warn    WarningFunc
}

func NewRecordStore(backend Backend, warn WarningFunc) *RecordStore {
	if warn == nil {
		warn = discardWarning
	}
	return &RecordStore{backend: backend, warn: warn}
}

type storedRecord struct {
	file   string
	record models.AppRecord
}

// ListAll returns every stored app in filename order. When two files carry the
// same id only the first is kept.
func (s *RecordStore) ListAll(ctx context.Context) ([]models.AppRecord, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AppRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.record)
	}
	return out, nil
}

func (s *RecordStore) entries(ctx context.Context) ([]storedRecord, error) {
	files, err := s.backend.List(ctx, appsDir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(files))
	out := make([]storedRecord, 0, len(files))
	for _, f := range files {
		if !strings.HasSuffix(f, ".json") {
			continue
		}
		name := path.Join(appsDir, f)
		data, err := s.backend.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		var rec models.AppRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.warn(Warning{Op: opParse, Path: name, Err: err})
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, storedRecord{file: f, record: rec})
	}
	return out, nil
}

// Save writes rec to the file named after its title. If the same id was
// stored under another filename, that file is removed afterwards; a failed
// removal is reported as a warning and does not fail the save.
func (s *RecordStore) Save(ctx context.Context, rec models.AppRecord) error {
	if strings.TrimSpace(rec.Title) == "" {
		return invalid("title", "Title is required")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return invalid("id", "id is required")
	}
	file := RecordFilename(rec.Title)
	if file == "" {
		return invalid("title", "title must contain at least one letter or digit")
	}

	entries, err := s.entries(ctx)
	if err != nil {
		return err
	}
	var stale []string
	for _, e := range entries {
		if e.record.ID == rec.ID && e.file != file {
			stale = append(stale, e.file)
		}
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, path.Join(appsDir, file), data, fmt.Sprintf("Update app %s", rec.Title)); err != nil {
		return err
	}

	for _, old := range stale {
		name := path.Join(appsDir, old)
		if err := s.backend.Remove(ctx, name, fmt.Sprintf("Remove renamed app file %s", old)); err != nil {
			s.warn(Warning{Op: "rename-cleanup", Path: name, AppID: rec.ID, Err: err})
		}
	}
	return nil
}

// Delete removes the file holding id.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "id is required")
	}
	entries, err := s.entries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.record.ID != id {
			continue
		}
		return s.backend.Remove(ctx, path.Join(appsDir, e.file), fmt.Sprintf("Delete app %s", e.record.Title))
	}
	return &NotFoundError{ID: id}
}

// Exists reports whether an app with id is stored.
func (s *RecordStore) Exists(ctx context.Context, id string) (bool, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.record.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func encodeRecord(rec models.AppRecord) ([]byte, error) {
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.Images == nil {
		rec.Images = []string{}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode app %s: %w", rec.ID, err)
	}
	return data, nil
}
