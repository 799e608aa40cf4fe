package catalog

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zaqqye/app_catalog/internal/models"
)

// Service runs the admin mutations across the record and order stores. Each
// call is one request/response cycle; multi-step flows are not atomic.
type Service struct {
	backend  Backend
	records  *RecordStore
	orders   *OrderStore
	notifier Notifier
	warn     WarningFunc
	newID    func() string
	now      func() time.Time
}

type Option func(*Service)

// WithNotifier registers the receiver of change events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithWarnings registers the receiver of storage drift warnings.
func WithWarnings(w WarningFunc) Option {
	return func(s *Service) { s.warn = w }
}

// WithIDGenerator overrides the id source used by Create.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func NewService(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		warn:    discardWarning,
		newID:   timestampIDs(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.records = NewRecordStore(backend, s.warn)
	s.orders = NewOrderStore(backend)
	return s
}

// Mode reports the storage backend in use.
func (s *Service) Mode() Mode { return s.backend.Mode() }

// Catalog returns all apps in display order.
func (s *Service) Catalog(ctx context.Context) ([]models.AppRecord, error) {
	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Read(ctx)
	var se *StorageError
	if errors.As(err, &se) && se.Op == opParse {
		s.warn(Warning{Op: opParse, Path: ordersFile, Err: err})
		order, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		order = DerivedOrder(records)
	}
	return Assemble(records, order), nil
}

// Orders returns the persisted display order.
func (s *Service) Orders(ctx context.Context) ([]string, error) {
	return s.orders.Read(ctx)
}

// Save creates rec when its id is blank or unknown and updates it otherwise.
// It reports whether a new app was created.
func (s *Service) Save(ctx context.Context, rec models.AppRecord) (models.AppRecord, bool, error) {
	if strings.TrimSpace(rec.ID) != "" {
		exists, err := s.records.Exists(ctx, rec.ID)
		if err != nil {
			return rec, false, err
		}
		if exists {
			saved, err := s.Update(ctx, rec)
			return saved, false, err
		}
	}
	saved, err := s.Create(ctx, rec)
	return saved, true, err
}

// Create stores a new app and appends its id to the display order.
func (s *Service) Create(ctx context.Context, rec models.AppRecord) (models.AppRecord, error) {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = s.newID()
	}
	rec, err := normalize(rec)
	if err != nil {
		return rec, err
	}
	if err := s.records.Save(ctx, rec); err != nil {
		return rec, err
	}

	order, err := s.orders.Read(ctx)
	if err != nil {
		return rec, &PartialWriteError{Applied: "app saved", Failed: "reading order", Err: err}
	}
	if !slices.Contains(order, rec.ID) {
		order = append(order, rec.ID)
		if err := s.orders.Write(ctx, order); err != nil {
			return rec, &PartialWriteError{Applied: "app saved", Failed: "updating order", Err: err}
		}
	}
	s.notify(OpCreate, rec.ID)
	return rec, nil
}

// Update replaces every field of an existing app except its id. A changed
// title moves the record to a new file.
func (s *Service) Update(ctx context.Context, rec models.AppRecord) (models.AppRecord, error) {
	rec, err := normalize(rec)
	if err != nil {
		return rec, err
	}
	if err := s.records.Save(ctx, rec); err != nil {
		return rec, err
	}
	s.notify(OpUpdate, rec.ID)
	return rec, nil
}

// Delete removes the app and drops its id from the display order.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	order, err := s.orders.Read(ctx)
	if err != nil {
		return &PartialWriteError{Applied: "app deleted", Failed: "reading order", Err: err}
	}
	if slices.Contains(order, id) {
		order = slices.DeleteFunc(order, func(v string) bool { return v == id })
		if err := s.orders.Write(ctx, order); err != nil {
			return &PartialWriteError{Applied: "app deleted", Failed: "updating order", Err: err}
		}
	}
	s.notify(OpDelete, id)
	return nil
}

// Reorder stores ids as the new display order without merging.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	if err := s.orders.Write(ctx, ids); err != nil {
		return err
	}
	s.notify(OpReorder, "")
	return nil
}

func (s *Service) notify(op, id string) {
	if s.notifier == nil {
		return
	}
	s.notifier.CatalogChanged(ChangeEvent{Op: op, ID: id, At: s.now().UTC()})
}

func normalize(rec models.AppRecord) (models.AppRecord, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return rec, invalid("title", "Title is required")
	}
	rec.Category = strings.ToLower(strings.TrimSpace(rec.Category))
	if rec.Category == "" {
		rec.Category = models.CategoryInternal
	}
	if !models.IsValidCategory(rec.Category) {
		return rec, invalid("category", "category must be internal or external")
	}
	tags := make([]string, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	rec.Tags = tags
	return rec, nil
}

// timestampIDs returns a generator of "app-<unix millis>" ids that never
// repeats within the process.
func timestampIDs() func() string {
	var mu sync.Mutex
	var last int64
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n := time.Now().UnixMilli()
		if n <= last {
			n = last + 1
		}
		last = n
		return "app-" + strconv.FormatInt(n, 10)
	}
}
