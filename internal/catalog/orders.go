package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

const ordersFile = "orders.json"

// opParse marks warnings and storage errors for files that exist but cannot be
// decoded.
const opParse = "parse"

// OrderStore keeps the display order as a JSON array of ids in orders.json.
type OrderStore struct {
	backend Backend
}

func NewOrderStore(backend Backend) *OrderStore {
	return &OrderStore{backend: backend}
}

// Read returns the persisted order, or an empty slice when none was ever
// written.
func (s *OrderStore) Read(ctx context.Context) ([]string, error) {
	data, err := s.backend.Read(ctx, ordersFile)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids, err := DecodeOrder(data)
	if err != nil {
		// Stored content is not client input: report it as a storage fault.
		return nil, &StorageError{Op: opParse, Path: ordersFile, Err: errors.New(err.Error())}
	}
	return ids, nil
}

// Write replaces the stored order with ids.
func (s *OrderStore) Write(ctx context.Context, ids []string) error {
	if ids == nil {
		return invalid("orders", "Invalid orders format")
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	return s.backend.Write(ctx, ordersFile, data, "Update app order")
}

// DecodeOrder parses a raw JSON payload that must be an array whose elements
// are all strings.
func DecodeOrder(raw []byte) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalid("orders", "Invalid orders format")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, invalid("orders", "Invalid orders format")
	}
	ids := make([]string, 0, len(elems))
	for i, el := range elems {
		var id string
		if err := json.Unmarshal(el, &id); err != nil || bytes.Equal(bytes.TrimSpace(el), []byte("null")) {
			return nil, &ValidationError{Field: fmt.Sprintf("orders[%d]", i), Message: "Invalid orders format"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
