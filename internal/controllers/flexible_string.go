package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// flexibleID accepts an id sent either as a JSON string or as a number, as
// older admin clients posted timestamp ids unquoted.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		*f = flexibleID(num.String())
		return nil
	}
	return fmt.Errorf("id: expected string or number, got %s", string(data))
}
