package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Stops is an ordered list of stop names stored as a JSON array.
// A nil Stops is stored as SQL NULL.
type Stops []string

func (s Stops) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Stops) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("stops: unsupported type %T", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*s = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("stops: %w", err)
	}
	*s = out
	return nil
}
