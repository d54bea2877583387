package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a list of strings persisted as a JSON array.
type StringList []string

// Value marshals the list to JSON for persistence.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return marshalJSON(l, "string list")
}

// Scan unmarshals a JSON array column.
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l, "string list")
}

func marshalJSON(v interface{}, label string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", label, err)
	}
	// lib/pq sends []byte as bytea; jsonb columns need text.
	return string(data), nil
}

// scanJSON decodes []byte or string column values into dest. NULL and empty
// values leave dest at its zero value.
func scanJSON(value interface{}, dest interface{}, label string) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
