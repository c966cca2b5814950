package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RawJSON is an encoded JSON document stored in a TEXT column.
// An empty value is stored as NULL and rendered as null.
type RawJSON []byte

// MustJSON encodes v, panicking on values that cannot be encoded.
func MustJSON(v any) RawJSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encode json: %v", err))
	}
	return b
}

func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *RawJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case string:
		*j = RawJSON(v)
	case []byte:
		*j = append(RawJSON(nil), v...)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", src)
	}
	return nil
}

func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *RawJSON) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*j = nil
		return nil
	}
	*j = append(RawJSON(nil), b...)
	return nil
}

// Decode unmarshals the document into v. An empty document leaves v untouched.
func (j RawJSON) Decode(v any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, v)
}
