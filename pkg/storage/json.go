package storage

import (
	"encoding/json"
	"fmt"
)

// EncodeJSON marshals a value to JSON bytes
func EncodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return data, nil
}

// AppendJSON appends the JSON encoding of v to dst
func AppendJSON(dst []byte, v any) ([]byte, error) {
	data, err := EncodeJSON(v)
	if err != nil {
		return dst, err
	}

	return append(dst, data...), nil
}

// DecodeJSON unmarshals JSON bytes to a value
func DecodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	return nil
}
