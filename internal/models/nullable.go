package models

import (
	"bytes"
	"encoding/json"
)

// NullableID is an optional reference in a partial update. Set reports that
// the key was present in the payload; a present null leaves Value nil and
// clears the reference.
type NullableID struct {
	Set   bool
	Value *int64
}

func (n *NullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableID) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

// Clears reports whether the payload explicitly set the reference to null.
func (n NullableID) Clears() bool {
	return n.Set && n.Value == nil
}
