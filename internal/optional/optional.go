// Package optional carries per-field presence for sparse updates.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a field that may or may not have been supplied by the caller.
// A JSON field that is absent or null decodes to an unset Value.
type Value[T any] struct {
	V   T
	Set bool
}

// Of returns a set Value.
func Of[T any](v T) Value[T] {
	return Value[T]{V: v, Set: true}
}

// Get returns the held value and whether it was supplied.
func (o Value[T]) Get() (T, bool) {
	return o.V, o.Set
}

// Apply writes the value into dst when set and reports whether it did.
func (o Value[T]) Apply(dst *T) bool {
	if !o.Set {
		return false
	}
	*dst = o.V
	return true
}

func (o *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.V, o.Set = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.V); err != nil {
		return err
	}
	o.Set = true
	return nil
}

func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}
