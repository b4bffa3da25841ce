// Package optional provides a JSON field that remembers whether it was sent.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field distinguishes an absent JSON member, an explicit null and a value.
// The zero value is absent.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a present field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a present field holding JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the member exists,
// which is what marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// HasValue reports whether the field was sent with a non-null value.
func (f Field[T]) HasValue() bool {
	return f.Set && !f.Null
}
