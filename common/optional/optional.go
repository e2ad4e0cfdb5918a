// Package optional models scalar parameters whose absence must be
// distinguished from their zero value.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a T that is either present or absent. The zero Value is absent.
type Value[T any] struct {
	value T
	set   bool
}

// Of returns a present Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// IsSet reports whether a value is present.
func (v Value[T]) IsSet() bool {
	return v.set
}

// Get returns the held value and whether it is present.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.set
}

// OrElse returns the held value, or def when absent.
func (v Value[T]) OrElse(def T) T {
	if !v.set {
		return def
	}
	return v.value
}

// UnmarshalJSON is only invoked for keys present in the document; an
// explicit null leaves the value absent.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value[T]{}
		return nil
	}

	var inner T
	if err := json.Unmarshal(data, &inner); err != nil {
		return err
	}
	*v = Of(inner)
	return nil
}

// MarshalJSON writes null for an absent value.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
