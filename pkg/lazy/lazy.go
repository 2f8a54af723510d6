// SPDX-License-Identifier: MPL-2.0

// Package lazy provides deferred value cells.
//
// A cell holds either an explicit value or a function that computes one.
// The first successful Get fixes the value; later Set calls fail with
// ErrFinalized. Cells are safe for concurrent use.
package lazy

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnset is returned by Get when the cell has neither a value nor a
	// function to compute one.
	ErrUnset = errors.New("value not set")

	// ErrFinalized is returned when a cell is modified after its value was
	// read or after it was explicitly finalized.
	ErrFinalized = errors.New("value already finalized")
)

type (
	// Value is a deferred cell of type T. The zero value is an unnamed,
	// unset cell ready for use.
	Value[T any] struct {
		mu        sync.Mutex
		name      string
		val       T
		fn        func() (T, error)
		present   bool
		computed  bool
		finalized bool
	}

	// CellError names the cell an operation failed on.
	CellError struct {
		Name string
		Err  error
	}
)

// New returns an unset cell labelled with name. The name only appears in
// error messages.
func New[T any](name string) *Value[T] {
	return &Value[T]{name: name}
}

// Of returns a cell that already holds v.
func Of[T any](name string, v T) *Value[T] {
	return &Value[T]{name: name, val: v, present: true, computed: true}
}

// Error implements the error interface.
func (e *CellError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *CellError) Unwrap() error { return e.Err }

// Name returns the label given at construction.
func (v *Value[T]) Name() string { return v.name }

// Set stores an explicit value.
func (v *Value[T]) Set(x T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.finalized {
		return v.fault(ErrFinalized)
	}
	v.val, v.fn = x, nil
	v.present, v.computed = true, true
	return nil
}

// SetFunc stores a function evaluated on the first Get.
func (v *Value[T]) SetFunc(fn func() (T, error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.finalized {
		return v.fault(ErrFinalized)
	}
	var zero T
	v.val, v.fn = zero, fn
	v.present, v.computed = fn != nil, false
	return nil
}

// SetDefault installs fn only when the cell holds nothing yet. It reports
// whether fn was installed.
func (v *Value[T]) SetDefault(fn func() (T, error)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.present || v.finalized || fn == nil {
		return false
	}
	v.fn, v.present = fn, true
	return true
}

// Get returns the value, computing it on first use. A successful Get
// finalizes the cell. A failed computation leaves the cell unchanged.
func (v *Value[T]) Get() (T, error) {
	v.mu.Lock()
	if v.computed {
		v.finalized = true
		val := v.val
		v.mu.Unlock()
		return val, nil
	}
	fn := v.fn
	v.mu.Unlock()

	var zero T
	if fn == nil {
		return zero, v.fault(ErrUnset)
	}
	// fn runs unlocked so it may read other cells.
	val, err := fn()
	if err != nil {
		return zero, &CellError{Name: v.name, Err: err}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.computed {
		v.val, v.fn = val, nil
		v.computed = true
	}
	v.finalized = true
	return v.val, nil
}

// MustGet is Get for cells known to be resolvable. It panics on error.
func (v *Value[T]) MustGet() T {
	val, err := v.Get()
	if err != nil {
		panic(err)
	}
	return val
}

// IsPresent reports whether the cell holds a value or a function.
func (v *Value[T]) IsPresent() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.present
}

// Finalize forbids further modification without computing the value.
func (v *Value[T]) Finalize() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.finalized = true
}

// Finalized reports whether the cell rejects modification.
func (v *Value[T]) Finalized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.finalized
}

func (v *Value[T]) fault(err error) error {
	return &CellError{Name: v.name, Err: err}
}

// Map returns a cell derived from src by f, evaluated when the new cell is
// first read.
func Map[T, U any](name string, src *Value[T], f func(T) (U, error)) *Value[U] {
	out := New[U](name)
	out.fn = func() (U, error) {
		t, err := src.Get()
		if err != nil {
			var zero U
			return zero, err
		}
		return f(t)
	}
	out.present = true
	return out
}
