// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"iter"
	"slices"
)

// Settings is a string to string map that iterates in insertion order.
// Overwriting a key keeps its original position. The zero value is an empty
// map ready for use.
type Settings struct {
	keys   []string
	values map[string]string
}

// New returns empty settings.
func New() *Settings {
	return &Settings{values: make(map[string]string)}
}

// FromPairs builds settings from alternating key/value arguments. A trailing
// key without a value is ignored.
func FromPairs(kv ...string) *Settings {
	s := New()
	for i := 0; i+1 < len(kv); i += 2 {
		s.Put(kv[i], kv[i+1])
	}
	return s
}

// Get returns the value for key and whether it exists.
func (s *Settings) Get(key string) (string, bool) {
	if s == nil || s.values == nil {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}

// GetOr returns the value for key or def when the key is absent.
func (s *Settings) GetOr(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key exists.
func (s *Settings) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Put sets key to value.
func (s *Settings) Put(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// PutAll copies every entry of other, in other's order.
func (s *Settings) PutAll(other *Settings) {
	for k, v := range other.All() {
		s.Put(k, v)
	}
}

// Remove deletes key and reports whether it was present.
func (s *Settings) Remove(key string) bool {
	if _, ok := s.Get(key); !ok {
		return false
	}
	delete(s.values, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
	return true
}

// Keys returns a copy of the keys in iteration order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Len returns the number of entries.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// All iterates over the entries in order.
func (s *Settings) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if s == nil {
			return
		}
		for _, k := range s.keys {
			if !yield(k, s.values[k]) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	c := New()
	c.PutAll(s)
	return c
}

// Equal reports whether both hold the same entries in the same order.
func (s *Settings) Equal(other *Settings) bool {
	if s.Len() != other.Len() {
		return false
	}
	if !slices.Equal(s.Keys(), other.Keys()) {
		return false
	}
	for k, v := range s.All() {
		if ov, _ := other.Get(k); ov != v {
			return false
		}
	}
	return true
}
