package config

import (
	"sort"
	"strings"
)

// Snapshot is one fully merged configuration. It is never mutated after
// construction; accessors hand out copies of nested mappings.
type Snapshot struct {
	data map[string]any
}

// NewSnapshot copies data into a new snapshot.
func NewSnapshot(data map[string]any) *Snapshot {
	return &Snapshot{data: cloneMap(data)}
}

// Lookup walks dotPath through nested mappings.
func (s *Snapshot) Lookup(dotPath string) (any, bool) {
	if s == nil {
		return nil, false
	}
	if dotPath == "" {
		return s.All(), true
	}

	var current any = s.data
	for _, segment := range strings.Split(dotPath, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		value, exists := m[segment]
		if !exists {
			return nil, false
		}
		current = value
	}
	return cloneValue(current), true
}

// Get returns the value at dotPath, or def the moment a segment is absent
// or the value reached so far is not a mapping.
func (s *Snapshot) Get(dotPath string, def any) any {
	if value, ok := s.Lookup(dotPath); ok {
		return value
	}
	return def
}

// Has reports whether dotPath resolves, even to a nil value.
func (s *Snapshot) Has(dotPath string) bool {
	_, ok := s.Lookup(dotPath)
	return ok
}

// String returns the string at dotPath or "" when absent or not a string.
func (s *Snapshot) String(dotPath string) string {
	v, _ := s.Get(dotPath, "").(string)
	return v
}

// Bool returns the boolean at dotPath or false.
func (s *Snapshot) Bool(dotPath string) bool {
	v, _ := s.Get(dotPath, false).(bool)
	return v
}

// Map returns a copy of the mapping at dotPath, or nil.
func (s *Snapshot) Map(dotPath string) map[string]any {
	m, _ := asMap(s.Get(dotPath, nil))
	return m
}

// All returns a deep copy of the whole snapshot.
func (s *Snapshot) All() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return cloneMap(s.data)
}

// Keys returns the sorted top-level keys.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// With returns a new snapshot with overrides deep-merged over s.
func (s *Snapshot) With(overrides map[string]any) *Snapshot {
	return &Snapshot{data: DeepMerge(s.All(), overrides)}
}
