// Package filter derives the visible subset of a loaded list from a set of
// independent column filters: AND across dimensions, OR within a
// dimension's selected values.
package filter

import (
	"sort"
	"sync"
)

// Dimension describes one filterable column. Values extracts the item's
// value(s) for the column; single-valued attributes return a one-element
// slice and missing attributes return nil.
type Dimension[T any] struct {
	Name   string
	Values func(T) []string
}

// Set holds the dimensions and the currently selected values per dimension.
// An empty selection means "accept all" for that dimension.
type Set[T any] struct {
	mu         sync.RWMutex
	dimensions []Dimension[T]
	selected   map[string]map[string]struct{}
}

// NewSet creates a filter set over the given dimensions.
func NewSet[T any](dims ...Dimension[T]) *Set[T] {
	return &Set[T]{
		dimensions: dims,
		selected:   make(map[string]map[string]struct{}),
	}
}

// Dimensions returns the configured dimension names in order.
func (s *Set[T]) Dimensions() []string {
	names := make([]string, len(s.dimensions))
	for i, d := range s.dimensions {
		names[i] = d.Name
	}
	return names
}

// Select replaces the selected values for a dimension.
func (s *Set[T]) Select(dimension string, values ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(values) == 0 {
		delete(s.selected, dimension)
		return
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	s.selected[dimension] = set
}

// Toggle flips one value in a dimension's selection. Used by the filter menu.
func (s *Set[T]) Toggle(dimension, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.selected[dimension]
	if set == nil {
		set = make(map[string]struct{})
		s.selected[dimension] = set
	}
	if _, ok := set[value]; ok {
		delete(set, value)
		if len(set) == 0 {
			delete(s.selected, dimension)
		}
		return
	}
	set[value] = struct{}{}
}

// Selected reports whether a value is currently selected in a dimension.
func (s *Set[T]) Selected(dimension, value string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[dimension][value]
	return ok
}

// ClearDimension removes the selection for one dimension.
func (s *Set[T]) ClearDimension(dimension string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, dimension)
}

// Clear removes all selections, restoring the full accumulated set.
func (s *Set[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]map[string]struct{})
}

// Active reports whether any dimension has a non-empty selection.
func (s *Set[T]) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected) > 0
}

// Selections returns the currently selected values per dimension, sorted.
// Dimensions with no selection are omitted.
func (s *Set[T]) Selections() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.selected))
	for dim, sel := range s.selected {
		if len(sel) == 0 {
			continue
		}
		values := make([]string, 0, len(sel))
		for v := range sel {
			values = append(values, v)
		}
		sort.Strings(values)
		out[dim] = values
	}
	return out
}

// Match reports whether an item passes every non-empty dimension. An item
// lacking a filtered attribute fails that dimension rather than panicking.
func (s *Set[T]) Match(item T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, dim := range s.dimensions {
		sel := s.selected[dim.Name]
		if len(sel) == 0 {
			continue
		}
		if !anySelected(dim.Values(item), sel) {
			return false
		}
	}
	return true
}

func anySelected(values []string, sel map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := sel[v]; ok {
			return true
		}
	}
	return false
}

// Apply returns the items passing the current selections, preserving order.
func (s *Set[T]) Apply(items []T) []T {
	if !s.Active() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Options returns the distinct sorted values per dimension, computed from
// the currently loaded items only. Filter menus reflect what has been
// paged in so far, not the full backend set.
func (s *Set[T]) Options(items []T) map[string][]string {
	out := make(map[string][]string, len(s.dimensions))
	for _, dim := range s.dimensions {
		distinct := make(map[string]struct{})
		for _, item := range items {
			for _, v := range dim.Values(item) {
				if v != "" {
					distinct[v] = struct{}{}
				}
			}
		}
		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)
		out[dim.Name] = values
	}
	return out
}
