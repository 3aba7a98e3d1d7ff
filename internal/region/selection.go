package region

import (
	"slices"
	"strings"
)

// Selection is an ordered set of region names. The zero value is empty and
// ready to use.
type Selection struct {
	regions []string
}

// NewSelection builds a selection from names, skipping blanks and duplicates.
func NewSelection(names ...string) Selection {
	var s Selection
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name unless it is blank or already selected. It reports whether
// the selection changed.
func (s *Selection) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(s.regions, name) {
		return false
	}
	s.regions = append(s.regions, name)
	return true
}

// Remove drops name, keeping the relative order of the remaining regions.
func (s *Selection) Remove(name string) bool {
	idx := slices.Index(s.regions, name)
	if idx < 0 {
		return false
	}
	s.regions = slices.Delete(slices.Clone(s.regions), idx, idx+1)
	return true
}

// SetSingle replaces the selection with exactly one region.
func (s *Selection) SetSingle(name string) {
	s.regions = nil
	s.Add(name)
}

// Regions returns a copy of the selected regions in order.
func (s Selection) Regions() []string { return slices.Clone(s.regions) }

// Len returns the number of selected regions.
func (s Selection) Len() int { return len(s.regions) }

// Contains reports whether name is selected.
func (s Selection) Contains(name string) bool { return slices.Contains(s.regions, name) }

// First returns the first selected region, or "".
func (s Selection) First() string {
	if len(s.regions) == 0 {
		return ""
	}
	return s.regions[0]
}

// Filter returns catalog entries not yet selected whose name contains query,
// case-insensitively.
func (s Selection) Filter(c Catalog, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []string
	for _, n := range c.names {
		if s.Contains(n) {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
		}
	}
	return out
}
