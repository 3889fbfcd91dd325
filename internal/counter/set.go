// Package counter implements the named stitch counters used while tracking a session.
package counter

import (
	"sort"
	"strings"
)

// Set maps a counter name to its current value. Values never go below zero.
type Set struct {
	Values map[string]int `json:"values"`
}

// New returns a Set seeded with the given names, each at zero.
// Blank and duplicate names are skipped.
func New(names ...string) Set {
	s := Set{Values: make(map[string]int, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name with value 0. It reports whether a counter was added;
// blank names and names already present are ignored.
func (s *Set) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if s.Values == nil {
		s.Values = make(map[string]int)
	}
	if _, ok := s.Values[name]; ok {
		return false
	}
	s.Values[name] = 0
	return true
}

// Remove deletes name if present.
func (s *Set) Remove(name string) {
	delete(s.Values, name)
}

// Increment adds amount to name and returns the new value.
// A missing counter starts from zero.
func (s *Set) Increment(name string, amount int) int {
	return s.apply(name, amount)
}

// Decrement subtracts amount from name and returns the new value,
// floored at zero.
func (s *Set) Decrement(name string, amount int) int {
	return s.apply(name, -amount)
}

func (s *Set) apply(name string, delta int) int {
	if s.Values == nil {
		s.Values = make(map[string]int)
	}
	v := s.Values[name] + delta
	if v < 0 {
		v = 0
	}
	s.Values[name] = v
	return v
}

// Reset sets name back to zero, keeping the key. Missing names are ignored.
func (s *Set) Reset(name string) {
	if _, ok := s.Values[name]; ok {
		s.Values[name] = 0
	}
}

// ResetAll zeroes every counter without changing the key set.
func (s *Set) ResetAll() {
	for k := range s.Values {
		s.Values[k] = 0
	}
}

// Value returns the current value of name, or zero when absent.
func (s Set) Value(name string) int {
	return s.Values[name]
}

// Has reports whether name is present.
func (s Set) Has(name string) bool {
	_, ok := s.Values[name]
	return ok
}

// Len returns the number of counters.
func (s Set) Len() int {
	return len(s.Values)
}

// Names returns the counter names in lexical order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.Values))
	for k := range s.Values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := Set{Values: make(map[string]int, len(s.Values))}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	return out
}
