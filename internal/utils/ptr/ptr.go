// Package ptr builds the optional fields of partial updates.
package ptr

import "strings"

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// NonEmpty returns a pointer to the trimmed string, or nil when it is blank.
// Blank cells in submitted updates mean "leave unchanged".
func NonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences p, returning the zero value for nil.
func Value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
