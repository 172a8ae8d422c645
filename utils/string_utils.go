package utils

import "strings"

// TrimmedPtr trims s and returns nil when nothing is left.
func TrimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Deref returns *s, or fallback for a nil pointer.
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
