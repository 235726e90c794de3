// Package normalize holds field normalization helpers shared by stores
// and handlers so lookups and stored values agree on one canonical form.
package normalize

import "strings"

// Email lowercases and trims an email address for case-insensitive
// matching. Returns "" for blank input.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace from a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
