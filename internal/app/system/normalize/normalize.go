// Package normalize provides canonical forms for user-entered identity
// fields. Stores normalize on write so that lookups and unique indexes
// compare like with like.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims a username. Case is preserved for display; the
// case-insensitive comparison form is the folded username_ci field.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Name trims a display name or household name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
