package document

import "strings"

// NormalizeSpace replaces every run of whitespace, including newlines and
// tabs, with a single space and trims the ends. It is idempotent.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
