// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an address so lookups match the stored form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a raw query value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
