// internal/domain/models/validation.go
package models

import (
	"regexp"
	"sort"
	"strings"
)

// emailPattern is the address format accepted for contact and user emails.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// IsEmail reports whether s looks like a deliverable email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidationError collects field-level problems found while validating a
// record before it is written. Field keys use the JSON field names.
type ValidationError struct {
	Fields map[string]string
}

// Add records msg for field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// Error joins the field messages in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, ", ")
}

// orNil returns nil when no field failed so callers can `return v.orNil()`.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
