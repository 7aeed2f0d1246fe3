// Package htmlsanitize cleans user-supplied HTML before it is stored.
//
// The About bio is rich text edited in the admin UI and rendered as HTML by
// the frontend, so it is passed through a UGC policy. Plain-text fields such
// as the summary are stripped of all markup.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richOnce sync.Once
	rich     *bluemonday.Policy

	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func richPolicy() *bluemonday.Policy {
	richOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("code", "pre", "span")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		rich = p
	})
	return rich
}

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Sanitize keeps safe formatting markup and removes scripts, event handlers,
// and dangerous URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richPolicy().Sanitize(s)
}

// StripTags removes all markup and returns plain text. Entities produced by
// the policy are decoded so "A & B" round-trips unchanged.
func StripTags(s string) string {
	if IsPlainText(s) {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

// IsPlainText reports whether s has nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
