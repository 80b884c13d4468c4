package domain

import (
	"html"
	"strings"
	"unicode/utf8"
)

// trimCutset matches the characters stripped from both ends of a field.
const trimCutset = " \t\n\r\x00\x0b"

var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#039;",
	"<", "&lt;",
	">", "&gt;",
)

// Sanitize trims s, escapes HTML-significant characters to entities and drops
// embedded NUL bytes. Input that is not valid UTF-8 sanitizes to "".
func Sanitize(s string) string {
	s = strings.Trim(s, trimCutset)
	if !utf8.ValidString(s) {
		return ""
	}
	s = entityReplacer.Replace(s)
	return strings.ReplaceAll(s, "\x00", "")
}

// Unescape reverses the entity escaping applied by Sanitize.
func Unescape(s string) string {
	return html.UnescapeString(s)
}
