// Package dateutil turns operator-facing date patterns such as YYYY/MM/DD
// into Go time layouts for certificate release dates and archive names.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a date pattern that cannot be compiled.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds configured patterns.
const MaxDateFormatLength = 50

const (
	// DefaultDateFormat is the release date pattern printed on certificates.
	DefaultDateFormat = "YYYY/MM/DD"
	// ISODateFormat is used in archive names and storage keys.
	ISODateFormat = "YYYY-MM-DD"
)

// DatePresets names common patterns. Lookup is case-insensitive.
var DatePresets = map[string]string{
	"iso":      ISODateFormat,
	"slash":    DefaultDateFormat,
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// tokens is ordered longest first so MMMM wins over MM and M.
var tokens = [...]struct{ pattern, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Compile converts a pattern into a Go layout. Tokens are YYYY, YY, MMMM,
// MMM, MM, M, DD and D; text inside [brackets] is copied verbatim, as is any
// other character.
func Compile(pattern string) (string, error) {
	switch {
	case pattern == "":
		return "", fmt.Errorf("%w: empty pattern", ErrInvalidDateFormat)
	case len(pattern) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	b.Grow(len(pattern) + 8)

	for rest := pattern; rest != ""; {
		if rest[0] == '[' {
			literal, tail, ok := strings.Cut(rest[1:], "]")
			if !ok {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(pattern)-len(rest))
			}
			b.WriteString(literal)
			rest = tail
			continue
		}
		rest = writeToken(&b, rest)
	}
	return b.String(), nil
}

// writeToken emits the layout for the token at the start of s, or its first
// byte, and returns the remainder.
func writeToken(b *strings.Builder, s string) string {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.pattern) {
			b.WriteString(t.layout)
			return s[len(t.pattern):]
		}
	}
	b.WriteByte(s[0])
	return s[1:]
}

// Layout resolves a configured format, which may be a preset name, into a Go
// layout. Blank selects DefaultDateFormat.
func Layout(format string) (string, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		format = DefaultDateFormat
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	return Compile(format)
}

// Format renders t in UTC with layout, so a certificate's release date and
// its archive name agree whatever the host zone. The zero time renders as
// "" so callers can substitute their own placeholder.
func Format(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}
