// Package markdown renders the short configurable certificate texts
// (concluding statement, intended-use footer) from Markdown to HTML.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Converter turns Markdown snippets into HTML fragments.
// Raw HTML in the source is omitted, never passed through.
type Converter struct {
	md goldmark.Markdown
}

// New creates a Converter with GFM and typographic extensions.
func New() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &Converter{md: md}
}

// Fragment converts source to an HTML fragment. Blank input yields "".
func (c *Converter) Fragment(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
