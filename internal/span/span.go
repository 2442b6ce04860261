// Package span combines ordered text spans with decoded attributes into a
// renderable style chain. The engine reports the document as a sequence of
// maximal runs sharing one attribute set; this package parses that payload
// and resolves each run against a base style.
package span

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/vellumtext/vellum/internal/attr"
)

// ErrMalformedStyledText indicates a styled-text payload that failed to
// parse. The accompanying span slice still renders: it degrades to one
// unstyled span holding the raw payload verbatim.
var ErrMalformedStyledText = errors.New("malformed styled text payload")

// TextSpan is a maximal run of text sharing one attribute set. A zero
// Attrs value means the run is unstyled and renders with the base style.
type TextSpan struct {
	Text  string
	Attrs attr.TextAttributes
}

// StyledRun pairs a run of text with its fully resolved style.
type StyledRun struct {
	Text  string
	Style Style
}

// ParseStyledText decodes the engine's styled-text payload: a JSON array of
// {"text": string, "attributes": object-or-null} elements in document
// order. A payload that fails to parse returns ErrMalformedStyledText
// together with a single unstyled span carrying the raw payload text
// verbatim, so callers always have something to render; they log the error
// and keep going.
func ParseStyledText(data []byte) ([]TextSpan, error) {
	fallback := []TextSpan{{Text: string(data)}}

	if !gjson.ValidBytes(data) {
		return fallback, fmt.Errorf("%w: invalid json", ErrMalformedStyledText)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return fallback, fmt.Errorf("%w: root is %s, want array", ErrMalformedStyledText, root.Type)
	}

	elements := root.Array()
	spans := make([]TextSpan, 0, len(elements))
	for i, el := range elements {
		if !el.IsObject() {
			return fallback, fmt.Errorf("%w: element %d is %s, want object", ErrMalformedStyledText, i, el.Type)
		}
		text := el.Get("text")
		if text.Type != gjson.String {
			return fallback, fmt.Errorf("%w: element %d text missing or not a string", ErrMalformedStyledText, i)
		}
		s := TextSpan{Text: text.String()}
		if attrs := el.Get("attributes"); attrs.IsObject() {
			s.Attrs = attr.FromJSON(attrs)
		}
		spans = append(spans, s)
	}
	return spans, nil
}

// Builder resolves styled spans against a base style.
type Builder struct {
	base Style
}

// NewBuilder creates a builder resolving onto the given base style.
func NewBuilder(base Style) *Builder {
	return &Builder{base: base}
}

// SetBaseStyle replaces the base style used for subsequent builds.
func (b *Builder) SetBaseStyle(base Style) {
	b.base = base
}

// Build resolves each span's attributes over the base style, in order.
// Empty-text spans are dropped; the returned runs concatenate to exactly
// the input's text with no gaps or overlaps.
func (b *Builder) Build(spans []TextSpan) []StyledRun {
	runs := make([]StyledRun, 0, len(spans))
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		runs = append(runs, StyledRun{
			Text:  s.Text,
			Style: b.base.Apply(s.Attrs),
		})
	}
	return runs
}
