package span

import (
	"fmt"

	"github.com/vellumtext/vellum/internal/attr"
)

// Attribute represents text decorations (bold, italic, etc.).
type Attribute uint16

// Text decoration flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrStrikethrough           // Strikethrough text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns a new attribute set with the given attribute added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Without returns a new attribute set with the given attribute removed.
func (a Attribute) Without(attr Attribute) Attribute {
	return a &^ attr
}

// Style is a fully resolved visual style for a run of text. Unlike
// attr.TextAttributes it has no unset state: every property holds a
// concrete value after cascade resolution.
type Style struct {
	Attrs      Attribute
	FontSize   int
	FontFamily string
	Foreground Color
	Background Color
}

// DefaultStyle returns the document base style: black on white at the
// engine's default font size.
func DefaultStyle() Style {
	return Style{
		FontSize:   14,
		Foreground: Color{A: 0xFF},
		Background: Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
}

// Apply resolves a over the base style s in the fixed cascade order: bold,
// italic, underline, fontSize, fontFamily, foreground, background. Set
// fields override the base property; unset fields inherit it. Underline
// edits only its own decoration bit, so a strikethrough on the base
// survives an underline override. A translucent color composites over the
// base value it overrides; a malformed color string is skipped and the
// base value inherited, keeping rendering alive.
func (s Style) Apply(a attr.TextAttributes) Style {
	out := s
	if a.Bold != nil {
		out.Attrs = setFlag(out.Attrs, AttrBold, *a.Bold)
	}
	if a.Italic != nil {
		out.Attrs = setFlag(out.Attrs, AttrItalic, *a.Italic)
	}
	if a.Underline != nil {
		out.Attrs = setFlag(out.Attrs, AttrUnderline, *a.Underline)
	}
	if a.FontSize != nil {
		out.FontSize = *a.FontSize
	}
	if a.FontFamily != nil {
		out.FontFamily = *a.FontFamily
	}
	if a.Foreground != nil {
		if c, err := ParseColor(*a.Foreground); err == nil {
			out.Foreground = c.Over(s.Foreground)
		}
	}
	if a.Background != nil {
		if c, err := ParseColor(*a.Background); err == nil {
			out.Background = c.Over(s.Background)
		}
	}
	return out
}

// ValidateColors checks the color fields of an attribute set, returning
// ErrInvalidColorFormat for the first malformed one. Attribute-setting
// entry points run this before calling the engine so a bad color rejects
// the request instead of degrading silently.
func ValidateColors(a attr.TextAttributes) error {
	if a.Foreground != nil {
		if _, err := ParseColor(*a.Foreground); err != nil {
			return fmt.Errorf("foreground: %w", err)
		}
	}
	if a.Background != nil {
		if _, err := ParseColor(*a.Background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	return nil
}

func setFlag(attrs Attribute, flag Attribute, on bool) Attribute {
	if on {
		return attrs.With(flag)
	}
	return attrs.Without(flag)
}
