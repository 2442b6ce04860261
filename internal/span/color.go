package span

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColorFormat indicates a color string that is not "#" followed by
// exactly 6 or 8 hex digits. Attribute-setting entry points surface this to
// the caller before any engine call; rendering paths skip the color instead.
var ErrInvalidColorFormat = errors.New("invalid color format")

// Color is an RGBA color decoded from a #RRGGBB or #RRGGBBAA string.
// A 6-digit input decodes fully opaque.
type Color struct {
	R, G, B, A uint8
}

// ParseColor decodes a hex color string. Accepted forms are #RRGGBB and
// #RRGGBBAA, case-insensitive. The leading "#" is required; anything else
// (wrong length, missing "#", non-hex digits) returns ErrInvalidColorFormat.
func ParseColor(s string) (Color, error) {
	if len(s) == 0 || s[0] != '#' {
		return Color{}, fmt.Errorf("%w: %q missing leading #", ErrInvalidColorFormat, s)
	}
	digits := s[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, fmt.Errorf("%w: %q has %d hex digits, want 6 or 8", ErrInvalidColorFormat, s, len(digits))
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidColorFormat, s)
	}
	if len(digits) == 6 {
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Opaque reports whether the color has full alpha.
func (c Color) Opaque() bool {
	return c.A == 0xFF
}

// Hex returns the canonical hex form: #RRGGBB when opaque, #RRGGBBAA
// otherwise.
func (c Color) Hex() string {
	if c.Opaque() {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// String returns the hex form.
func (c Color) String() string {
	return c.Hex()
}

// Over composites c onto base with source-over semantics, honoring c's
// alpha channel. The base is treated at full coverage, which holds for
// every inherited style color; the result is opaque.
func (c Color) Over(base Color) Color {
	if c.A == 0xFF {
		return c
	}
	if c.A == 0 {
		return Color{R: base.R, G: base.G, B: base.B, A: 0xFF}
	}
	blended := base.colorful().BlendRgb(c.colorful(), float64(c.A)/255)
	r, g, b := blended.RGB255()
	return Color{R: r, G: g, B: b, A: 0xFF}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}
