package layout

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedLayout indicates a layout description missing required fields
// or structurally invalid. Callers recover by retaining the previously
// successful layout.
var ErrMalformedLayout = errors.New("malformed layout description")

// Description mirrors the engine's nested layout JSON before flattening.
type Description struct {
	Paragraphs  []Paragraph
	TotalWidth  float64
	TotalHeight float64
	LineHeight  float64
}

// Paragraph is one engine-defined unit of text holding laid-out lines.
type Paragraph struct {
	Lines []LineInfo

	// MaxWidth and HasBidi are optional paragraph metadata; zero values
	// mean the engine did not report them.
	MaxWidth float64
	HasBidi  bool
}

// LineInfo is the wire record for a single laid-out line.
type LineInfo struct {
	// Number is the 0-based line index within its paragraph.
	Number int

	// Start and End are byte offsets into the canonical full text as
	// reported by the engine. They are not yet validated; reconstruction
	// clamps them.
	Start, End int

	// Width is the line's rendered width in abstract units.
	Width float64

	// Height is an optional per-line height. Nil means the line uses the
	// description's LineHeight.
	Height *float64

	// BreakType records how the line ended: "HardBreak", "SoftBreak" or
	// "Hyphenated". Empty when unreported.
	BreakType string

	// IsBidi marks lines containing bidirectional text.
	IsBidi bool

	// TrailingWhitespace is the width of trailing whitespace on the line.
	TrailingWhitespace float64
}

// ParseDescription decodes the engine's layout JSON. The root object must
// carry paragraphs, total_width, total_height and line_height; every line
// must carry line_number, start, end and width. Anything else returns
// ErrMalformedLayout with the offending path.
func ParseDescription(data []byte) (Description, error) {
	if !gjson.ValidBytes(data) {
		return Description{}, fmt.Errorf("%w: invalid json", ErrMalformedLayout)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Description{}, fmt.Errorf("%w: root is %s, want object", ErrMalformedLayout, root.Type)
	}

	var desc Description
	var err error
	if desc.TotalWidth, err = requireNumber(root, "total_width"); err != nil {
		return Description{}, err
	}
	if desc.TotalHeight, err = requireNumber(root, "total_height"); err != nil {
		return Description{}, err
	}
	if desc.LineHeight, err = requireNumber(root, "line_height"); err != nil {
		return Description{}, err
	}

	paras := root.Get("paragraphs")
	if !paras.IsArray() {
		return Description{}, fmt.Errorf("%w: paragraphs is %s, want array", ErrMalformedLayout, paras.Type)
	}
	for pi, p := range paras.Array() {
		para, err := parseParagraph(p, pi)
		if err != nil {
			return Description{}, err
		}
		desc.Paragraphs = append(desc.Paragraphs, para)
	}
	return desc, nil
}

func parseParagraph(p gjson.Result, index int) (Paragraph, error) {
	if !p.IsObject() {
		return Paragraph{}, fmt.Errorf("%w: paragraphs[%d] is %s, want object", ErrMalformedLayout, index, p.Type)
	}
	lines := p.Get("lines")
	if !lines.IsArray() {
		return Paragraph{}, fmt.Errorf("%w: paragraphs[%d].lines is %s, want array", ErrMalformedLayout, index, lines.Type)
	}

	para := Paragraph{
		MaxWidth: p.Get("max_width").Float(),
		HasBidi:  p.Get("has_bidi").Bool(),
	}
	for li, l := range lines.Array() {
		line, err := parseLine(l, index, li)
		if err != nil {
			return Paragraph{}, err
		}
		para.Lines = append(para.Lines, line)
	}
	return para, nil
}

func parseLine(l gjson.Result, paraIndex, lineIndex int) (LineInfo, error) {
	if !l.IsObject() {
		return LineInfo{}, fmt.Errorf("%w: paragraphs[%d].lines[%d] is %s, want object", ErrMalformedLayout, paraIndex, lineIndex, l.Type)
	}
	required := []string{"line_number", "start", "end", "width"}
	for _, key := range required {
		if l.Get(key).Type != gjson.Number {
			return LineInfo{}, fmt.Errorf("%w: paragraphs[%d].lines[%d].%s missing or not a number", ErrMalformedLayout, paraIndex, lineIndex, key)
		}
	}

	info := LineInfo{
		Number:             int(l.Get("line_number").Int()),
		Start:              int(l.Get("start").Int()),
		End:                int(l.Get("end").Int()),
		Width:              l.Get("width").Float(),
		BreakType:          l.Get("break_type").String(),
		IsBidi:             l.Get("is_bidi").Bool(),
		TrailingWhitespace: l.Get("trailing_whitespace").Float(),
	}
	if h := l.Get("height"); h.Type == gjson.Number {
		v := h.Float()
		info.Height = &v
	}
	return info, nil
}

func requireNumber(root gjson.Result, key string) (float64, error) {
	v := root.Get(key)
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s missing or not a number", ErrMalformedLayout, key)
	}
	return v.Float(), nil
}
