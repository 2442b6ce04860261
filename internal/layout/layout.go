// Package layout turns the engine's nested paragraph/line layout description
// into a flat, coordinate-correct line model. The engine reports offsets and
// geometry; everything derived (line text, vertical positions, character
// counts) is computed here from the canonical full text, never trusted from
// the wire.
package layout

import "github.com/rivo/uniseg"

// Line is one laid-out slice of the full text in render-ready form.
type Line struct {
	// Paragraph is the index of the source paragraph; Number is the
	// line's 0-based index within it.
	Paragraph int
	Number    int

	// Start and End are byte offsets into the full text, clamped so that
	// 0 <= Start <= End <= len(fullText).
	Start, End int

	// Text is the slice fullText[Start:End].
	Text string

	// Width and Height are render geometry in abstract units.
	Width, Height float64

	// Y is the line's vertical offset: the running sum of all prior
	// lines' heights in reading order.
	Y float64

	// CharCount is the number of grapheme clusters in Text.
	CharCount int

	// BreakType, IsBidi and TrailingWhitespace carry through from the
	// engine's description.
	BreakType          string
	IsBidi             bool
	TrailingWhitespace float64
}

// Document is the flat layout of the whole document, top to bottom.
type Document struct {
	Lines []Line

	// TotalWidth and TotalHeight come verbatim from the engine's
	// description rather than being recomputed from lines; the engine may
	// account for margins or padding invisible at line granularity.
	TotalWidth  float64
	TotalHeight float64

	// LineHeight is the default height applied to lines that carry none
	// of their own.
	LineHeight float64
}

// Reconstruct flattens a parsed description into a Document. Paragraph
// order and in-paragraph line order are preserved. Out-of-range offsets are
// clamped into [0, len(fullText)] and an inverted start/end pair clamps end
// up to start, so substring extraction can never fail; a malformed line
// degrades to empty text at a valid position.
func Reconstruct(desc Description, fullText string) Document {
	doc := Document{
		TotalWidth:  desc.TotalWidth,
		TotalHeight: desc.TotalHeight,
		LineHeight:  desc.LineHeight,
	}

	y := 0.0
	for pi, para := range desc.Paragraphs {
		for _, info := range para.Lines {
			start := clamp(info.Start, len(fullText))
			end := clamp(info.End, len(fullText))
			if end < start {
				end = start
			}
			text := fullText[start:end]

			height := desc.LineHeight
			if info.Height != nil {
				height = *info.Height
			}

			doc.Lines = append(doc.Lines, Line{
				Paragraph:          pi,
				Number:             info.Number,
				Start:              start,
				End:                end,
				Text:               text,
				Width:              info.Width,
				Height:             height,
				Y:                  y,
				CharCount:          uniseg.GraphemeClusterCount(text),
				BreakType:          info.BreakType,
				IsBidi:             info.IsBidi,
				TrailingWhitespace: info.TrailingWhitespace,
			})
			y += height
		}
	}
	return doc
}

// Build parses the engine's layout JSON and reconstructs it against
// fullText in one step. On a malformed description it returns
// ErrMalformedLayout and the zero Document; callers keep their previous
// layout in that case.
func Build(data []byte, fullText string) (Document, error) {
	desc, err := ParseDescription(data)
	if err != nil {
		return Document{}, err
	}
	return Reconstruct(desc, fullText), nil
}

func clamp(offset, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}
