package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vellumtext/vellum/internal/session"
	"github.com/vellumtext/vellum/internal/span"
)

// dumpLayout prints the reconstructed line model at the given width.
func dumpLayout(ctx context.Context, sess *session.Session, width float64) int {
	doc, err := sess.RefreshLayout(ctx, width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("session %s\n", sess.ID())
	fmt.Printf("layout %.0fx%.0f, line height %.1f, %d lines\n\n",
		doc.TotalWidth, doc.TotalHeight, doc.LineHeight, len(doc.Lines))
	for i, line := range doc.Lines {
		fmt.Printf("%3d  p%-3d y=%-8.1f w=%-8.1f chars=%-4d %-10s %q\n",
			i, line.Paragraph, line.Y, line.Width, line.CharCount, line.BreakType, line.Text)
	}
	return 0
}

// dumpSpans prints the resolved styled runs.
func dumpSpans(ctx context.Context, sess *session.Session) int {
	runs, err := sess.StyledRuns(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("session %s\n", sess.ID())
	fmt.Printf("%d resolved runs\n\n", len(runs))
	for i, run := range runs {
		fmt.Printf("%3d  %-40s %q\n", i, describeStyle(run.Style), run.Text)
	}
	return 0
}

// describeStyle renders a style as a short human-readable summary.
func describeStyle(s span.Style) string {
	var parts []string
	if s.Attrs.Has(span.AttrBold) {
		parts = append(parts, "bold")
	}
	if s.Attrs.Has(span.AttrItalic) {
		parts = append(parts, "italic")
	}
	if s.Attrs.Has(span.AttrUnderline) {
		parts = append(parts, "underline")
	}
	if s.Attrs.Has(span.AttrStrikethrough) {
		parts = append(parts, "strike")
	}
	parts = append(parts, fmt.Sprintf("%dpx", s.FontSize))
	if s.FontFamily != "" {
		parts = append(parts, s.FontFamily)
	}
	parts = append(parts, s.Foreground.Hex()+" on "+s.Background.Hex())
	return strings.Join(parts, " ")
}
