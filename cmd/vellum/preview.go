package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vellumtext/vellum/internal/config"
	"github.com/vellumtext/vellum/internal/engine/enginetest"
	"github.com/vellumtext/vellum/internal/layout"
	"github.com/vellumtext/vellum/internal/logging"
	"github.com/vellumtext/vellum/internal/session"
	"github.com/vellumtext/vellum/internal/span"
)

// previewCharWidth matches the fake engine's character width, so one layout
// column maps to one terminal cell.
const previewCharWidth = 8.0

// redrawEvent asks the event loop for a repaint after an async layout apply.
type redrawEvent struct{}

// runPreview renders the document live: resizing rewraps through the
// engine, undo/redo mutate it, and config edits hot-reload the line height.
func runPreview(ctx context.Context, sess *session.Session, eng *enginetest.Fake, opts options, log *logging.Logger) int {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	layoutSub := sess.Events().Layouts.Subscribe(func(layout.Document) {
		_ = screen.PostEvent(tcell.NewEventInterrupt(redrawEvent{})) // best-effort
	})
	defer layoutSub.Cancel()

	if opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, 200*time.Millisecond, log, func(c config.Config) {
			_ = screen.PostEvent(tcell.NewEventInterrupt(c))
		})
		if err != nil {
			log.Warn("config watch unavailable: %v", err)
		} else {
			defer w.Close()
		}
	}

	go func() {
		<-ctx.Done()
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	refresh := func() {
		cols, _ := screen.Size()
		sess.RequestLayout(ctx, float64(cols)*previewCharWidth)
	}
	refresh()

	scroll := 0
	for {
		drawPreview(ctx, screen, sess, scroll)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return 0

		case *tcell.EventResize:
			screen.Sync()
			refresh()

		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case config.Config:
				eng.SetLineHeight(data.Layout.LineHeight)
				refresh()
			case redrawEvent:
			case nil:
				return 0
			}

		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				return 0
			case ev.Rune() == 'u':
				if _, err := sess.Undo(ctx); err != nil {
					log.Warn("undo failed: %v", err)
				}
				refresh()
			case ev.Rune() == 'r':
				if _, err := sess.Redo(ctx); err != nil {
					log.Warn("redo failed: %v", err)
				}
				refresh()
			case ev.Key() == tcell.KeyUp:
				if scroll > 0 {
					scroll--
				}
			case ev.Key() == tcell.KeyDown:
				if scroll+1 < len(sess.Layout().Lines) {
					scroll++
				}
			}
		}
	}
}

func drawPreview(ctx context.Context, screen tcell.Screen, sess *session.Session, scroll int) {
	screen.Clear()
	width, height := screen.Size()

	bar := tcell.StyleDefault.Reverse(true)
	drawString(screen, 0, 0, bar, padTo("vellum preview   q quit   u undo   r redo   arrows scroll", width))

	doc := sess.Layout()
	index := newStyleIndex(ctx, sess)

	visible := height - 2
	for row := 0; row < visible; row++ {
		li := scroll + row
		if li >= len(doc.Lines) {
			break
		}
		line := doc.Lines[li]
		x := 0
		for i, r := range line.Text {
			if x >= width {
				break
			}
			screen.SetContent(x, 1+row, r, nil, index.at(line.Start+i))
			x++
		}
	}

	status := fmt.Sprintf(" %s   %d lines   %.0fx%.0f   scroll %d ",
		sess.ID()[:8], len(doc.Lines), doc.TotalWidth, doc.TotalHeight, scroll)
	drawString(screen, 0, height-1, bar, padTo(status, width))

	screen.Show()
}

// styleIndex maps document byte offsets to terminal styles.
type styleIndex struct {
	bounds []int
	styles []tcell.Style
}

func newStyleIndex(ctx context.Context, sess *session.Session) styleIndex {
	runs, err := sess.StyledRuns(ctx)
	if err != nil {
		return styleIndex{}
	}
	ix := styleIndex{
		bounds: make([]int, 0, len(runs)),
		styles: make([]tcell.Style, 0, len(runs)),
	}
	offset := 0
	for _, run := range runs {
		ix.bounds = append(ix.bounds, offset)
		ix.styles = append(ix.styles, toTcellStyle(run.Style))
		offset += len(run.Text)
	}
	return ix
}

// at returns the style of the run containing offset.
func (ix styleIndex) at(offset int) tcell.Style {
	i := sort.SearchInts(ix.bounds, offset+1) - 1
	if i < 0 {
		return tcell.StyleDefault
	}
	return ix.styles[i]
}

// toTcellStyle converts a resolved span style for terminal output.
func toTcellStyle(s span.Style) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B))).
		Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
	if s.Attrs.Has(span.AttrBold) {
		st = st.Bold(true)
	}
	if s.Attrs.Has(span.AttrItalic) {
		st = st.Italic(true)
	}
	if s.Attrs.Has(span.AttrUnderline) {
		st = st.Underline(true)
	}
	if s.Attrs.Has(span.AttrStrikethrough) {
		st = st.StrikeThrough(true)
	}
	return st
}

func drawString(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func padTo(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
