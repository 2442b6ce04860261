// Package enginetest provides an in-memory engine.Engine for tests and
// offline previews. The fake keeps the same observable contract as a real
// engine process: canonical text, snapshot undo/redo, ordered attribute
// runs, styled-text JSON and a deterministic character-wrap layout.
package enginetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/sjson"

	"github.com/vellumtext/vellum/internal/attr"
	"github.com/vellumtext/vellum/internal/diff"
	"github.com/vellumtext/vellum/internal/engine"
)

// run is one attribute application over [start, end). Later runs override
// earlier ones field by field.
type run struct {
	start, end int
	attrs      attr.TextAttributes
}

type snapshot struct {
	text string
	runs []run
}

// Fake is an in-memory document engine.
//
// Beyond the engine.Engine surface it offers test controls: per-method
// injected errors, raw payload overrides for the layout and styled-text
// responses, a call log, and a Hook invoked at the start of every call so
// tests can orchestrate goroutine interleavings.
type Fake struct {
	// Hook, when set, runs at the start of every engine call with the
	// method name, before any lock is taken.
	Hook func(method string)

	mu    sync.Mutex
	text  string
	runs  []run
	undo  []snapshot
	redo  []snapshot
	calls []string
	errs  map[string]error

	lineHeight float64
	charWidth  float64

	layoutOverride []byte
	styledOverride []byte
}

var _ engine.Engine = (*Fake)(nil)

// New creates a fake engine seeded with the given document text.
func New(text string) *Fake {
	return &Fake{
		text:       text,
		errs:       make(map[string]error),
		lineHeight: 16,
		charWidth:  8,
	}
}

// SetText replaces the document and clears history and attributes.
func (f *Fake) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.runs = nil
	f.undo = nil
	f.redo = nil
}

// SetLineHeight changes the layout generator's line height.
func (f *Fake) SetLineHeight(h float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineHeight = h
}

// SetError makes every subsequent call of method fail with err. A nil err
// clears the injection.
func (f *Fake) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

// OverrideLayout serves raw instead of the generated layout JSON. Nil
// restores generation. Tests use it to feed malformed descriptions.
func (f *Fake) OverrideLayout(raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.layoutOverride = raw
}

// OverrideStyledText serves raw instead of the generated styled-text JSON.
func (f *Fake) OverrideStyledText(raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.styledOverride = raw
}

// Calls returns the method names invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// gate records the call and reports context cancellation or an injected
// failure. Callers hold f.mu.
func (f *Fake) gate(ctx context.Context, method string) error {
	f.calls = append(f.calls, method)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.errs[method]
}

func (f *Fake) hook(method string) {
	if f.Hook != nil {
		f.Hook(method)
	}
}

// ApplyEdit applies one edit, shifting attribute runs around it.
func (f *Fake) ApplyEdit(ctx context.Context, op diff.Operation) (string, error) {
	f.hook(engine.MethodApplyEdit)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodApplyEdit); err != nil {
		return "", err
	}

	next, err := diff.Apply(f.text, op)
	if err != nil {
		return "", err
	}
	f.pushUndo()
	f.redo = nil
	switch op.Type {
	case diff.OpInsert:
		f.shiftInsert(op.Offset, len(op.Text))
	case diff.OpDelete:
		f.shiftDelete(op.Offset, op.Length)
	}
	f.text = next
	return f.text, nil
}

// Undo restores the previous snapshot. With no history it returns the
// current text unchanged.
func (f *Fake) Undo(ctx context.Context) (string, error) {
	f.hook(engine.MethodUndo)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodUndo); err != nil {
		return "", err
	}

	if len(f.undo) == 0 {
		return f.text, nil
	}
	f.redo = append(f.redo, f.snapshot())
	s := f.undo[len(f.undo)-1]
	f.undo = f.undo[:len(f.undo)-1]
	f.text, f.runs = s.text, s.runs
	return f.text, nil
}

// Redo re-applies the latest undone snapshot.
func (f *Fake) Redo(ctx context.Context) (string, error) {
	f.hook(engine.MethodRedo)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodRedo); err != nil {
		return "", err
	}

	if len(f.redo) == 0 {
		return f.text, nil
	}
	f.undo = append(f.undo, f.snapshot())
	s := f.redo[len(f.redo)-1]
	f.redo = f.redo[:len(f.redo)-1]
	f.text, f.runs = s.text, s.runs
	return f.text, nil
}

// CanUndo reports whether undo history exists.
func (f *Fake) CanUndo(ctx context.Context) (bool, error) {
	f.hook(engine.MethodCanUndo)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodCanUndo); err != nil {
		return false, err
	}
	return len(f.undo) > 0, nil
}

// CanRedo reports whether redo history exists.
func (f *Fake) CanRedo(ctx context.Context) (bool, error) {
	f.hook(engine.MethodCanRedo)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodCanRedo); err != nil {
		return false, err
	}
	return len(f.redo) > 0, nil
}

// FullText returns the canonical document text.
func (f *Fake) FullText(ctx context.Context) (string, error) {
	f.hook(engine.MethodFullText)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodFullText); err != nil {
		return "", err
	}
	return f.text, nil
}

// TextRange returns length bytes starting at offset, clamped to bounds.
func (f *Fake) TextRange(ctx context.Context, offset, length int) (string, error) {
	f.hook(engine.MethodTextRange)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodTextRange); err != nil {
		return "", err
	}

	start := clamp(offset, len(f.text))
	end := start
	if length > 0 {
		end = clamp(start+length, len(f.text))
	}
	return f.text[start:end], nil
}

// LineCount returns the number of hard lines.
func (f *Fake) LineCount(ctx context.Context) (int, error) {
	f.hook(engine.MethodLineCount)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodLineCount); err != nil {
		return 0, err
	}
	return strings.Count(f.text, "\n") + 1, nil
}

// AttributesAt merges every run covering offset and returns the compact
// positional encoding. Offsets outside the document report all-unset.
func (f *Fake) AttributesAt(ctx context.Context, offset int) (string, error) {
	f.hook(engine.MethodAttributesAt)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodAttributesAt); err != nil {
		return "", err
	}
	return attr.EncodeCompact(f.attrsAt(offset)), nil
}

// ApplyAttributes decodes a structured payload and records it as a run over
// the clamped range. Attribute changes participate in undo history.
func (f *Fake) ApplyAttributes(ctx context.Context, start, end int, attrs []byte) error {
	f.hook(engine.MethodApplyAttributes)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodApplyAttributes); err != nil {
		return err
	}

	decoded, err := attr.DecodeStructured(attrs)
	if err != nil {
		return fmt.Errorf("apply attributes: %w", err)
	}
	s := clamp(start, len(f.text))
	e := clamp(end, len(f.text))
	if e <= s {
		return nil
	}
	f.pushUndo()
	f.redo = nil
	f.runs = append(f.runs, run{start: s, end: e, attrs: decoded.Clone()})
	return nil
}

// RemoveAttributes clears all attributes on the clamped range, splitting
// runs that straddle its edges.
func (f *Fake) RemoveAttributes(ctx context.Context, start, end int) error {
	f.hook(engine.MethodRemoveAttributes)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodRemoveAttributes); err != nil {
		return err
	}

	s := clamp(start, len(f.text))
	e := clamp(end, len(f.text))
	if e <= s {
		return nil
	}
	f.pushUndo()
	f.redo = nil

	var kept []run
	for _, r := range f.runs {
		if r.end <= s || r.start >= e {
			kept = append(kept, r)
			continue
		}
		if r.start < s {
			kept = append(kept, run{start: r.start, end: s, attrs: r.attrs})
		}
		if r.end > e {
			kept = append(kept, run{start: e, end: r.end, attrs: r.attrs})
		}
	}
	f.runs = kept
	return nil
}

// StyledText renders the document as ordered {text, attributes-or-null}
// runs, splitting at every attribute boundary.
func (f *Fake) StyledText(ctx context.Context) ([]byte, error) {
	f.hook(engine.MethodStyledText)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodStyledText); err != nil {
		return nil, err
	}
	if f.styledOverride != nil {
		return f.styledOverride, nil
	}

	out := []byte(`[]`)
	for _, seg := range f.segments() {
		el, err := sjson.SetBytes([]byte(`{}`), "text", f.text[seg.start:seg.end])
		if err != nil {
			return nil, err
		}
		if seg.attrs.IsZero() {
			el, err = sjson.SetRawBytes(el, "attributes", []byte(`null`))
		} else {
			var enc []byte
			if enc, err = attr.EncodeStructured(seg.attrs); err == nil {
				el, err = sjson.SetRawBytes(el, "attributes", enc)
			}
		}
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "-1", el); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Layout wraps the document at the given width. The generator is
// deliberately naive: fixed character width, wrapping at column boundaries
// with no word awareness, one paragraph per hard line.
func (f *Fake) Layout(ctx context.Context, width float64) ([]byte, error) {
	f.hook(engine.MethodLayout)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.gate(ctx, engine.MethodLayout); err != nil {
		return nil, err
	}
	if f.layoutOverride != nil {
		return f.layoutOverride, nil
	}

	maxCols := int(width / f.charWidth)
	if maxCols < 1 {
		maxCols = 1
	}

	doc := layoutDocument{
		Paragraphs: []layoutParagraph{},
		TotalWidth: width,
		LineHeight: f.lineHeight,
	}
	totalLines := 0
	offset := 0
	for _, para := range strings.Split(f.text, "\n") {
		p := f.layoutParagraph(para, offset, maxCols)
		doc.Paragraphs = append(doc.Paragraphs, p)
		totalLines += len(p.Lines)
		offset += len(para) + 1
	}
	doc.TotalHeight = float64(totalLines) * f.lineHeight

	return json.Marshal(doc)
}

type layoutLine struct {
	LineNumber         int     `json:"line_number"`
	Start              int     `json:"start"`
	End                int     `json:"end"`
	Width              float64 `json:"width"`
	BreakType          string  `json:"break_type"`
	CharCount          int     `json:"char_count"`
	IsBidi             bool    `json:"is_bidi"`
	TrailingWhitespace float64 `json:"trailing_whitespace"`
}

type layoutParagraph struct {
	Lines    []layoutLine `json:"lines"`
	MaxWidth float64      `json:"max_width"`
	HasBidi  bool         `json:"has_bidi"`
}

type layoutDocument struct {
	Paragraphs  []layoutParagraph `json:"paragraphs"`
	TotalWidth  float64           `json:"total_width"`
	TotalHeight float64           `json:"total_height"`
	LineHeight  float64           `json:"line_height"`
}

func (f *Fake) layoutParagraph(para string, offset, maxCols int) layoutParagraph {
	p := layoutParagraph{Lines: []layoutLine{}}

	if para == "" {
		p.Lines = append(p.Lines, layoutLine{
			LineNumber: 0,
			Start:      offset,
			End:        offset,
			BreakType:  "HardBreak",
		})
		return p
	}

	lineStart := offset
	cols := 0
	for i := range para {
		if cols == maxCols {
			p.Lines = append(p.Lines, f.line(len(p.Lines), lineStart, offset+i, cols, "SoftBreak"))
			lineStart = offset + i
			cols = 0
		}
		cols++
	}
	p.Lines = append(p.Lines, f.line(len(p.Lines), lineStart, offset+len(para), cols, "HardBreak"))

	for _, l := range p.Lines {
		if l.Width > p.MaxWidth {
			p.MaxWidth = l.Width
		}
	}
	return p
}

func (f *Fake) line(number, start, end, cols int, breakType string) layoutLine {
	return layoutLine{
		LineNumber: number,
		Start:      start,
		End:        end,
		Width:      float64(cols) * f.charWidth,
		BreakType:  breakType,
		CharCount:  cols,
	}
}

type segment struct {
	start, end int
	attrs      attr.TextAttributes
}

// segments splits the document at every attribute run boundary, merging the
// runs covering each piece.
func (f *Fake) segments() []segment {
	if f.text == "" {
		return nil
	}

	cuts := map[int]bool{0: true, len(f.text): true}
	for _, r := range f.runs {
		cuts[r.start] = true
		cuts[r.end] = true
	}
	offsets := make([]int, 0, len(cuts))
	for o := range cuts {
		offsets = append(offsets, o)
	}
	sort.Ints(offsets)

	var segs []segment
	for i := 0; i+1 < len(offsets); i++ {
		a, b := offsets[i], offsets[i+1]
		if a >= b {
			continue
		}
		segs = append(segs, segment{start: a, end: b, attrs: f.attrsAt(a)})
	}
	return segs
}

// attrsAt merges every run covering offset, in application order.
func (f *Fake) attrsAt(offset int) attr.TextAttributes {
	var merged attr.TextAttributes
	for _, r := range f.runs {
		if r.start <= offset && offset < r.end {
			merged = merged.Merge(r.attrs)
		}
	}
	return merged
}

func (f *Fake) snapshot() snapshot {
	runs := make([]run, len(f.runs))
	copy(runs, f.runs)
	return snapshot{text: f.text, runs: runs}
}

func (f *Fake) pushUndo() {
	f.undo = append(f.undo, f.snapshot())
}

// shiftInsert moves run boundaries after an insert of length n at off. A
// run containing the offset grows; typing at a run's end boundary does not
// extend it.
func (f *Fake) shiftInsert(off, n int) {
	for i := range f.runs {
		if f.runs[i].start >= off {
			f.runs[i].start += n
		}
		if f.runs[i].end > off {
			f.runs[i].end += n
		}
	}
}

// shiftDelete collapses run boundaries inside the deleted range [off,
// off+n) and drops runs that end up empty.
func (f *Fake) shiftDelete(off, n int) {
	collapse := func(x int) int {
		switch {
		case x <= off:
			return x
		case x >= off+n:
			return x - n
		default:
			return off
		}
	}
	var kept []run
	for _, r := range f.runs {
		s, e := collapse(r.start), collapse(r.end)
		if s < e {
			kept = append(kept, run{start: s, end: e, attrs: r.attrs})
		}
	}
	f.runs = kept
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
