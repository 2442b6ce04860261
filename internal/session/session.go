// Package session coordinates a live text buffer with an external document
// engine. A Session owns the last text snapshot it pushed to the engine,
// computes minimal edits for new buffer states, tracks the selection and
// undo/redo availability, and maintains the most recent successfully
// reconstructed layout.
//
// The engine's text is canonical. Every mutating call adopts the full text
// the engine returns rather than trusting the local prediction, so the
// snapshot can never drift from the engine silently.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vellumtext/vellum/internal/attr"
	"github.com/vellumtext/vellum/internal/diff"
	"github.com/vellumtext/vellum/internal/engine"
	"github.com/vellumtext/vellum/internal/layout"
	"github.com/vellumtext/vellum/internal/logging"
	"github.com/vellumtext/vellum/internal/span"
)

// Options configures a Session.
type Options struct {
	// Logger receives session diagnostics. Nil disables logging.
	Logger *logging.Logger

	// Diff controls edit computation, notably same-length replacement
	// detection.
	Diff diff.Options

	// BaseStyle is the root of the span cascade. The zero value selects
	// span.DefaultStyle.
	BaseStyle span.Style
}

// DefaultOptions returns the options New falls back to for zero fields.
func DefaultOptions() Options {
	return Options{
		Logger:    logging.Null,
		Diff:      diff.DefaultOptions(),
		BaseStyle: span.DefaultStyle(),
	}
}

// Session is a single document's synchronization state. All methods are safe
// for concurrent use; engine calls are never made while the state lock is
// held.
type Session struct {
	id       string
	eng      engine.Engine
	log      *logging.Logger
	diffOpts diff.Options
	builder  *span.Builder

	mu        sync.Mutex
	text      string
	selection Selection
	canUndo   bool
	canRedo   bool

	layout       layout.Document
	layoutSeq    uint64
	pendingWidth *float64
	refreshing   bool

	events *Events
}

// New creates a session talking to eng. Call Load to seed the snapshot from
// the engine's current document.
func New(eng engine.Engine, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Null
	}
	if opts.BaseStyle.FontSize == 0 {
		opts.BaseStyle = span.DefaultStyle()
	}
	return &Session{
		id:       uuid.NewString(),
		eng:      eng,
		log:      opts.Logger.WithComponent("session"),
		diffOpts: opts.Diff,
		builder:  span.NewBuilder(opts.BaseStyle),
		events:   newEvents(),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Events returns the session's notification streams.
func (s *Session) Events() *Events { return s.events }

// Load seeds the text snapshot and history caches from the engine.
func (s *Session) Load(ctx context.Context) error {
	text, err := s.eng.FullText(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	s.mu.Lock()
	s.text = text
	s.selection = s.selection.clampTo(len(text))
	s.mu.Unlock()
	s.refreshHistory(ctx)
	return nil
}

// Text returns the current snapshot.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SetText synchronizes the engine with a new buffer state. Edits are
// computed against the previous snapshot and pushed one at a time; the
// snapshot adopts the engine's returned text after each success.
//
// An equal-length change with replacement detection disabled produces no
// edit and leaves the snapshot on the previous text, so the divergence
// remains visible to later computations.
func (s *Session) SetText(ctx context.Context, next string) error {
	s.mu.Lock()
	prev := s.text
	s.mu.Unlock()

	ops := diff.ComputeAll(prev, next, s.diffOpts)
	if len(ops) == 0 {
		return nil
	}

	var adopted string
	applied := false
	for _, op := range ops {
		text, err := s.eng.ApplyEdit(ctx, op)
		if err != nil {
			if applied {
				s.adopt(adopted)
			}
			s.log.Warn("apply edit failed: op=%v err=%v", op, err)
			return fmt.Errorf("apply edit: %w", err)
		}
		adopted, applied = text, true
	}
	s.adopt(adopted)
	s.refreshHistory(ctx)
	return nil
}

// adopt replaces the snapshot with engine-returned text and keeps the
// selection inside it.
func (s *Session) adopt(text string) {
	s.mu.Lock()
	prev := s.text
	s.text = text
	s.selection = s.selection.clampTo(len(text))
	s.mu.Unlock()

	if prev != text {
		s.events.Text.Publish(TextChange{Previous: prev, Text: text})
	}
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SetSelection moves the selection, clamping both ends to the document.
func (s *Session) SetSelection(anchor, active int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{Anchor: anchor, Active: active}.clampTo(len(s.text))
}

// CanUndo reports the cached undo availability.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canUndo
}

// CanRedo reports the cached redo availability.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canRedo
}

// Undo rolls the engine back one step and adopts the resulting text.
func (s *Session) Undo(ctx context.Context) (string, error) {
	text, err := s.eng.Undo(ctx)
	if err != nil {
		return "", fmt.Errorf("undo: %w", err)
	}
	s.adopt(text)
	s.refreshHistory(ctx)
	return text, nil
}

// Redo re-applies the engine's next undone step and adopts the text.
func (s *Session) Redo(ctx context.Context) (string, error) {
	text, err := s.eng.Redo(ctx)
	if err != nil {
		return "", fmt.Errorf("redo: %w", err)
	}
	s.adopt(text)
	s.refreshHistory(ctx)
	return text, nil
}

// refreshHistory updates the CanUndo/CanRedo caches. Failures leave the
// previous values and are logged.
func (s *Session) refreshHistory(ctx context.Context) {
	canUndo, err := s.eng.CanUndo(ctx)
	if err != nil {
		s.log.Warn("refresh undo state failed: %v", err)
		return
	}
	canRedo, err := s.eng.CanRedo(ctx)
	if err != nil {
		s.log.Warn("refresh redo state failed: %v", err)
		return
	}
	s.mu.Lock()
	changed := s.canUndo != canUndo || s.canRedo != canRedo
	s.canUndo, s.canRedo = canUndo, canRedo
	s.mu.Unlock()

	if changed {
		s.events.History.Publish(HistoryState{CanUndo: canUndo, CanRedo: canRedo})
	}
}

// AttributesAt returns the decoded attributes at a byte offset.
func (s *Session) AttributesAt(ctx context.Context, offset int) (attr.TextAttributes, error) {
	compact, err := s.eng.AttributesAt(ctx, offset)
	if err != nil {
		return attr.TextAttributes{}, fmt.Errorf("attributes at %d: %w", offset, err)
	}
	return attr.DecodeCompact(compact), nil
}

// ApplyAttributes applies a to the normalized, clamped range. Color values
// are validated before any engine call; a malformed color fails the whole
// call synchronously.
func (s *Session) ApplyAttributes(ctx context.Context, start, end int, a attr.TextAttributes) error {
	if err := span.ValidateColors(a); err != nil {
		return err
	}
	start, end = s.normalizeRange(start, end)
	payload, err := attr.EncodeStructured(a)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	if err := s.eng.ApplyAttributes(ctx, start, end, payload); err != nil {
		return fmt.Errorf("apply attributes: %w", err)
	}
	s.refreshHistory(ctx)
	return nil
}

// RemoveAttributes clears all attributes on the normalized, clamped range.
func (s *Session) RemoveAttributes(ctx context.Context, start, end int) error {
	start, end = s.normalizeRange(start, end)
	if err := s.eng.RemoveAttributes(ctx, start, end); err != nil {
		return fmt.Errorf("remove attributes: %w", err)
	}
	s.refreshHistory(ctx)
	return nil
}

func (s *Session) normalizeRange(start, end int) (int, int) {
	s.mu.Lock()
	max := len(s.text)
	s.mu.Unlock()
	if end < start {
		start, end = end, start
	}
	return clamp(start, max), clamp(end, max)
}

// StyledRuns fetches the engine's styled text and resolves it through the
// span cascade. A malformed payload degrades to a single unstyled run
// carrying the raw payload; only engine failures propagate.
func (s *Session) StyledRuns(ctx context.Context) ([]span.StyledRun, error) {
	raw, err := s.eng.StyledText(ctx)
	if err != nil {
		return nil, fmt.Errorf("styled text: %w", err)
	}
	spans, err := span.ParseStyledText(raw)
	if err != nil {
		s.log.Warn("styled text payload malformed, rendering unstyled: %v", err)
	}
	return s.builder.Build(spans), nil
}

// Layout returns the last successfully reconstructed layout. The zero
// Document is returned before the first successful refresh.
func (s *Session) Layout() layout.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// RefreshLayout asks the engine to lay the document out at width and applies
// the reconstruction. Each request carries a sequence number; a response
// that returns after a newer request was issued is discarded, so a stale
// layout can never overwrite a newer one. On failure the previous layout is
// returned unchanged alongside the error.
func (s *Session) RefreshLayout(ctx context.Context, width float64) (layout.Document, error) {
	s.mu.Lock()
	s.layoutSeq++
	seq := s.layoutSeq
	s.mu.Unlock()

	raw, err := s.eng.Layout(ctx, width)
	if err != nil {
		s.log.Warn("layout request failed: width=%.1f err=%v", width, err)
		return s.Layout(), fmt.Errorf("layout request: %w", err)
	}

	s.mu.Lock()
	doc, err := layout.Build(raw, s.text)
	if err != nil {
		prev := s.layout
		s.mu.Unlock()
		s.log.Warn("layout description malformed, keeping previous: %v", err)
		return prev, fmt.Errorf("layout refresh: %w", err)
	}
	if latest := s.layoutSeq; seq != latest {
		cur := s.layout
		s.mu.Unlock()
		s.log.Debug("discarding stale layout response: seq=%d latest=%d", seq, latest)
		return cur, nil
	}
	s.layout = doc
	s.mu.Unlock()

	s.events.Layouts.Publish(doc)
	return doc, nil
}

// RequestLayout schedules a refresh at width without blocking. Requests
// arriving while one is in flight coalesce: only the newest width is issued
// once the in-flight call returns.
func (s *Session) RequestLayout(ctx context.Context, width float64) {
	s.mu.Lock()
	w := width
	s.pendingWidth = &w
	if s.refreshing {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	go s.drainLayout(ctx)
}

func (s *Session) drainLayout(ctx context.Context) {
	for {
		s.mu.Lock()
		if s.pendingWidth == nil || ctx.Err() != nil {
			s.refreshing = false
			s.mu.Unlock()
			return
		}
		width := *s.pendingWidth
		s.pendingWidth = nil
		s.mu.Unlock()

		// Errors are already logged and the previous layout retained.
		_, _ = s.RefreshLayout(ctx, width)
	}
}
