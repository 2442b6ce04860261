// Package engine defines the abstract surface of the external rich-text
// document engine. The engine owns the canonical document text, the
// undo/redo history and the paragraph layout algorithm; this package only
// names the operations the synchronization core is allowed to invoke.
//
// Implementations exchange wire-level payloads: compact attribute strings,
// structured attribute JSON, styled-text JSON and layout JSON all cross the
// boundary undecoded. Parsing them, and degrading gracefully when they are
// malformed, is the caller's concern.
package engine

import (
	"context"
	"errors"

	"github.com/vellumtext/vellum/internal/diff"
)

// Errors shared by engine implementations.
var (
	// ErrClosed indicates the engine connection has been shut down.
	ErrClosed = errors.New("engine connection closed")

	// ErrInvalidResponse indicates a reply that does not match the
	// requested operation's result shape.
	ErrInvalidResponse = errors.New("invalid response from engine")
)

// Method names of the engine protocol. RPC implementations use them as
// request method strings; test doubles key call records and injected
// failures by them.
const (
	MethodApplyEdit        = "document/applyEdit"
	MethodUndo             = "document/undo"
	MethodRedo             = "document/redo"
	MethodCanUndo          = "document/canUndo"
	MethodCanRedo          = "document/canRedo"
	MethodFullText         = "document/fullText"
	MethodTextRange        = "document/textRange"
	MethodLineCount        = "document/lineCount"
	MethodAttributesAt     = "document/attributesAt"
	MethodApplyAttributes  = "document/applyAttributes"
	MethodRemoveAttributes = "document/removeAttributes"
	MethodStyledText       = "document/styledText"
	MethodLayout           = "document/layout"
)

// Engine is the request/response surface of the document engine. Every call
// blocks until the engine replies and respects context cancellation, so a
// stalled engine never wedges the caller beyond its deadline.
//
// Mutating calls (ApplyEdit, Undo, Redo, ApplyAttributes, RemoveAttributes)
// invalidate any state the caller caches; the contract is explicit refresh,
// not automatic consistency.
type Engine interface {
	// ApplyEdit relays one edit operation and returns the engine's new
	// full text.
	ApplyEdit(ctx context.Context, op diff.Operation) (string, error)

	// Undo reverts the latest edit and returns the new full text. Undoing
	// with no history is a no-op that returns the current text.
	Undo(ctx context.Context) (string, error)

	// Redo re-applies the latest undone edit and returns the new full
	// text.
	Redo(ctx context.Context) (string, error)

	// CanUndo and CanRedo report history availability.
	CanUndo(ctx context.Context) (bool, error)
	CanRedo(ctx context.Context) (bool, error)

	// FullText returns the canonical document text.
	FullText(ctx context.Context) (string, error)

	// TextRange returns length bytes of text starting at offset, clamped
	// to the document bounds.
	TextRange(ctx context.Context, offset, length int) (string, error)

	// LineCount returns the number of hard lines in the document.
	LineCount(ctx context.Context) (int, error)

	// AttributesAt returns the compact positional attribute string in
	// effect at offset.
	AttributesAt(ctx context.Context, offset int) (string, error)

	// ApplyAttributes applies a structured attribute payload to
	// [start, end). The payload carries explicit nulls for attributes the
	// write does not address.
	ApplyAttributes(ctx context.Context, start, end int, attrs []byte) error

	// RemoveAttributes clears all attributes on [start, end).
	RemoveAttributes(ctx context.Context, start, end int) error

	// StyledText returns the document as styled-text JSON: an ordered
	// array of {text, attributes-or-null} runs.
	StyledText(ctx context.Context) ([]byte, error)

	// Layout lays the document out at the given width and returns the
	// nested layout description JSON.
	Layout(ctx context.Context, width float64) ([]byte, error)
}
