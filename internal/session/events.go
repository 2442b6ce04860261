package session

import (
	"github.com/vellumtext/vellum/internal/event"
	"github.com/vellumtext/vellum/internal/layout"
)

// TextChange reports an adopted snapshot change.
type TextChange struct {
	// Previous is the snapshot before the change.
	Previous string
	// Text is the adopted snapshot.
	Text string
}

// HistoryState reports a change in undo/redo availability.
type HistoryState struct {
	CanUndo bool
	CanRedo bool
}

// Events groups the session's notification streams. Handlers run
// synchronously on the publishing goroutine, after the session has released
// its state lock; keep them fast.
type Events struct {
	// Text fires after every adopted snapshot change.
	Text *event.Stream[TextChange]
	// History fires when undo or redo availability flips.
	History *event.Stream[HistoryState]
	// Layouts fires after every applied layout refresh.
	Layouts *event.Stream[layout.Document]
}

func newEvents() *Events {
	return &Events{
		Text:    event.NewStream[TextChange](),
		History: event.NewStream[HistoryState](),
		Layouts: event.NewStream[layout.Document](),
	}
}
