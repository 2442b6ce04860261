package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vellumtext/vellum/internal/diff"
	"github.com/vellumtext/vellum/internal/engine"
)

func newTestClient(t *testing.T, handler func(method string, params json.RawMessage) (any, *RPCError)) *Client {
	t.Helper()
	return NewClient(newTestTransport(t, handler), Options{})
}

func TestClient_ApplyEdit(t *testing.T) {
	gotParams := make(chan json.RawMessage, 1)
	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		if method != engine.MethodApplyEdit {
			return nil, &RPCError{Code: CodeMethodNotFound, Message: method}
		}
		gotParams <- params
		return map[string]string{"text": "hello world"}, nil
	})

	text, err := c.ApplyEdit(context.Background(), diff.Insert(5, " world"))
	if err != nil {
		t.Fatalf("ApplyEdit() error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("ApplyEdit() = %q, want %q", text, "hello world")
	}

	var p editParams
	if err := json.Unmarshal(<-gotParams, &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	want := editParams{Type: "insert", Offset: 5, Text: " world"}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestClient_ApplyEdit_Delete(t *testing.T) {
	gotParams := make(chan json.RawMessage, 1)
	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		gotParams <- params
		return map[string]string{"text": "hello"}, nil
	})

	if _, err := c.ApplyEdit(context.Background(), diff.Delete(5, 6)); err != nil {
		t.Fatalf("ApplyEdit() error: %v", err)
	}

	var p editParams
	if err := json.Unmarshal(<-gotParams, &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	want := editParams{Type: "delete", Offset: 5, Length: 6}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestClient_History(t *testing.T) {
	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		switch method {
		case engine.MethodUndo:
			return map[string]string{"text": "before"}, nil
		case engine.MethodRedo:
			return map[string]string{"text": "after"}, nil
		case engine.MethodCanUndo:
			return map[string]bool{"value": true}, nil
		case engine.MethodCanRedo:
			return map[string]bool{"value": false}, nil
		}
		return nil, &RPCError{Code: CodeMethodNotFound, Message: method}
	})

	ctx := context.Background()
	if text, err := c.Undo(ctx); err != nil || text != "before" {
		t.Errorf("Undo() = %q, %v", text, err)
	}
	if text, err := c.Redo(ctx); err != nil || text != "after" {
		t.Errorf("Redo() = %q, %v", text, err)
	}
	if ok, err := c.CanUndo(ctx); err != nil || !ok {
		t.Errorf("CanUndo() = %v, %v", ok, err)
	}
	if ok, err := c.CanRedo(ctx); err != nil || ok {
		t.Errorf("CanRedo() = %v, %v", ok, err)
	}
}

func TestClient_Attributes(t *testing.T) {
	gotParams := make(chan json.RawMessage, 2)
	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		switch method {
		case engine.MethodAttributesAt:
			return map[string]string{"attributes": "true,false,None,14,None,#FF0000,None"}, nil
		case engine.MethodApplyAttributes, engine.MethodRemoveAttributes:
			gotParams <- params
			return map[string]bool{"ok": true}, nil
		}
		return nil, &RPCError{Code: CodeMethodNotFound, Message: method}
	})

	ctx := context.Background()
	compact, err := c.AttributesAt(ctx, 3)
	if err != nil {
		t.Fatalf("AttributesAt() error: %v", err)
	}
	if compact != "true,false,None,14,None,#FF0000,None" {
		t.Errorf("AttributesAt() = %q", compact)
	}

	payload := []byte(`{"bold":true,"italic":null,"underline":null,"font_size":null,"font_family":null,"foreground":null,"background":null}`)
	if err := c.ApplyAttributes(ctx, 2, 8, payload); err != nil {
		t.Fatalf("ApplyAttributes() error: %v", err)
	}
	var ap attributeParams
	if err := json.Unmarshal(<-gotParams, &ap); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if ap.Start != 2 || ap.End != 8 {
		t.Errorf("range = (%d, %d), want (2, 8)", ap.Start, ap.End)
	}
	if string(ap.Attributes) != string(payload) {
		t.Errorf("attributes payload = %s, want %s", ap.Attributes, payload)
	}

	if err := c.RemoveAttributes(ctx, 0, 4); err != nil {
		t.Fatalf("RemoveAttributes() error: %v", err)
	}
	var rp rangeParams
	if err := json.Unmarshal(<-gotParams, &rp); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if rp.Start != 0 || rp.End != 4 {
		t.Errorf("range = (%d, %d), want (0, 4)", rp.Start, rp.End)
	}
}

func TestClient_RawPayloads(t *testing.T) {
	styled := `[{"text":"hi","attributes":null}]`
	layoutJSON := `{"paragraphs":[],"total_width":100,"total_height":0,"line_height":16}`
	gotWidth := make(chan json.RawMessage, 1)

	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		switch method {
		case engine.MethodStyledText:
			return json.RawMessage(styled), nil
		case engine.MethodLayout:
			gotWidth <- params
			return json.RawMessage(layoutJSON), nil
		}
		return nil, &RPCError{Code: CodeMethodNotFound, Message: method}
	})

	ctx := context.Background()
	data, err := c.StyledText(ctx)
	if err != nil {
		t.Fatalf("StyledText() error: %v", err)
	}
	if string(data) != styled {
		t.Errorf("StyledText() = %s, want %s", data, styled)
	}

	data, err = c.Layout(ctx, 480)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if string(data) != layoutJSON {
		t.Errorf("Layout() = %s, want %s", data, layoutJSON)
	}

	var wp widthParams
	if err := json.Unmarshal(<-gotWidth, &wp); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if wp.Width != 480 {
		t.Errorf("width param = %v, want 480", wp.Width)
	}
}

func TestClient_TextQueries(t *testing.T) {
	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		switch method {
		case engine.MethodFullText:
			return map[string]string{"text": "full"}, nil
		case engine.MethodTextRange:
			var p spanParams
			if err := json.Unmarshal(params, &p); err != nil || p.Offset != 1 || p.Length != 2 {
				return nil, &RPCError{Code: CodeInvalidParams, Message: string(params)}
			}
			return map[string]string{"text": "ul"}, nil
		case engine.MethodLineCount:
			return map[string]int{"value": 3}, nil
		}
		return nil, &RPCError{Code: CodeMethodNotFound, Message: method}
	})

	ctx := context.Background()
	if text, err := c.FullText(ctx); err != nil || text != "full" {
		t.Errorf("FullText() = %q, %v", text, err)
	}
	if text, err := c.TextRange(ctx, 1, 2); err != nil || text != "ul" {
		t.Errorf("TextRange() = %q, %v", text, err)
	}
	if n, err := c.LineCount(ctx); err != nil || n != 3 {
		t.Errorf("LineCount() = %d, %v", n, err)
	}
}

func TestClient_RequestTimeout(t *testing.T) {
	tr := newTestTransport(t, func(method string, params json.RawMessage) (any, *RPCError) {
		return nil, nil
	})
	c := NewClient(tr, Options{RequestTimeout: 20 * time.Millisecond})

	_, err := c.FullText(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("FullText() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClient_ErrorPropagation(t *testing.T) {
	c := newTestClient(t, func(method string, params json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: CodeInternalError, Message: "engine exploded"}
	})

	var rpcErr *RPCError
	if _, err := c.Undo(context.Background()); !errors.As(err, &rpcErr) {
		t.Errorf("Undo() error = %v, want *RPCError", err)
	}
}
