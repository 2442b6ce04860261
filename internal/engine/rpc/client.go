package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vellumtext/vellum/internal/diff"
	"github.com/vellumtext/vellum/internal/engine"
	"github.com/vellumtext/vellum/internal/logging"
)

// Options configures a Client.
type Options struct {
	// RequestTimeout bounds each engine call. Zero disables the bound and
	// calls rely on the caller's context alone.
	RequestTimeout time.Duration

	// Logger receives per-call debug output. Nil silences it.
	Logger *logging.Logger
}

// Client implements engine.Engine over a JSON-RPC transport.
type Client struct {
	transport *Transport
	timeout   time.Duration
	log       *logging.Logger
}

var _ engine.Engine = (*Client)(nil)

// NewClient wraps an already-started transport.
func NewClient(t *Transport, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logging.Null
	}
	return &Client{
		transport: t,
		timeout:   opts.RequestTimeout,
		log:       log.WithComponent("rpc"),
	}
}

// Close shuts down the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

type editParams struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Text   string `json:"text,omitempty"`
	Length int    `json:"length,omitempty"`
}

type offsetParams struct {
	Offset int `json:"offset"`
}

type spanParams struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type rangeParams struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type attributeParams struct {
	Start      int             `json:"start"`
	End        int             `json:"end"`
	Attributes json.RawMessage `json:"attributes"`
}

type widthParams struct {
	Width float64 `json:"width"`
}

type textResult struct {
	Text string `json:"text"`
}

type boolResult struct {
	Value bool `json:"value"`
}

type intResult struct {
	Value int `json:"value"`
}

type attributeResult struct {
	Attributes string `json:"attributes"`
}

// ApplyEdit relays one edit operation and returns the engine's new full
// text.
func (c *Client) ApplyEdit(ctx context.Context, op diff.Operation) (string, error) {
	params := editParams{Offset: op.Offset}
	switch op.Type {
	case diff.OpInsert:
		params.Type = "insert"
		params.Text = op.Text
	case diff.OpDelete:
		params.Type = "delete"
		params.Length = op.Length
	default:
		return "", fmt.Errorf("unknown operation type %d", op.Type)
	}

	c.log.Debug("applyEdit %s", op)
	var res textResult
	if err := c.call(ctx, engine.MethodApplyEdit, params, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// Undo reverts the latest edit.
func (c *Client) Undo(ctx context.Context) (string, error) {
	var res textResult
	if err := c.call(ctx, engine.MethodUndo, nil, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// Redo re-applies the latest undone edit.
func (c *Client) Redo(ctx context.Context) (string, error) {
	var res textResult
	if err := c.call(ctx, engine.MethodRedo, nil, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// CanUndo reports whether undo history exists.
func (c *Client) CanUndo(ctx context.Context) (bool, error) {
	var res boolResult
	if err := c.call(ctx, engine.MethodCanUndo, nil, &res); err != nil {
		return false, err
	}
	return res.Value, nil
}

// CanRedo reports whether redo history exists.
func (c *Client) CanRedo(ctx context.Context) (bool, error) {
	var res boolResult
	if err := c.call(ctx, engine.MethodCanRedo, nil, &res); err != nil {
		return false, err
	}
	return res.Value, nil
}

// FullText returns the canonical document text.
func (c *Client) FullText(ctx context.Context) (string, error) {
	var res textResult
	if err := c.call(ctx, engine.MethodFullText, nil, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// TextRange returns length bytes of text starting at offset.
func (c *Client) TextRange(ctx context.Context, offset, length int) (string, error) {
	var res textResult
	if err := c.call(ctx, engine.MethodTextRange, spanParams{Offset: offset, Length: length}, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// LineCount returns the number of hard lines in the document.
func (c *Client) LineCount(ctx context.Context) (int, error) {
	var res intResult
	if err := c.call(ctx, engine.MethodLineCount, nil, &res); err != nil {
		return 0, err
	}
	return res.Value, nil
}

// AttributesAt returns the compact positional attribute string at offset.
func (c *Client) AttributesAt(ctx context.Context, offset int) (string, error) {
	var res attributeResult
	if err := c.call(ctx, engine.MethodAttributesAt, offsetParams{Offset: offset}, &res); err != nil {
		return "", err
	}
	return res.Attributes, nil
}

// ApplyAttributes applies a structured attribute payload to [start, end).
func (c *Client) ApplyAttributes(ctx context.Context, start, end int, attrs []byte) error {
	params := attributeParams{Start: start, End: end, Attributes: json.RawMessage(attrs)}
	return c.call(ctx, engine.MethodApplyAttributes, params, nil)
}

// RemoveAttributes clears all attributes on [start, end).
func (c *Client) RemoveAttributes(ctx context.Context, start, end int) error {
	return c.call(ctx, engine.MethodRemoveAttributes, rangeParams{Start: start, End: end}, nil)
}

// StyledText returns the document's styled-text JSON.
func (c *Client) StyledText(ctx context.Context) ([]byte, error) {
	var raw json.RawMessage
	if err := c.call(ctx, engine.MethodStyledText, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Layout returns the nested layout description JSON for the given width.
func (c *Client) Layout(ctx context.Context, width float64) ([]byte, error) {
	var raw json.RawMessage
	if err := c.call(ctx, engine.MethodLayout, widthParams{Width: width}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.transport.Call(ctx, method, params, result); err != nil {
		c.log.Warn("%s failed: %v", method, err)
		return err
	}
	return nil
}
