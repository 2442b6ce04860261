package diff

import (
	"errors"
	"fmt"
)

// ErrOutOfRange indicates an operation whose offset or length does not fit
// the text it is being applied to.
var ErrOutOfRange = errors.New("edit outside text bounds")

// OpType categorizes an edit operation.
type OpType uint8

const (
	// OpInsert indicates text inserted at Offset (Text holds the payload).
	OpInsert OpType = iota

	// OpDelete indicates Length bytes removed at Offset (Text is empty).
	OpDelete
)

// String returns a human-readable representation of the operation type.
func (t OpType) String() string {
	switch t {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is a single contiguous edit against a known text snapshot.
// Offsets and lengths are byte positions in that snapshot. An Operation is
// created per buffer-change event, relayed to the engine once, and then
// discarded; it is never persisted.
type Operation struct {
	// Type indicates whether this is an insert or a delete.
	Type OpType

	// Offset is the byte position the edit applies at.
	Offset int

	// Text is the inserted payload. Empty for deletes.
	Text string

	// Length is the number of bytes removed. Equals len(Text) for inserts.
	Length int
}

// Insert creates an operation inserting text at offset.
func Insert(offset int, text string) Operation {
	return Operation{Type: OpInsert, Offset: offset, Text: text, Length: len(text)}
}

// Delete creates an operation removing length bytes at offset.
func Delete(offset, length int) Operation {
	return Operation{Type: OpDelete, Offset: offset, Length: length}
}

// String returns a compact description for logs.
func (op Operation) String() string {
	switch op.Type {
	case OpInsert:
		return fmt.Sprintf("insert@%d %q", op.Offset, op.Text)
	case OpDelete:
		return fmt.Sprintf("delete@%d len=%d", op.Offset, op.Length)
	default:
		return fmt.Sprintf("unknown@%d", op.Offset)
	}
}

// Apply replays op against text and returns the edited result. It validates
// that the operation fits within the text's bounds.
func Apply(text string, op Operation) (string, error) {
	switch op.Type {
	case OpInsert:
		if op.Offset < 0 || op.Offset > len(text) {
			return "", fmt.Errorf("%w: insert offset %d, text length %d", ErrOutOfRange, op.Offset, len(text))
		}
		return text[:op.Offset] + op.Text + text[op.Offset:], nil
	case OpDelete:
		if op.Offset < 0 || op.Length < 0 || op.Offset+op.Length > len(text) {
			return "", fmt.Errorf("%w: delete offset %d length %d, text length %d", ErrOutOfRange, op.Offset, op.Length, len(text))
		}
		return text[:op.Offset] + text[op.Offset+op.Length:], nil
	default:
		return "", fmt.Errorf("unknown operation type %d", op.Type)
	}
}
