package attr

import (
	"strconv"
	"strings"
)

// unsetToken is the wire sentinel for an unset field in the compact
// positional format. It exists only on the wire; the in-memory model uses
// nil pointers.
const unsetToken = "None"

// compactFieldCount is the fixed arity of the compact positional format, in
// order: bold, italic, underline, fontSize, fontFamily, foreground,
// background.
const compactFieldCount = 7

// DecodeCompact parses the 7-field positional attribute format used for
// single-offset attribute queries. Tokens that do not parse for their
// position ("None", a mistyped boolean, a non-numeric size) decode as unset.
// A payload with the wrong field count decodes as all-unset: the compact
// protocol is fail-soft and never reports an error.
func DecodeCompact(s string) TextAttributes {
	fields := strings.Split(s, ",")
	if len(fields) != compactFieldCount {
		return TextAttributes{}
	}
	return TextAttributes{
		Bold:       decodeCompactBool(fields[0]),
		Italic:     decodeCompactBool(fields[1]),
		Underline:  decodeCompactBool(fields[2]),
		FontSize:   decodeCompactInt(fields[3]),
		FontFamily: decodeCompactString(fields[4]),
		Foreground: decodeCompactString(fields[5]),
		Background: decodeCompactString(fields[6]),
	}
}

// EncodeCompact renders a in the 7-field positional format, emitting the
// "None" sentinel for unset fields.
func EncodeCompact(a TextAttributes) string {
	fields := [compactFieldCount]string{
		encodeCompactBool(a.Bold),
		encodeCompactBool(a.Italic),
		encodeCompactBool(a.Underline),
		encodeCompactInt(a.FontSize),
		encodeCompactString(a.FontFamily),
		encodeCompactString(a.Foreground),
		encodeCompactString(a.Background),
	}
	return strings.Join(fields[:], ",")
}

func decodeCompactBool(token string) *bool {
	switch token {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	default:
		return nil
	}
}

func decodeCompactInt(token string) *int {
	if token == unsetToken {
		return nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return nil
	}
	return Int(n)
}

func decodeCompactString(token string) *string {
	if token == unsetToken {
		return nil
	}
	return String(token)
}

func encodeCompactBool(v *bool) string {
	if v == nil {
		return unsetToken
	}
	return strconv.FormatBool(*v)
}

func encodeCompactInt(v *int) string {
	if v == nil {
		return unsetToken
	}
	return strconv.Itoa(*v)
}

func encodeCompactString(v *string) string {
	if v == nil {
		return unsetToken
	}
	return *v
}
