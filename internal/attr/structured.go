package attr

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrMalformedStructured indicates a structured attribute payload that is
// not a JSON object.
var ErrMalformedStructured = errors.New("malformed structured attributes")

// Structured format keys, one per attribute field.
const (
	keyBold       = "bold"
	keyItalic     = "italic"
	keyUnderline  = "underline"
	keyFontSize   = "font_size"
	keyFontFamily = "font_family"
	keyForeground = "foreground"
	keyBackground = "background"
)

// DecodeStructured parses the structured JSON attribute format used for
// full-document and range attribute exchange. Keys that are absent, null,
// or of the wrong type decode as unset. The payload itself must be a JSON
// object; anything else returns ErrMalformedStructured.
func DecodeStructured(data []byte) (TextAttributes, error) {
	if !gjson.ValidBytes(data) {
		return TextAttributes{}, fmt.Errorf("%w: invalid json", ErrMalformedStructured)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return TextAttributes{}, fmt.Errorf("%w: expected object, got %s", ErrMalformedStructured, root.Type)
	}
	return FromJSON(root), nil
}

// FromJSON extracts attributes from an already-parsed JSON object, applying
// the same absent/null/wrong-type rules as DecodeStructured. Callers that
// hold a larger parsed document use this to avoid re-serializing fragments.
func FromJSON(obj gjson.Result) TextAttributes {
	return TextAttributes{
		Bold:       structuredBool(obj.Get(keyBold)),
		Italic:     structuredBool(obj.Get(keyItalic)),
		Underline:  structuredBool(obj.Get(keyUnderline)),
		FontSize:   structuredInt(obj.Get(keyFontSize)),
		FontFamily: structuredString(obj.Get(keyFontFamily)),
		Foreground: structuredString(obj.Get(keyForeground)),
		Background: structuredString(obj.Get(keyBackground)),
	}
}

// EncodeStructured renders a as a JSON object carrying every key. Unset
// fields are written as explicit null, never omitted, so a receiver can
// tell "attribute explicitly cleared" (false) from "attribute not addressed
// by this write" (null).
func EncodeStructured(a TextAttributes) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = setStructured(out, keyBold, a.Bold); err != nil {
		return nil, err
	}
	if out, err = setStructured(out, keyItalic, a.Italic); err != nil {
		return nil, err
	}
	if out, err = setStructured(out, keyUnderline, a.Underline); err != nil {
		return nil, err
	}
	if out, err = setStructured(out, keyFontSize, a.FontSize); err != nil {
		return nil, err
	}
	if out, err = setStructured(out, keyFontFamily, a.FontFamily); err != nil {
		return nil, err
	}
	if out, err = setStructured(out, keyForeground, a.Foreground); err != nil {
		return nil, err
	}
	if out, err = setStructured(out, keyBackground, a.Background); err != nil {
		return nil, err
	}
	return out, nil
}

func setStructured[T any](data []byte, key string, v *T) ([]byte, error) {
	if v == nil {
		return sjson.SetBytes(data, key, nil)
	}
	return sjson.SetBytes(data, key, *v)
}

func structuredBool(r gjson.Result) *bool {
	switch r.Type {
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	default:
		return nil
	}
}

func structuredInt(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	return Int(int(r.Int()))
}

func structuredString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	return String(r.String())
}
