package attr

// TextAttributes describes the formatting of a run of text. A nil field is
// unset: the run expresses no opinion and inherits whatever the base style
// provides. A non-nil field carries an explicit value, so *Bold pointing at
// false means "explicitly not bold", which is distinct from unset.
type TextAttributes struct {
	Bold       *bool
	Italic     *bool
	Underline  *bool
	FontSize   *int
	FontFamily *string
	Foreground *string
	Background *string
}

// Bool returns a pointer to v for populating a tri-state boolean field.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v for populating the font size field.
func Int(v int) *int { return &v }

// String returns a pointer to v for populating a string-valued field.
func String(v string) *string { return &v }

// IsZero reports whether every field is unset.
func (a TextAttributes) IsZero() bool {
	return a.Bold == nil && a.Italic == nil && a.Underline == nil &&
		a.FontSize == nil && a.FontFamily == nil &&
		a.Foreground == nil && a.Background == nil
}

// Equal reports whether a and b agree field by field, treating unset and
// explicitly-set values as different states even when the set value is the
// zero value.
func (a TextAttributes) Equal(b TextAttributes) bool {
	return ptrEqual(a.Bold, b.Bold) &&
		ptrEqual(a.Italic, b.Italic) &&
		ptrEqual(a.Underline, b.Underline) &&
		ptrEqual(a.FontSize, b.FontSize) &&
		ptrEqual(a.FontFamily, b.FontFamily) &&
		ptrEqual(a.Foreground, b.Foreground) &&
		ptrEqual(a.Background, b.Background)
}

// Clone returns a deep copy of a. Mutating the copy's pointees never affects
// the original.
func (a TextAttributes) Clone() TextAttributes {
	var c TextAttributes
	if a.Bold != nil {
		c.Bold = Bool(*a.Bold)
	}
	if a.Italic != nil {
		c.Italic = Bool(*a.Italic)
	}
	if a.Underline != nil {
		c.Underline = Bool(*a.Underline)
	}
	if a.FontSize != nil {
		c.FontSize = Int(*a.FontSize)
	}
	if a.FontFamily != nil {
		c.FontFamily = String(*a.FontFamily)
	}
	if a.Foreground != nil {
		c.Foreground = String(*a.Foreground)
	}
	if a.Background != nil {
		c.Background = String(*a.Background)
	}
	return c
}

// Merge returns a copy of a with every set field of overlay applied on top.
// Unset overlay fields leave the corresponding field of a untouched.
func (a TextAttributes) Merge(overlay TextAttributes) TextAttributes {
	merged := a.Clone()
	if overlay.Bold != nil {
		merged.Bold = Bool(*overlay.Bold)
	}
	if overlay.Italic != nil {
		merged.Italic = Bool(*overlay.Italic)
	}
	if overlay.Underline != nil {
		merged.Underline = Bool(*overlay.Underline)
	}
	if overlay.FontSize != nil {
		merged.FontSize = Int(*overlay.FontSize)
	}
	if overlay.FontFamily != nil {
		merged.FontFamily = String(*overlay.FontFamily)
	}
	if overlay.Foreground != nil {
		merged.Foreground = String(*overlay.Foreground)
	}
	if overlay.Background != nil {
		merged.Background = String(*overlay.Background)
	}
	return merged
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
