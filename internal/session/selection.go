package session

// Selection is a directional byte range over the document. Anchor is where
// the selection began and Active is the moving end, so either may be the
// larger offset.
type Selection struct {
	Anchor int
	Active int
}

// Start returns the smaller end of the selection.
func (s Selection) Start() int {
	if s.Active < s.Anchor {
		return s.Active
	}
	return s.Anchor
}

// End returns the larger end of the selection.
func (s Selection) End() int {
	if s.Active > s.Anchor {
		return s.Active
	}
	return s.Anchor
}

// IsEmpty reports whether the selection is a bare caret.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// clampTo limits both ends to [0, max].
func (s Selection) clampTo(max int) Selection {
	return Selection{Anchor: clamp(s.Anchor, max), Active: clamp(s.Active, max)}
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
