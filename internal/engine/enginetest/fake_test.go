package enginetest

import (
	"context"
	"errors"
	"testing"

	"github.com/vellumtext/vellum/internal/diff"
	"github.com/vellumtext/vellum/internal/engine"
	"github.com/vellumtext/vellum/internal/layout"
	"github.com/vellumtext/vellum/internal/span"
)

func TestFake_ApplyEdit(t *testing.T) {
	ctx := context.Background()
	f := New("hello")

	got, err := f.ApplyEdit(ctx, diff.Insert(5, " world"))
	if err != nil {
		t.Fatalf("ApplyEdit(insert) error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("after insert = %q, want %q", got, "hello world")
	}

	got, err = f.ApplyEdit(ctx, diff.Delete(0, 6))
	if err != nil {
		t.Fatalf("ApplyEdit(delete) error: %v", err)
	}
	if got != "world" {
		t.Errorf("after delete = %q, want %q", got, "world")
	}

	if _, err := f.ApplyEdit(ctx, diff.Delete(3, 10)); !errors.Is(err, diff.ErrOutOfRange) {
		t.Errorf("out-of-range delete error = %v, want ErrOutOfRange", err)
	}
}

func TestFake_History(t *testing.T) {
	ctx := context.Background()
	f := New("a")

	mustEdit := func(op diff.Operation) {
		t.Helper()
		if _, err := f.ApplyEdit(ctx, op); err != nil {
			t.Fatalf("ApplyEdit(%v) error: %v", op, err)
		}
	}
	checkHistory := func(wantUndo, wantRedo bool) {
		t.Helper()
		canUndo, err := f.CanUndo(ctx)
		if err != nil {
			t.Fatalf("CanUndo error: %v", err)
		}
		canRedo, err := f.CanRedo(ctx)
		if err != nil {
			t.Fatalf("CanRedo error: %v", err)
		}
		if canUndo != wantUndo || canRedo != wantRedo {
			t.Errorf("history = undo %v redo %v, want undo %v redo %v", canUndo, canRedo, wantUndo, wantRedo)
		}
	}

	checkHistory(false, false)
	mustEdit(diff.Insert(1, "b"))
	mustEdit(diff.Insert(2, "c"))
	checkHistory(true, false)

	if got, _ := f.Undo(ctx); got != "ab" {
		t.Errorf("first undo = %q, want %q", got, "ab")
	}
	if got, _ := f.Undo(ctx); got != "a" {
		t.Errorf("second undo = %q, want %q", got, "a")
	}
	checkHistory(false, true)

	// Exhausted undo history is a no-op.
	if got, _ := f.Undo(ctx); got != "a" {
		t.Errorf("undo past history = %q, want %q", got, "a")
	}

	if got, _ := f.Redo(ctx); got != "ab" {
		t.Errorf("first redo = %q, want %q", got, "ab")
	}
	if got, _ := f.Redo(ctx); got != "abc" {
		t.Errorf("second redo = %q, want %q", got, "abc")
	}
	checkHistory(true, false)
	if got, _ := f.Redo(ctx); got != "abc" {
		t.Errorf("redo past history = %q, want %q", got, "abc")
	}

	// A fresh edit clears the redo stack.
	if _, err := f.Undo(ctx); err != nil {
		t.Fatalf("Undo error: %v", err)
	}
	mustEdit(diff.Insert(2, "z"))
	checkHistory(true, false)
}

func TestFake_Attributes(t *testing.T) {
	ctx := context.Background()
	f := New("hello world")

	if err := f.ApplyAttributes(ctx, 0, 5, []byte(`{"bold":true}`)); err != nil {
		t.Fatalf("ApplyAttributes(bold) error: %v", err)
	}
	if err := f.ApplyAttributes(ctx, 3, 8, []byte(`{"italic":true}`)); err != nil {
		t.Fatalf("ApplyAttributes(italic) error: %v", err)
	}

	tests := []struct {
		offset int
		want   string
	}{
		{1, "true,None,None,None,None,None,None"},
		{4, "true,true,None,None,None,None,None"},
		{6, "None,true,None,None,None,None,None"},
		{9, "None,None,None,None,None,None,None"},
		{100, "None,None,None,None,None,None,None"},
	}
	for _, tt := range tests {
		got, err := f.AttributesAt(ctx, tt.offset)
		if err != nil {
			t.Fatalf("AttributesAt(%d) error: %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("AttributesAt(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}

	if err := f.ApplyAttributes(ctx, 0, 5, []byte(`[1,2]`)); err == nil {
		t.Error("ApplyAttributes with non-object payload: want error, got nil")
	}
}

func TestFake_LaterRunOverrides(t *testing.T) {
	ctx := context.Background()
	f := New("hello")

	if err := f.ApplyAttributes(ctx, 0, 5, []byte(`{"font_size":12}`)); err != nil {
		t.Fatalf("ApplyAttributes error: %v", err)
	}
	if err := f.ApplyAttributes(ctx, 0, 5, []byte(`{"font_size":20}`)); err != nil {
		t.Fatalf("ApplyAttributes error: %v", err)
	}

	got, err := f.AttributesAt(ctx, 2)
	if err != nil {
		t.Fatalf("AttributesAt error: %v", err)
	}
	if want := "None,None,None,20,None,None,None"; got != want {
		t.Errorf("AttributesAt = %q, want %q", got, want)
	}
}

func TestFake_RemoveAttributes(t *testing.T) {
	ctx := context.Background()
	f := New("hello world")

	if err := f.ApplyAttributes(ctx, 0, 11, []byte(`{"bold":true}`)); err != nil {
		t.Fatalf("ApplyAttributes error: %v", err)
	}
	// Clearing the middle splits the run in two.
	if err := f.RemoveAttributes(ctx, 4, 7); err != nil {
		t.Fatalf("RemoveAttributes error: %v", err)
	}

	bold := "true,None,None,None,None,None,None"
	unset := "None,None,None,None,None,None,None"
	tests := []struct {
		offset int
		want   string
	}{
		{0, bold},
		{3, bold},
		{4, unset},
		{6, unset},
		{7, bold},
		{10, bold},
	}
	for _, tt := range tests {
		got, err := f.AttributesAt(ctx, tt.offset)
		if err != nil {
			t.Fatalf("AttributesAt(%d) error: %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("AttributesAt(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}

	// Removal is undoable.
	if _, err := f.Undo(ctx); err != nil {
		t.Fatalf("Undo error: %v", err)
	}
	got, err := f.AttributesAt(ctx, 5)
	if err != nil {
		t.Fatalf("AttributesAt error: %v", err)
	}
	if got != bold {
		t.Errorf("AttributesAt after undo = %q, want %q", got, bold)
	}
}

func TestFake_EditShiftsRuns(t *testing.T) {
	ctx := context.Background()
	f := New("hello world")

	if err := f.ApplyAttributes(ctx, 6, 11, []byte(`{"bold":true}`)); err != nil {
		t.Fatalf("ApplyAttributes error: %v", err)
	}

	// Inserting before the run shifts it right.
	if _, err := f.ApplyEdit(ctx, diff.Insert(0, ">> ")); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	bold := "true,None,None,None,None,None,None"
	got, err := f.AttributesAt(ctx, 9)
	if err != nil {
		t.Fatalf("AttributesAt error: %v", err)
	}
	if got != bold {
		t.Errorf("AttributesAt(9) after insert = %q, want %q", got, bold)
	}

	// Deleting a range containing the run drops it.
	if _, err := f.ApplyEdit(ctx, diff.Delete(3, 11)); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	got, err = f.AttributesAt(ctx, 3)
	if err != nil {
		t.Fatalf("AttributesAt error: %v", err)
	}
	if want := "None,None,None,None,None,None,None"; got != want {
		t.Errorf("AttributesAt(3) after delete = %q, want %q", got, want)
	}
}

func TestFake_StyledText(t *testing.T) {
	ctx := context.Background()
	f := New("hello world")

	if err := f.ApplyAttributes(ctx, 0, 5, []byte(`{"bold":true}`)); err != nil {
		t.Fatalf("ApplyAttributes error: %v", err)
	}

	raw, err := f.StyledText(ctx)
	if err != nil {
		t.Fatalf("StyledText error: %v", err)
	}
	spans, err := span.ParseStyledText(raw)
	if err != nil {
		t.Fatalf("ParseStyledText(%s) error: %v", raw, err)
	}
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Text != "hello" || spans[0].Attrs.Bold == nil || !*spans[0].Attrs.Bold {
		t.Errorf("span 0 = %+v, want bold %q", spans[0], "hello")
	}
	if spans[1].Text != " world" || !spans[1].Attrs.IsZero() {
		t.Errorf("span 1 = %+v, want unstyled %q", spans[1], " world")
	}
}

func TestFake_StyledText_Empty(t *testing.T) {
	raw, err := New("").StyledText(context.Background())
	if err != nil {
		t.Fatalf("StyledText error: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("StyledText of empty document = %s, want []", raw)
	}
}

func TestFake_Layout(t *testing.T) {
	ctx := context.Background()
	f := New("hello world\nabc")

	raw, err := f.Layout(ctx, 64)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	text, err := f.FullText(ctx)
	if err != nil {
		t.Fatalf("FullText error: %v", err)
	}
	doc, err := layout.Build(raw, text)
	if err != nil {
		t.Fatalf("Build(%s) error: %v", raw, err)
	}

	wantTexts := []string{"hello wo", "rld", "abc"}
	if len(doc.Lines) != len(wantTexts) {
		t.Fatalf("got %d lines, want %d", len(doc.Lines), len(wantTexts))
	}
	for i, want := range wantTexts {
		if doc.Lines[i].Text != want {
			t.Errorf("line %d text = %q, want %q", i, doc.Lines[i].Text, want)
		}
		if wantY := float64(i) * 16; doc.Lines[i].Y != wantY {
			t.Errorf("line %d Y = %v, want %v", i, doc.Lines[i].Y, wantY)
		}
	}
	if doc.Lines[0].BreakType != "SoftBreak" {
		t.Errorf("line 0 break type = %q, want SoftBreak", doc.Lines[0].BreakType)
	}
	if doc.Lines[1].BreakType != "HardBreak" {
		t.Errorf("line 1 break type = %q, want HardBreak", doc.Lines[1].BreakType)
	}
	if doc.Lines[2].Paragraph != 1 {
		t.Errorf("line 2 paragraph = %d, want 1", doc.Lines[2].Paragraph)
	}
	if doc.TotalHeight != 48 {
		t.Errorf("TotalHeight = %v, want 48", doc.TotalHeight)
	}
}

func TestFake_Layout_EmptyParagraph(t *testing.T) {
	f := New("a\n\nb")

	raw, err := f.Layout(context.Background(), 80)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	doc, err := layout.Build(raw, "a\n\nb")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(doc.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(doc.Lines))
	}
	if doc.Lines[1].Text != "" || doc.Lines[1].BreakType != "HardBreak" {
		t.Errorf("empty paragraph line = %+v, want empty HardBreak", doc.Lines[1])
	}
}

func TestFake_Overrides(t *testing.T) {
	ctx := context.Background()
	f := New("hello")

	junk := []byte(`{"oops`)
	f.OverrideLayout(junk)
	raw, err := f.Layout(ctx, 80)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if string(raw) != string(junk) {
		t.Errorf("Layout override = %s, want %s", raw, junk)
	}

	f.OverrideStyledText(junk)
	raw, err = f.StyledText(ctx)
	if err != nil {
		t.Fatalf("StyledText error: %v", err)
	}
	if string(raw) != string(junk) {
		t.Errorf("StyledText override = %s, want %s", raw, junk)
	}

	f.OverrideLayout(nil)
	raw, err = f.Layout(ctx, 80)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if _, err := layout.Build(raw, "hello"); err != nil {
		t.Errorf("Layout after clearing override is malformed: %v", err)
	}
}

func TestFake_SetError(t *testing.T) {
	ctx := context.Background()
	f := New("hello")
	boom := errors.New("boom")

	f.SetError(engine.MethodFullText, boom)
	if _, err := f.FullText(ctx); !errors.Is(err, boom) {
		t.Errorf("FullText error = %v, want boom", err)
	}
	// Other methods are unaffected.
	if _, err := f.LineCount(ctx); err != nil {
		t.Errorf("LineCount error = %v, want nil", err)
	}

	f.SetError(engine.MethodFullText, nil)
	if _, err := f.FullText(ctx); err != nil {
		t.Errorf("FullText after clearing error = %v, want nil", err)
	}
}

func TestFake_TextQueries(t *testing.T) {
	ctx := context.Background()
	f := New("one\ntwo\nthree")

	n, err := f.LineCount(ctx)
	if err != nil {
		t.Fatalf("LineCount error: %v", err)
	}
	if n != 3 {
		t.Errorf("LineCount = %d, want 3", n)
	}

	tests := []struct {
		offset, length int
		want           string
	}{
		{0, 3, "one"},
		{4, 3, "two"},
		{8, 100, "three"},
		{-5, 3, "one"},
		{100, 5, ""},
	}
	for _, tt := range tests {
		got, err := f.TextRange(ctx, tt.offset, tt.length)
		if err != nil {
			t.Fatalf("TextRange(%d, %d) error: %v", tt.offset, tt.length, err)
		}
		if got != tt.want {
			t.Errorf("TextRange(%d, %d) = %q, want %q", tt.offset, tt.length, got, tt.want)
		}
	}
}

func TestFake_CallsAndHook(t *testing.T) {
	ctx := context.Background()
	f := New("hello")

	var hooked []string
	f.Hook = func(method string) { hooked = append(hooked, method) }

	if _, err := f.FullText(ctx); err != nil {
		t.Fatalf("FullText error: %v", err)
	}
	if _, err := f.LineCount(ctx); err != nil {
		t.Fatalf("LineCount error: %v", err)
	}

	want := []string{engine.MethodFullText, engine.MethodLineCount}
	calls := f.Calls()
	if len(calls) != len(want) {
		t.Fatalf("Calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] || hooked[i] != want[i] {
			t.Errorf("call %d = %q (hook %q), want %q", i, calls[i], hooked[i], want[i])
		}
	}
}

func TestFake_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New("hello").FullText(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("FullText with cancelled context error = %v, want context.Canceled", err)
	}
}
