package diff

import "testing"

func TestCompute_Insert(t *testing.T) {
	tests := []struct {
		name       string
		prev, next string
		wantOffset int
		wantText   string
	}{
		{"append at end", "hello", "hello world", 5, " world"},
		{"insert at start", "world", "hello world", 0, "hello "},
		{"insert in middle", "helo", "hello", 3, "l"},
		{"insert into empty", "", "abc", 0, "abc"},
		{"repeated pattern slides to prefix end", "aa", "aaa", 2, "a"},
		{"multibyte payload", "ab", "aéb", 1, "é"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := Compute(tt.prev, tt.next)
			if !ok {
				t.Fatalf("Compute(%q, %q) ok = false, want insert", tt.prev, tt.next)
			}
			want := Insert(tt.wantOffset, tt.wantText)
			if op != want {
				t.Errorf("Compute(%q, %q) = %v, want %v", tt.prev, tt.next, op, want)
			}
			applied, err := Apply(tt.prev, op)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if applied != tt.next {
				t.Errorf("Apply(%q, %v) = %q, want %q", tt.prev, op, applied, tt.next)
			}
		})
	}
}

func TestCompute_Delete(t *testing.T) {
	tests := []struct {
		name       string
		prev, next string
		wantOffset int
		wantLength int
	}{
		{"delete at end", "hello world", "hello", 5, 6},
		{"delete at start", "hello world", "world", 0, 6},
		{"delete in middle", "hello", "helo", 3, 1},
		{"delete everything", "abc", "", 0, 3},
		{"repeated pattern", "aaa", "aa", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := Compute(tt.prev, tt.next)
			if !ok {
				t.Fatalf("Compute(%q, %q) ok = false, want delete", tt.prev, tt.next)
			}
			want := Delete(tt.wantOffset, tt.wantLength)
			if op != want {
				t.Errorf("Compute(%q, %q) = %v, want %v", tt.prev, tt.next, op, want)
			}
			applied, err := Apply(tt.prev, op)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if applied != tt.next {
				t.Errorf("Apply(%q, %v) = %q, want %q", tt.prev, op, applied, tt.next)
			}
		})
	}
}

func TestCompute_EqualLength(t *testing.T) {
	if _, ok := Compute("hello", "hello"); ok {
		t.Error("Compute(identical) ok = true, want false")
	}
	// Same-length substitutions are invisible to a prefix-only scan.
	if _, ok := Compute("hello", "jello"); ok {
		t.Error("Compute(same-length change) ok = true, want false")
	}
}

func TestComputeAll(t *testing.T) {
	tests := []struct {
		name       string
		prev, next string
		opts       Options
		want       []Operation
	}{
		{
			name: "identical yields nil",
			prev: "same", next: "same",
			opts: Options{DetectReplacements: true},
			want: nil,
		},
		{
			name: "insert defers to single op",
			prev: "hello", next: "hello world",
			opts: Options{DetectReplacements: true},
			want: []Operation{Insert(5, " world")},
		},
		{
			name: "replacement invisible when disabled",
			prev: "hello", next: "jello",
			opts: Options{},
			want: nil,
		},
		{
			name: "replacement in middle",
			prev: "one red car", next: "one big car",
			opts: Options{DetectReplacements: true},
			want: []Operation{Delete(4, 3), Insert(4, "big")},
		},
		{
			name: "replacement with no common text",
			prev: "abc", next: "xyz",
			opts: Options{DetectReplacements: true},
			want: []Operation{Delete(0, 3), Insert(0, "xyz")},
		},
		{
			name: "replacement widens to rune boundary",
			prev: "héllo", next: "hèllo",
			opts: Options{DetectReplacements: true},
			want: []Operation{Delete(1, 2), Insert(1, "è")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAll(tt.prev, tt.next, tt.opts)
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeAll(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ComputeAll(%q, %q)[%d] = %v, want %v", tt.prev, tt.next, i, got[i], tt.want[i])
				}
			}

			text := tt.prev
			var err error
			for _, op := range got {
				if text, err = Apply(text, op); err != nil {
					t.Fatalf("Apply(%v) error: %v", op, err)
				}
			}
			if len(got) > 0 && text != tt.next {
				t.Errorf("applying operations = %q, want %q", text, tt.next)
			}
		})
	}
}

func TestApply_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		op   Operation
	}{
		{"insert past end", "abc", Insert(4, "x")},
		{"insert negative offset", "abc", Operation{Type: OpInsert, Offset: -1, Text: "x", Length: 1}},
		{"delete past end", "abc", Delete(1, 5)},
		{"delete negative length", "abc", Operation{Type: OpDelete, Offset: 0, Length: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply(tt.text, tt.op); err == nil {
				t.Errorf("Apply(%q, %v) = nil error, want ErrOutOfRange", tt.text, tt.op)
			}
		})
	}
}

func TestOpType_String(t *testing.T) {
	if got := OpInsert.String(); got != "insert" {
		t.Errorf("OpInsert.String() = %q", got)
	}
	if got := OpDelete.String(); got != "delete" {
		t.Errorf("OpDelete.String() = %q", got)
	}
}
