package ids

import "testing"

func TestFirstIndex(t *testing.T) {
	t.Parallel()

	if got := FirstIndex(); got != "a0" {
		t.Errorf("expected a0, got %q", got)
	}
}

func TestIndexBetween_BothEmpty(t *testing.T) {
	t.Parallel()

	if got := IndexBetween("", ""); got != FirstIndex() {
		t.Errorf("expected %q, got %q", FirstIndex(), got)
	}
}

func TestIndexBetween_NoLowerBound(t *testing.T) {
	t.Parallel()

	got := IndexBetween("", "a1")
	if got >= "a1" {
		t.Fatalf("expected result strictly before a1, got %q", got)
	}
}

func TestIndexBetween_NoUpperBound(t *testing.T) {
	t.Parallel()

	got := IndexBetween("a1", "")
	if got <= "a1" {
		t.Fatalf("expected result strictly after a1, got %q", got)
	}
}

func TestIndexBetween_InvertedRangeFallsBackToAppend(t *testing.T) {
	t.Parallel()

	got := IndexBetween("b0", "a0")
	if got <= "b0" {
		t.Fatalf("expected result strictly after b0, got %q", got)
	}
}

func TestIndexBetween_StrictlyBetweenBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		before, after string
	}{
		{"a0", "a1"},
		{"a0", "a0V"},
		{"a0", "b0"},
		{"a09", "a1"},
		{"a0F", "a0V"},
		{"a", "b"},
	}
	for _, c := range cases {
		got := IndexBetween(c.before, c.after)
		if got <= c.before || got >= c.after {
			t.Errorf("IndexBetween(%q, %q) = %q, want strictly between", c.before, c.after, got)
		}
	}
}

func TestIndexBetween_NeverCollidesWithAfter(t *testing.T) {
	t.Parallel()

	// This pairing used to regress to exactly after: the midpoint branch
	// appended a fixed character to before without checking after at all.
	before, after := "a0", "a0V"
	got := IndexBetween(before, after)
	if got == after {
		t.Fatalf("IndexBetween(%q, %q) returned after itself: %q", before, after, got)
	}
}

func TestIndexBetween_RepeatedInsertionConverges(t *testing.T) {
	t.Parallel()

	before, after := "a0", "a1"
	for i := 0; i < 20; i++ {
		mid := IndexBetween(before, after)
		if mid <= before || mid >= after {
			t.Fatalf("iteration %d: IndexBetween(%q, %q) = %q, want strictly between", i, before, after, mid)
		}
		after = mid
	}
}
