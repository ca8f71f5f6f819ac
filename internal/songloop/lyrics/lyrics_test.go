package lyrics

import (
	"fmt"
	"strings"
	"testing"
)

func makeLRC(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%02d:%02d.00]line %d\n", i/60, i%60, i)
	}
	return b.String()
}

func TestParse(t *testing.T) {
	t.Parallel()

	lines := Parse("[00:12.34]hello\n[00:05.00]first\nno tag here\n[00:20.5]last")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	if lines[0].Text != "first" || lines[0].Time != 5000 {
		t.Errorf("expected first/5000, got %q/%d", lines[0].Text, lines[0].Time)
	}
	if lines[1].Time != 12340 {
		t.Errorf("expected 12340, got %d", lines[1].Time)
	}
	if lines[2].Time != 20500 {
		t.Errorf("expected 20500, got %d", lines[2].Time)
	}

	// end times derive from the successor, tail gets padding
	if lines[0].EndTime != 12340 {
		t.Errorf("expected end 12340, got %d", lines[0].EndTime)
	}
	if lines[2].EndTime != 25500 {
		t.Errorf("expected end 25500, got %d", lines[2].EndTime)
	}
}

func TestParseMultiTag(t *testing.T) {
	t.Parallel()

	lines := Parse("[00:10.00][01:10.00]chorus")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Time != 10000 || lines[1].Time != 70000 {
		t.Errorf("unexpected times %d, %d", lines[0].Time, lines[1].Time)
	}
	if lines[0].Text != "chorus" || lines[1].Text != "chorus" {
		t.Errorf("unexpected texts %q, %q", lines[0].Text, lines[1].Text)
	}
}

func TestParseGarbage(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "just words", "[99:99.99]broken", "[al:bu:m]meta"} {
		if lines := Parse(text); len(lines) != 0 {
			t.Errorf("Parse(%q): expected no lines, got %d", text, len(lines))
		}
	}
}

func TestExcerptTooShort(t *testing.T) {
	t.Parallel()

	lines := Parse(makeLRC(3))
	if s := Excerpt(lines, 4); s != nil {
		t.Errorf("expected nil excerpt, got %+v", s)
	}
	if s := Excerpt(nil, 1); s != nil {
		t.Errorf("expected nil excerpt for empty lines, got %+v", s)
	}
	if s := Excerpt(lines, 0); s != nil {
		t.Errorf("expected nil excerpt for zero count, got %+v", s)
	}
}

func TestExcerptExactLength(t *testing.T) {
	t.Parallel()

	lines := Parse(makeLRC(4))
	s := Excerpt(lines, 4)
	if s == nil {
		t.Fatal("expected an excerpt")
	}
	if s.StartIndex != 0 || len(s.Lines) != 4 {
		t.Errorf("expected full window at 0, got start=%d len=%d", s.StartIndex, len(s.Lines))
	}
}

func TestExcerptBounds(t *testing.T) {
	t.Parallel()

	const length, count = 40, 4
	lines := Parse(makeLRC(length))
	lo, hi := windowBounds(length, count)

	for i := 0; i < 200; i++ {
		s := Excerpt(lines, count)
		if s == nil {
			t.Fatal("expected an excerpt")
		}
		if len(s.Lines) != count {
			t.Fatalf("expected %d lines, got %d", count, len(s.Lines))
		}
		if s.StartIndex < lo || s.StartIndex > hi {
			t.Fatalf("start %d outside [%d, %d]", s.StartIndex, lo, hi)
		}
		// contiguity against the source
		for j, line := range s.Lines {
			if line != lines[s.StartIndex+j] {
				t.Fatalf("window not contiguous at offset %d", j)
			}
		}
		if s.StartTime != s.Lines[0].Time || s.EndTime != s.Lines[count-1].EndTime {
			t.Fatalf("bounds %d-%d do not match window", s.StartTime, s.EndTime)
		}
	}
}
