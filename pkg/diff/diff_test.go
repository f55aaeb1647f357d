package diff

import (
	"bytes"
	"strings"
	"testing"
)

func TestLines(t *testing.T) {
	before := "🗣 Sam (sad):\nI am so tired of this\n\n🗣 Alex (angry):\nGo home"
	after := "🗣 Sam (sad):\nI'm so tired of this.\n\n🗣 Alex (angry):\nGo home\n\n(Silence.)"

	r := Lines(before, after)
	if r.Modified != 1 || r.Added != 2 || r.Removed != 0 {
		t.Fatalf("expected one modified and two added lines, got %+v", r)
	}
	if r.Edits() != 3 {
		t.Fatalf("expected 3 edits, got %d", r.Edits())
	}
	if c := r.Changes[1]; c.State != Modified || c.Old != "I am so tired of this" || len(c.Deltas) == 0 {
		t.Fatalf("unexpected second change %+v", c)
	}
	last := r.Changes[len(r.Changes)-1]
	if last.State != Added || last.New != "(Silence.)" {
		t.Fatalf("unexpected last change %+v", last)
	}
}

func TestLinesUnrelatedAreRemovedAndAdded(t *testing.T) {
	r := Lines("a\nkeep going", "a\n(Silence.)")
	if r.Removed != 1 || r.Added != 1 || r.Modified != 0 {
		t.Fatalf("expected unrelated lines not to pair, got %+v", r)
	}
}

func TestLinesIdentical(t *testing.T) {
	r := Lines("a\nb", "a\nb")
	if r.Edits() != 0 || len(r.Changes) != 2 {
		t.Fatalf("expected no edits, got %+v", r)
	}
	if r.String() != "  a\n  b\n" {
		t.Fatalf("unexpected listing %q", r.String())
	}
}

func TestWords(t *testing.T) {
	deltas := Words("I am not done", "I'm not done!")
	var before, after strings.Builder
	for _, d := range deltas {
		if d.Op != Insert {
			before.WriteString(d.Text)
		}
		if d.Op != Delete {
			after.WriteString(d.Text)
		}
	}
	if before.String() != "I am not done" || after.String() != "I'm not done!" {
		t.Fatalf("deltas do not rebuild both sides: %+v", deltas)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	s := "Don't stop,  ever!"
	if got := strings.Join(tokenize(s), ""); got != s {
		t.Fatalf("expected %q, got %q", s, got)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Lines("a\nb", "a\nc\nd").Print(&buf)
	if !strings.Contains(buf.String(), "2 added, 1 removed, 0 modified") {
		t.Fatalf("unexpected summary %q", buf.String())
	}
}
