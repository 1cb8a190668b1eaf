package filter

import (
	"testing"

	"github.com/kailas-cloud/prodsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
)

const colorKey = "dominant_color"

func ranked(t *testing.T, colors ...string) []result.Ranked {
	t.Helper()
	rs := make([]result.Ranked, len(colors))
	for i, c := range colors {
		it, err := catalog.NewItem(string(rune('a'+i)), "item-"+c, "", "", map[string]string{colorKey: c}, []float32{1})
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		rs[i] = result.New(&it, 1-float64(i)/10, i)
	}
	return rs
}

func TestNewAttribute_Validation(t *testing.T) {
	if _, err := NewAttribute("", []string{"red"}); err == nil {
		t.Error("expected error for empty key")
	}

	tooMany := make([]string, MaxValues+1)
	for i := range tooMany {
		tooMany[i] = string(rune('a' + i%26))
	}
	if _, err := NewAttribute(colorKey, tooMany); err == nil {
		t.Error("expected error for too many values")
	}
}

func TestNewAttribute_DropsBlankAndDuplicates(t *testing.T) {
	f, err := NewAttribute(colorKey, []string{"red", "", "red", "white"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := f.Values()
	if len(got) != 2 || got[0] != "red" || got[1] != "white" {
		t.Errorf("Values() = %v", got)
	}
}

func TestApply_EmptyIsIdentity(t *testing.T) {
	rs := ranked(t, "red", "white", "black")

	f, err := NewAttribute(colorKey, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsEmpty() {
		t.Fatal("expected empty filter")
	}

	out := f.Apply(rs, 5)
	if len(out) != len(rs) {
		t.Fatalf("expected %d results, got %d", len(rs), len(out))
	}
	for i := range rs {
		if out[i].ID() != rs[i].ID() || out[i].Score() != rs[i].Score() {
			t.Errorf("result %d changed: %s/%f vs %s/%f", i, out[i].ID(), out[i].Score(), rs[i].ID(), rs[i].Score())
		}
	}

	var zero Attribute
	if len(zero.Apply(rs, 5)) != 3 {
		t.Error("zero-value filter must be the identity")
	}
}

func TestApply_PreservesRankOrderAndScores(t *testing.T) {
	rs := ranked(t, "red", "white", "red", "black", "white")

	f, _ := NewAttribute(colorKey, []string{"white"})
	out := f.Apply(rs, 5)

	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].ID() != "b" || out[1].ID() != "e" {
		t.Errorf("unexpected order: %s, %s", out[0].ID(), out[1].ID())
	}
	if out[0].Score() != rs[1].Score() || out[1].Score() != rs[4].Score() {
		t.Error("scores must stay attached to their items")
	}
}

func TestApply_Truncates(t *testing.T) {
	rs := ranked(t, "red", "red", "red", "red", "red", "red", "red")

	f, _ := NewAttribute(colorKey, []string{"red"})
	if got := len(f.Apply(rs, 5)); got != 5 {
		t.Errorf("expected 5 results, got %d", got)
	}
}

func TestMatches_MissingAttribute(t *testing.T) {
	it, _ := catalog.NewItem("x", "no color", "", "", nil, []float32{1})

	f, _ := NewAttribute(colorKey, []string{"red"})
	if f.Matches(&it) {
		t.Error("item without the attribute must not match a non-empty filter")
	}
}
