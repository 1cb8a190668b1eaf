package result

import (
	"testing"

	"github.com/kailas-cloud/prodsearch/internal/domain/catalog"
)

func TestNew(t *testing.T) {
	it, err := catalog.NewItem("42", "Air Max", "", "", nil, []float32{1})
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	r := New(&it, 0.87, 3)
	if r.ID() != "42" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Item().Name() != "Air Max" {
		t.Errorf("Item().Name() = %q", r.Item().Name())
	}
	if r.Score() != 0.87 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Position() != 3 {
		t.Errorf("Position() = %d", r.Position())
	}
}

func TestTruncate(t *testing.T) {
	rs := make([]Ranked, 7)

	tests := []struct {
		k    int
		want int
	}{
		{5, 5},
		{10, 7},
		{0, 7},
		{-1, 7},
	}
	for _, tc := range tests {
		if got := len(Truncate(rs, tc.k)); got != tc.want {
			t.Errorf("Truncate(7 items, %d) len = %d, want %d", tc.k, got, tc.want)
		}
	}
}
