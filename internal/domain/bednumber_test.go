package domain

import (
	"sort"
	"testing"
)

func TestCompareBedNumbers_NumericSegments(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2-3", "9-1", -1},
		{"9-1", "10-1", -1},
		{"10-1", "2-3", 1},
		{"3A", "3B", -1},
		{"3-1", "3-1", 0},
		{"03-1", "3-1", 0},
		{"3", "3-1", -1},
		{"B2", "B10", -1},
	}
	for _, c := range cases {
		got := CompareBedNumbers(c.a, c.b)
		if sign(got) != c.want {
			t.Errorf("CompareBedNumbers(%q, %q) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareBedNumbers_SortOrder(t *testing.T) {
	beds := []string{"9-1", "10-1", "2-3"}
	sort.Slice(beds, func(i, j int) bool {
		return CompareBedNumbers(beds[i], beds[j]) < 0
	})

	want := []string{"2-3", "9-1", "10-1"}
	for i := range want {
		if beds[i] != want[i] {
			t.Fatalf("sorted beds = %v, want %v", beds, want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
