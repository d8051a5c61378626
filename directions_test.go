package main

import "testing"

func TestDirectionEnumeration(t *testing.T) {
	if len(allDirections) != 26 {
		t.Fatalf("expected 26 directions, got %d", len(allDirections))
	}
	if len(uniqueAxes) != 13 {
		t.Fatalf("expected 13 unique axes, got %d", len(uniqueAxes))
	}
	seen := make(map[Direction]bool)
	for _, axis := range uniqueAxes {
		if seen[axis.Opposite()] {
			t.Fatalf("axis %v and its opposite both present", axis)
		}
		seen[axis] = true
	}
}

func TestDirectionWeights(t *testing.T) {
	cases := []struct {
		dir  Direction
		want float64
	}{
		{Direction{1, 0, 0}, 1.0},
		{Direction{0, -1, 0}, 1.0},
		{Direction{1, 1, 0}, 0.8},
		{Direction{0, 1, -1}, 0.8},
		{Direction{1, 1, 1}, 1.2},
		{Direction{-1, 1, -1}, 1.2},
	}
	for _, c := range cases {
		if got := c.dir.Weight(); got != c.want {
			t.Fatalf("weight of %v = %f, want %f", c.dir, got, c.want)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	d := Direction{1, -1, 0}
	opp := d.Opposite()
	if opp.Dx != -1 || opp.Dy != 1 || opp.Dz != 0 {
		t.Fatalf("unexpected opposite %v", opp)
	}
}
