package align

import (
	"math"
	"testing"
)

func exact(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

func TestAlignExact(t *testing.T) {
	res := Align([]string{"x", "y"}, []string{"y", "x", "z"}, exact, 0)

	if len(res.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(res.Pairs))
	}
	if res.Aggregate != 1 {
		t.Errorf("aggregate = %v, want 1", res.Aggregate)
	}
	if len(res.UnmatchedA) != 0 {
		t.Errorf("unmatched a = %v, want none", res.UnmatchedA)
	}
	if len(res.UnmatchedB) != 1 || res.UnmatchedB[0] != 2 {
		t.Errorf("unmatched b = %v, want [2]", res.UnmatchedB)
	}
}

func TestAlignConsumesEachValueOnce(t *testing.T) {
	// Both query values resemble the single candidate value; only the
	// better one may pair with it.
	sim := func(a, b string) float64 {
		switch a {
		case "good":
			return 0.9
		case "ok":
			return 0.6
		}
		return 0
	}

	res := Align([]string{"ok", "good"}, []string{"target"}, sim, 0)
	if len(res.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(res.Pairs))
	}
	if res.Pairs[0].A != 1 || res.Pairs[0].Score != 0.9 {
		t.Errorf("pair = %+v, want index 1, score 0.9", res.Pairs[0])
	}
	if len(res.UnmatchedA) != 1 || res.UnmatchedA[0] != 0 {
		t.Errorf("unmatched a = %v, want [0]", res.UnmatchedA)
	}
}

func TestAlignFloor(t *testing.T) {
	sim := func(a, b string) float64 { return 0.5 }

	res := Align([]string{"x"}, []string{"y"}, sim, 0.5)
	if len(res.Pairs) != 0 {
		t.Fatalf("scores at floor should not pair, got %v", res.Pairs)
	}
	if res.Aggregate != 0 {
		t.Errorf("aggregate without pairs = %v, want 0", res.Aggregate)
	}
}

func TestAlignDeterministicTieBreak(t *testing.T) {
	sim := func(a, b string) float64 { return 0.8 }

	res := Align([]string{"a0", "a1"}, []string{"b0", "b1"}, sim, 0)
	if len(res.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(res.Pairs))
	}
	if res.Pairs[0].A != 0 || res.Pairs[0].B != 0 {
		t.Errorf("first pair = %+v, want (0, 0)", res.Pairs[0])
	}
	if res.Pairs[1].A != 1 || res.Pairs[1].B != 1 {
		t.Errorf("second pair = %+v, want (1, 1)", res.Pairs[1])
	}
}

func TestAggregateQuadraticMean(t *testing.T) {
	scores := map[string]float64{"a": 0.9, "b": 0.4}
	sim := func(a, b string) float64 {
		if a == b {
			return scores[a]
		}
		return 0
	}

	res := Align([]string{"a", "b"}, []string{"a", "b"}, sim, 0)
	want := math.Sqrt((0.9*0.9 + 0.4*0.4) / 2)
	if math.Abs(res.Aggregate-want) > 1e-12 {
		t.Fatalf("aggregate = %v, want %v", res.Aggregate, want)
	}
}

func TestAggregateMonotone(t *testing.T) {
	base := Align([]string{"a", "b"}, []string{"a", "b"}, func(a, b string) float64 {
		if a == b {
			return 0.5
		}
		return 0
	}, 0)
	raised := Align([]string{"a", "b"}, []string{"a", "b"}, func(a, b string) float64 {
		if a == b && a == "b" {
			return 0.7
		}
		if a == b {
			return 0.5
		}
		return 0
	}, 0)

	if raised.Aggregate <= base.Aggregate {
		t.Fatalf("raising a pair score lowered the aggregate: %v <= %v", raised.Aggregate, base.Aggregate)
	}
}
