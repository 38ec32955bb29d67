package compare

import "testing"

func TestDateSimilarity(t *testing.T) {
	for _, tt := range []struct {
		lhs, rhs string
		want     float64
		ok       bool
	}{
		{"1952-10-07", "1952-10-07", 1, true},
		{"1952-10-07", "1952-10-09", 0.75, true},
		{"1952-10-07", "1952-11-07", 0.5, true},
		{"1952-10", "1952-10-07", 0.75, true},
		{"1952", "1952-10-07", 0.5, true},
		{"1952-10-07", "1953-10-07", 0, true},
		{"19", "1952", 0, false},
		{"", "1952", 0, false},
	} {
		got, ok := DateSimilarity(tt.lhs, tt.rhs)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DateSimilarity(%q, %q) = (%v, %v), want (%v, %v)", tt.lhs, tt.rhs, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBestDateSimilarity(t *testing.T) {
	got, ok := BestDateSimilarity([]string{"1953", "1952-10-07"}, []string{"1952-10-07"})
	if !ok || got != 1 {
		t.Fatalf("BestDateSimilarity = (%v, %v), want (1, true)", got, ok)
	}

	if _, ok := BestDateSimilarity([]string{"xx"}, []string{"1952"}); ok {
		t.Fatal("unparseable values should not be comparable")
	}
}

func TestDOBYearDisjoint(t *testing.T) {
	if got := DOBYearDisjoint([]string{"1952-10-07"}, []string{"1980-01-01"}); got != 1 {
		t.Errorf("different years = %v, want 1", got)
	}
	if got := DOBYearDisjoint([]string{"1952-10-07"}, []string{"1952"}); got != 0 {
		t.Errorf("shared year = %v, want 0", got)
	}
	if got := DOBYearDisjoint([]string{"1952-10-07"}, nil); got != 0 {
		t.Errorf("missing side = %v, want 0", got)
	}
}

func TestDOBDayDisjoint(t *testing.T) {
	if got := DOBDayDisjoint([]string{"1952-10-07"}, []string{"1952-10-07"}); got != 0 {
		t.Errorf("same day = %v, want 0", got)
	}
	if got := DOBDayDisjoint([]string{"1952-10-07"}, []string{"1952-11-23"}); got != 1 {
		t.Errorf("different day = %v, want 1", got)
	}
	// Day and month swapped reads like a data entry transposition.
	if got := DOBDayDisjoint([]string{"1952-10-07"}, []string{"1952-07-10"}); got != 0.5 {
		t.Errorf("flipped day and month = %v, want 0.5", got)
	}
	// Year-only values never prove a day mismatch.
	if got := DOBDayDisjoint([]string{"1952"}, []string{"1952-10-07"}); got != 0 {
		t.Errorf("partial date = %v, want 0", got)
	}
	// A shared month-day pair clears the penalty even across years.
	if got := DOBDayDisjoint([]string{"1980-05-10", "1981-01-01"}, []string{"1981-05-10"}); got != 0 {
		t.Errorf("month-day shared across years = %v, want 0", got)
	}
	// The flip softening does not need the years to line up either.
	if got := DOBDayDisjoint([]string{"1980-05-10", "1999-01-01"}, []string{"1999-10-05"}); got != 0.5 {
		t.Errorf("flipped month-day across years = %v, want 0.5", got)
	}
	// Provably different years dominate any month-day agreement.
	if got := DOBDayDisjoint([]string{"1980-05-10"}, []string{"1999-05-10"}); got != 1 {
		t.Errorf("disjoint years = %v, want 1", got)
	}
	if got := DOBDayDisjoint([]string{"1952/10/07"}, []string{"1952x10x07"}); got != 0 {
		t.Errorf("separator style = %v, want 0", got)
	}
}
