package entity

import (
	"errors"
	"testing"
)

func TestNewQueryRequiresProperties(t *testing.T) {
	if _, err := NewQuery("Person", nil); !errors.Is(err, ErrNoProperties) {
		t.Fatalf("err = %v, want ErrNoProperties", err)
	}
	if _, err := NewQuery("Person", map[string][]string{"name": {}}); !errors.Is(err, ErrNoProperties) {
		t.Fatalf("err = %v, want ErrNoProperties", err)
	}
}

func TestProps(t *testing.T) {
	e := &Entity{
		ID:     "Q7747",
		Schema: "Person",
		Properties: map[string][]string{
			"name":  {"Vladimir Putin"},
			"alias": {"Wladimir Putin", "Путин"},
		},
	}

	got := e.Props("name", "alias")
	want := []string{"Vladimir Putin", "Wladimir Putin", "Путин"}
	if len(got) != len(want) {
		t.Fatalf("Props() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Props()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if e.Props("unknown") != nil {
		t.Error("unknown property should yield nothing")
	}
}

func TestPrecomputeNameCombinations(t *testing.T) {
	q, err := NewQuery("Person", map[string][]string{
		"firstName": {"Vladimir"},
		"lastName":  {"Putin", "Poutine"},
	})
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	names := q.Props("name")
	want := map[string]bool{"Vladimir Putin": true, "Vladimir Poutine": true}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %d combinations", names, len(want))
	}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected combination %q", name)
		}
	}
}

func TestPrecomputeKeepsExplicitNames(t *testing.T) {
	q, err := NewQuery("Person", map[string][]string{
		"name":      {"Vladimir Putin"},
		"firstName": {"Vladimir"},
		"lastName":  {"Putin"},
	})
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	names := q.Props("name")
	if len(names) != 1 || names[0] != "Vladimir Putin" {
		t.Fatalf("names = %v, want the one explicit name", names)
	}
}

func TestPrecomputeCapped(t *testing.T) {
	first := make([]string, 20)
	last := make([]string, 20)
	for i := range first {
		first[i] = string(rune('a' + i%26))
		last[i] = string(rune('A' + i%26))
	}

	q, err := NewQuery("Person", map[string][]string{
		"firstName": {"x"},
		"lastName":  {"y"},
	})
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	q.Properties["firstName"] = first
	q.Properties["lastName"] = last
	q.Properties["name"] = nil
	q.Precompute()

	if n := len(q.Props("name")); n > 100 {
		t.Fatalf("got %d combinations, want at most 100", n)
	}
}

func TestNamesAndAliases(t *testing.T) {
	e := &Entity{
		Schema: "Person",
		Properties: map[string][]string{
			"alias": {"Vova"},
			"name":  {"Vladimir Putin"},
		},
	}

	got := NamesAndAliases(e)
	if len(got) != 2 || got[0] != "Vladimir Putin" || got[1] != "Vova" {
		t.Fatalf("NamesAndAliases() = %v", got)
	}
}
