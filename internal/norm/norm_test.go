package norm

import "testing"

func TestBasic(t *testing.T) {
	n := Basic{}

	cases := []struct{ in, want string }{
		{"Beyoncé", "beyonce"},
		{"MÜLLER", "muller"},
		{"plain ascii", "plain ascii"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFullTransliterates(t *testing.T) {
	n := Full{}

	if got := n.Normalize("Светлана"); got != "svetlana" {
		t.Errorf("Normalize(Светлана) = %q, want svetlana", got)
	}
	if got := n.Normalize("Plain"); got != "plain" {
		t.Errorf("Normalize(Plain) = %q, want plain", got)
	}
}

func TestNew(t *testing.T) {
	if n, err := New(""); err != nil || n.Variant() != "basic" {
		t.Errorf("New(\"\") = %v, %v", n, err)
	}
	if n, err := New("full"); err != nil || n.Variant() != "full" {
		t.Errorf("New(full) = %v, %v", n, err)
	}
	if _, err := New("icu"); err == nil {
		t.Errorf("New(icu) should fail")
	}
}
