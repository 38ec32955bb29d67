package compare

import "testing"

func TestNormalizeCode(t *testing.T) {
	for _, tt := range []struct{ in, want string }{
		{"ru-7707083893", "RU7707083893"},
		{"7707 083 893", "7707083893"},
		{"  lei:529900T8 ", "LEI529900T8"},
	} {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCodesMatch(t *testing.T) {
	if got := CodesMatch([]string{"7707-083-893"}, []string{"7707083893"}); got != 1 {
		t.Errorf("separator-insensitive match = %v, want 1", got)
	}
	if got := CodesMatch([]string{"7707083893"}, []string{"7707083894"}); got != 0 {
		t.Errorf("different codes = %v, want 0", got)
	}
}

func TestValidCodesMatch(t *testing.T) {
	if got := ValidCodesMatch([]string{"US0378331005"}, []string{"us 0378331005"}, ValidISIN); got != 1 {
		t.Errorf("valid ISIN pair = %v, want 1", got)
	}
	// Shared value, but not a well-formed ISIN.
	if got := ValidCodesMatch([]string{"US03783"}, []string{"US03783"}, ValidISIN); got != 0 {
		t.Errorf("malformed ISIN pair = %v, want 0", got)
	}
}

func TestOrgIDMismatch(t *testing.T) {
	if got := OrgIDMismatch([]string{"1027700132195"}, []string{"1027700132195"}); got != 0 {
		t.Errorf("shared code = %v, want 0", got)
	}
	if got := OrgIDMismatch(nil, []string{"1027700132195"}); got != 0 {
		t.Errorf("one side empty = %v, want 0", got)
	}
	if got := OrgIDMismatch([]string{"1111111111111"}, []string{"9999999999999"}); got != 1 {
		t.Errorf("unrelated codes = %v, want 1", got)
	}

	// One digit apart: penalty discounted by the similarity ratio.
	got := OrgIDMismatch([]string{"1027700132195"}, []string{"1027700132194"})
	if got <= 0 || got >= 0.3 {
		t.Errorf("near-miss code = %v, want small positive", got)
	}
}

func TestWalletMatch(t *testing.T) {
	addr := "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	if got := WalletMatch([]string{addr}, []string{addr}); got != 1 {
		t.Errorf("same wallet = %v, want 1", got)
	}
	if got := WalletMatch([]string{"short"}, []string{"short"}); got != 0 {
		t.Errorf("short value = %v, want 0", got)
	}
	if got := WalletMatch([]string{addr}, []string{addr + "x"}); got != 0 {
		t.Errorf("different wallet = %v, want 0", got)
	}
}

func TestValidators(t *testing.T) {
	for _, tt := range []struct {
		name  string
		valid func(string) bool
		code  string
		want  bool
	}{
		{"isin apple", ValidISIN, "US0378331005", true},
		{"isin bad check", ValidISIN, "US0378331006", false},
		{"isin short", ValidISIN, "US03783310", false},
		{"lei", ValidLEI, "7LTWFZYICNSX8D621K86", true},
		{"lei bad check", ValidLEI, "7LTWFZYICNSX8D621K87", false},
		{"ogrn", ValidOGRN, "1027700132195", true},
		{"ogrn bad check", ValidOGRN, "1027700132196", false},
		{"inn company", ValidINN, "7707083893", true},
		{"inn bad check", ValidINN, "7707083894", false},
		{"bic", ValidBIC, "DEUTDEFF", true},
		{"bic 11", ValidBIC, "DEUTDEFF500", true},
		{"bic lowercase digits", ValidBIC, "12UTDEFF", false},
		{"imo", ValidIMO, "9074729", true},
		{"imo prefixed", ValidIMO, "IMO9074729", true},
		{"imo bad check", ValidIMO, "9074728", false},
		{"mmsi", ValidMMSI, "273456789", true},
		{"mmsi short", ValidMMSI, "27345678", false},
		{"imo or mmsi", ValidIMOMMSI, "273456789", true},
	} {
		if got := tt.valid(tt.code); got != tt.want {
			t.Errorf("%s: valid(%q) = %v, want %v", tt.name, tt.code, got, tt.want)
		}
	}
}
