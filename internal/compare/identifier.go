package compare

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// NormalizeCode strips separators and whitespace from an identifier and
// uppercases the rest, so "ru-7707083893" and "7707 083 893" compare equal.
func NormalizeCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// NormalizeCodes maps NormalizeCode over a value set, dropping empties.
func NormalizeCodes(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := NormalizeCode(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CodesMatch returns 1 when the normalized code sets intersect. Registry
// identifiers are exact or nothing; near-misses are handled by the
// mismatch features instead.
func CodesMatch(query, result []string) float64 {
	if !Disjoint(NormalizeCodes(query), NormalizeCodes(result)) {
		return 1
	}
	return 0
}

// ValidCodesMatch is CodesMatch restricted to codes that pass the given
// format validator, so a matching but malformed value cannot fire a
// registry-specific feature.
func ValidCodesMatch(query, result []string, valid func(string) bool) float64 {
	q := filterValid(NormalizeCodes(query), valid)
	r := filterValid(NormalizeCodes(result), valid)
	if !Disjoint(q, r) {
		return 1
	}
	return 0
}

func filterValid(codes []string, valid func(string) bool) []string {
	out := codes[:0:0]
	for _, c := range codes {
		if valid(c) {
			out = append(out, c)
		}
	}
	return out
}

// OrgIDMismatch scores disagreement between organization registration
// numbers. Any shared code means no mismatch. Otherwise the penalty is
// discounted by the closest near-match above 0.7 similarity, since codes
// one digit apart are more likely a typo than a different company.
func OrgIDMismatch(query, result []string) float64 {
	q := NormalizeCodes(query)
	r := NormalizeCodes(result)
	if len(q) == 0 || len(r) == 0 {
		return 0
	}
	if !Disjoint(q, r) {
		return 0
	}

	best := 0.0
	for _, a := range q {
		for _, b := range r {
			if s := codeRatio(a, b); s > best {
				best = s
			}
		}
	}
	if best > 0.7 {
		return 1 - best
	}
	return 1
}

func codeRatio(a, b string) float64 {
	longer := runeLen(a)
	if l := runeLen(b); l > longer {
		longer = l
	}
	if longer == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longer)
}

// WalletMatch compares crypto wallet addresses: exact, case-sensitive
// equality on values long enough to be real addresses. Short strings are
// too ambiguous to score.
func WalletMatch(query, result []string) float64 {
	for _, q := range query {
		if runeLen(q) <= 10 {
			continue
		}
		for _, r := range result {
			if q == r {
				return 1
			}
		}
	}
	return 0
}
