// Package compare implements the typed value comparators: pure functions
// that turn a pair of property values into a bounded similarity. Name
// comparison exposes its sub-scores (literal, edit-distance, jaro-winkler,
// phonetic) separately so each scoring algorithm can weight them on its own.
package compare

import (
	"strings"
	"unicode"

	"github.com/clearwatch-io/entmatch/internal/norm"
)

// CleanNames normalizes each value and strips everything but letters,
// digits, and spaces. Duplicates and empty results are dropped, the input
// order of the rest is preserved.
func CleanNames(n norm.Normalizer, values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, value := range values {
		cleaned := keepAlnum(n.Normalize(value))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

// CleanLiteral lowercases and strips punctuation without transliterating,
// preserving the original script. Used for the literal name match, where
// "Владимир Путин" must not collide with its romanization.
func CleanLiteral(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, value := range values {
		cleaned := keepAlnum(strings.ToLower(value))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

// NameParts returns each cleaned name as its token slice, deduplicated by
// the joined token sequence.
func NameParts(n norm.Normalizer, values []string) [][]string {
	out := make([][]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, name := range CleanNames(n, values) {
		tokens := strings.Fields(name)
		if len(tokens) == 0 {
			continue
		}
		key := strings.Join(tokens, " ")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tokens)
	}
	return out
}

// NamePartsFlat returns the unique cleaned tokens across all values,
// skipping single-character tokens.
func NamePartsFlat(n norm.Normalizer, values []string) []string {
	var out []string
	seen := map[string]struct{}{}

	for _, value := range values {
		for _, token := range strings.Fields(value) {
			cleaned := keepAlnum(n.Normalize(token))
			if len([]rune(cleaned)) < 2 {
				continue
			}
			if _, ok := seen[cleaned]; ok {
				continue
			}
			seen[cleaned] = struct{}{}
			out = append(out, cleaned)
		}
	}
	return out
}

// Disjoint reports whether the two value sets share no element.
func Disjoint(lhs, rhs []string) bool {
	if len(lhs) == 0 || len(rhs) == 0 {
		return true
	}

	smaller, bigger := lhs, rhs
	if len(smaller) > len(bigger) {
		smaller, bigger = bigger, smaller
	}

	set := make(map[string]struct{}, len(smaller))
	for _, v := range smaller {
		set[v] = struct{}{}
	}
	for _, v := range bigger {
		if _, ok := set[v]; ok {
			return false
		}
	}
	return true
}

func keepAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) && !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
