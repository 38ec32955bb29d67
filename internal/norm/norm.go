// Package norm provides the pluggable text normalization used by the value
// comparators. Two variants exist: Basic folds case and strips diacritics
// within Unicode decomposition, Full additionally transliterates any script
// to ASCII. The variant is chosen once at configuration time; comparators
// call whichever instance they were built with.
package norm

import (
	"fmt"
	"strings"
	"unicode"

	anyascii "github.com/anyascii/go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer folds a string into its comparable form.
type Normalizer interface {
	Normalize(s string) string
	// Variant returns the configured variant name.
	Variant() string
}

// New returns the normalizer for a configured variant name.
func New(variant string) (Normalizer, error) {
	switch variant {
	case "", "basic":
		return Basic{}, nil
	case "full":
		return Full{}, nil
	}
	return nil, fmt.Errorf("unknown normalizer variant %q", variant)
}

// Basic lowercases and strips combining marks after NFKD decomposition.
// Scripts without a Latin decomposition pass through unchanged.
type Basic struct{}

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize implements Normalizer.
func (Basic) Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Variant implements Normalizer.
func (Basic) Variant() string { return "basic" }

// Full transliterates any script to ASCII, then lowercases.
type Full struct{}

// Normalize implements Normalizer.
func (Full) Normalize(s string) string {
	if isASCII(s) {
		return strings.ToLower(s)
	}
	return strings.ToLower(anyascii.Transliterate(s))
}

// Variant implements Normalizer.
func (Full) Variant() string { return "full" }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
