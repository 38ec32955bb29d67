package compare

import "strings"

// regionAliases groups country codes that commonly substitute for one
// another in source data: successors of dissolved states and members of
// blocs that appear as a single jurisdiction.
var regionAliases = map[string][]string{
	"su": {"ru", "ua", "by", "kz", "uz", "tm", "kg", "tj", "am", "az", "ge", "md", "lt", "lv", "ee"},
	"yu": {"rs", "hr", "si", "ba", "mk", "me", "xk"},
	"cs": {"cz", "sk"},
	"eu": {
		"at", "be", "bg", "hr", "cy", "cz", "dk", "ee", "fi", "fr", "de", "gr",
		"hu", "ie", "it", "lv", "lt", "lu", "mt", "nl", "pl", "pt", "ro", "sk",
		"si", "es", "se",
	},
}

// CountrySimilarity scores two country codes: 1 for an exact match, 0.5
// when one side is a region alias covering the other, 0 otherwise.
func CountrySimilarity(lhs, rhs string) float64 {
	lhs = strings.ToLower(strings.TrimSpace(lhs))
	rhs = strings.ToLower(strings.TrimSpace(rhs))
	if lhs == "" || rhs == "" {
		return 0
	}
	if lhs == rhs {
		return 1
	}
	if regionCovers(lhs, rhs) || regionCovers(rhs, lhs) {
		return 0.5
	}
	return 0
}

func regionCovers(region, code string) bool {
	for _, member := range regionAliases[region] {
		if member == code {
			return true
		}
	}
	return false
}

// CountryMismatch returns 1 when both sides declare countries but no pair
// scores above zero, and 0 otherwise. It feeds the negative qualifier
// features, so absence of data is never treated as disagreement.
func CountryMismatch(query, result []string) float64 {
	if len(query) == 0 || len(result) == 0 {
		return 0
	}
	for _, q := range query {
		for _, r := range result {
			if CountrySimilarity(q, r) > 0 {
				return 0
			}
		}
	}
	return 1
}

// GenderMismatch returns 1 when both sides declare genders with no value
// in common.
func GenderMismatch(query, result []string) float64 {
	q := lowered(query)
	r := lowered(result)
	if len(q) == 0 || len(r) == 0 {
		return 0
	}
	if Disjoint(q, r) {
		return 1
	}
	return 0
}

func lowered(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
