package compare

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

const jaroPartFloor = 0.6

// editBudget is the largest edit distance still considered a plausible
// spelling variation: a fifth of the shorter string, capped at four edits.
func editBudget(lhs, rhs string) int {
	shorter := runeLen(lhs)
	if l := runeLen(rhs); l < shorter {
		shorter = l
	}
	budget := int(math.Ceil(float64(shorter) * 0.2))
	if budget > 4 {
		budget = 4
	}
	return budget
}

// IsLevenshteinPlausible reports whether the two strings are within the
// edit budget of each other.
func IsLevenshteinPlausible(lhs, rhs string) bool {
	return levenshtein.ComputeDistance(lhs, rhs) <= editBudget(lhs, rhs)
}

// LevenshteinSimilarity scores edit-distance proximity in [0, 1]. Pairs
// beyond the plausibility budget score zero instead of decaying smoothly,
// which keeps unrelated names from accumulating partial credit.
func LevenshteinSimilarity(lhs, rhs string) float64 {
	if lhs == "" || rhs == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(lhs, rhs)
	if dist > editBudget(lhs, rhs) {
		return 0
	}
	longer := runeLen(lhs)
	if l := runeLen(rhs); l > longer {
		longer = l
	}
	if longer == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(longer)
}

// NameLiteralMatch returns 1 when any cleaned-but-untransliterated query
// name equals a result name exactly.
func NameLiteralMatch(query, result []string) float64 {
	if !Disjoint(query, result) {
		return 1
	}
	return 0
}

// AlignNameParts pairs query tokens with result tokens, best Jaro-Winkler
// pair first, each token consumed at most once, and multiplies the pair
// scores. Pairs outside the edit budget never align, every query token
// must find a partner, and the paired halves joined back together must
// still be within the edit budget of each other. Leftover result tokens
// are free, so "john smith" aligns fully against "john william smith".
func AlignNameParts(query, result []string) float64 {
	if len(query) == 0 || len(result) == 0 {
		return 0
	}

	type pair struct {
		qi, ri int
		score  float64
	}
	var pairs []pair
	for qi, q := range query {
		for ri, r := range result {
			s := matchr.JaroWinkler(q, r, false)
			if s > 0 && IsLevenshteinPlausible(q, r) {
				pairs = append(pairs, pair{qi, ri, s})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	usedQ := make([]bool, len(query))
	usedR := make([]bool, len(result))
	score := 1.0
	var alignedQ, alignedR []string
	for _, p := range pairs {
		if usedQ[p.qi] || usedR[p.ri] {
			continue
		}
		usedQ[p.qi] = true
		usedR[p.ri] = true
		score *= p.score
		alignedQ = append(alignedQ, query[p.qi])
		alignedR = append(alignedR, result[p.ri])
	}

	if len(alignedQ) < len(query) {
		return 0
	}
	if !IsLevenshteinPlausible(strings.Join(alignedQ, " "), strings.Join(alignedR, " ")) {
		return 0
	}
	return score
}

// JaroNameParts averages, over the query tokens, the best Jaro-Winkler
// score each one attains against any result token. Scores under the part
// floor count as zero so that weak resemblances do not pile up.
func JaroNameParts(query, result []string) float64 {
	if len(query) == 0 || len(result) == 0 {
		return 0
	}

	total := 0.0
	for _, q := range query {
		best := 0.0
		for _, r := range result {
			if s := matchr.JaroWinkler(q, r, false); s > jaroPartFloor && s > best {
				best = s
			}
		}
		total += best
	}
	return total / float64(len(query))
}

// PersonNameJaroWinkler compares two tokenized person names. Whole-name
// Jaro-Winkler, raised to the power of the name length so that short
// coincidental matches decay hard, is trusted only when the names have
// comparable length and pass the plausibility budget; token alignment
// runs as a fallback either way, tolerating missing middle names.
func PersonNameJaroWinkler(query, result [][]string) float64 {
	best := 0.0
	for _, q := range query {
		qJoined := strings.Join(q, "")
		for _, r := range result {
			rJoined := strings.Join(r, "")

			shorter, longer := runeLen(qJoined), runeLen(rJoined)
			if shorter > longer {
				shorter, longer = longer, shorter
			}
			if shorter > 0 && float64(shorter)/float64(longer) >= 0.5 &&
				IsLevenshteinPlausible(qJoined, rJoined) {
				jw := matchr.JaroWinkler(qJoined, rJoined, false)
				if s := math.Pow(jw, float64(runeLen(qJoined))); s > best {
					best = s
				}
			}
			if best >= 1 {
				return 1
			}
			if s := AlignNameParts(q, r); s > best {
				best = s
			}
			if best >= 1 {
				return 1
			}
		}
	}
	return best
}

// SoundexNameParts scores the share of query tokens whose Soundex code
// appears among the result token codes.
func SoundexNameParts(query, result []string) float64 {
	if len(query) == 0 || len(result) == 0 {
		return 0
	}

	codes := make(map[string]struct{}, len(result))
	for _, r := range result {
		if c := matchr.Soundex(r); c != "" {
			codes[c] = struct{}{}
		}
	}

	hits := 0
	for _, q := range query {
		if _, ok := codes[matchr.Soundex(q)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

// phoneticToken pairs a name token with its Metaphone code. Codes under
// three characters are too short to be distinctive, so such tokens match
// literally instead.
type phoneticToken struct {
	token string
	code  string
}

// phoneticTokens maps a cleaned name to its token-phoneme tuples,
// skipping tokens under two characters.
func phoneticTokens(name string) []phoneticToken {
	var out []phoneticToken
	for _, token := range strings.Fields(name) {
		if runeLen(token) < 2 {
			continue
		}
		code, _ := matchr.DoubleMetaphone(token)
		if runeLen(code) < 3 {
			code = ""
		}
		out = append(out, phoneticToken{token: token, code: code})
	}
	return out
}

func phoneticTokensMatch(l, r phoneticToken) bool {
	if l.code == "" || r.code == "" {
		return l.token == r.token
	}
	return l.code == r.code && IsLevenshteinPlausible(l.token, r.token)
}

// PhoneticNameMatch scores, for the best-matching name pair, the share of
// query tokens whose phoneme matches an unused result token. Same-sounding
// tokens still have to be plausible spelling variants of each other, so
// phonetic collisions between unrelated names do not count.
func PhoneticNameMatch(query, result []string) float64 {
	best := 0.0
	for _, q := range query {
		qTokens := phoneticTokens(q)
		if len(qTokens) == 0 {
			continue
		}
		for _, r := range result {
			rTokens := phoneticTokens(r)

			used := make([]bool, len(rTokens))
			matched := 0
			for _, lt := range qTokens {
				for i, rt := range rTokens {
					if !used[i] && phoneticTokensMatch(lt, rt) {
						used[i] = true
						matched++
						break
					}
				}
			}

			if s := float64(matched) / float64(len(qTokens)); s > best {
				best = s
			}
			if best >= 1 {
				return 1
			}
		}
	}
	return best
}
