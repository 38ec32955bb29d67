package compare

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
)

var diceBigrams = metrics.NewSorensenDice()

// TextSimilarity scores free-text values with bigram Sorensen-Dice, which
// tolerates word order and small spelling drift better than edit distance
// on longer prose fields.
func TextSimilarity(lhs, rhs string) float64 {
	if lhs == "" || rhs == "" {
		return 0
	}
	return strutil.Similarity(lhs, rhs, diceBigrams)
}

// BestTextSimilarity returns the highest pairwise TextSimilarity across
// two value sets.
func BestTextSimilarity(query, result []string) float64 {
	best := 0.0
	for _, q := range query {
		for _, r := range result {
			if s := TextSimilarity(q, r); s > best {
				best = s
			}
		}
	}
	return best
}

// TokenSetSimilarity scores two token sets, typically addresses. Full
// containment either way is a match. Otherwise shared tokens count as
// exact and the leftovers on both sides are joined, sorted, and scored by
// plain levenshtein ratio, so "ave" against "avenue" still earns most of
// its token.
func TokenSetSimilarity(lhs, rhs []string) float64 {
	if len(lhs) == 0 || len(rhs) == 0 {
		return 0
	}

	lset := toSet(lhs)
	rset := toSet(rhs)

	var shared []string
	for t := range lset {
		if _, ok := rset[t]; ok {
			shared = append(shared, t)
		}
	}
	if len(shared) == len(lset) || len(shared) == len(rset) {
		return 1
	}

	lRem := remainder(lset, shared)
	rRem := remainder(rset, shared)

	ratio := plainRatio(strings.Join(lRem, " "), strings.Join(rRem, " "))
	remLen := len(lRem)
	if len(rRem) > remLen {
		remLen = len(rRem)
	}
	return (float64(len(shared)) + float64(remLen)*ratio) / float64(len(shared)+remLen)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func remainder(set map[string]struct{}, shared []string) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	filtered := out[:0]
	for _, t := range out {
		keep := true
		for _, s := range shared {
			if t == s {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// plainRatio is levenshtein similarity without the plausibility budget.
func plainRatio(lhs, rhs string) float64 {
	if lhs == "" && rhs == "" {
		return 0
	}
	longer := runeLen(lhs)
	if l := runeLen(rhs); l > longer {
		longer = l
	}
	dist := levenshtein.ComputeDistance(lhs, rhs)
	return 1 - float64(dist)/float64(longer)
}
