package compare

import (
	"sort"
	"strings"

	"github.com/clearwatch-io/entmatch/internal/fingerprint"
)

// NameFingerprintLevenshtein compares organization names after collapsing
// type designations and honorifics, so "AGoogle LLC" can meet "Gooogle
// Limited Liability Company" on even terms. For every name pair the best
// of three edit-distance views wins: the raw names, the space-stripped
// fingerprints, and the fingerprints with tokens realigned by similarity
// to undo word-order differences.
func NameFingerprintLevenshtein(query, result []string) float64 {
	best := 0.0
	for _, qn := range query {
		if runeLen(qn) < 2 {
			continue
		}
		for _, rn := range result {
			if runeLen(rn) < 2 {
				continue
			}
			if s := fingerprintPairScore(qn, rn); s > best {
				best = s
			}
		}
	}
	return best
}

func fingerprintPairScore(qn, rn string) float64 {
	score := LevenshteinSimilarity(qn, rn)

	qfp := fingerprint.Name(qn)
	rfp := fingerprint.Name(rn)
	if strings.TrimSpace(qfp) != "" && strings.TrimSpace(rfp) != "" {
		squeezed := LevenshteinSimilarity(squeeze(qfp), squeeze(rfp))
		if squeezed > score {
			score = squeezed
		}
	}

	qTokens := strings.Fields(qfp)
	rTokens := strings.Fields(rfp)
	if len(qTokens) == 0 || len(rTokens) == 0 {
		return score
	}
	if aligned, ok := alignedConcat(qTokens, rTokens); ok {
		if s := LevenshteinSimilarity(aligned[0], aligned[1]); s > score {
			score = s
		}
	}
	return score
}

func squeeze(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// alignedConcat pairs tokens greedily by descending similarity and
// concatenates each side in pairing order. Every query token must pair up
// for the alignment to count.
func alignedConcat(qTokens, rTokens []string) ([2]string, bool) {
	type cell struct {
		qi, ri int
		score  float64
	}
	cells := make([]cell, 0, len(qTokens)*len(rTokens))
	for qi, q := range qTokens {
		for ri, r := range rTokens {
			cells = append(cells, cell{qi, ri, LevenshteinSimilarity(q, r)})
		}
	}
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].score > cells[j].score })

	usedQ := make([]bool, len(qTokens))
	usedR := make([]bool, len(rTokens))
	var qb, rb strings.Builder
	for _, c := range cells {
		if usedQ[c.qi] || usedR[c.ri] {
			continue
		}
		usedQ[c.qi] = true
		usedR[c.ri] = true
		qb.WriteString(qTokens[c.qi])
		rb.WriteString(rTokens[c.ri])
	}

	for _, u := range usedQ {
		if !u {
			return [2]string{}, false
		}
	}
	return [2]string{qb.String(), rb.String()}, true
}
