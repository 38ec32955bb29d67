package compare

// datePrecision is how much of an ISO date string two values share:
// nothing, the year, the year and month, or the full day.
type datePrecision int

const (
	precNone datePrecision = iota
	precYear
	precMonth
	precDay
)

func datePrec(s string) datePrecision {
	switch {
	case len(s) >= 10:
		return precDay
	case len(s) >= 7:
		return precMonth
	case len(s) >= 4:
		return precYear
	default:
		return precNone
	}
}

// DateSimilarity compares two ISO-8601 date strings at the finest
// precision both sides carry. A full-date match scores 1, agreement down
// to the month 0.75, the year alone 0.5. Any disagreement at a shared
// precision level scores the value of the coarser level that still
// agrees, bottoming out at 0 for different years. Values too short to
// hold a year are not comparable.
func DateSimilarity(lhs, rhs string) (float64, bool) {
	prec := datePrec(lhs)
	if p := datePrec(rhs); p < prec {
		prec = p
	}
	if prec == precNone {
		return 0, false
	}

	if lhs[:4] != rhs[:4] {
		return 0, true
	}
	if prec == precYear || lhs[5:7] != rhs[5:7] {
		return 0.5, true
	}
	if prec == precMonth || lhs[8:10] != rhs[8:10] {
		return 0.75, true
	}
	return 1, true
}

// BestDateSimilarity returns the highest pairwise DateSimilarity across
// two value sets, and whether any pair was comparable at all.
func BestDateSimilarity(query, result []string) (float64, bool) {
	best, any := 0.0, false
	for _, q := range query {
		for _, r := range result {
			s, ok := DateSimilarity(q, r)
			if !ok {
				continue
			}
			any = true
			if s > best {
				best = s
			}
		}
	}
	return best, any
}

// DOBYearDisjoint returns 1 when both sides carry birth dates but share
// no birth year, and 0 otherwise.
func DOBYearDisjoint(query, result []string) float64 {
	qYears := dateYears(query)
	rYears := dateYears(result)
	if len(qYears) == 0 || len(rYears) == 0 {
		return 0
	}
	if Disjoint(qYears, rYears) {
		return 1
	}
	return 0
}

// DOBDayDisjoint scores month-and-day disagreement. Both sides need at
// least one full date. Fully disjoint years score 1 outright; otherwise
// any shared month-day pair clears the penalty, a month-day pair that
// agrees only after swapping day and month softens it to 0.5, and
// everything else scores 1.
func DOBDayDisjoint(query, result []string) float64 {
	qDays := monthDays(query)
	rDays := monthDays(result)
	if len(qDays) == 0 || len(rDays) == 0 {
		return 0
	}
	if DOBYearDisjoint(query, result) == 1 {
		return 1
	}
	if !Disjoint(qDays, rDays) {
		return 0
	}
	flipped := make([]string, len(qDays))
	for i, d := range qDays {
		flipped[i] = d[2:] + d[:2]
	}
	if !Disjoint(flipped, rDays) {
		return 0.5
	}
	return 1
}

func dateYears(values []string) []string {
	var out []string
	for _, v := range values {
		if r := []rune(v); len(r) >= 4 {
			out = append(out, string(r[:4]))
		}
	}
	return out
}

// monthDays extracts the month and day digit pairs of full dates,
// position-based so the separator character does not matter.
func monthDays(values []string) []string {
	var out []string
	for _, v := range values {
		if r := []rune(v); len(r) >= 10 {
			out = append(out, string(r[5:7])+string(r[8:10]))
		}
	}
	return out
}
