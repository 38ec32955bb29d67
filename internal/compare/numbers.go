package compare

import (
	"regexp"
	"strings"
)

var digitRuns = regexp.MustCompile(`\d+`)

// ExtractNumbers pulls the digit runs out of a value set, with leading
// zeros trimmed so "007" and "7" agree.
func ExtractNumbers(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		for _, run := range digitRuns.FindAllString(v, -1) {
			run = strings.TrimLeft(run, "0")
			if run == "" {
				run = "0"
			}
			if _, ok := seen[run]; ok {
				continue
			}
			seen[run] = struct{}{}
			out = append(out, run)
		}
	}
	return out
}

// NumbersMismatch scores disagreement between the numeric fragments of
// two value sets, such as house numbers in addresses or years embedded in
// descriptions. The score is the count of query numbers absent from the
// result side over the smaller side's count, so a sparse side cannot
// dilute the penalty; both sides must carry numbers for a mismatch to
// register.
func NumbersMismatch(query, result []string) float64 {
	q := ExtractNumbers(query)
	r := ExtractNumbers(result)
	if len(q) == 0 || len(r) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(r))
	for _, v := range r {
		set[v] = struct{}{}
	}
	missing := 0
	for _, v := range q {
		if _, ok := set[v]; !ok {
			missing++
		}
	}
	base := len(q)
	if len(r) < base {
		base = len(r)
	}
	score := float64(missing) / float64(base)
	if score > 1 {
		score = 1
	}
	return score
}
