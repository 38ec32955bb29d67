// Package align pairs up two sets of property values by similarity. Both
// sides of a comparison may carry several values for the same property,
// and scoring every combination independently overweights repeated
// values; aligning first gives each value one partner at most.
package align

import (
	"math"
	"sort"
)

// Similarity scores a pair of values in [0, 1].
type Similarity func(a, b string) float64

// Pair is one aligned value pair with its similarity score.
type Pair struct {
	A     int
	B     int
	Score float64
}

// Result is an alignment: the chosen pairs, the indices left unmatched on
// each side, and an aggregate score over the pairs.
type Result struct {
	Pairs      []Pair
	UnmatchedA []int
	UnmatchedB []int
	Aggregate  float64
}

// Align greedily pairs values from a and b, highest similarity first,
// consuming each value at most once. Pairs scoring at or below floor are
// never formed. Ties break by position, first on the a index, then on the
// b index, so the result is deterministic for any input order.
//
// The aggregate is the quadratic mean of the pair scores. It is monotone
// in every pair score, stays within [0, 1], and leans toward the
// strongest evidence, so one excellent alias is not washed out by weak
// secondary ones. No pairs means a zero aggregate.
func Align(a, b []string, sim Similarity, floor float64) Result {
	type cell struct {
		ai, bi int
		score  float64
	}

	cells := make([]cell, 0, len(a)*len(b))
	for ai, av := range a {
		for bi, bv := range b {
			if s := sim(av, bv); s > floor {
				cells = append(cells, cell{ai, bi, s})
			}
		}
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].score != cells[j].score {
			return cells[i].score > cells[j].score
		}
		if cells[i].ai != cells[j].ai {
			return cells[i].ai < cells[j].ai
		}
		return cells[i].bi < cells[j].bi
	})

	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	var res Result
	for _, c := range cells {
		if usedA[c.ai] || usedB[c.bi] {
			continue
		}
		usedA[c.ai] = true
		usedB[c.bi] = true
		res.Pairs = append(res.Pairs, Pair{A: c.ai, B: c.bi, Score: c.score})
	}

	for i, used := range usedA {
		if !used {
			res.UnmatchedA = append(res.UnmatchedA, i)
		}
	}
	for i, used := range usedB {
		if !used {
			res.UnmatchedB = append(res.UnmatchedB, i)
		}
	}

	res.Aggregate = quadraticMean(res.Pairs)
	return res
}

func quadraticMean(pairs []Pair) float64 {
	if len(pairs) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pairs {
		sum += p.Score * p.Score
	}
	return math.Sqrt(sum / float64(len(pairs)))
}
