// Package match ranks candidate entities against a query. It fans the
// scoring work out over a bounded worker pool, survives scorer panics,
// and degrades to partial results instead of failing when the request
// deadline expires mid-batch.
package match

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearwatch-io/entmatch/internal/catalog"
	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/feature"
	"github.com/clearwatch-io/entmatch/internal/logger"
	"github.com/clearwatch-io/entmatch/internal/norm"
	"github.com/clearwatch-io/entmatch/internal/score"
)

// Status tells whether a match response covers every candidate.
type Status string

const (
	// StatusComplete means every candidate was scored.
	StatusComplete Status = "complete"
	// StatusTimedOut means the deadline expired and the response holds
	// only the candidates scored before it.
	StatusTimedOut Status = "timed_out"
	// StatusErrored means the query could not be scored at all; the
	// response carries no results.
	StatusErrored Status = "errored"
)

// Defaults applied by Params.Normalize.
const (
	DefaultLimit     = 5
	DefaultThreshold = 0.7
	DefaultCutoff    = 0.5
)

// Params tune one match computation.
type Params struct {
	// Algorithm names the scoring algorithm; empty selects the default.
	Algorithm string
	// Limit caps the number of returned results.
	Limit int
	// Threshold is the score above which a result is a match.
	Threshold float64
	// Cutoff is the minimum score for a result to be returned at all.
	Cutoff float64
}

// Normalize fills unset parameters with the package defaults.
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Threshold == 0 {
		p.Threshold = DefaultThreshold
	}
	if p.Cutoff == 0 {
		p.Cutoff = DefaultCutoff
	}
	return p
}

// Result is one scored candidate.
type Result struct {
	Entity   *entity.Entity       `json:"entity"`
	Score    float64              `json:"score"`
	Match    bool                 `json:"match"`
	Features []score.Contribution `json:"features,omitempty"`
}

// Response is the ranked outcome of a match computation.
type Response struct {
	Results []Result `json:"results"`
	// Considered counts the candidates that were actually scored.
	Considered int `json:"considered"`
	// Skipped counts candidates dropped for incomparable schemas.
	Skipped int `json:"skipped"`
	// Errored counts candidates whose scorer panicked.
	Errored int    `json:"errored,omitempty"`
	Status  Status `json:"status"`
	// Error carries a short description when Status is StatusErrored.
	Error string `json:"error,omitempty"`
}

// Matcher scores and ranks candidates. Safe for concurrent use.
type Matcher struct {
	store      *catalog.Store
	normalizer norm.Normalizer
	algorithms *score.Set
	workers    int
}

// New returns a Matcher scoring with at most workers goroutines per
// request.
func New(store *catalog.Store, normalizer norm.Normalizer, algorithms *score.Set, workers int) *Matcher {
	if workers <= 0 {
		workers = 4
	}
	return &Matcher{store: store, normalizer: normalizer, algorithms: algorithms, workers: workers}
}

// Algorithms returns the enabled scoring algorithms.
func (m *Matcher) Algorithms() []score.Algorithm {
	return m.algorithms.All()
}

// DefaultAlgorithm returns the algorithm scoring requests that name none.
func (m *Matcher) DefaultAlgorithm() score.ID {
	return m.algorithms.Default()
}

// Match scores every schema-comparable candidate against the query and
// returns the ranked results at or above the cutoff, best first. When the
// context deadline expires mid-batch the candidates scored so far are
// ranked and returned with StatusTimedOut.
func (m *Matcher) Match(ctx context.Context, q *entity.Query, candidates []*entity.Entity, p Params) (*Response, error) {
	p = p.Normalize()

	alg, err := m.algorithms.Get(p.Algorithm)
	if err != nil {
		return nil, err
	}

	cat := m.store.Current()
	builder := feature.NewBuilder(cat, m.normalizer)
	prepared := builder.Prepare(q)
	log := logger.FromContext(ctx)

	var (
		mu         sync.Mutex
		results    []Result
		considered int
		errored    int
		skipped    int
		expired    atomic.Bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for _, cand := range candidates {
		cand := cand
		if expired.Load() {
			break
		}
		if !cat.Comparable(q.Schema, cand.Schema) {
			skipped++
			continue
		}

		g.Go(func() error {
			// One candidate is the unit of work: the deadline is checked
			// here, never inside a comparator.
			if err := gctx.Err(); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					expired.Store(true)
					return nil
				}
				return err
			}

			res, ok := m.scoreCandidate(log, alg, builder, prepared, cand)

			mu.Lock()
			defer mu.Unlock()
			if !ok {
				errored++
				return nil
			}
			considered++
			if res.Score >= p.Cutoff {
				res.Match = res.Score > p.Threshold
				results = append(results, res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			expired.Store(true)
		} else {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entity.ID < results[j].Entity.ID
	})
	if len(results) > p.Limit {
		results = results[:p.Limit]
	}

	resp := &Response{
		Results:    results,
		Considered: considered,
		Skipped:    skipped,
		Errored:    errored,
		Status:     StatusComplete,
	}
	if expired.Load() {
		resp.Status = StatusTimedOut
	}
	return resp, nil
}

// scoreCandidate builds the feature vector and scores it. A panicking
// comparator is contained to its candidate.
func (m *Matcher) scoreCandidate(log *zap.Logger, alg score.Algorithm, b *feature.Builder, pq *feature.PreparedQuery, cand *entity.Entity) (res Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("candidate scoring panicked",
				zap.String("entity_id", cand.ID),
				zap.Any("panic", r))
			ok = false
		}
	}()

	explained := alg.Score(b.Build(pq, cand))
	return Result{
		Entity:   cand,
		Score:    explained.Score,
		Features: explained.Features,
	}, true
}
