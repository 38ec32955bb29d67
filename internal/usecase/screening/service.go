package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/logger"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/metrics"
	"github.com/clearwatch-io/entmatch/internal/score"
)

// Limits bound a screening request.
type Limits struct {
	// DefaultLimit is the result count when a request names none.
	DefaultLimit int
	// MaxLimit caps the per-request result count.
	MaxLimit int
	// CandidateFactor multiplies the limit when fetching candidates, so
	// ranking has more to choose from than it returns.
	CandidateFactor int
	// QueryWorkers bounds concurrent queries within one request.
	QueryWorkers int
	// Threshold and Cutoff are the default score bounds.
	Threshold float64
	Cutoff    float64
}

// ApplyDefaults fills zero limits.
func (l *Limits) ApplyDefaults() {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = match.DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = 50
	}
	if l.CandidateFactor <= 0 {
		l.CandidateFactor = 10
	}
	if l.QueryWorkers <= 0 {
		l.QueryWorkers = 4
	}
	if l.Threshold <= 0 {
		l.Threshold = match.DefaultThreshold
	}
	if l.Cutoff <= 0 {
		l.Cutoff = match.DefaultCutoff
	}
}

// Options tune one screening request. Zero values take the service
// defaults.
type Options struct {
	Algorithm string
	Limit     int
	Threshold float64
	Cutoff    float64
	// Datasets optionally restricts candidates to these datasets.
	Datasets []string
}

// Service screens named queries against a scope of the candidate index.
type Service struct {
	idx      CandidateIndex
	matcher  Matcher
	limits   Limits
	provider string
}

// New creates a screening service. provider names the index backend for
// metrics labels.
func New(idx CandidateIndex, matcher Matcher, limits Limits, provider string) *Service {
	limits.ApplyDefaults()
	return &Service{idx: idx, matcher: matcher, limits: limits, provider: provider}
}

// Algorithms returns the enabled scoring algorithms.
func (s *Service) Algorithms() []score.Algorithm {
	return s.matcher.Algorithms()
}

// DefaultAlgorithm returns the algorithm scoring requests that name none.
func (s *Service) DefaultAlgorithm() score.ID {
	return s.matcher.DefaultAlgorithm()
}

// Entity fetches one entity from the index.
func (s *Service) Entity(ctx context.Context, scope, id string) (*entity.Entity, error) {
	ent, err := s.idx.Get(ctx, scope, id)
	if err != nil {
		return nil, fmt.Errorf("get entity %s/%s: %w", scope, id, err)
	}
	return ent, nil
}

// Match screens every query concurrently and returns the per-query
// responses keyed the way the queries were. A failure or deadline on one
// query is recorded in that query's response; the siblings keep their
// results. Only request-level problems, an unknown scope or algorithm,
// fail the whole batch.
func (s *Service) Match(
	ctx context.Context, scope string, queries map[string]*entity.Query, opts Options,
) (map[string]*match.Response, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.limits.DefaultLimit
	}
	if limit > s.limits.MaxLimit {
		limit = s.limits.MaxLimit
	}

	params := match.Params{
		Algorithm: opts.Algorithm,
		Limit:     limit,
		Threshold: opts.Threshold,
		Cutoff:    opts.Cutoff,
	}
	if params.Threshold == 0 {
		params.Threshold = s.limits.Threshold
	}
	if params.Cutoff == 0 {
		params.Cutoff = s.limits.Cutoff
	}

	algName := opts.Algorithm
	if algName == "" {
		algName = string(s.matcher.DefaultAlgorithm())
	} else if err := s.checkAlgorithm(algName); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)

	var (
		mu        sync.Mutex
		responses = make(map[string]*match.Response, len(queries))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limits.QueryWorkers)

	for name, q := range queries {
		name, q := name, q
		g.Go(func() error {
			resp, err := s.matchOne(gctx, scope, q, limit, opts.Datasets, params, algName)
			switch {
			case err == nil:
			case errors.Is(err, index.ErrUnknownScope):
				// The scope is shared by every query in the batch.
				return fmt.Errorf("query %q: %w", name, err)
			case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
				resp = &match.Response{Status: match.StatusTimedOut}
			default:
				log.Warn("query failed", zap.String("query", name), zap.Error(err))
				resp = &match.Response{Status: match.StatusErrored, Error: "search or scoring failed"}
			}
			mu.Lock()
			responses[name] = resp
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// checkAlgorithm rejects an algorithm name the matcher does not carry
// before any query work starts.
func (s *Service) checkAlgorithm(name string) error {
	for _, a := range s.matcher.Algorithms() {
		if string(a.ID()) == name {
			return nil
		}
	}
	return &score.ErrUnknownAlgorithm{Name: name}
}

func (s *Service) matchOne(
	ctx context.Context, scope string, q *entity.Query, limit int, datasets []string, params match.Params, algName string,
) (*match.Response, error) {
	searchStart := time.Now()
	candidates, err := s.idx.Search(ctx, q, index.Params{
		Scope:    scope,
		Datasets: datasets,
		Limit:    limit * s.limits.CandidateFactor,
	})
	metrics.IndexSearchDuration.WithLabelValues(s.provider).Observe(time.Since(searchStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	matchStart := time.Now()
	resp, err := s.matcher.Match(ctx, q, candidates, params)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues(algName, "error").Inc()
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	metrics.MatchDuration.WithLabelValues(algName).Observe(time.Since(matchStart).Seconds())
	metrics.MatchRequestsTotal.WithLabelValues(algName, string(resp.Status)).Inc()
	metrics.MatchCandidatesScored.Observe(float64(resp.Considered))
	if resp.Errored > 0 {
		metrics.MatchScoreErrorsTotal.WithLabelValues(algName).Add(float64(resp.Errored))
	}
	return resp, nil
}
