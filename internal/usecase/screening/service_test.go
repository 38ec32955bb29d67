package screening

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/score"
)

// --- Mocks ---

type mockIndex struct {
	mu       sync.Mutex
	searches []index.Params
	results  []*entity.Entity
	err      error
	failName string // Search fails for the query carrying this name
}

func (m *mockIndex) Search(_ context.Context, q *entity.Query, p index.Params) ([]*entity.Entity, error) {
	m.mu.Lock()
	m.searches = append(m.searches, p)
	m.mu.Unlock()
	if m.failName != "" {
		for _, v := range q.Props("name") {
			if v == m.failName {
				return nil, errors.New("index unavailable")
			}
		}
	}
	return m.results, m.err
}

func (m *mockIndex) Get(_ context.Context, _, id string) (*entity.Entity, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.results {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, index.ErrNotFound
}

type mockMatcher struct {
	mu     sync.Mutex
	params []match.Params
	resp   *match.Response
	err    error
}

func (m *mockMatcher) Match(_ context.Context, _ *entity.Query, _ []*entity.Entity, p match.Params) (*match.Response, error) {
	m.mu.Lock()
	m.params = append(m.params, p)
	m.mu.Unlock()
	return m.resp, m.err
}

func (m *mockMatcher) Algorithms() []score.Algorithm {
	return score.DefaultSet().All()
}

func (m *mockMatcher) DefaultAlgorithm() score.ID {
	return score.Default
}

// --- Helpers ---

func testQuery(t *testing.T, name string) *entity.Query {
	t.Helper()
	q, err := entity.NewQuery("Person", map[string][]string{"name": {name}})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	return q
}

// --- Tests ---

func TestMatch_FansOutAllQueries(t *testing.T) {
	idx := &mockIndex{results: []*entity.Entity{{ID: "Q1", Schema: "Person"}}}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{}, "memory")

	queries := map[string]*entity.Query{
		"q1": testQuery(t, "john smith"),
		"q2": testQuery(t, "jane doe"),
		"q3": testQuery(t, "acme corp"),
	}

	responses, err := svc.Match(context.Background(), "default", queries, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for name := range queries {
		if responses[name] == nil {
			t.Errorf("missing response for %q", name)
		}
	}
}

func TestMatch_CandidateLimitScalesWithFactor(t *testing.T) {
	idx := &mockIndex{}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{DefaultLimit: 5, MaxLimit: 50, CandidateFactor: 10}, "memory")

	_, err := svc.Match(context.Background(), "default",
		map[string]*entity.Query{"q": testQuery(t, "john")}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(idx.searches) != 1 {
		t.Fatalf("expected 1 search, got %d", len(idx.searches))
	}
	if got := idx.searches[0].Limit; got != 50 {
		t.Errorf("expected candidate limit 50, got %d", got)
	}
	if got := idx.searches[0].Scope; got != "default" {
		t.Errorf("expected scope 'default', got %q", got)
	}
}

func TestMatch_LimitCappedAtMax(t *testing.T) {
	idx := &mockIndex{}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{DefaultLimit: 5, MaxLimit: 20, CandidateFactor: 2}, "memory")

	_, err := svc.Match(context.Background(), "default",
		map[string]*entity.Query{"q": testQuery(t, "john")}, Options{Limit: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.params[0].Limit; got != 20 {
		t.Errorf("expected limit capped at 20, got %d", got)
	}
}

func TestMatch_DefaultsFromLimits(t *testing.T) {
	idx := &mockIndex{}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{Threshold: 0.8, Cutoff: 0.6}, "memory")

	_, err := svc.Match(context.Background(), "default",
		map[string]*entity.Query{"q": testQuery(t, "john")}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := m.params[0]
	if p.Threshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %v", p.Threshold)
	}
	if p.Cutoff != 0.6 {
		t.Errorf("expected cutoff 0.6, got %v", p.Cutoff)
	}
}

func TestMatch_RequestOverridesDefaults(t *testing.T) {
	idx := &mockIndex{}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{Threshold: 0.8, Cutoff: 0.6}, "memory")

	_, err := svc.Match(context.Background(), "default",
		map[string]*entity.Query{"q": testQuery(t, "john")},
		Options{Algorithm: "name-based", Threshold: 0.9, Cutoff: 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := m.params[0]
	if p.Algorithm != "name-based" {
		t.Errorf("expected algorithm 'name-based', got %q", p.Algorithm)
	}
	if p.Threshold != 0.9 {
		t.Errorf("expected threshold 0.9, got %v", p.Threshold)
	}
	if p.Cutoff != 0.3 {
		t.Errorf("expected cutoff 0.3, got %v", p.Cutoff)
	}
}

func TestMatch_UnknownScopeFailsBatch(t *testing.T) {
	idx := &mockIndex{err: index.ErrUnknownScope}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{}, "memory")

	_, err := svc.Match(context.Background(), "missing",
		map[string]*entity.Query{"q": testQuery(t, "john")}, Options{})
	if !errors.Is(err, index.ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope, got %v", err)
	}
}

func TestMatch_UnknownAlgorithmFailsBatch(t *testing.T) {
	idx := &mockIndex{}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{}, "memory")

	_, err := svc.Match(context.Background(), "default",
		map[string]*entity.Query{"q": testQuery(t, "john")}, Options{Algorithm: "logic-v99"})
	var unknown *score.ErrUnknownAlgorithm
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if len(idx.searches) != 0 {
		t.Errorf("expected no searches before algorithm validation, got %d", len(idx.searches))
	}
}

func TestMatch_QueryFailureContained(t *testing.T) {
	idx := &mockIndex{failName: "broken query"}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{}, "memory")

	responses, err := svc.Match(context.Background(), "default", map[string]*entity.Query{
		"good": testQuery(t, "john smith"),
		"bad":  testQuery(t, "broken query"),
	}, Options{})
	if err != nil {
		t.Fatalf("one failing query must not fail the batch: %v", err)
	}

	if got := responses["good"].Status; got != match.StatusComplete {
		t.Errorf("good query status = %s, want %s", got, match.StatusComplete)
	}
	bad := responses["bad"]
	if bad.Status != match.StatusErrored {
		t.Errorf("bad query status = %s, want %s", bad.Status, match.StatusErrored)
	}
	if bad.Error == "" {
		t.Error("errored query should carry an error note")
	}
	if len(bad.Results) != 0 {
		t.Errorf("errored query results = %v, want none", bad.Results)
	}
}

func TestMatch_DeadlineMarksQueryTimedOut(t *testing.T) {
	idx := &mockIndex{err: context.DeadlineExceeded}
	m := &mockMatcher{resp: &match.Response{Status: match.StatusComplete}}
	svc := New(idx, m, Limits{}, "memory")

	responses, err := svc.Match(context.Background(), "default",
		map[string]*entity.Query{"q": testQuery(t, "john")}, Options{})
	if err != nil {
		t.Fatalf("an expired deadline must not fail the batch: %v", err)
	}
	if got := responses["q"].Status; got != match.StatusTimedOut {
		t.Fatalf("status = %s, want %s", got, match.StatusTimedOut)
	}
}

func TestEntity_NotFound(t *testing.T) {
	idx := &mockIndex{}
	m := &mockMatcher{}
	svc := New(idx, m, Limits{}, "memory")

	_, err := svc.Entity(context.Background(), "default", "QX")
	if !errors.Is(err, index.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAlgorithms_Passthrough(t *testing.T) {
	svc := New(&mockIndex{}, &mockMatcher{}, Limits{}, "memory")

	algs := svc.Algorithms()
	if len(algs) != 3 {
		t.Fatalf("expected 3 algorithms, got %d", len(algs))
	}
}
