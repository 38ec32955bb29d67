// Package entmatch embeds the screening engine in a Go process: load the
// schema catalog, index reference entities, and match queries against
// them without running the HTTP server.
package entmatch

import (
	"context"
	"fmt"

	"github.com/clearwatch-io/entmatch/internal/catalog"
	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/feature"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/norm"
	"github.com/clearwatch-io/entmatch/internal/score"
	screeninguc "github.com/clearwatch-io/entmatch/internal/usecase/screening"
)

// Re-exported types so embedders do not import internal packages.
type (
	// Entity is a reference record to index and screen against.
	Entity = entity.Entity
	// Response is the ranked outcome for one query.
	Response = match.Response
	// Result is one scored candidate within a Response.
	Result = match.Result
	// Options tune one match call.
	Options = screeninguc.Options
)

// DefaultScope is used when a caller does not partition its data.
const DefaultScope = "default"

// Client is the embedded entry point. Safe for concurrent use.
type Client struct {
	store     *catalog.Store
	idx       *index.Memory
	screening *screeninguc.Service
}

// New creates an embedded Client with an in-memory candidate index.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		normalizerVariant: "basic",
		workers:           4,
	}
	for _, o := range opts {
		o(cfg)
	}

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("entmatch: load catalog: %w", err)
	}
	if err := cat.Validate(feature.SupportedValueTypes()); err != nil {
		return nil, fmt.Errorf("entmatch: validate catalog: %w", err)
	}
	store := catalog.NewStore(cat)

	normalizer, err := norm.New(cfg.normalizerVariant)
	if err != nil {
		return nil, fmt.Errorf("entmatch: %w", err)
	}

	algorithms, err := score.NewSet(cfg.disabledAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("entmatch: %w", err)
	}

	idx := index.NewMemory(normalizer)
	matcher := match.New(store, normalizer, algorithms, cfg.workers)
	screening := screeninguc.New(idx, matcher, cfg.limits, "memory")

	return &Client{
		store:     store,
		idx:       idx,
		screening: screening,
	}, nil
}

// Add indexes one reference entity in a scope.
func (c *Client) Add(scope string, e *Entity) {
	c.idx.Add(scope, e)
}

// Len returns the number of indexed entities in a scope.
func (c *Client) Len(scope string) int {
	return c.idx.Len(scope)
}

// Match screens one query against a scope and returns the ranked response.
func (c *Client) Match(
	ctx context.Context, scope, schema string, properties map[string][]string, opts Options,
) (*Response, error) {
	q, err := entity.NewQuery(schema, properties)
	if err != nil {
		return nil, fmt.Errorf("entmatch: %w", err)
	}

	responses, err := c.screening.Match(ctx, scope, map[string]*entity.Query{"q": q}, opts)
	if err != nil {
		return nil, fmt.Errorf("entmatch: %w", err)
	}
	return responses["q"], nil
}

// Algorithms lists the enabled algorithm names, default first.
func (c *Client) Algorithms() []string {
	algs := c.screening.Algorithms()
	def := c.screening.DefaultAlgorithm()
	names := make([]string, 0, len(algs))
	names = append(names, string(def))
	for _, a := range algs {
		if a.ID() != def {
			names = append(names, string(a.ID()))
		}
	}
	return names
}
