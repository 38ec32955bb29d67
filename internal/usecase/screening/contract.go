package screening

import (
	"context"

	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/score"
)

// CandidateIndex supplies candidate entities for scoring.
type CandidateIndex interface {
	Search(ctx context.Context, q *entity.Query, p index.Params) ([]*entity.Entity, error)
	Get(ctx context.Context, scope, id string) (*entity.Entity, error)
}

// Matcher scores candidates against a query.
type Matcher interface {
	Match(ctx context.Context, q *entity.Query, candidates []*entity.Entity, p match.Params) (*match.Response, error)
	Algorithms() []score.Algorithm
	DefaultAlgorithm() score.ID
}
