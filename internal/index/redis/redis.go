// Package redis backs the candidate index with Redis 8 and its query
// engine. Entities live as JSON documents; a search index over name
// tokens, identifiers, and dataset tags narrows candidates server-side.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/clearwatch-io/entmatch/internal/compare"
	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/norm"
)

// Config holds connection parameters for the Redis index.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// Prefix namespaces every key and search index.
	Prefix string
}

// Provider implements index.Provider on Redis.
type Provider struct {
	client rueidis.Client
	n      norm.Normalizer
	prefix string
}

// New connects to Redis. FT.SEARCH replies are parsed as RESP2 arrays.
func New(cfg Config, n norm.Normalizer) (*Provider, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "entmatch"
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Provider{client: client, n: n, prefix: cfg.Prefix}, nil
}

// NewForTest wraps an existing client, mocks included.
func NewForTest(client rueidis.Client, n norm.Normalizer, prefix string) *Provider {
	return &Provider{client: client, n: n, prefix: prefix}
}

// Close shuts down the client.
func (p *Provider) Close() {
	p.client.Close()
}

// Health implements index.Provider via PING.
func (p *Provider) Health(ctx context.Context) error {
	cmd := p.client.B().Ping().Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Health until the store responds or timeout expires.
func (p *Provider) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for index: %w", ctx.Err())
		case <-ticker.C:
			if err := p.Health(ctx); err == nil {
				return nil
			}
		}
	}
}

// document is the stored JSON shape: the entity plus derived fields the
// search index needs.
type document struct {
	entity.Entity
	// Names holds cleaned names and aliases for full-text retrieval.
	Names []string `json:"names"`
	// Codes holds normalized identifiers for exact tag retrieval.
	Codes []string `json:"codes"`
}

func (p *Provider) key(scope, id string) string {
	return fmt.Sprintf("%s:%s:ent:%s", p.prefix, scope, id)
}

func (p *Provider) indexName(scope string) string {
	return fmt.Sprintf("%s:%s:idx", p.prefix, scope)
}

// EnsureIndex creates the scope's search index if it does not exist yet.
func (p *Provider) EnsureIndex(ctx context.Context, scope string) error {
	keyPrefix := fmt.Sprintf("%s:%s:ent:", p.prefix, scope)
	cmd := p.client.B().Arbitrary("FT.CREATE").Args(
		p.indexName(scope),
		"ON", "JSON",
		"PREFIX", "1", keyPrefix,
		"SCHEMA",
		"$.names[*]", "AS", "names", "TEXT",
		"$.codes[*]", "AS", "codes", "TAG",
		"$.schema", "AS", "schema", "TAG",
		"$.datasets[*]", "AS", "datasets", "TAG",
	).Build()

	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("create index %s: %w", p.indexName(scope), err)
	}
	return nil
}

// Upsert stores an entity in a scope, refreshing the derived fields.
func (p *Provider) Upsert(ctx context.Context, scope string, e *entity.Entity) error {
	doc := document{
		Entity: *e,
		Names:  compare.CleanNames(p.n, entity.NamesAndAliases(e)),
		Codes:  compare.NormalizeCodes(e.Props(identifierProps...)),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", e.ID, err)
	}

	cmd := p.client.B().Arbitrary("JSON.SET").
		Keys(p.key(scope, e.ID)).Args("$", string(data)).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("store entity %s: %w", e.ID, err)
	}
	return nil
}

// Get implements index.Provider via JSON.GET.
func (p *Provider) Get(ctx context.Context, scope, id string) (*entity.Entity, error) {
	cmd := p.client.B().Arbitrary("JSON.GET").Keys(p.key(scope, id)).Build()
	raw, err := p.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, index.ErrNotFound
		}
		return nil, fmt.Errorf("get entity %s: %w", id, err)
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal entity %s: %w", id, err)
	}
	return &doc.Entity, nil
}

// Search implements index.Provider via FT.SEARCH over name tokens and
// identifier tags.
func (p *Provider) Search(ctx context.Context, q *entity.Query, params index.Params) ([]*entity.Entity, error) {
	queryStr := p.buildQuery(q, params)
	if queryStr == "" {
		return nil, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	cmd := p.client.B().Arbitrary("FT.SEARCH").Args(
		p.indexName(params.Scope),
		queryStr,
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	).Build()

	raw, err := p.client.Do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, index.ErrUnknownScope
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	return parseSearchResult(raw)
}

// buildQuery combines a name token clause and an identifier tag clause.
// Either alone can surface a candidate.
func (p *Provider) buildQuery(q *entity.Query, params index.Params) string {
	var tokens []string
	for _, name := range compare.CleanNames(p.n, entity.NamesAndAliases(q)) {
		for _, token := range strings.Fields(name) {
			if len(token) >= 2 {
				tokens = append(tokens, escapeQuery(token))
			}
		}
	}
	codes := compare.NormalizeCodes(q.Props(identifierProps...))

	var clauses []string
	if len(tokens) > 0 {
		clauses = append(clauses, fmt.Sprintf("@names:(%s)", strings.Join(tokens, "|")))
	}
	if len(codes) > 0 {
		clauses = append(clauses, fmt.Sprintf("@codes:{%s}", strings.Join(codes, "|")))
	}
	if len(clauses) == 0 {
		return ""
	}

	query := strings.Join(clauses, " | ")
	if len(clauses) > 1 {
		query = fmt.Sprintf("(%s)", query)
	}
	if len(params.Datasets) > 0 {
		tags := make([]string, len(params.Datasets))
		for i, d := range params.Datasets {
			tags[i] = escapeQuery(d)
		}
		query = fmt.Sprintf("%s @datasets:{%s}", query, strings.Join(tags, "|"))
	}
	return query
}

// parseSearchResult walks the RESP2 reply: [total, key1, fields1, ...]
// where each fields array holds "$" and the JSON document.
func parseSearchResult(raw []rueidis.RedisMessage) ([]*entity.Entity, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	out := make([]*entity.Entity, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		for j := 0; j+1 < len(fields); j += 2 {
			name, err := fields[j].ToString()
			if err != nil || name != "$" {
				continue
			}
			value, err := fields[j+1].ToString()
			if err != nil {
				continue
			}
			var doc document
			if err := json.Unmarshal([]byte(value), &doc); err != nil {
				continue
			}
			out = append(out, &doc.Entity)
		}
	}
	return out, nil
}

func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`:`, `\:`,
)

const defaultSearchLimit = 25

// identifierProps mirror the feature builder's generic identifier roster.
var identifierProps = []string{
	"registrationNumber", "taxNumber", "leiCode", "innCode",
	"bicCode", "ogrnCode", "imoNumber", "mmsi", "isin",
}
