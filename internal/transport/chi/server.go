package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/metrics"
	"github.com/clearwatch-io/entmatch/internal/score"
	healthuc "github.com/clearwatch-io/entmatch/internal/usecase/health"
	screeninguc "github.com/clearwatch-io/entmatch/internal/usecase/screening"
)

// maxQueriesPerRequest bounds one match request.
const maxQueriesPerRequest = 50

// Error codes returned in the error response body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeEntityNotFound   = "entity_not_found"
	codeScopeNotFound    = "scope_not_found"
	codeUnknownAlgorithm = "unknown_algorithm"
	codeUnauthorized     = "unauthorized"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a service error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the screening engine over HTTP.
type Server struct {
	screening *screeninguc.Service
	health    *healthuc.Service
	logger    *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(screening *screeninguc.Service, health *healthuc.Service, log *zap.Logger) *Server {
	s := &Server{
		screening: screening,
		health:    health,
		logger:    log,
	}
	s.errorHandlers = []errorHandler{
		unknownAlgorithmHandler,
		sentinelHandler(index.ErrNotFound, http.StatusNotFound, codeEntityNotFound),
		sentinelHandler(index.ErrUnknownScope, http.StatusNotFound, codeScopeNotFound),
		sentinelHandler(entity.ErrNoProperties, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chirouter.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Post("/match/{scope}", s.MatchQueries)
	r.Get("/algorithms", s.ListAlgorithms)
	r.Get("/entities/{scope}/{id}", s.GetEntity)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	return r
}

// --- Request and response shapes ---

type queryRequest struct {
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

type matchRequest struct {
	Queries map[string]queryRequest `json:"queries"`
}

type matchResponse struct {
	Responses map[string]*match.Response `json:"responses"`
}

type algorithmResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default,omitempty"`
}

type algorithmListResponse struct {
	Algorithms []algorithmResponse `json:"algorithms"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MatchQueries handles POST /match/{scope}.
func (s *Server) MatchQueries(w http.ResponseWriter, r *http.Request) {
	scope := chirouter.URLParam(r, "scope")

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Queries) == 0 || len(req.Queries) > maxQueriesPerRequest {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"queries count must be between 1 and "+strconv.Itoa(maxQueriesPerRequest))
		return
	}

	queries := make(map[string]*entity.Query, len(req.Queries))
	for name, raw := range req.Queries {
		q, err := entity.NewQuery(raw.Schema, raw.Properties)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "query "+name+": "+err.Error())
			return
		}
		queries[name] = q
	}

	opts, err := optionsFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	responses, err := s.screening.Match(r.Context(), scope, queries, opts)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{Responses: responses})
}

// optionsFromRequest parses the tuning query parameters.
func optionsFromRequest(r *http.Request) (screeninguc.Options, error) {
	q := r.URL.Query()
	opts := screeninguc.Options{
		Algorithm: q.Get("algorithm"),
		Datasets:  q["dataset"],
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New("limit must be a positive integer")
		}
		opts.Limit = n
	}
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"threshold", &opts.Threshold},
		{"cutoff", &opts.Cutoff},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return opts, errors.New(p.name + " must be a number within [0, 1]")
		}
		*p.dst = f
	}
	return opts, nil
}

// ListAlgorithms handles GET /algorithms.
func (s *Server) ListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algs := s.screening.Algorithms()
	def := s.screening.DefaultAlgorithm()

	items := make([]algorithmResponse, len(algs))
	for i, a := range algs {
		items[i] = algorithmResponse{
			Name:        string(a.ID()),
			Description: a.Description(),
			Default:     a.ID() == def,
		}
	}

	writeJSON(w, http.StatusOK, algorithmListResponse{Algorithms: items})
}

// GetEntity handles GET /entities/{scope}/{id}.
func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request) {
	scope := chirouter.URLParam(r, "scope")
	id := chirouter.URLParam(r, "id")

	ent, err := s.screening.Entity(r.Context(), scope, id)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ent)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeServiceMessage returns a sentinel error message for the client
// without exposing internals.
func safeServiceMessage(err error) string {
	sentinels := []error{
		index.ErrNotFound,
		index.ErrUnknownScope,
		entity.ErrNoProperties,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	var unknownAlg *score.ErrUnknownAlgorithm
	if errors.As(err, &unknownAlg) {
		return unknownAlg.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// unknownAlgorithmHandler maps algorithm lookup failures to a client error.
func unknownAlgorithmHandler(w http.ResponseWriter, err error, msg string) bool {
	var unknownAlg *score.ErrUnknownAlgorithm
	if !errors.As(err, &unknownAlg) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeUnknownAlgorithm, msg)
	return true
}

func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	s.logger.Warn("service error", zap.Error(err))
	msg := safeServiceMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
