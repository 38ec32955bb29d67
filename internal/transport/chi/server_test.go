package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/clearwatch-io/entmatch/internal/catalog"
	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/index"
	"github.com/clearwatch-io/entmatch/internal/match"
	"github.com/clearwatch-io/entmatch/internal/norm"
	"github.com/clearwatch-io/entmatch/internal/score"
	healthuc "github.com/clearwatch-io/entmatch/internal/usecase/health"
	screeninguc "github.com/clearwatch-io/entmatch/internal/usecase/screening"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	store := catalog.NewStore(cat)

	n, err := norm.New("basic")
	if err != nil {
		t.Fatalf("build normalizer: %v", err)
	}

	idx := index.NewMemory(n)
	idx.Add("default", &entity.Entity{
		ID:      "Q7747",
		Schema:  "Person",
		Caption: "Vladimir Putin",
		Properties: map[string][]string{
			"name":      {"Vladimir Putin", "Vladimir Vladimirovich Putin"},
			"birthDate": {"1952-10-07"},
			"country":   {"ru"},
		},
		Datasets: []string{"sanctions"},
	})
	idx.Add("default", &entity.Entity{
		ID:      "Q76",
		Schema:  "Person",
		Caption: "Barack Obama",
		Properties: map[string][]string{
			"name": {"Barack Obama"},
		},
	})

	matcher := match.New(store, n, score.DefaultSet(), 4)
	screening := screeninguc.New(idx, matcher, screeninguc.Limits{}, "memory")
	health := healthuc.New(idx, store)

	srv := NewServer(screening, health, zap.NewNop())
	return srv.Router(nil)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	fields := map[string]json.RawMessage{}
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &fields); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, fields
}

func TestMatchQueries_RanksAndFlags(t *testing.T) {
	h := newTestHandler(t)

	body := `{"queries": {"q1": {"schema": "Person", "properties": {"name": ["Vladimir Putin"]}}}}`
	rr, fields := doJSON(t, h, "POST", "/match/default", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var responses map[string]match.Response
	if err := json.Unmarshal(fields["responses"], &responses); err != nil {
		t.Fatalf("decode responses: %v", err)
	}

	resp, ok := responses["q1"]
	if !ok {
		t.Fatal("missing response for q1")
	}
	if resp.Status != match.StatusComplete {
		t.Errorf("expected status complete, got %q", resp.Status)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one result")
	}
	best := resp.Results[0]
	if best.Entity.ID != "Q7747" {
		t.Errorf("expected best result Q7747, got %s", best.Entity.ID)
	}
	if !best.Match {
		t.Errorf("expected best result flagged as match, score %v", best.Score)
	}
	if len(best.Features) == 0 {
		t.Error("expected a feature breakdown on the best result")
	}
}

func TestMatchQueries_EmptyBody_400(t *testing.T) {
	h := newTestHandler(t)

	rr, fields := doJSON(t, h, "POST", "/match/default", `{"queries": {}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var code string
	_ = json.Unmarshal(fields["code"], &code)
	if code != codeValidationFailed {
		t.Errorf("expected code %q, got %q", codeValidationFailed, code)
	}
}

func TestMatchQueries_QueryWithoutProperties_400(t *testing.T) {
	h := newTestHandler(t)

	body := `{"queries": {"q1": {"schema": "Person", "properties": {}}}}`
	rr, _ := doJSON(t, h, "POST", "/match/default", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestMatchQueries_UnknownAlgorithm_400(t *testing.T) {
	h := newTestHandler(t)

	body := `{"queries": {"q1": {"schema": "Person", "properties": {"name": ["john"]}}}}`
	rr, fields := doJSON(t, h, "POST", "/match/default?algorithm=bogus", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var code string
	_ = json.Unmarshal(fields["code"], &code)
	if code != codeUnknownAlgorithm {
		t.Errorf("expected code %q, got %q", codeUnknownAlgorithm, code)
	}
}

func TestMatchQueries_UnknownScope_404(t *testing.T) {
	h := newTestHandler(t)

	body := `{"queries": {"q1": {"schema": "Person", "properties": {"name": ["john"]}}}}`
	rr, fields := doJSON(t, h, "POST", "/match/nope", body)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
	var code string
	_ = json.Unmarshal(fields["code"], &code)
	if code != codeScopeNotFound {
		t.Errorf("expected code %q, got %q", codeScopeNotFound, code)
	}
}

func TestMatchQueries_InvalidTuningParams_400(t *testing.T) {
	h := newTestHandler(t)

	body := `{"queries": {"q1": {"schema": "Person", "properties": {"name": ["john"]}}}}`
	for _, qs := range []string{"limit=-1", "threshold=1.5", "cutoff=abc"} {
		rr, _ := doJSON(t, h, "POST", "/match/default?"+qs, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", qs, rr.Code)
		}
	}
}

func TestListAlgorithms(t *testing.T) {
	h := newTestHandler(t)

	rr, fields := doJSON(t, h, "GET", "/algorithms", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var algs []algorithmResponse
	if err := json.Unmarshal(fields["algorithms"], &algs); err != nil {
		t.Fatalf("decode algorithms: %v", err)
	}
	if len(algs) != 3 {
		t.Fatalf("expected 3 algorithms, got %d", len(algs))
	}

	defaults := 0
	for _, a := range algs {
		if a.Name == "" || a.Description == "" {
			t.Errorf("algorithm with empty name or description: %+v", a)
		}
		if a.Default {
			defaults++
			if a.Name != string(score.Default) {
				t.Errorf("unexpected default algorithm %q", a.Name)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("expected exactly one default algorithm, got %d", defaults)
	}
}

func TestGetEntity(t *testing.T) {
	h := newTestHandler(t)

	rr, fields := doJSON(t, h, "GET", "/entities/default/Q7747", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var id string
	if err := json.Unmarshal(fields["id"], &id); err != nil {
		t.Fatalf("decode id: %v", err)
	}
	if id != "Q7747" {
		t.Errorf("expected id Q7747, got %q", id)
	}
}

func TestGetEntity_NotFound_404(t *testing.T) {
	h := newTestHandler(t)

	rr, fields := doJSON(t, h, "GET", "/entities/default/QX", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var code string
	_ = json.Unmarshal(fields["code"], &code)
	if code != codeEntityNotFound {
		t.Errorf("expected code %q, got %q", codeEntityNotFound, code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)

	rr, fields := doJSON(t, h, "GET", "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var status string
	if err := json.Unmarshal(fields["status"], &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status != string(healthuc.Healthy) {
		t.Errorf("expected status ok, got %q", status)
	}
}
