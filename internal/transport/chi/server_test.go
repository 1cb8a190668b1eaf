package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prodsearch/internal/domain/graph"
	"github.com/kailas-cloud/prodsearch/internal/transport/local"
	"github.com/kailas-cloud/prodsearch/internal/usecase/expansion"
	healthuc "github.com/kailas-cloud/prodsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

const colorKey = "dominant_color"

type product struct {
	name, subtitle, desc, color string
}

var testProducts = []product{
	{"Nike Air Max", "Men's Shoes", "red running shoe with a cushioned sole", "red"},
	{"Nike Blazer", "Women's Shoes", "white casual shoe with retro styling", "white"},
	{"Nike Windrunner", "Men's Jacket", "black running jacket for cold days", "black"},
}

type failingEmbedder struct{ err error }

func (f failingEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, f.err
}

type lex map[string][]string

func (l lex) Primary(term string) []string { return l[term] }

func newTestServer(t *testing.T, embed searchuc.Embedder) http.Handler {
	t.Helper()
	return newTestServerWith(t, embed, Options{PreviewLen: 20})
}

func newTestServerWith(t *testing.T, embed searchuc.Embedder, opts Options) http.Handler {
	t.Helper()
	emb := local.NewEmbedder(256)

	items := make([]catalog.Item, len(testProducts))
	for i, p := range testProducts {
		res, err := emb.Embed(context.Background(), p.name+". "+p.subtitle+". "+p.desc)
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		it, err := catalog.NewItem(
			"id-"+strings.Fields(p.name)[1], p.name, p.subtitle, p.desc,
			map[string]string{colorKey: p.color}, res.Embedding,
		)
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		items[i] = it
	}
	c, err := catalog.New(items)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	if embed == nil {
		embed = emb
	}
	svc := searchuc.New(
		c, graph.New(c, []string{colorKey}, colorKey),
		expansion.New(lex{"shoe": {"shoe", "footwear"}}), embed,
		searchuc.Options{FilterAttribute: colorKey},
	)
	srv := NewServer(svc, healthuc.New(c, emb, nil), opts, zap.NewNop())

	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// --- JSON API ---

func TestSearchProducts(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/api/v1/search?q=red+running+shoe")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	resp := decode[SearchResponse](t, rr)
	if resp.Query != "red running shoe" {
		t.Errorf("unexpected query %q", resp.Query)
	}
	if len(resp.Results) != len(testProducts) {
		t.Fatalf("expected %d results, got %d", len(testProducts), len(resp.Results))
	}
	if resp.Results[0].Name != "Nike Air Max" {
		t.Errorf("expected Air Max first, got %s", resp.Results[0].Name)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Score > resp.Results[i-1].Score {
			t.Errorf("scores not sorted at %d", i)
		}
	}
	if resp.Results[0].Attributes[colorKey] != "red" {
		t.Errorf("expected attributes in result, got %v", resp.Results[0].Attributes)
	}
	if !strings.Contains(strings.Join(resp.ExpandedTerms, " "), "footwear") {
		t.Errorf("expected expansion in response, got %v", resp.ExpandedTerms)
	}
	if len(resp.GraphMatches) != 1 || resp.GraphMatches[0].Name != "Nike Air Max" {
		t.Errorf("unexpected graph matches %+v", resp.GraphMatches)
	}
	if resp.GraphMatches[0].MatchedOn != "description" || resp.GraphMatches[0].Value != "red" {
		t.Errorf("unexpected graph match %+v", resp.GraphMatches[0])
	}
}

func TestSearchProducts_Filter(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/api/v1/search?q=shoe&color=white&color=black")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[SearchResponse](t, rr)
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	for _, r := range resp.Results {
		if c := r.Attributes[colorKey]; c != "white" && c != "black" {
			t.Errorf("filter leaked color %q", c)
		}
	}
}

func TestSearchProducts_EmptyLists(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/api/v1/search?q=zzz&color=purple")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"results":[]`) || !strings.Contains(body, `"graph_matches":[]`) {
		t.Errorf("empty lists must encode as [], got %s", body)
	}
}

func TestSearchProducts_EmptyQuery(t *testing.T) {
	h := newTestServer(t, nil)

	for _, target := range []string{"/api/v1/search", "/api/v1/search?q=", "/api/v1/search?q=%20%20"} {
		rr := get(t, h, target)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
			continue
		}
		resp := decode[ErrorResponse](t, rr)
		if resp.Code != ErrorCodeEmptyQuery {
			t.Errorf("%s: expected code %q, got %q", target, ErrorCodeEmptyQuery, resp.Code)
		}
	}
}

func TestSearchProducts_QueryTooLong(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/api/v1/search?q="+strings.Repeat("a", 2000))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeValidationFailed {
		t.Errorf("unexpected code %q", resp.Code)
	}
}

func TestSearchProducts_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"provider", domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, failingEmbedder{err: tt.err})

			rr := get(t, h, "/api/v1/search?q=shoe")
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, resp.Code)
			}
			if strings.Contains(resp.Message, "boom") {
				t.Error("internal error details must not leak")
			}
		})
	}
}

func TestSearchProducts_DimensionMismatch(t *testing.T) {
	h := newTestServer(t, local.NewEmbedder(8))

	rr := get(t, h, "/api/v1/search?q=shoe")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeVectorDimMismatch {
		t.Errorf("unexpected code %q", resp.Code)
	}
}

func TestListFilters(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/api/v1/filters")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[FiltersResponse](t, rr)
	if resp.Attribute != colorKey {
		t.Errorf("unexpected attribute %q", resp.Attribute)
	}
	if strings.Join(resp.Values, ",") != "red,white,black" {
		t.Errorf("unexpected values %v", resp.Values)
	}
	if resp.Param != DefaultFilterParam {
		t.Errorf("unexpected param %q", resp.Param)
	}
}

func TestCustomFilterParam(t *testing.T) {
	h := newTestServerWith(t, nil, Options{FilterParam: "tone"})

	rr := get(t, h, "/api/v1/search?q=shoe&tone=white")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[SearchResponse](t, rr)
	if len(resp.Results) != 1 || resp.Results[0].Name != "Nike Blazer" {
		t.Fatalf("expected only Blazer, got %+v", resp.Results)
	}

	// The default name is no longer bound.
	resp = decode[SearchResponse](t, get(t, h, "/api/v1/search?q=shoe&color=white"))
	if len(resp.Results) != len(testProducts) {
		t.Errorf("expected unfiltered results, got %d", len(resp.Results))
	}

	if f := decode[FiltersResponse](t, get(t, h, "/api/v1/filters")); f.Param != "tone" {
		t.Errorf("unexpected param %q", f.Param)
	}
	if body := get(t, h, "/").Body.String(); !strings.Contains(body, `name="tone"`) {
		t.Error("expected form select named after the filter param")
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %q", resp.Status)
	}
	if resp.Checks["catalog"] != "ok" || resp.Checks["embedding"] != "ok" {
		t.Errorf("unexpected checks %v", resp.Checks)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("expected non-empty metrics response")
	}
}

// --- HTML ---

func TestIndex(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		DefaultTitle,
		"Enter your search query:",
		"Filter by Color",
		`<option value="white">white</option>`,
		"Search</button>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, msgNoResults) {
		t.Error("empty form must not render result sections")
	}
}

func TestSearchPage(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/search?q=casual&color=white")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Top 1 results for query 'casual':",
		"<strong>Nike Blazer</strong> - Women&#39;s Shoes",
		"(Score: ",
		"Knowledge Graph Results:",
		`<option value="white" selected>white</option>`,
		"white casual shoe wi...",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSearchPage_EmptyQuery(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/search?q=+")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, msgEmptyQuery) {
		t.Error("expected empty query warning")
	}
	if strings.Contains(body, "Knowledge Graph") || strings.Contains(body, msgNoGraphResults) {
		t.Error("no search must run for an empty query")
	}
}

func TestSearchPage_NoMatches(t *testing.T) {
	h := newTestServer(t, nil)

	rr := get(t, h, "/search?q=sandal&color=purple")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, msgNoResults) {
		t.Error("expected no results message")
	}
	if !strings.Contains(body, msgNoGraphResults) {
		t.Error("expected no graph results message")
	}
}

func TestSearchPage_ProviderError(t *testing.T) {
	h := newTestServer(t, failingEmbedder{err: domain.ErrEmbeddingProviderError})

	rr := get(t, h, "/search?q=shoe")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `class="error"`) {
		t.Error("expected error banner")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"running shoe", 8, "running..."},
		{"ünïcödé text", 7, "ünïcödé..."},
	}
	for _, tt := range tests {
		if got := preview(tt.in, tt.n); got != tt.want {
			t.Errorf("preview(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"dominant_color": "Color",
		"size":           "Size",
		"":               "Attribute",
		"trailing_":      "Attribute",
	}
	for in, want := range tests {
		if got := humanize(in); got != want {
			t.Errorf("humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
