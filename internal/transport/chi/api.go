package chi

import (
	"net/http"

	"github.com/kailas-cloud/prodsearch/internal/domain/graph"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/request"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

// SearchProducts handles GET /api/v1/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r, s.opts.FilterParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	req, err := request.New(params.Query, params.Filter)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseToDTO(&resp))
}

// ListFilters handles GET /api/v1/filters.
func (s *Server) ListFilters(w http.ResponseWriter, _ *http.Request) {
	values := s.search.FilterValues()
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, FiltersResponse{
		Attribute: s.search.FilterAttribute(),
		Param:     s.opts.FilterParam,
		Values:    values,
	})
}

func searchResponseToDTO(resp *searchuc.Response) SearchResponse {
	out := SearchResponse{
		Query:         resp.Query,
		ExpandedTerms: resp.ExpandedTerms,
		Results:       make([]SearchResultItem, len(resp.Results)),
		GraphMatches:  make([]GraphMatchItem, len(resp.GraphMatches)),
	}
	if out.ExpandedTerms == nil {
		out.ExpandedTerms = []string{}
	}
	for i := range resp.Results {
		out.Results[i] = rankedToDTO(&resp.Results[i])
	}
	for i := range resp.GraphMatches {
		out.GraphMatches[i] = matchToDTO(&resp.GraphMatches[i])
	}
	return out
}

func rankedToDTO(r *result.Ranked) SearchResultItem {
	it := r.Item()
	return SearchResultItem{
		ID:          it.ID(),
		Name:        it.Name(),
		Subtitle:    it.Subtitle(),
		Description: it.Description(),
		Attributes:  it.Attributes(),
		Score:       r.Score(),
	}
}

func matchToDTO(m *graph.Match) GraphMatchItem {
	it := m.Item()
	return GraphMatchItem{
		ID:          it.ID(),
		Name:        it.Name(),
		Value:       m.Value(),
		MatchedOn:   m.MatchedOn(),
		Description: it.Description(),
	}
}
