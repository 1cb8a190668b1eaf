package chi

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

// User-facing messages.
const (
	msgEmptyQuery     = "Please enter a search query."
	msgNoResults      = "No results found."
	msgNoGraphResults = "No knowledge graph results found for the query."
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type filterOption struct {
	Value    string
	Selected bool
}

type resultView struct {
	Name     string
	Subtitle string
	Preview  string
	Value    string
	Score    string
}

type graphView struct {
	Name    string
	Value   string
	Preview string
}

type pageData struct {
	Title          string
	Query          string
	FilterLabel    string
	ValueLabel     string
	FilterParam    string
	FilterOptions  []filterOption
	Searched       bool
	Warning        string
	Error          string
	TopK           int
	Results        []resultView
	GraphMatches   []graphView
	NoResults      string
	NoGraphResults string
}

// Index handles GET /: the empty search form.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.basePage(searchParams{}))
}

// SearchPage handles GET /search: the form plus both result sections.
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r, s.opts.FilterParam)
	if err != nil {
		data := s.basePage(searchParams{})
		data.Error = err.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}
	data := s.basePage(params)

	req, err := request.New(params.Query, params.Filter)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyQuery):
		data.Warning = msgEmptyQuery
		s.render(w, http.StatusOK, data)
		return
	default:
		status, _ := s.classify(err)
		data.Error = safeDomainMessage(err)
		s.render(w, status, data)
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		status, _ := s.classify(err)
		data.Error = safeDomainMessage(err)
		s.render(w, status, data)
		return
	}

	data.Searched = true
	s.fillResults(&data, &resp)
	s.render(w, http.StatusOK, data)
}

func (s *Server) basePage(p searchParams) pageData {
	values := s.search.FilterValues()
	opts := make([]filterOption, len(values))
	for i, v := range values {
		opts[i] = filterOption{Value: v, Selected: slices.Contains(p.Filter, v)}
	}
	return pageData{
		Title:          s.opts.Title,
		Query:          p.Query,
		FilterLabel:    "Filter by " + humanize(s.search.FilterAttribute()),
		ValueLabel:     humanize(s.search.FilterAttribute()),
		FilterParam:    s.opts.FilterParam,
		FilterOptions:  opts,
		NoResults:      msgNoResults,
		NoGraphResults: msgNoGraphResults,
	}
}

func (s *Server) fillResults(data *pageData, resp *searchuc.Response) {
	attr := s.search.FilterAttribute()
	data.TopK = len(resp.Results)

	data.Results = make([]resultView, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		it := r.Item()
		v, _ := it.Attribute(attr)
		data.Results[i] = resultView{
			Name:     it.Name(),
			Subtitle: it.Subtitle(),
			Preview:  preview(it.Description(), s.opts.PreviewLen),
			Value:    v,
			Score:    fmt.Sprintf("%.4f", r.Score()),
		}
	}

	data.GraphMatches = make([]graphView, len(resp.GraphMatches))
	for i := range resp.GraphMatches {
		m := &resp.GraphMatches[i]
		data.GraphMatches[i] = graphView{
			Name:    m.Item().Name(),
			Value:   m.Value(),
			Preview: preview(m.Item().Description(), s.opts.PreviewLen),
		}
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.ExecuteTemplate(w, "page.html", data); err != nil {
		s.logger.Error("render page", zap.Error(err))
	}
}
