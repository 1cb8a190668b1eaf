package chi

// SearchResponse is the JSON body of GET /api/v1/search.
type SearchResponse struct {
	Query         string             `json:"query"`
	ExpandedTerms []string           `json:"expanded_terms"`
	Results       []SearchResultItem `json:"results"`
	GraphMatches  []GraphMatchItem   `json:"graph_matches"`
}

// SearchResultItem is one ranked catalog item.
type SearchResultItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Subtitle    string            `json:"subtitle"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes"`
	Score       float64           `json:"score"`
}

// GraphMatchItem is one knowledge graph hit.
type GraphMatchItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	MatchedOn   string `json:"matched_on"`
	Description string `json:"description"`
}

// FiltersResponse lists the values a search can be filtered by.
type FiltersResponse struct {
	Attribute string   `json:"attribute"`
	Param     string   `json:"param"` // query parameter that carries the values
	Values    []string `json:"values"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
