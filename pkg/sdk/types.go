package prodsearch

// Result is one ranked catalog item.
type Result struct {
	ID          string
	Name        string
	Subtitle    string
	Description string
	Attributes  map[string]string
	Score       float64
}

// GraphMatch is one knowledge graph hit: an item whose description or
// attribute values contain the raw query.
type GraphMatch struct {
	ID          string
	Name        string
	Value       string // the item's filter attribute value
	MatchedOn   string // "description" or the attribute key
	Description string
}

// Response is the outcome of one search.
type Response struct {
	Query         string
	ExpandedTerms []string
	Results       []Result
	GraphMatches  []GraphMatch
}

// Filters lists the values a search can be filtered by.
type Filters struct {
	Attribute string
	Values    []string
}
