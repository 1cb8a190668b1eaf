package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
)

// paramQuery carries the search text. The filter parameter name comes from Options.
const paramQuery = "q"

// searchParams are the query parameters shared by the page and the API.
type searchParams struct {
	Query  string
	Filter []string
}

// bindSearchParams reads ?q=...&<filterParam>=a&<filterParam>=b. Both are optional here;
// the search request decides what an empty query means.
func bindSearchParams(r *http.Request, filterParam string) (searchParams, error) {
	var p searchParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, paramQuery, q, &p.Query); err != nil {
		return searchParams{}, fmt.Errorf("invalid parameter %s: %w", paramQuery, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, filterParam, q, &p.Filter); err != nil {
		return searchParams{}, fmt.Errorf("invalid parameter %s: %w", filterParam, err)
	}
	return p, nil
}
