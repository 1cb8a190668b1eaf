package scope

// Scope is the candidate pool an attribute filter is applied to.
type Scope string

// Filter scope constants.
const (
	// Ranked filters the unfiltered top-K only. Filtered results are always a
	// subset of unfiltered results; a match ranked below K never surfaces.
	Ranked Scope = "ranked"
	// Catalog filters the full similarity ranking before truncating to K.
	Catalog Scope = "catalog"
)

// IsValid checks if the scope is one of the supported values.
func (s Scope) IsValid() bool {
	return s == Ranked || s == Catalog
}
