package models

// FilterAll matches any value of a filter dimension.
const FilterAll = "all"

// Filters are hard predicates applied before scoring.
type Filters struct {
	Type       string `json:"type"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// DefaultFilters match everything.
func DefaultFilters() Filters {
	return Filters{Type: FilterAll, Category: FilterAll, Difficulty: FilterAll}
}

// Merge overlays the non-empty fields of other onto f.
func (f Filters) Merge(other Filters) Filters {
	if other.Type != "" {
		f.Type = other.Type
	}
	if other.Category != "" {
		f.Category = other.Category
	}
	if other.Difficulty != "" {
		f.Difficulty = other.Difficulty
	}
	return f
}

// Candidate is a searchable record, either from the resource cache or from
// a remote result set.
type Candidate struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Category    string  `json:"category,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	Relevance   float64 `json:"relevanceScore"`
}

// SearchResult is a scored candidate.
type SearchResult struct {
	Candidate
	Score float64 `json:"score"`
}

// SearchPhase is the state of the latest query.
type SearchPhase string

const (
	SearchIdle      SearchPhase = "IDLE"
	SearchSearching SearchPhase = "SEARCHING"
	SearchResults   SearchPhase = "RESULTS"
	SearchEmpty     SearchPhase = "EMPTY"
)

// SearchState is a snapshot of the search engine.
type SearchState struct {
	QueryText     string         `json:"queryText"`
	Filters       Filters        `json:"filters"`
	Results       []SearchResult `json:"results"`
	RecentQueries []string       `json:"recentQueries"`
	IsSearching   bool           `json:"isSearching"`
	Phase         SearchPhase    `json:"phase"`
}
