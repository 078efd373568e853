package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/clock"
	"github.com/edusync/edusync-client/internal/common"
	"github.com/edusync/edusync-client/internal/recency"
)

const (
	DefaultSearchDebounce = 300 * time.Millisecond
	RecentQueriesCap      = 10
)

// CandidateSource yields the records a query is matched against.
// client.SearchAPI satisfies it.
type CandidateSource interface {
	Search(ctx context.Context, query string) ([]models.Candidate, error)
}

// LocalCandidates offers every cached resource as a candidate.
type LocalCandidates struct {
	Resources *ResourceService
}

func (l LocalCandidates) Search(ctx context.Context, _ string) ([]models.Candidate, error) {
	list := l.Resources.List(ctx)
	out := make([]models.Candidate, 0, len(list))
	for _, r := range list {
		out = append(out, models.Candidate{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Type:        "resource",
			Category:    r.Category,
			Difficulty:  r.Difficulty,
		})
	}
	return out, nil
}

// SearchService is the search engine of one tab.
type SearchService struct {
	Deps
	session  *SessionService
	source   CandidateSource
	debounce time.Duration

	mu        sync.Mutex
	state     models.SearchState
	scope     string
	loaded    bool
	seq       uint64
	timer     clock.Timer
	lastQuery string
}

type SearchOption func(*SearchService)

func WithDebounce(d time.Duration) SearchOption {
	return func(s *SearchService) { s.debounce = d }
}

func NewSearchService(d Deps, session *SessionService, source CandidateSource, opts ...SearchOption) *SearchService {
	s := &SearchService{
		Deps:     d.withDefaults("search"),
		session:  session,
		source:   source,
		debounce: DefaultSearchDebounce,
		state:    models.SearchState{Filters: models.DefaultFilters(), Phase: models.SearchIdle},
	}
	for _, o := range opts {
		o(s)
	}
	s.Bus.Subscribe(events.TopicSearchUpdated, s.applyRemote)
	return s
}

// recentLocked makes sure RecentQueries belong to the current identity.
func (s *SearchService) recentLocked(ctx context.Context) {
	scope := s.session.Scope()
	if s.loaded && s.scope == scope {
		return
	}
	var recent []string
	s.Store.Get(ctx, scope, storage.NameRecentSearches, &recent)
	s.state.RecentQueries = recent
	s.scope, s.loaded = scope, true
}

// State returns a snapshot of the engine.
func (s *SearchService) State(ctx context.Context) models.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentLocked(ctx)
	return s.snapshotLocked()
}

func (s *SearchService) snapshotLocked() models.SearchState {
	st := s.state
	st.Results = append([]models.SearchResult(nil), s.state.Results...)
	st.RecentQueries = append([]string(nil), s.state.RecentQueries...)
	return st
}

// SetQuery records the input text without searching.
func (s *SearchService) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.QueryText = text
}

// Search schedules a search for text after the debounce interval. Filters
// given here are merged into the current ones. Blank text with filters
// re-runs the last non-blank query; blank text alone clears the results. A
// later call cancels an earlier pending one.
func (s *SearchService) Search(ctx context.Context, text string, filters *models.Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.QueryText = text
	if filters != nil {
		s.state.Filters = s.state.Filters.Merge(*filters)
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if strings.TrimSpace(text) == "" {
		if filters == nil || s.lastQuery == "" {
			s.resetLocked()
			return
		}
		text = s.lastQuery
		s.state.QueryText = text
	}

	bg := context.WithoutCancel(ctx)
	s.timer = s.Clock.AfterFunc(s.debounce, func() {
		if err := s.SearchNow(bg, text); err != nil {
			s.Log.Warn(bg, "search failed", "err", err)
		}
	})
}

// resetLocked empties results and invalidates any in-flight search.
func (s *SearchService) resetLocked() {
	s.seq++
	s.state.Results = nil
	s.state.IsSearching = false
	s.state.Phase = models.SearchIdle
}

// SearchNow runs a search immediately. A completion overtaken by a newer
// search is discarded. The query joins the recent queries only once its
// results are in.
func (s *SearchService) SearchNow(ctx context.Context, text string) error {
	query := strings.TrimSpace(text)

	s.mu.Lock()
	s.recentLocked(ctx)
	s.state.QueryText = text
	if query == "" {
		s.resetLocked()
		s.mu.Unlock()
		return nil
	}

	s.seq++
	seq := s.seq
	s.state.IsSearching = true
	s.state.Phase = models.SearchSearching
	s.lastQuery = query
	filters := s.state.Filters
	s.mu.Unlock()

	candidates, err := s.source.Search(ctx, query)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.Log.Debug(ctx, "discarding stale search", "query", query)
		return nil
	}

	s.state.IsSearching = false
	if err != nil {
		s.state.Results = nil
		s.state.Phase = models.SearchEmpty
		s.mu.Unlock()
		return common.Remote("search", err)
	}

	s.state.Results = Rank(candidates, query, filters)
	if len(s.state.Results) == 0 {
		s.state.Phase = models.SearchEmpty
	} else {
		s.state.Phase = models.SearchResults
	}
	s.state.RecentQueries = recency.Push(s.state.RecentQueries, query, recency.Identity[string], RecentQueriesCap)
	scope, recent := s.scope, append([]string(nil), s.state.RecentQueries...)
	s.mu.Unlock()

	s.persist(ctx, scope, storage.NameRecentSearches, recent)
	s.publish(ctx, events.TopicSearchUpdated, scope, SearchChanged{RecentQueries: recent})
	return nil
}

// UpdateFilters merges f into the current filters and re-runs the last
// non-blank query, if any.
func (s *SearchService) UpdateFilters(ctx context.Context, f models.Filters) error {
	s.mu.Lock()
	s.state.Filters = s.state.Filters.Merge(f)
	last := s.lastQuery
	s.mu.Unlock()

	if last == "" {
		return nil
	}
	return s.SearchNow(ctx, last)
}

// ClearHistory forgets the recent queries of the current identity.
func (s *SearchService) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	s.recentLocked(ctx)
	s.state.RecentQueries = nil
	scope := s.scope
	s.mu.Unlock()

	s.forget(ctx, scope, storage.NameRecentSearches)
	s.publish(ctx, events.TopicSearchUpdated, scope, SearchChanged{RecentQueries: []string{}})
}

// Cancel stops a pending debounced search.
func (s *SearchService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SearchService) applyRemote(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	var p SearchChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad search event", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && s.scope == e.Scope {
		s.state.RecentQueries = p.RecentQueries
	}
}

func matchesFilter(want, got string) bool {
	return want == "" || want == models.FilterAll || strings.EqualFold(want, got)
}

// Rank keeps the candidates that pass every filter and contain query in
// their title or description (case-insensitive), scored and sorted by
// descending score.
func Rank(candidates []models.Candidate, query string, f models.Filters) []models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []models.SearchResult
	for _, c := range candidates {
		if !matchesFilter(f.Type, c.Type) || !matchesFilter(f.Category, c.Category) || !matchesFilter(f.Difficulty, c.Difficulty) {
			continue
		}

		title := strings.ToLower(c.Title)
		inTitle := strings.Contains(title, q)
		inDesc := strings.Contains(strings.ToLower(c.Description), q)
		if !inTitle && !inDesc {
			continue
		}

		score := c.Relevance
		if inTitle {
			score++
			if strings.HasPrefix(title, q) {
				score += 0.5
			}
		}
		if inDesc {
			score += 0.25
		}
		out = append(out, models.SearchResult{Candidate: c, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Title < out[j].Title
	})
	return out
}
