package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/edusync/edusync-client/internal/client/models"
)

func (a *App) printSearch(ctx context.Context) {
	st := a.svc.Search.State(ctx)
	f := st.Filters
	a.printf("[%s] %q  type=%s category=%s difficulty=%s\n", st.Phase, st.QueryText, f.Type, f.Category, f.Difficulty)
	for _, r := range st.Results {
		a.printf("  %.2f  %s  %s (%s)\n", r.Score, r.ID, r.Title, r.Type)
	}
	if st.Phase == models.SearchEmpty {
		a.println("  no matches")
	}
}

// Search runs the words in args as a query right away.
func (a *App) Search(ctx context.Context, args []string) error {
	if err := a.svc.Search.SearchNow(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	a.printSearch(ctx)
	return nil
}

// Filter applies key=value filters (type, category, difficulty; "all"
// matches anything) and re-runs the last query.
func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printSearch(ctx)
		return nil
	}
	f, err := parseFilters(args)
	if err != nil {
		return err
	}
	if err := a.svc.Search.UpdateFilters(ctx, f); err != nil {
		return err
	}
	a.printSearch(ctx)
	return nil
}

func parseFilters(args []string) (models.Filters, error) {
	var f models.Filters
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return f, fmt.Errorf("filter %q: want key=value: %w", arg, errUsage)
		}
		switch strings.ToLower(key) {
		case "type":
			f.Type = value
		case "category":
			f.Category = value
		case "difficulty":
			f.Difficulty = value
		default:
			return f, fmt.Errorf("unknown filter %q: %w", key, errUsage)
		}
	}
	return f, nil
}

// Queries lists the recent queries, or forgets them with "queries clear".
func (a *App) Queries(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "clear" {
		a.svc.Search.ClearHistory(ctx)
		a.println("Search history cleared.")
		return nil
	}
	if len(args) != 0 {
		return errUsage
	}

	recent := a.svc.Search.State(ctx).RecentQueries
	if len(recent) == 0 {
		a.println("(none)")
	}
	for i, q := range recent {
		a.printf("%2d. %s\n", i+1, q)
	}
	return nil
}
