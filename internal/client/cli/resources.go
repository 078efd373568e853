package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/services"
)

var errUsage = errors.New("wrong arguments, type 'help' for usage")

// writeFile is a test seam for os.WriteFile.
var writeFile = os.WriteFile

func (a *App) printResources(ctx context.Context, list []models.Resource) {
	if len(list) == 0 {
		a.println("(none)")
		return
	}
	favs := make(map[string]bool)
	for _, id := range a.svc.Resources.FavoriteIDs(ctx) {
		favs[id] = true
	}
	for _, r := range list {
		star := " "
		if favs[r.ID] {
			star = "*"
		}
		a.printf("%s %s  %-30s  %-6s %9s  %s\n", star, r.ID, r.Title, r.FileType,
			services.FormatFileSize(r.FileSizeBytes), r.ModifiedAt.Format("2006-01-02"))
	}
}

// List prints the cached resources; favorites are starred.
func (a *App) List(ctx context.Context) error {
	a.printResources(ctx, a.svc.Resources.List(ctx))
	return nil
}

// Refresh reloads the list from the server.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.svc.Resources.Refresh(ctx); err != nil {
		return err
	}
	return a.List(ctx)
}

// Add records a resource locally from prompted fields.
func (a *App) Add(ctx context.Context) error {
	var in models.ResourceInput
	var err error

	if in.Title, err = getSimpleText(a.reader, "Enter title", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Enter description", a.out); err != nil {
		return err
	}
	if in.FileName, err = getSimpleText(a.reader, "Enter file name", a.out); err != nil {
		return err
	}
	if in.Category, err = getSimpleText(a.reader, "Enter category (optional)", a.out); err != nil {
		return err
	}
	if in.Difficulty, err = getSimpleText(a.reader, "Enter difficulty: beginner, intermediate, advanced (optional)", a.out); err != nil {
		return err
	}

	r, err := a.svc.Resources.Add(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Added %s\n", r.ID)
	return nil
}

// Upload sends the file at args[0] to the server as a new resource.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	file, err := LoadFile(args[0])
	if err != nil {
		return err
	}

	var in models.ResourceInput
	if in.Title, err = getSimpleText(a.reader, "Enter title", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Enter description", a.out); err != nil {
		return err
	}

	r, err := a.svc.Resources.Upload(ctx, in, file)
	if err != nil {
		return err
	}
	a.printf("Uploaded %s (%s)\n", r.ID, services.FormatFileSize(r.FileSizeBytes))
	return nil
}

// Edit patches the title and description of args[0]. Empty answers keep
// the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	r, ok := a.svc.Resources.Get(ctx, args[0])
	if !ok {
		return errNotFound(args[0])
	}

	var patch models.ResourcePatch
	title, err := getSimpleText(a.reader, "Enter title ["+r.Title+"]", a.out)
	if err != nil {
		return err
	}
	if title != "" {
		patch.Title = &title
	}
	desc, err := getSimpleText(a.reader, "Enter description [keep]", a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		patch.Description = &desc
	}

	updated, err := a.svc.Resources.Update(ctx, r.ID, patch)
	if err != nil {
		return err
	}
	a.printf("Updated %s\n", updated.Title)
	return nil
}

// Delete removes args[0] from the cache and the server.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.svc.Resources.Remove(ctx, args[0]); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}

// Open shows args[0] and records the access.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	r, ok := a.svc.Resources.Get(ctx, args[0])
	if !ok {
		return errNotFound(args[0])
	}
	a.svc.Resources.TouchAccess(ctx, r)

	a.printf("%s\n%s\n", r.Title, r.Description)
	a.printf("File: %s (%s, %s)\n", r.FileName, r.FileType, services.FormatFileSize(r.FileSizeBytes))
	if r.OwnerName != "" {
		a.printf("Owner: %s\n", r.OwnerName)
	}
	if r.Category != "" || r.Difficulty != "" {
		a.printf("Category: %s  Difficulty: %s\n", r.Category, r.Difficulty)
	}
	return nil
}

// Download saves the file of args[0] to args[1], or to its file name in
// the working directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	r, ok := a.svc.Resources.Get(ctx, args[0])
	if !ok {
		return errNotFound(args[0])
	}
	dest := filepath.Base(r.FileName)
	if len(args) == 2 {
		dest = args[1]
	}

	data, err := a.svc.Resources.Download(ctx, r.ID)
	if err != nil {
		return err
	}
	if err := writeFile(dest, data, 0o644); err != nil {
		return err
	}
	a.printf("Saved %s to %s\n", services.FormatFileSize(int64(len(data))), dest)
	return nil
}

// Favorite toggles args[0] in the favorites.
func (a *App) Favorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if _, ok := a.svc.Resources.Get(ctx, args[0]); !ok {
		return errNotFound(args[0])
	}
	if a.svc.Resources.ToggleFavorite(ctx, args[0]) {
		a.println("Added to favorites.")
	} else {
		a.println("Removed from favorites.")
	}
	return nil
}

func (a *App) Favorites(ctx context.Context) error {
	a.printResources(ctx, a.svc.Resources.Favorites(ctx))
	return nil
}

func (a *App) Recent(ctx context.Context) error {
	a.printResources(ctx, a.svc.Resources.RecentlyAccessed(ctx))
	return nil
}

func (a *App) History(ctx context.Context) error {
	h := a.svc.Resources.History(ctx)
	if len(h) == 0 {
		a.println("(none)")
		return nil
	}
	for _, rec := range h {
		a.printf("%s  %s  %s\n", rec.AccessedAt.Local().Format("2006-01-02 15:04"), rec.Resource.ID, rec.Resource.Title)
	}
	return nil
}

// ClearData forgets favorites, recent list and history after confirmation.
func (a *App) ClearData(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Clear favorites and history? (y/N)", a.out)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		a.println("Cancelled.")
		return nil
	}
	a.svc.Resources.ClearPersonalData(ctx)
	a.svc.Search.ClearHistory(ctx)
	a.println("Personal data cleared.")
	return nil
}
