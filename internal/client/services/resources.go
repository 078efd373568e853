package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edusync/edusync-client/internal/client/client"
	"github.com/edusync/edusync-client/internal/client/events"
	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/client/storage"
	"github.com/edusync/edusync-client/internal/common"
	"github.com/edusync/edusync-client/internal/recency"
)

const (
	RecentCap  = 5
	HistoryCap = 10
)

// FixtureResources seed an empty cache.
func FixtureResources() []models.Resource {
	t1 := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 14, 14, 20, 0, 0, time.UTC)
	return []models.Resource{
		{
			ID:            "1",
			Title:         "Introduction to React",
			Description:   "Basic concepts of React framework",
			FileName:      "react-intro.pdf",
			FileType:      "pdf",
			FileSizeBytes: 2048000,
			OwnerName:     "Dr. Smith",
			Category:      "programming",
			Difficulty:    "beginner",
			CreatedAt:     t1,
			ModifiedAt:    t1,
		},
		{
			ID:            "2",
			Title:         "Database Design Principles",
			Description:   "Fundamentals of database design",
			FileName:      "db-design.docx",
			FileType:      "docx",
			FileSizeBytes: 1536000,
			OwnerName:     "Prof. Johnson",
			Category:      "databases",
			Difficulty:    "intermediate",
			CreatedAt:     t2,
			ModifiedAt:    t2,
		},
	}
}

func resourceID(r models.Resource) string { return r.ID }

func accessID(a models.AccessRecord) string { return a.Resource.ID }

func findResource(list []models.Resource, id string) int {
	for i, r := range list {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// personal is the per-identity slice of resource state.
type personal struct {
	scope     string
	favorites []string
	recent    []models.Resource
	history   []models.AccessRecord
}

// ResourceService is the entity cache of learning resources plus the
// per-identity favorites, recently-accessed list and history.
type ResourceService struct {
	Deps
	session *SessionService
	remote  client.ResourcesAPI
	newID   func() string

	mu        sync.Mutex
	loaded    bool
	resources []models.Resource
	mine      *personal
}

type ResourceOption func(*ResourceService)

// WithResourcesAPI mirrors mutations to the backend and enables Refresh,
// Upload and Download.
func WithResourcesAPI(api client.ResourcesAPI) ResourceOption {
	return func(s *ResourceService) { s.remote = api }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(f func() string) ResourceOption {
	return func(s *ResourceService) { s.newID = f }
}

func NewResourceService(d Deps, session *SessionService, opts ...ResourceOption) *ResourceService {
	s := &ResourceService{Deps: d.withDefaults("resources"), session: session, newID: newUUIDv7}
	for _, o := range opts {
		o(s)
	}
	s.Bus.Subscribe(events.TopicResourceAdded, s.applyRemoteResource)
	s.Bus.Subscribe(events.TopicResourceUpdated, s.applyRemoteResource)
	s.Bus.Subscribe(events.TopicResourceRemoved, s.applyRemoteResource)
	s.Bus.Subscribe(events.TopicFavoritesUpdated, s.applyRemoteFavorites)
	s.Bus.Subscribe(events.TopicAccessUpdated, s.applyRemoteAccess)
	return s
}

func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *ResourceService) ensureLoadedLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	var list []models.Resource
	if s.Store.Get(ctx, storage.Global, storage.NameResources, &list) {
		s.resources = list
	} else {
		s.resources = FixtureResources()
	}
	s.loaded = true
}

// personalLocked returns the personal state of the current session scope,
// loading it when the scope changed since the last call.
func (s *ResourceService) personalLocked(ctx context.Context) *personal {
	scope := s.session.Scope()
	if s.mine != nil && s.mine.scope == scope {
		return s.mine
	}

	p := &personal{scope: scope}
	s.Store.Get(ctx, scope, storage.NameFavorites, &p.favorites)
	s.Store.Get(ctx, scope, storage.NameRecent, &p.recent)
	s.Store.Get(ctx, scope, storage.NameHistory, &p.history)
	s.mine = p
	return p
}

func (s *ResourceService) List(ctx context.Context) []models.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
	return append([]models.Resource(nil), s.resources...)
}

func (s *ResourceService) Get(ctx context.Context, id string) (models.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
	if i := findResource(s.resources, id); i >= 0 {
		return s.resources[i], true
	}
	return models.Resource{}, false
}

// Add creates a resource locally with a fresh time-ordered id.
func (s *ResourceService) Add(ctx context.Context, in models.ResourceInput) (models.Resource, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return models.Resource{}, err
	}

	now := s.Clock.Now().UTC()
	r := models.Resource{
		ID:            s.newID(),
		Title:         in.Title,
		Description:   in.Description,
		FileName:      in.FileName,
		FileType:      in.FileType,
		FileSizeBytes: in.FileSizeBytes,
		OwnerName:     in.OwnerName,
		Category:      in.Category,
		Difficulty:    in.Difficulty,
		CreatedAt:     now,
		ModifiedAt:    now,
	}
	if r.FileType == "" {
		r.FileType = DetectFileType(models.File{Name: r.FileName})
	}
	if r.OwnerName == "" {
		if id, ok := s.session.Identity(); ok {
			r.OwnerName = id.DisplayName
		}
	}

	s.insert(ctx, r)
	return r, nil
}

// Upload validates file, sends it to the backend and caches the created
// resource under the id the backend assigned.
func (s *ResourceService) Upload(ctx context.Context, in models.ResourceInput, file models.File) (models.Resource, error) {
	if s.remote == nil {
		return models.Resource{}, common.Remote("upload resource", common.ErrUnavailable)
	}
	if in.FileName == "" {
		in.FileName = file.Name
	}
	if in.FileType == "" {
		in.FileType = DetectFileType(file)
	}
	in.FileSizeBytes = fileSize(file)
	in.Title = strings.TrimSpace(in.Title)

	if err := validateStruct(in); err != nil {
		return models.Resource{}, err
	}
	if err := ValidateResourceFile(file); err != nil {
		return models.Resource{}, err
	}

	r, err := s.remote.Create(ctx, in, file)
	if err != nil {
		s.Log.Warn(ctx, "upload failed", "file", file.Name, "err", err)
		return models.Resource{}, common.Remote("upload resource", err)
	}
	if r.ModifiedAt.Before(r.CreatedAt) {
		r.ModifiedAt = r.CreatedAt
	}

	s.insert(ctx, r)
	return r, nil
}

func (s *ResourceService) insert(ctx context.Context, r models.Resource) {
	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	s.resources = recency.Upsert(s.resources, r, resourceID)
	snapshot := append([]models.Resource(nil), s.resources...)
	s.mu.Unlock()

	s.persist(ctx, storage.Global, storage.NameResources, snapshot)
	s.publish(ctx, events.TopicResourceAdded, storage.Global, ResourceChanged{Resource: &r})
}

// Update patches the descriptive fields of resource id. File fields never
// change.
func (s *ResourceService) Update(ctx context.Context, id string, patch models.ResourcePatch) (models.Resource, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Resource{}, common.NewValidationError("title", "is required")
	}
	if patch.Difficulty != nil && *patch.Difficulty != "" {
		switch *patch.Difficulty {
		case "beginner", "intermediate", "advanced":
		default:
			return models.Resource{}, common.NewValidationError("difficulty", "must be one of: beginner intermediate advanced")
		}
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	i := findResource(s.resources, id)
	if i < 0 {
		s.mu.Unlock()
		return models.Resource{}, common.ErrNotFound
	}

	r := patch.Apply(s.resources[i])
	r.Title = strings.TrimSpace(r.Title)
	r.ModifiedAt = s.Clock.Now().UTC()
	if r.ModifiedAt.Before(r.CreatedAt) {
		r.ModifiedAt = r.CreatedAt
	}
	s.resources[i] = r
	snapshot := append([]models.Resource(nil), s.resources...)

	p := s.personalLocked(ctx)
	accessChanged := refreshSnapshots(p, r)
	scope := p.scope
	recent, history := p.recent, p.history
	s.mu.Unlock()

	s.persist(ctx, storage.Global, storage.NameResources, snapshot)
	s.publish(ctx, events.TopicResourceUpdated, storage.Global, ResourceChanged{Resource: &r})
	if accessChanged {
		s.persistAccess(ctx, scope, recent, history)
	}

	if s.remote != nil {
		if _, err := s.remote.Update(ctx, id, patch); err != nil {
			s.Log.Warn(ctx, "remote update failed", "id", id, "err", err)
			return r, common.Remote("update resource", err)
		}
	}
	return r, nil
}

// refreshSnapshots replaces stale copies of r held by the access lists.
func refreshSnapshots(p *personal, r models.Resource) bool {
	changed := false
	for i := range p.recent {
		if p.recent[i].ID == r.ID {
			p.recent = append([]models.Resource(nil), p.recent...)
			p.recent[i] = r
			changed = true
			break
		}
	}
	for i := range p.history {
		if p.history[i].Resource.ID == r.ID {
			p.history = append([]models.AccessRecord(nil), p.history...)
			p.history[i].Resource = r
			changed = true
			break
		}
	}
	return changed
}

// Remove deletes resource id and purges it from favorites, the recent list
// and history.
func (s *ResourceService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	list, ok := recency.Remove(s.resources, id, resourceID)
	if !ok {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.resources = list
	snapshot := append([]models.Resource(nil), list...)

	p := s.personalLocked(ctx)
	var favChanged, recentChanged, historyChanged bool
	p.favorites, favChanged = recency.Remove(p.favorites, id, recency.Identity[string])
	p.recent, recentChanged = recency.Remove(p.recent, id, resourceID)
	p.history, historyChanged = recency.Remove(p.history, id, accessID)
	scope, favs, recent, history := p.scope, p.favorites, p.recent, p.history
	s.mu.Unlock()

	s.persist(ctx, storage.Global, storage.NameResources, snapshot)
	s.publish(ctx, events.TopicResourceRemoved, storage.Global, ResourceChanged{ID: id})
	if favChanged {
		s.persist(ctx, scope, storage.NameFavorites, favs)
		s.publish(ctx, events.TopicFavoritesUpdated, scope, FavoritesChanged{IDs: favs})
	}
	if recentChanged || historyChanged {
		s.persistAccess(ctx, scope, recent, history)
	}

	if s.remote != nil {
		if err := s.remote.Delete(ctx, id); err != nil {
			s.Log.Warn(ctx, "remote delete failed", "id", id, "err", err)
			return common.Remote("delete resource", err)
		}
	}
	return nil
}

// TouchAccess records that r was opened.
func (s *ResourceService) TouchAccess(ctx context.Context, r models.Resource) {
	now := s.Clock.Now().UTC()

	s.mu.Lock()
	p := s.personalLocked(ctx)
	p.recent = recency.Push(p.recent, r, resourceID, RecentCap)
	p.history = recency.Push(p.history, models.AccessRecord{Resource: r, AccessedAt: now}, accessID, HistoryCap)
	scope, recent, history := p.scope, p.recent, p.history
	s.mu.Unlock()

	s.persistAccess(ctx, scope, recent, history)
}

func (s *ResourceService) persistAccess(ctx context.Context, scope string, recent []models.Resource, history []models.AccessRecord) {
	s.persist(ctx, scope, storage.NameRecent, recent)
	s.persist(ctx, scope, storage.NameHistory, history)
	s.publish(ctx, events.TopicAccessUpdated, scope, AccessChanged{Recent: recent, History: history})
}

// ToggleFavorite flips the favorite flag of id and returns the new value.
func (s *ResourceService) ToggleFavorite(ctx context.Context, id string) bool {
	s.mu.Lock()
	p := s.personalLocked(ctx)
	var removed bool
	p.favorites, removed = recency.Remove(p.favorites, id, recency.Identity[string])
	if !removed {
		p.favorites = append(append([]string(nil), p.favorites...), id)
	}
	scope, favs := p.scope, p.favorites
	s.mu.Unlock()

	s.persist(ctx, scope, storage.NameFavorites, favs)
	s.publish(ctx, events.TopicFavoritesUpdated, scope, FavoritesChanged{IDs: favs})
	return !removed
}

func (s *ResourceService) IsFavorite(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.personalLocked(ctx).favorites {
		if f == id {
			return true
		}
	}
	return false
}

// FavoriteIDs lists favorite ids in the order they were added.
func (s *ResourceService) FavoriteIDs(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.personalLocked(ctx).favorites...)
}

// Favorites resolves favorite ids against the cache, skipping unknown ones.
func (s *ResourceService) Favorites(ctx context.Context) []models.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	var out []models.Resource
	for _, id := range s.personalLocked(ctx).favorites {
		if i := findResource(s.resources, id); i >= 0 {
			out = append(out, s.resources[i])
		}
	}
	return out
}

func (s *ResourceService) RecentlyAccessed(ctx context.Context) []models.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Resource(nil), s.personalLocked(ctx).recent...)
}

func (s *ResourceService) History(ctx context.Context) []models.AccessRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AccessRecord(nil), s.personalLocked(ctx).history...)
}

// ClearPersonalData drops favorites, the recent list and history of the
// current identity.
func (s *ResourceService) ClearPersonalData(ctx context.Context) {
	s.mu.Lock()
	p := s.personalLocked(ctx)
	p.favorites, p.recent, p.history = nil, nil, nil
	scope := p.scope
	s.mu.Unlock()

	s.forget(ctx, scope, storage.NameFavorites, storage.NameRecent, storage.NameHistory)
	s.publish(ctx, events.TopicFavoritesUpdated, scope, FavoritesChanged{IDs: []string{}})
	s.publish(ctx, events.TopicAccessUpdated, scope, AccessChanged{Recent: []models.Resource{}, History: []models.AccessRecord{}})
}

// Refresh replaces the cache with the backend's list.
func (s *ResourceService) Refresh(ctx context.Context) error {
	if s.remote == nil {
		return common.Remote("list resources", common.ErrUnavailable)
	}
	list, err := s.remote.List(ctx)
	if err != nil {
		s.Log.Warn(ctx, "refresh failed", "err", err)
		return common.Remote("list resources", err)
	}

	s.mu.Lock()
	s.resources = append([]models.Resource(nil), list...)
	s.loaded = true
	snapshot := append([]models.Resource(nil), list...)
	s.mu.Unlock()

	s.persist(ctx, storage.Global, storage.NameResources, snapshot)
	s.publish(ctx, events.TopicResourceUpdated, storage.Global, ResourceChanged{Snapshot: snapshot})
	return nil
}

// Download fetches the file of id and records the access.
func (s *ResourceService) Download(ctx context.Context, id string) ([]byte, error) {
	r, ok := s.Get(ctx, id)
	if !ok {
		return nil, common.ErrNotFound
	}
	if s.remote == nil {
		return nil, common.Remote("download resource", common.ErrUnavailable)
	}

	data, err := s.remote.Download(ctx, id)
	if err != nil {
		s.Log.Warn(ctx, "download failed", "id", id, "err", err)
		return nil, common.Remote("download resource", err)
	}
	s.TouchAccess(ctx, r)
	return data, nil
}

func (s *ResourceService) applyRemoteResource(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	var p ResourceChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad resource event", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)

	switch {
	case p.Snapshot != nil:
		s.resources = append([]models.Resource(nil), p.Snapshot...)
	case e.Topic == events.TopicResourceRemoved:
		s.resources, _ = recency.Remove(s.resources, p.ID, resourceID)
		if s.mine != nil {
			s.mine.favorites, _ = recency.Remove(s.mine.favorites, p.ID, recency.Identity[string])
			s.mine.recent, _ = recency.Remove(s.mine.recent, p.ID, resourceID)
			s.mine.history, _ = recency.Remove(s.mine.history, p.ID, accessID)
		}
	case p.Resource != nil:
		s.resources = recency.Upsert(s.resources, *p.Resource, resourceID)
	}
}

func (s *ResourceService) applyRemoteFavorites(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	var p FavoritesChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad favorites event", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mine != nil && s.mine.scope == e.Scope {
		s.mine.favorites = p.IDs
	}
}

func (s *ResourceService) applyRemoteAccess(ctx context.Context, e events.Event) {
	if !e.Remote {
		return
	}
	var p AccessChanged
	if err := e.Decode(&p); err != nil {
		s.Log.Warn(ctx, "bad access event", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mine != nil && s.mine.scope == e.Scope {
		s.mine.recent, s.mine.history = p.Recent, p.History
	}
}
