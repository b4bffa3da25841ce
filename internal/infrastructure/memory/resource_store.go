package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

// ResourceStore keeps documents and the spatial index under one lock, so
// a reader never sees a location that disagrees with the index or a rating
// list that disagrees with its aggregates. Callers only ever get copies.
type ResourceStore struct {
	mu    sync.RWMutex
	docs  map[string]*entity.Resource
	index *gridIndex
	last  time.Time
}

func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		docs:  map[string]*entity.Resource{},
		index: newGridIndex(),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// total even when writes land within the clock resolution. Needs s.mu held.
func (s *ResourceStore) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func errResourceNotFound() error {
	return apperror.NotFound("resource not found")
}

func (s *ResourceStore) Create(_ context.Context, r *entity.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tick()
	r.ID = uuid.NewString()
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Ratings == nil {
		r.Ratings = []entity.Rating{}
	}

	s.docs[r.ID] = r.Clone()
	s.index.put(r.ID, r.Location)
	return nil
}

func (s *ResourceStore) GetByID(_ context.Context, id string) (*entity.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errResourceNotFound()
	}
	return doc.Clone(), nil
}

func (s *ResourceStore) List(_ context.Context, limit int) ([]*entity.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Resource, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	return cloneNewest(out, limit), nil
}

func (s *ResourceStore) Update(_ context.Context, id, ownerID string, patch entity.ResourcePatch) (*entity.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, errResourceNotFound()
	}

	next := doc.Clone()
	patch.Apply(next)
	next.Version++
	next.UpdatedAt = s.tick()

	s.docs[id] = next
	if patch.Location.Set {
		s.index.put(id, next.Location)
	}
	return next.Clone(), nil
}

func (s *ResourceStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return errResourceNotFound()
	}
	delete(s.docs, id)
	s.index.remove(id)
	return nil
}

func (s *ResourceStore) Search(_ context.Context, q entity.SearchQuery) ([]*entity.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(q.Text)
	matches := func(r *entity.Resource) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(string(r.Type)), needle)
	}

	if q.Origin != nil {
		ids := s.index.within(*q.Origin, q.Radius)
		out := make([]*entity.Resource, 0, len(ids))
		for _, id := range ids {
			if doc := s.docs[id]; doc != nil && matches(doc) {
				out = append(out, doc.Clone())
			}
		}
		return out, nil
	}

	var hits []*entity.Resource
	for _, doc := range s.docs {
		if matches(doc) {
			hits = append(hits, doc)
		}
	}
	return cloneNewest(hits, q.Limit), nil
}

func (s *ResourceStore) AddRating(_ context.Context, id string, rt entity.Rating) (*entity.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errResourceNotFound()
	}
	if doc.HasRatingFrom(rt.UserID) {
		return nil, apperror.AlreadyRated()
	}

	next := doc.Clone()
	now := s.tick()
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = now
	}
	rt.Username = ""
	next.AppendRating(rt)
	next.Version++
	next.UpdatedAt = now

	s.docs[id] = next
	return next.Clone(), nil
}

// cloneNewest sorts newest first, applies limit when positive and copies.
func cloneNewest(docs []*entity.Resource, limit int) []*entity.Resource {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	out := make([]*entity.Resource, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

var _ repository.ResourceRepository = (*ResourceStore)(nil)
