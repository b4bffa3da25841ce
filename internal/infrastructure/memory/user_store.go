// Package memory is a process-local storage driver honoring the same
// repository contracts as the postgres driver. It backs development runs
// and the service and handler tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

type UserStore struct {
	mu         sync.RWMutex
	byID       map[string]*entity.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:       map[string]*entity.User{},
		byUsername: map[string]string{},
		byEmail:    map[string]string{},
	}
}

func (s *UserStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := s.byUsername[u.Username]; ok {
		return apperror.DuplicateKey("username")
	}
	if _, ok := s.byEmail[email]; ok {
		return apperror.DuplicateKey("email")
	}

	stored := *u
	stored.ID = uuid.NewString()
	stored.Email = email
	stored.CreatedAt = time.Now().UTC()

	s.byID[stored.ID] = &stored
	s.byUsername[stored.Username] = stored.ID
	s.byEmail[email] = stored.ID

	u.ID = stored.ID
	u.Email = stored.Email
	u.CreatedAt = stored.CreatedAt
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	c := *u
	return &c, nil
}

func (s *UserStore) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[identifier]
	if !ok {
		id, ok = s.byEmail[strings.ToLower(identifier)]
	}
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	c := *s.byID[id]
	return &c, nil
}

func (s *UserStore) GetUsernames(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

var _ repository.UserRepository = (*UserStore)(nil)
