package repository

import (
	"context"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
)

// UserRepository defines the interface for user-related storage operations.
// Implementations report a taken username or email as apperror DUPLICATE_KEY
// and a missing user as NOT_FOUND.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByIdentifier looks up by exact username or by lowercased email.
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	// GetUsernames resolves ids to usernames. Unknown ids are absent from the map.
	GetUsernames(ctx context.Context, ids []string) (map[string]string, error)
}
