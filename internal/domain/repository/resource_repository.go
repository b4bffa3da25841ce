package repository

import (
	"context"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
)

// ResourceRepository persists resources and their rating ledgers.
// Returned resources carry owner and rater ids only; usernames are joined
// by the application layer.
type ResourceRepository interface {
	// Create fills ID, Version and timestamps on r.
	Create(ctx context.Context, r *entity.Resource) error
	GetByID(ctx context.Context, id string) (*entity.Resource, error)
	// List returns the newest resources first.
	List(ctx context.Context, limit int) ([]*entity.Resource, error)
	// Update applies a normalized patch in one write conditioned on ownerID.
	// A row that is gone or owned by someone else yields NOT_FOUND.
	Update(ctx context.Context, id, ownerID string, patch entity.ResourcePatch) (*entity.Resource, error)
	// Delete removes the resource when ownerID owns it, NOT_FOUND otherwise.
	Delete(ctx context.Context, id, ownerID string) error
	// Search returns candidates for q. See entity.SearchQuery.
	Search(ctx context.Context, q entity.SearchQuery) ([]*entity.Resource, error)
	// AddRating appends rt and recomputes the aggregates atomically.
	// It returns NOT_FOUND or ALREADY_RATED when it cannot.
	AddRating(ctx context.Context, id string, rt entity.Rating) (*entity.Resource, error)
}
