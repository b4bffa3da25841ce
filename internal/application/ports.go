package application

import (
	"context"
	"io"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
)

// Notifier hands user-facing notifications to the delivery pipeline.
// Failures are logged by callers and never fail the triggering operation.
type Notifier interface {
	Welcome(ctx context.Context, u *entity.User) error
	ResourceRated(ctx context.Context, n RatedNotice) error
}

// RatedNotice tells an owner that someone rated their resource.
type RatedNotice struct {
	Owner     *entity.User
	Resource  *entity.Resource
	RaterName string
	Score     int
	Comment   string
}

// UserDirectory is the searchable projection of registered users.
type UserDirectory interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]entity.UserRef, error)
}

// PhotoStore persists resource photos and returns their public URL.
type PhotoStore interface {
	Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type nopNotifier struct{}

func (nopNotifier) Welcome(context.Context, *entity.User) error     { return nil }
func (nopNotifier) ResourceRated(context.Context, RatedNotice) error { return nil }

type nopDirectory struct{}

func (nopDirectory) Index(context.Context, *entity.User) error { return nil }
func (nopDirectory) Search(context.Context, string, int) ([]entity.UserRef, error) {
	return []entity.UserRef{}, nil
}
