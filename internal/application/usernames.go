package application

import (
	"context"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	repo "github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
)

// attachUsernames resolves owner and rater usernames with one explicit
// lookup. Resources are never stored with denormalized names.
func attachUsernames(ctx context.Context, users repo.UserRepository, resources ...*entity.Resource) error {
	seen := map[string]struct{}{}
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, r := range resources {
		add(r.OwnerID)
		for _, rt := range r.Ratings {
			add(rt.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := users.GetUsernames(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range resources {
		r.OwnerUsername = names[r.OwnerID]
		for i := range r.Ratings {
			r.Ratings[i].Username = names[r.Ratings[i].UserID]
		}
	}
	return nil
}
