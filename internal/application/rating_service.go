package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	repo "github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

type RatingService struct {
	Resources repo.ResourceRepository
	Users     repo.UserRepository
	Notifier  Notifier
	Logger    *logrus.Logger
}

func NewRatingService(resources repo.ResourceRepository, users repo.UserRepository, notifier Notifier, logger *logrus.Logger) *RatingService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &RatingService{Resources: resources, Users: users, Notifier: notifier, Logger: logger}
}

type RateInput struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Rate records one rating per (resource, rater). The append and the
// aggregate recomputation happen in a single repository write.
func (s *RatingService) Rate(ctx context.Context, resourceID, raterID string, in RateInput) (*entity.Resource, error) {
	if in.Score < entity.MinScore || in.Score > entity.MaxScore {
		return nil, apperror.ValidationField("score", "must be an integer between 1 and 5")
	}

	updated, err := s.Resources.AddRating(ctx, resourceID, entity.Rating{
		UserID:  raterID,
		Score:   in.Score,
		Comment: strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return nil, err
	}
	ratingsRecorded.Add(1)

	if err := attachUsernames(ctx, s.Users, updated); err != nil {
		return nil, apperror.Internal("resolve usernames", err)
	}
	s.notifyOwner(ctx, updated, raterID, in)
	return updated, nil
}

func (s *RatingService) notifyOwner(ctx context.Context, r *entity.Resource, raterID string, in RateInput) {
	if r.OwnerID == raterID {
		return
	}
	owner, err := s.Users.GetByID(ctx, r.OwnerID)
	if err == nil {
		raterName := ""
		for _, rt := range r.Ratings {
			if rt.UserID == raterID {
				raterName = rt.Username
			}
		}
		err = s.Notifier.ResourceRated(ctx, RatedNotice{
			Owner:     owner,
			Resource:  r,
			RaterName: raterName,
			Score:     in.Score,
			Comment:   strings.TrimSpace(in.Comment),
		})
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("resource_id", r.ID).Warn("owner notification failed")
	}
}
