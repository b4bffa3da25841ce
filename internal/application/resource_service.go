package application

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	repo "github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/optional"
)

// MaxPhotoBytes bounds uploaded resource photos.
const MaxPhotoBytes = 5 << 20

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

type ResourceService struct {
	Resources repo.ResourceRepository
	Users     repo.UserRepository
	Photos    PhotoStore
	Logger    *logrus.Logger
}

func NewResourceService(resources repo.ResourceRepository, users repo.UserRepository, photos PhotoStore, logger *logrus.Logger) *ResourceService {
	return &ResourceService{Resources: resources, Users: users, Photos: photos, Logger: logger}
}

// withUsernames returns r with owner and rater usernames attached.
func (s *ResourceService) withUsernames(ctx context.Context, r *entity.Resource) (*entity.Resource, error) {
	if err := attachUsernames(ctx, s.Users, r); err != nil {
		return nil, apperror.Internal("resolve usernames", err)
	}
	return r, nil
}

func (s *ResourceService) Create(ctx context.Context, ownerID string, draft entity.ResourceDraft) (*entity.Resource, error) {
	r, err := draft.Normalize()
	if err != nil {
		return nil, err
	}
	r.OwnerID = ownerID
	if err := s.Resources.Create(ctx, r); err != nil {
		return nil, err
	}
	resourcesCreated.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"resource_id": r.ID, "owner_id": ownerID}).Info("resource created")
	}
	return s.withUsernames(ctx, r)
}

func (s *ResourceService) Get(ctx context.Context, id string) (*entity.Resource, error) {
	r, err := s.Resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withUsernames(ctx, r)
}

// List returns the newest resources, capped at the page size.
func (s *ResourceService) List(ctx context.Context) ([]*entity.Resource, error) {
	list, err := s.Resources.List(ctx, entity.MaxPageSize)
	if err != nil {
		return nil, err
	}
	if err := attachUsernames(ctx, s.Users, list...); err != nil {
		return nil, apperror.Internal("resolve usernames", err)
	}
	return list, nil
}

// authorize loads the resource and checks that requesterID owns it.
func (s *ResourceService) authorize(ctx context.Context, id, requesterID string) (*entity.Resource, error) {
	r, err := s.Resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != requesterID {
		return nil, apperror.Forbidden("only the owner can modify this resource")
	}
	return r, nil
}

// Update merges the fields present in patch. The write itself is
// conditioned on ownership, so a concurrent delete surfaces as NOT_FOUND.
func (s *ResourceService) Update(ctx context.Context, id, requesterID string, patch entity.ResourcePatch) (*entity.Resource, error) {
	current, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	patch, err = patch.Normalize()
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.withUsernames(ctx, current)
	}
	updated, err := s.Resources.Update(ctx, id, requesterID, patch)
	if err != nil {
		return nil, err
	}
	return s.withUsernames(ctx, updated)
}

func (s *ResourceService) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.authorize(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.Resources.Delete(ctx, id, requesterID); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"resource_id": id, "owner_id": requesterID}).Info("resource deleted")
	}
	return nil
}

type PhotoUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadPhoto stores an image for the resource and records its URL through
// the regular owner-conditioned update.
func (s *ResourceService) UploadPhoto(ctx context.Context, id, requesterID string, up PhotoUpload) (*entity.Resource, error) {
	if _, err := s.authorize(ctx, id, requesterID); err != nil {
		return nil, err
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, apperror.ValidationField("photo", "must be a jpeg, png, gif, webp or heic image")
	}
	if up.Size <= 0 || up.Size > MaxPhotoBytes {
		return nil, apperror.ValidationField("photo", "must be between 1 byte and 5 MiB")
	}
	if s.Photos == nil {
		return nil, &apperror.AppError{
			Kind:    apperror.KindInternal,
			Code:    apperror.CodePhotoStorageUnavailable,
			Message: "photo storage is not configured",
		}
	}

	objectPath := path.Join("resources", id, uuid.NewString()+ext)
	url, err := s.Photos.Put(ctx, objectPath, contentType, io.LimitReader(up.Body, MaxPhotoBytes))
	if err != nil {
		return nil, apperror.Internal("store photo", err)
	}
	updated, err := s.Resources.Update(ctx, id, requesterID, entity.ResourcePatch{PhotoURL: optional.Of(url)})
	if err != nil {
		return nil, err
	}
	return s.withUsernames(ctx, updated)
}
