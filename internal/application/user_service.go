package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	repo "github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
	"github.com/oksasatya/campus-resource-tracker/pkg/validation"
)

// UserService owns registration, login and the user directory.
type UserService struct {
	Repo      repo.UserRepository
	Hasher    *helpers.PasswordHasher
	JWT       *helpers.JWTManager
	Notifier  Notifier
	Directory UserDirectory
	Logger    *logrus.Logger
}

func NewUserService(repo repo.UserRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, notifier Notifier, directory UserDirectory, logger *logrus.Logger) *UserService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if directory == nil {
		directory = nopDirectory{}
	}
	return &UserService{
		Repo:      repo,
		Hasher:    hasher,
		JWT:       jwt,
		Notifier:  notifier,
		Directory: directory,
		Logger:    logger,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd,pwdbytes"`
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Register validates, hashes and stores a new user. Uniqueness is left to
// the store so concurrent registrations cannot both succeed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperror.ValidationField("password", fmt.Sprintf("must be at most %d bytes", validation.MaxPasswordBytes))
	}
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	u := &entity.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.Directory.Index(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
	}
	if err := s.Notifier.Welcome(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
	return u, nil
}

// Login accepts a username or an email. Unknown identifiers and wrong
// passwords return the same error after the same amount of bcrypt work.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		fields := map[string]string{}
		if identifier == "" {
			fields["identifier"] = "is required"
		}
		if password == "" {
			fields["password"] = "is required"
		}
		return nil, apperror.Validation("invalid payload", fields)
	}

	u, err := s.Repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if !apperror.IsKind(err, apperror.KindNotFound) {
			return nil, err
		}
		s.Hasher.BurnCompare(password)
		return nil, apperror.ErrInvalidCredentials
	}
	if !s.Hasher.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, apperror.Internal("issue token", err)
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Me returns the token's user. A token for a user that no longer exists
// is treated as unauthenticated.
func (s *UserService) Me(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	return u, nil
}

// SearchUsers queries the user directory; an unconfigured directory yields
// an empty list.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]entity.UserRef, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.UserRef{}, nil
	}
	if size <= 0 || size > entity.MaxPageSize {
		size = entity.MaxPageSize
	}
	refs, err := s.Directory.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Internal("search users", err)
	}
	if refs == nil {
		refs = []entity.UserRef{}
	}
	return refs, nil
}
