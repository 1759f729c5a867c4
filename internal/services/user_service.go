package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/points-backend/internal/auth"
	"github.com/baharkarakas/points-backend/internal/logger"
	"github.com/baharkarakas/points-backend/internal/models"
	repo "github.com/baharkarakas/points-backend/internal/repository"
)

var errBadCredentials = models.NewError(models.ErrUnauthorized, "incorrect email or password")

type UserService struct {
	r             repo.Users
	defaultPoints int64
}

func NewUserService(r repo.Users, defaultPoints int64) *UserService {
	return &UserService{r: r, defaultPoints: defaultPoints}
}

// ValidationError is a user input problem found before anything is stored.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Register creates a user with the opening points balance.
func (s *UserService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	u := models.User{Name: name, Email: email, Role: "user", Points: s.defaultPoints}
	if err := u.Validate(); err != nil {
		return models.User{}, &ValidationError{Msg: err.Error()}
	}
	if err := models.ValidatePassword(password); err != nil {
		return models.User{}, &ValidationError{Msg: err.Error()}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	u.PasswordHash = hash

	created, err := s.r.Create(ctx, u)
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return models.User{}, &ValidationError{Msg: "email already taken"}
		}
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	logger.FromContext(ctx).Info("user registered", "user_id", created.ID)
	return created, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, errBadCredentials
		}
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, errBadCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.User{}, notFoundAs(err, "user not found")
	}
	return u, nil
}
