package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/denzelpenzel/skillswap/internal/models"
	"go.uber.org/zap"
)

// UserService handles registration, authentication and profiles
type UserService struct {
	store  UserStore
	auth   *AuthService
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store UserStore, auth *AuthService, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		auth:   auth,
		logger: logger,
	}
}

// Register creates a new account. A taken username or email yields models.ErrConflict.
func (s *UserService) Register(ctx context.Context, req models.UserRegistration) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, models.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Bio:          req.Bio,
		Location:     req.Location,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))

	return user, nil
}

// Authenticate checks a username-or-email and password pair. Unknown
// identities and wrong passwords both yield models.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	if err := models.Validate(models.UserLogin{Username: login, Password: password}); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auth.BurnPasswordCheck(password)
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// GetProfile retrieves the account of userID
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("user %w", err)
		}
		s.logger.Error("Failed to get profile", zap.Error(err), zap.Int64("user_id", userID))
		return nil, err
	}

	return user, nil
}

// UpdateProfile changes the display name, bio and location of userID.
// Omitted fields are kept.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	if err := models.Validate(upd); err != nil {
		return err
	}

	if err := s.store.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("user %w", err)
		}
		return err
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", userID))

	return nil
}
