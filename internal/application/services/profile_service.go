package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// ProfileService handles the signed-in user's own account
type ProfileService struct {
	userRepo ports.UserRepository
	auth     *AuthService
	logger   *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo ports.UserRepository, auth *AuthService, logger *logger.Logger) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		auth:     auth,
		logger:   logger.WithComponent("profile"),
	}
}

// Get returns the user's profile
func (s *ProfileService) Get(ctx context.Context, userID int64) (*entities.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// Update changes display name, email and profile image. Fields left out of
// the request keep their values.
func (s *ProfileService) Update(ctx context.Context, userID int64, req ports.UpdateProfileRequest) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return user, nil
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, entities.Validation("Email cannot be empty")
		}
		if email != user.Email {
			taken, err := s.userRepo.EmailTakenByOther(ctx, email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, entities.ErrEmailInUse
			}
		}
		user.Email = email
	}
	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.ProfileImage.Set {
		user.ProfileImage = req.ProfileImage.Value
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "profile_updated", nil)
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *ProfileService) ChangePassword(ctx context.Context, userID int64, req ports.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return entities.Validation(req.ValidationMessage())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return entities.ErrWrongPassword
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "password_changed", nil)
	return nil
}
