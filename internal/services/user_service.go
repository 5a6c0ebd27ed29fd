package services

import (
	"errors"
	"fmt"
	"strings"

	"messageapp/internal/apperr"
	"messageapp/internal/models"
	"messageapp/internal/pagination"
	"messageapp/internal/repositories"
	"messageapp/internal/validation"
	"messageapp/pkg/rabbitmq"
)

// MsgWrongPassword is returned by ChangePassword when the old password does not match.
const MsgWrongPassword = "old password is incorrect"

// UserService manages the acting user's account and the user directory.
type UserService struct {
	userRepo repositories.UserRepository
	auth     *AuthService
	validate *validation.Validator
	events   EventPublisher
	cfg      Config
}

func NewUserService(userRepo repositories.UserRepository, auth *AuthService, cfg Config, events EventPublisher) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
		validate: validation.New(),
		events:   events,
		cfg:      cfg.withDefaults(),
	}
}

// UpdateProfileInput changes only the fields that are present.
type UpdateProfileInput struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=3,max=100"`
	Name     *string `json:"name" validate:"omitempty,min=1"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (s *UserService) Profile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	return user, nil
}

func (s *UserService) Update(userID uint, in UpdateProfileInput) (*models.User, error) {
	for _, field := range []*string{in.Email, in.Username, in.Name} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Name != nil {
		user.Name = *in.Name
	}

	if err := s.auth.ensureAvailable(user.Email, user.Username, user.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict(MsgAccountTaken)
		}
		return nil, apperr.Internal(fmt.Errorf("failed to update profile: %w", err))
	}
	return user, nil
}

func (s *UserService) ChangePassword(userID uint, in ChangePasswordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	user, err := s.Profile(userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, in.OldPassword) {
		return apperr.Validation(MsgWrongPassword)
	}

	hashed, err := hashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	user.PasswordHash = hashed
	if err := s.userRepo.Update(user); err != nil {
		return apperr.Internal(fmt.Errorf("failed to store password: %w", err))
	}
	return nil
}

// Delete removes the account along with its messages and memberships.
func (s *UserService) Delete(userID uint) error {
	err := s.userRepo.Delete(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to delete account: %w", err))
	}
	publish(s.events, rabbitmq.Event{Type: rabbitmq.UserDeleted, ActorID: userID, UserID: userID})
	return nil
}

// List returns one page of every user except the caller, in id order.
func (s *UserService) List(userID uint, page int) (pagination.Page[models.User], error) {
	total, err := s.userRepo.CountExcluding(userID)
	if err != nil {
		return pagination.Page[models.User]{}, apperr.Internal(fmt.Errorf("failed to count users: %w", err))
	}
	window := pagination.Paginate(total, page, s.cfg.PageSize)
	result := pagination.Page[models.User]{Items: []models.User{}, Pages: window.Pages}
	if window.Empty() {
		return result, nil
	}
	result.Items, err = s.userRepo.ListExcluding(userID, window.Offset, window.Limit)
	if err != nil {
		return pagination.Page[models.User]{}, apperr.Internal(fmt.Errorf("failed to list users: %w", err))
	}
	return result, nil
}

// Search matches query case-insensitively against username and name.
// A blank query matches everyone; the result is capped either way.
func (s *UserService) Search(userID uint, query string) ([]models.User, error) {
	users, err := s.userRepo.Search(userID, strings.TrimSpace(query), s.cfg.SearchLimit)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to search users: %w", err))
	}
	return users, nil
}
