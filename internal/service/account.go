package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"lucky-draw/internal/model"
	"lucky-draw/internal/repository"
)

// AccountService keeps the user directory in sync with the bot's senders.
type AccountService struct {
	users UserStore
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users}
}

// EnsureUser registers the user on first interaction and keeps the stored
// username current. Returns the user and whether it was newly created.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, false, persistence("ensure user", err)
	}

	if !created && username != "" && user.Username != username {
		if err := s.users.UpdateUsername(ctx, telegramID, username); err != nil {
			// Non-fatal, the user still exists
			log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to update username")
		} else {
			user.Username = username
		}
	}

	if created {
		log.Info().Int64("user_id", telegramID).Msg("User registered")
	}
	return user, created, nil
}

// SetMobilephone stores the user's contact number after validating it.
func (s *AccountService) SetMobilephone(ctx context.Context, telegramID int64, mobilephone string) error {
	if mobilephone == "" {
		return invalid("mobilephone", "is required")
	}
	if !IsMobilephone(mobilephone) {
		return invalid("mobilephone", "is not a valid mobile number")
	}
	if err := s.users.UpdateMobilephone(ctx, telegramID, mobilephone); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return persistence("update mobilephone", err)
	}
	return nil
}
