package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past this length
const maxPasswordBytes = 72

// Register creates a new user with a hashed password.
// The username check and the insert share one transaction, and the unique
// index on username catches registrations that race past the check.
func (s *Service) Register(ctx context.Context, username, password, fullName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	case password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case len(password) > maxPasswordBytes:
		return nil, fmt.Errorf("%w: password is longer than %d bytes", ErrValidation, maxPasswordBytes)
	case fullName == "":
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		CreatedAt:    s.now(),
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		_, err := tx.FindUserByUsername(ctx, username)
		switch {
		case err == nil:
			return ErrUserExists
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		err = ErrUserExists
	}
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			s.log.Warnf("Registration rejected, username taken: %s", username)
		}
		return nil, err
	}

	s.log.Infof("User registered: %s (id %d)", user.Username, user.ID)
	return user, nil
}

// Authenticate checks a username and password against the stored digest
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		_ = s.compareHash(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and returns a signed session token
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("User logged in: %s", user.Username)
	return token, user, nil
}
