package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/loan-service/internal/auth"
	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrValidation wraps every rejected user input
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials covers unknown usernames and wrong secrets alike
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering a taken username
	ErrUserExists = errors.New("username already exists")
	// ErrNotOwner is returned when a loan does not exist or belongs to another user
	ErrNotOwner = errors.New("invalid loan ID or not your loan")
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	tokens *auth.Tokens
	now    func() time.Time

	// dummyHash is compared against when the username is unknown, so a
	// failed login costs the same whether or not the user exists.
	dummyHash   []byte
	compareHash func(hash, password []byte) error
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, tokens *auth.Tokens) *Service {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	if err != nil {
		log.Warnf("Failed to prepare dummy password hash: %v", err)
	}

	return &Service{
		repo:        repo,
		log:         log,
		config:      cfg,
		tokens:      tokens,
		now:         func() time.Time { return time.Now().UTC() },
		dummyHash:   dummyHash,
		compareHash: bcrypt.CompareHashAndPassword,
	}
}

// Ping checks that the store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
