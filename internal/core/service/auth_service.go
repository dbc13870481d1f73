package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
	"github.com/tasknest/todo-api/internal/pkg/metrics"
)

// AuthService implements registration, sign-in and current-user lookup.
type AuthService struct {
	repo     ports.UserRepository
	tokens   ports.TokenService
	logger   zerolog.Logger
	hashCost int
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger, hashCost: bcrypt.DefaultCost}
}

// SetHashCost overrides the bcrypt cost used for new passwords.
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_up", "failed").Inc()
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	user, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_up", "failed").Inc()
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("sign_up", "ok").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return result, nil
}

// SignIn checks the credentials. An unknown email and a wrong password both
// return domain.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "failed").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "failed").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "failed").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("sign_in", "ok").Inc()
	return result, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Tokens: *pair, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
