package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
	"github.com/tasknest/todo-api/internal/pkg/metrics"
)

// TokenService issues access/refresh pairs and verifies them. It is
// stateless: refresh tokens are not rotated and stay valid until they expire.
type TokenService struct {
	codec      ports.TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

var _ ports.TokenService = (*TokenService)(nil)

// NewTokenService returns a TokenService. Non-positive TTLs fall back to the
// 15 minute / 7 day defaults.
func NewTokenService(codec ports.TokenCodec, accessTTL, refreshTTL time.Duration, log zerolog.Logger) *TokenService {
	if accessTTL <= 0 {
		accessTTL = domain.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = domain.DefaultRefreshTokenTTL
	}
	return &TokenService{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		log:        log,
	}
}

// AccessTTL is the lifetime of issued access tokens.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssuePair signs a fresh access token and refresh token for the subject.
func (s *TokenService) IssuePair(subjectID, email string) (*domain.TokenPair, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, fmt.Errorf("issue tokens: %w: subject id is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	access, accessExp, err := s.issue(subjectID, email, domain.TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.issue(subjectID, email, domain.TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess authenticates an access token and returns its subject id.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	claims, err := s.verify(token, domain.TokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.SubjectID, nil
}

// Refresh exchanges a valid refresh token for a new access token for the
// same subject.
func (s *TokenService) Refresh(refreshToken string) (*domain.AccessToken, error) {
	claims, err := s.verify(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "failed").Inc()
		return nil, err
	}

	access, exp, err := s.issue(claims.SubjectID, claims.Email, domain.TokenTypeAccess, s.now().UTC(), s.accessTTL)
	if err != nil {
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("refresh", "ok").Inc()
	return &domain.AccessToken{Token: access, ExpiresAt: exp}, nil
}

func (s *TokenService) issue(subjectID, email string, typ domain.TokenType, now time.Time, ttl time.Duration) (string, time.Time, error) {
	claims := domain.Claims{
		SubjectID: subjectID,
		Email:     email,
		Type:      typ,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	token, err := s.codec.Encode(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue %s token: %w", typ, err)
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(typ)).Inc()
	return token, claims.ExpiresAt, nil
}

// verify decodes token and checks its type. Failures carry the internal
// cause for logging but always match domain.ErrUnauthorized.
func (s *TokenService) verify(token string, want domain.TokenType) (*domain.Claims, error) {
	claims, err := s.codec.Decode(token)
	if err == nil && claims.Type != want {
		err = fmt.Errorf("%w: got %s, want %s", domain.ErrTokenTypeMismatch, claims.Type, want)
	}
	if err != nil {
		reason := failureReason(err)
		metrics.TokenVerificationFailuresTotal.WithLabelValues(string(want), reason).Inc()
		s.log.Debug().Err(err).Str("token_type", string(want)).Str("reason", reason).Msg("token rejected")
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return claims, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, domain.ErrTokenTypeMismatch):
		return "wrong_type"
	default:
		return "malformed"
	}
}
