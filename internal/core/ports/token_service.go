package ports

import "github.com/tasknest/todo-api/internal/core/domain"

// TokenCodec signs and verifies self-contained tokens.
type TokenCodec interface {
	Encode(claims domain.Claims) (string, error)
	// Decode fails with domain.ErrTokenSignatureInvalid, domain.ErrTokenExpired
	// or domain.ErrTokenMalformed.
	Decode(token string) (*domain.Claims, error)
}

// TokenVerifier authenticates a bearer access token.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// TokenService manages the token lifecycle. Every verification failure wraps
// domain.ErrUnauthorized.
type TokenService interface {
	TokenVerifier
	IssuePair(subjectID, email string) (*domain.TokenPair, error)
	Refresh(refreshToken string) (*domain.AccessToken, error)
}
