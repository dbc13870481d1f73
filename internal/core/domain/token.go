package domain

import (
	"errors"
	"time"
)

// TokenType tags a token as short-lived access or long-lived refresh.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Default lifetimes, used when configuration does not override them.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenTypeMismatch     = errors.New("token type mismatch")
)

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// Claims is the decoded payload carried inside a token.
type Claims struct {
	SubjectID string
	Email     string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is returned on sign-in and sign-up.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccessToken is the result of exchanging a refresh token.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}
