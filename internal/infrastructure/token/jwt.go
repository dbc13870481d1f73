// Package token implements the token codec with HS256-signed JWTs.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
)

// ErrMissingSecret is returned when the codec is built without a signing secret.
var ErrMissingSecret = errors.New("token: signing secret is not configured")

var _ ports.TokenCodec = (*JWTCodec)(nil)

// claims is the wire shape shared with clients that validate tokens on
// their own: sub, user_id, email, type, iat, exp.
type claims struct {
	UserID string           `json:"user_id"`
	Email  string           `json:"email,omitempty"`
	Type   domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// JWTCodec encodes and decodes domain claims as HS256 JWTs.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a JWTCodec.
type Option func(*JWTCodec)

// WithClock overrides the clock used to check expiry.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec returns a codec signing with secret.
func NewJWTCodec(secret string, opts ...Option) (*JWTCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	c := &JWTCodec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs the claims.
func (c *JWTCodec) Encode(in domain.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: in.SubjectID,
		Email:  in.Email,
		Type:   in.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.SubjectID,
			IssuedAt:  jwt.NewNumericDate(in.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(in.ExpiresAt),
		},
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims.
func (c *JWTCodec) Decode(raw string) (*domain.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrTokenMalformed)
	}

	parsed, err := jwt.ParseWithClaims(raw, &claims{}, c.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	cl, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claim set", domain.ErrTokenMalformed)
	}
	if err := validateShape(cl); err != nil {
		return nil, err
	}

	return &domain.Claims{
		SubjectID: cl.Subject,
		Email:     cl.Email,
		Type:      cl.Type,
		IssuedAt:  cl.IssuedAt.Time.UTC(),
		ExpiresAt: cl.ExpiresAt.Time.UTC(),
	}, nil
}

func (c *JWTCodec) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}

func validateShape(cl *claims) error {
	switch {
	case strings.TrimSpace(cl.Subject) == "":
		return fmt.Errorf("%w: subject missing", domain.ErrTokenMalformed)
	case cl.UserID != "" && cl.UserID != cl.Subject:
		return fmt.Errorf("%w: user_id does not match subject", domain.ErrTokenMalformed)
	case !cl.Type.Valid():
		return fmt.Errorf("%w: unknown token type %q", domain.ErrTokenMalformed, cl.Type)
	case cl.IssuedAt == nil:
		return fmt.Errorf("%w: issued-at missing", domain.ErrTokenMalformed)
	}
	return nil
}

// classify maps jwt errors onto the codec's three failure kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrTokenSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
