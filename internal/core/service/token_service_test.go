package service

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/infrastructure/token"
)

const testSecret = "unit-test-secret-of-sufficient-length"

func newTokenService(t *testing.T) (*TokenService, *token.JWTCodec) {
	t.Helper()
	codec, err := token.NewJWTCodec(testSecret)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return NewTokenService(codec, 0, 0, zerolog.Nop()), codec
}

func TestTokenService_IssueThenVerify(t *testing.T) {
	svc, _ := newTokenService(t)

	for _, subject := range []string{"u1", "demo-user-123", "7f1c2a9e-4c1b-4ad4-9b1e-2f51f3f0a6d1"} {
		pair, err := svc.IssuePair(subject, subject+"@example.com")
		if err != nil {
			t.Fatalf("IssuePair(%q): %v", subject, err)
		}
		got, err := svc.VerifyAccess(pair.AccessToken)
		if err != nil {
			t.Fatalf("VerifyAccess(%q): %v", subject, err)
		}
		if got != subject {
			t.Fatalf("expected subject %q, got %q", subject, got)
		}
	}
}

func TestTokenService_PairHasDistinctTypesAndExpiries(t *testing.T) {
	svc, codec := newTokenService(t)

	pair, err := svc.IssuePair("u1", "u1@example.com")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	access, err := codec.Decode(pair.AccessToken)
	if err != nil {
		t.Fatalf("decode access: %v", err)
	}
	refresh, err := codec.Decode(pair.RefreshToken)
	if err != nil {
		t.Fatalf("decode refresh: %v", err)
	}

	if access.Type != domain.TokenTypeAccess || refresh.Type != domain.TokenTypeRefresh {
		t.Fatalf("unexpected types: %s / %s", access.Type, refresh.Type)
	}
	if got := access.ExpiresAt.Sub(access.IssuedAt); got != 15*time.Minute {
		t.Fatalf("access lifetime = %v, want 15m", got)
	}
	if got := refresh.ExpiresAt.Sub(refresh.IssuedAt); got != 7*24*time.Hour {
		t.Fatalf("refresh lifetime = %v, want 168h", got)
	}
}

func TestTokenService_IssuePairRequiresSubject(t *testing.T) {
	svc, _ := newTokenService(t)
	if _, err := svc.IssuePair("  ", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTokenService_VerifyAccessRejectsRefreshToken(t *testing.T) {
	svc, _ := newTokenService(t)
	pair, _ := svc.IssuePair("u1", "")

	_, err := svc.VerifyAccess(pair.RefreshToken)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenTypeMismatch) {
		t.Fatalf("expected internal cause ErrTokenTypeMismatch, got %v", err)
	}
}

func TestTokenService_RefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTokenService(t)
	pair, _ := svc.IssuePair("u1", "")

	if _, err := svc.Refresh(pair.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTokenService_VerifyAccessRejectsExpired(t *testing.T) {
	svc, _ := newTokenService(t)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := svc.IssuePair("u1", "")
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	_, err = svc.VerifyAccess(pair.AccessToken)
	if !errors.Is(err, domain.ErrUnauthorized) || !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected unauthorized/expired, got %v", err)
	}
}

func TestTokenService_VerifyAccessRejectsGarbage(t *testing.T) {
	svc, _ := newTokenService(t)
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := svc.VerifyAccess(raw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("VerifyAccess(%q): expected ErrUnauthorized, got %v", raw, err)
		}
	}
}

func TestTokenService_VerifyAccessRejectsOtherSecret(t *testing.T) {
	svc, _ := newTokenService(t)
	otherCodec, _ := token.NewJWTCodec("a-completely-different-signing-secret")
	other := NewTokenService(otherCodec, 0, 0, zerolog.Nop())

	pair, _ := other.IssuePair("u1", "")
	_, err := svc.VerifyAccess(pair.AccessToken)
	if !errors.Is(err, domain.ErrUnauthorized) || !errors.Is(err, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected unauthorized/signature invalid, got %v", err)
	}
}

func TestTokenService_Refresh(t *testing.T) {
	svc, codec := newTokenService(t)
	pair, _ := svc.IssuePair("u1", "u1@example.com")

	access, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	subject, err := svc.VerifyAccess(access.Token)
	if err != nil {
		t.Fatalf("refreshed token does not verify: %v", err)
	}
	if subject != "u1" {
		t.Fatalf("expected subject u1, got %q", subject)
	}

	claims, _ := codec.Decode(access.Token)
	if claims.Email != "u1@example.com" {
		t.Fatalf("email not carried over: %q", claims.Email)
	}
}

func TestTokenService_RefreshTokenIsReusable(t *testing.T) {
	svc, _ := newTokenService(t)
	pair, _ := svc.IssuePair("u1", "")

	for i := 0; i < 3; i++ {
		if _, err := svc.Refresh(pair.RefreshToken); err != nil {
			t.Fatalf("refresh #%d: %v", i+1, err)
		}
	}
}

func TestTokenService_RefreshRejectsExpired(t *testing.T) {
	svc, _ := newTokenService(t)
	svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	pair, _ := svc.IssuePair("u1", "")
	svc.now = time.Now

	if _, err := svc.Refresh(pair.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNewTokenService_CustomTTL(t *testing.T) {
	codec, _ := token.NewJWTCodec(testSecret)
	svc := NewTokenService(codec, time.Minute, time.Hour, zerolog.Nop())

	if svc.AccessTTL() != time.Minute {
		t.Fatalf("expected 1m access TTL, got %v", svc.AccessTTL())
	}
	pair, _ := svc.IssuePair("u1", "")
	if d := pair.RefreshExpiresAt.Sub(pair.AccessExpiresAt); d != 59*time.Minute {
		t.Fatalf("unexpected expiry gap %v", d)
	}
}
