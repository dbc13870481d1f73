package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newAuthService(t *testing.T) (*AuthService, *stubUserRepo, *TokenService) {
	t.Helper()
	tokens, _ := newTokenService(t)
	repo := newStubUserRepo()
	svc := NewAuthService(repo, tokens, zerolog.Nop())
	svc.SetHashCost(bcrypt.MinCost)
	return svc, repo, tokens
}

func TestAuthService_SignUp_Success(t *testing.T) {
	svc, repo, tokens := newAuthService(t)

	result, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Email:    "  Alice@Example.com ",
		Username: "alice",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}

	stored := repo.users["alice@example.com"]
	if stored == nil || stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	subject, err := tokens.VerifyAccess(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not verify: %v", err)
	}
	if subject != result.User.ID {
		t.Fatalf("expected subject %q, got %q", result.User.ID, subject)
	}
	if _, err := tokens.Refresh(result.Tokens.RefreshToken); err != nil {
		t.Fatalf("issued refresh token rejected: %v", err)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc, _, _ := newAuthService(t)

	cases := []ports.SignUpInput{
		{Email: "", Password: "pass"},
		{Email: "bob@example.com", Password: ""},
		{Email: "   ", Password: "pass"},
	}
	for _, in := range cases {
		if _, err := svc.SignUp(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("SignUp(%+v): expected ErrValidation, got %v", in, err)
		}
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, _ = svc.SignUp(context.Background(), ports.SignUpInput{Email: "bob@example.com", Password: "pass"})
	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "BOB@example.com", Password: "pass2"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	svc, _, tokens := newAuthService(t)

	if _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "carol@example.com", Username: "carol", Password: "s3cret"}); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	result, err := svc.SignIn(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if result.User == nil || result.User.Username != "carol" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if _, err := tokens.VerifyAccess(result.Tokens.AccessToken); err != nil {
		t.Fatalf("token invalid: %v", err)
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, _ = svc.SignUp(context.Background(), ports.SignUpInput{Email: "dave@example.com", Password: "goodpass"})
	if _, err := svc.SignIn(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)

	if _, err := svc.SignIn(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newAuthService(t)

	result, _ := svc.SignUp(context.Background(), ports.SignUpInput{Email: "erin@example.com", Password: "pw"})

	user, err := svc.Me(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.Email != "erin@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Me(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
