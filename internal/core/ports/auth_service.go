package ports

import (
	"context"

	"github.com/tasknest/todo-api/internal/core/domain"
)

// SignUpInput carries the registration form.
type SignUpInput struct {
	Email    string
	Username string
	Password string
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Tokens domain.TokenPair
	User   *domain.User
}

// AuthService handles account registration and credential exchange.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
