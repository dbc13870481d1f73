package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/todo-api/internal/core/domain"
)

type stubVerifier struct {
	subject string
	err     error
	got     string
}

func (s *stubVerifier) VerifyAccess(token string) (string, error) {
	s.got = token
	return s.subject, s.err
}

func runAuth(t *testing.T, verifier *stubVerifier, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		if c.Get(SubjectKey) != verifier.subject {
			t.Fatalf("subject not set, got %v", c.Get(SubjectKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{subject: "u1"}
	rec, called := runAuth(t, verifier, "Bearer abc.def.ghi")

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if verifier.got != "abc.def.ghi" {
		t.Fatalf("verifier got %q", verifier.got)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	_, called := runAuth(t, &stubVerifier{subject: "u1"}, "bearer tok")
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
	}{
		{name: "missing header", header: "", verifier: &stubVerifier{subject: "u1"}},
		{name: "wrong scheme", header: "Token abc", verifier: &stubVerifier{subject: "u1"}},
		{name: "empty token", header: "Bearer ", verifier: &stubVerifier{subject: "u1"}},
		{name: "expired", header: "Bearer tok", verifier: &stubVerifier{err: errors.Join(domain.ErrUnauthorized, domain.ErrTokenExpired)}},
		{name: "wrong type", header: "Bearer tok", verifier: &stubVerifier{err: errors.Join(domain.ErrUnauthorized, domain.ErrTokenTypeMismatch)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runAuth(t, tt.verifier, tt.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
