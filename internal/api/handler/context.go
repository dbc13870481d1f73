package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/todo-api/internal/api/middleware"
	"github.com/tasknest/todo-api/internal/core/ports"
)

// ctxSubject returns the user id placed in the context by the auth
// middleware. An empty value means the route was mounted without it.
func ctxSubject(c echo.Context) (string, error) {
	subject, _ := c.Get(middleware.SubjectKey).(string)
	if subject == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return subject, nil
}

// ctxScope builds the scope for owner-implicit routes: the caller acts on
// their own tasks.
func ctxScope(c echo.Context) (ports.Scope, error) {
	subject, err := ctxSubject(c)
	if err != nil {
		return ports.Scope{}, err
	}
	return ports.SelfScope(subject), nil
}
