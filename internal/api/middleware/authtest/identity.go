// Package authtest provides a fixed identity for handler tests. It must not
// be imported outside _test.go files.
package authtest

import (
	"github.com/labstack/echo/v4"

	"github.com/tasknest/todo-api/internal/api/middleware"
)

// StaticIdentity authenticates every request as subject.
func StaticIdentity(subject string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.SubjectKey, subject)
			return next(c)
		}
	}
}
