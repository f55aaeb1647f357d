package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"hookbuilder/pkg/apperr"
)

// ContextKey is the echo context key holding the signed-in schema.User.
const ContextKey = "user"

// Middleware requires a valid bearer session token whose user still passes policy.
func Middleware(tokens *Tokens, policy Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return apperr.AuthRequired("Please sign in to continue")
			}

			user, err := tokens.Parse(strings.TrimSpace(raw))
			if errors.Is(err, ErrExpiredToken) {
				return apperr.AuthRequired("Your session has expired. Please sign in again")
			}
			if err != nil {
				return apperr.AuthRequired("Please sign in to continue")
			}
			if !policy.Allowed(user) {
				return apperr.Unauthorized()
			}

			c.Set(ContextKey, user)
			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), user)))
			return next(c)
		}
	}
}
