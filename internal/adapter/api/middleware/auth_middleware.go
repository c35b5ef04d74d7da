package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"citywatch/internal/infrastructure/auth"
)

type AuthMiddleware struct {
	tokens *auth.TokenService
}

func NewAuthMiddleware(tokens *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// Authenticate requires a valid bearer token and stores the caller's identity
// on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.identityFromHeader(c)
		if err != nil {
			return err
		}

		setIdentity(c, identity)
		return next(c)
	}
}

// OptionalAuthenticate attributes the request when a valid token is present
// and continues anonymously otherwise. Report creation uses this: submitting
// does not require an account.
func (m *AuthMiddleware) OptionalAuthenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if identity, err := m.identityFromHeader(c); err == nil {
			setIdentity(c, identity)
		}
		return next(c)
	}
}

func (m *AuthMiddleware) identityFromHeader(c echo.Context) (*auth.Identity, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
	}

	identity, err := m.tokens.Verify(parts[1])
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	return identity, nil
}

func setIdentity(c echo.Context, identity *auth.Identity) {
	c.Set("uid", identity.UserID)
	c.Set("email", identity.Email)
	c.Set("role", identity.Role)
}
