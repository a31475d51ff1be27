package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// userIDContextKey is the echo context key holding the authenticated user ID.
const userIDContextKey = "authenticated_user_id"

// Resolver turns a caller-supplied identity token into a user ID.
//
// searchd never issues or validates credentials itself; identity is an
// external collaborator. Deployments front searchd with a gateway that
// mints the tokens this resolver understands.
type Resolver interface {
	// Resolve returns the user ID for token, or an error if the token is
	// unknown or expired.
	Resolve(ctx context.Context, token string) (string, error)
}

// StaticResolver resolves tokens from a fixed token -> user ID map.
// Suitable for deployments where the upstream gateway provisions tokens
// out of band, and for tests.
type StaticResolver struct {
	tokens map[string]string
}

// NewStaticResolver creates a resolver over a token -> user ID map.
func NewStaticResolver(tokens map[string]string) *StaticResolver {
	return &StaticResolver{tokens: tokens}
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(_ context.Context, token string) (string, error) {
	userID, ok := r.tokens[token]
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unknown token")
	}
	return userID, nil
}

var _ Resolver = (*StaticResolver)(nil)

// authMiddleware resolves the bearer token to a user ID and stores it in
// the echo context for handlers. Requests without a resolvable identity
// get 401; no search endpoint runs without a user scope.
func authMiddleware(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			}

			userID, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// requestUserID returns the authenticated user ID set by authMiddleware.
func requestUserID(c echo.Context) string {
	userID, _ := c.Get(userIDContextKey).(string)
	return userID
}
