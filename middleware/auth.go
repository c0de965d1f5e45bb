package middleware

import (
	"errors"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthCookie is the cookie the login handler sets and this middleware reads.
const AuthCookie = "private"

// localsKey is where the parsed claims live for the rest of the chain.
const localsKey = "user"

// NewJWTAuthMiddleware rejects requests without a valid signed token in the
// auth cookie and stores the parsed claims in request locals.
func NewJWTAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(AuthCookie)
		if raw == "" {
			return common.ErrorResponse(c, fiber.StatusUnauthorized, "Missing auth token cookie")
		}

		claims, err := parseClaims(raw, secret)
		if err != nil {
			return common.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired JWT")
		}

		c.Locals(localsKey, claims)
		return c.Next()
	}
}

// parseClaims verifies signature and expiry. Only HS256 is accepted, the
// algorithm the login flow signs with.
func parseClaims(raw, secret string) (*domain.JwtCustomClaims, error) {
	claims := &domain.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return claims, nil
}

// RequireRole guards a route group behind one of the given roles. It must
// run after NewJWTAuthMiddleware in the chain.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := GetClaimsFromLocals(c)
		if err != nil {
			return common.ErrorResponse(c, fiber.StatusInternalServerError, "Could not parse user claims")
		}

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}

		return common.ErrorResponse(c, fiber.StatusForbidden, "Access denied: insufficient permissions")
	}
}

// GetClaimsFromLocals returns the claims the auth middleware stored.
func GetClaimsFromLocals(c *fiber.Ctx) (*domain.JwtCustomClaims, error) {
	claims, ok := c.Locals(localsKey).(*domain.JwtCustomClaims)
	if !ok {
		return nil, errors.New("user claims not found in context")
	}

	return claims, nil
}
