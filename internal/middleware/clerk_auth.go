package middleware

import (
	"strings"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/gofiber/fiber/v3"

	"github.com/tek-wizard/spendy-api/internal/utils"
)

// ClerkAuth validates Clerk session tokens and stores the subject in
// the request context as "clerk_user_id".
func ClerkAuth(secretKey string) fiber.Handler {
	clerk.SetKey(secretKey)

	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.NewUnauthorizedError("missing authorization token")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return utils.NewUnauthorizedError("invalid authorization header format")
		}

		claims, err := jwt.Verify(c.Context(), &jwt.VerifyParams{
			Token: token,
		})
		if err != nil {
			return utils.NewUnauthorizedError("invalid or expired token")
		}

		c.Locals("clerk_user_id", claims.Subject)

		return c.Next()
	}
}
