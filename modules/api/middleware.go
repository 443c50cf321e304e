package api

import (
	"strings"

	"github.com/example/devtracker/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is where the middleware stores the verified claims in
// the Fiber context.
const UserContextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token before
// any task logic runs. Missing credentials and bad credentials both
// answer 401; the message tells them apart.
func AuthMiddleware(guard auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(
				failureResponse("Authorization header is required"))
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(
				failureResponse("Expected a bearer token"))
		}

		claims, err := guard.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(
				failureResponse("Invalid or expired token"))
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}
