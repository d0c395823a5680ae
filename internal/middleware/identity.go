package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-submit-api/internal/auth"
	"github.com/noah-isme/gema-submit-api/internal/utils"
)

// TokenParser verifies a bearer token and returns the caller it names.
type TokenParser interface {
	Parse(raw string) (auth.Actor, error)
}

// Identity resolves the optional bearer token into an auth.Actor bound to the
// request context. Requests without an Authorization header pass through
// anonymously; whether that is acceptable is decided by the service policy.
func Identity(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if parser == nil {
			return c.Next()
		}

		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return c.Next()
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		actor, err := parser.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", actor.ID)
		c.Locals("user_role", string(actor.Role))
		c.SetUserContext(auth.WithActor(c.UserContext(), actor))

		return c.Next()
	}
}
