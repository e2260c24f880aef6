// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"stattact-service/services"

	"github.com/gofiber/fiber/v2"
)

// ClientIDHeader identifies an anonymous browser when no user is signed in.
const ClientIDHeader = "X-Client-ID"

// OwnerContextMiddleware resolves who owns the request's state. A bearer
// token must belong to a Supabase user; otherwise the X-Client-ID header
// names an anonymous owner. Requests with neither are rejected.
func OwnerContextMiddleware(users services.UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		return attachOwner(c, users, token, c.Get(ClientIDHeader))
	}
}

// UserContextMiddleware attaches the Supabase user when a valid bearer token
// is present and lets anonymous requests through untouched.
func UserContextMiddleware(users services.UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}
		return attachOwner(c, users, token, "")
	}
}

// RequireUser rejects anonymous owners.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if uid, _ := c.Locals(services.LocalUserID).(string); uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}
		return c.Next()
	}
}

func attachOwner(c *fiber.Ctx, users services.UserResolver, token, clientID string) error {
	if token != "" {
		if users == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication is not configured"})
		}
		user, err := users.GetUser(c.UserContext(), token)
		if err != nil {
			log.Printf("❌ [OWNER_CTX] Token rejected on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		c.Locals(services.LocalUserID, user.ID)
		c.Locals(services.LocalUserEmail, user.Email)
		c.Locals(services.LocalOwnerID, user.ID)
		return c.Next()
	}

	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing Authorization bearer token or X-Client-ID",
		})
	}
	if len(clientID) > 128 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-Client-ID is too long"})
	}
	c.Locals(services.LocalOwnerID, "anon:"+clientID)
	return c.Next()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
