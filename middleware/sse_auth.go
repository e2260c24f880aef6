// middleware/sse_auth.go
package middleware

import (
	"strings"

	"stattact-service/services"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware resolves the owner from `token` or `client_id` query
// params, since EventSource cannot set headers.
//
// Usage:
//
//	app.Get("/progress/:id/stream", middleware.SSEAuthMiddleware(supabase), tracker.StreamProgress)
func SSEAuthMiddleware(users services.UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		args := c.Request().URI().QueryArgs()
		token := strings.TrimSpace(string(args.Peek("token")))
		clientID := strings.TrimSpace(string(args.Peek("client_id")))
		return attachOwner(c, users, token, clientID)
	}
}
