// handlers/community.go
package handlers

import (
	"stattact-service/middleware"
	"stattact-service/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCommunityRoutes needs a database; main skips it without one.
func SetupCommunityRoutes(app *fiber.App, owner fiber.Handler, community *services.CommunityService, leaderboard *services.LeaderboardService) {
	// 🔓 Public feed and standings
	app.Get("/community", community.ListCommunity)
	app.Get("/community/:id", community.GetCommunity)
	app.Get("/leaderboard", leaderboard.GetLeaderboard)

	app.Post("/community/:id/like", owner, community.LikeCommunity)

	// 🔐 Signed-in users only
	app.Post("/community", owner, middleware.RequireUser(), community.PublishCommunity)
	app.Get("/leaderboard/me", owner, middleware.RequireUser(), leaderboard.GetMyStanding)
}
