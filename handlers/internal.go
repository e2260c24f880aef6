// handlers/internal.go
package handlers

import (
	"stattact-service/middleware"
	"stattact-service/services"
	"stattact-service/workers"

	"github.com/gofiber/fiber/v2"
)

// SetupInternalRoutes registers operator endpoints behind the service token.
// Nil dependencies leave their route out.
func SetupInternalRoutes(app *fiber.App, serviceToken string, teamSync *workers.TeamSyncWorker, leaderboard *services.LeaderboardService) {
	internal := app.Group("/internal", middleware.ServiceTokenMiddleware(serviceToken))
	if teamSync != nil {
		internal.Post("/teams/sync", teamSync.TriggerSync)
	}
	if leaderboard != nil {
		internal.Post("/leaderboard/recompute", leaderboard.RecomputeRanksHandler)
	}
}
