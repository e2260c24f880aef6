// handlers/tactics.go
package handlers

import (
	"stattact-service/services"
	"stattact-service/tactics"

	"github.com/gofiber/fiber/v2"
)

func SetupTacticsRoutes(app *fiber.App, owner, sse fiber.Handler, tacticsService *services.TacticsService, simulationService *services.SimulationService, teams *services.TeamDirectory, tracker *services.ProgressTracker) {
	// 🔓 Public catalog
	app.Get("/fetch-teams", teams.FetchTeams)
	app.Get("/formations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"formations": tactics.Formations, "default": tactics.DefaultFormation})
	})
	app.Get("/formations/:label/positions", services.GetFormationPositions)

	// 👤 Owner-scoped: signed-in user or anonymous client id
	app.Get("/generate-formation", owner, tacticsService.GenerateFormation)
	app.Post("/simulations", owner, simulationService.SimulateMatch)
	app.Get("/progress/:id", owner, tracker.GetProgress)

	// EventSource cannot send headers, identity comes from the query string
	app.Get("/progress/:id/stream", sse, tracker.StreamProgress)
}
