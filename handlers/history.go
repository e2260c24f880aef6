// handlers/history.go
package handlers

import (
	"stattact-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupHistoryRoutes(app *fiber.App, owner fiber.Handler, history *services.HistoryService, share *services.ShareService) {
	ws := app.Group("/workspace", owner)
	ws.Get("/", history.GetWorkspace)
	ws.Patch("/", history.PatchWorkspace)
	ws.Put("/positions/:label", history.MovePlayerHandler)
	ws.Get("/layout", history.GetLayout)

	hist := app.Group("/history", owner)
	hist.Get("/", history.GetHistory)
	hist.Delete("/", history.DeleteHistory)
	hist.Post("/:id/load", history.LoadHistoryHandler)

	saved := app.Group("/saved", owner)
	saved.Get("/", history.GetSaved)
	saved.Post("/", history.SaveCurrentHandler)
	saved.Post("/:id/load", history.LoadSavedHandler)
	saved.Delete("/:id", history.DeleteSavedHandler)

	app.Post("/share", owner, share.ShareAnalysis)
}
