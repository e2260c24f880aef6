// handlers/account.go
package handlers

import (
	"stattact-service/middleware"
	"stattact-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAccountRoutes(app *fiber.App, owner, optionalUser fiber.Handler, auth *services.AuthService, billing *services.BillingService) {
	if auth != nil {
		app.Post("/auth/signup", auth.SignUp)
		app.Post("/auth/signin", auth.SignIn)
		app.Get("/auth/me", owner, middleware.RequireUser(), auth.Me)
	}

	app.Get("/billing/plans", billing.GetPlans)
	// The handler answers 401 "Not authenticated" itself for anonymous callers.
	app.Post("/billing/checkout-session", optionalUser, billing.CreateCheckoutSession)
}
