package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prasetyadi/edu_registration/handlers"
	"github.com/prasetyadi/edu_registration/middleware"
)

func RegistrationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public: prospective students register themselves and browse
	// programs without an account.
	api.Post("/registrations", handlers.CreateRegistration)
	api.Get("/programs", handlers.ListPrograms)

	registrations := api.Group("/registrations", middleware.Protected(), middleware.StaffRequired())
	registrations.Get("", handlers.ListRegistrations)
	registrations.Get("/:registrationId", handlers.GetRegistration)
}
