package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prasetyadi/edu_registration/handlers"
	"github.com/prasetyadi/edu_registration/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/programs", handlers.CreateProgram)
	admin.Put("/programs/:programId", handlers.UpdateProgram)
	admin.Get("/payments", handlers.AdminGetPayments)
}
