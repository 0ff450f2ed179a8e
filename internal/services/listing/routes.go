package listing

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *ListingService) SetupRoutes(app *fiber.App) {
	// Публичные маршруты
	app.Get("/listings", s.GetListings)
	app.Get("/listings/:id", s.GetListing)

	// Создание объявления требует авторизации: hostId берётся из токена
	app.Post("/listings", s.CreateListing, middleware.AuthMiddleware())
}
