package favorite

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API избранного
func (s *FavoriteService) SetupRoutes(app *fiber.App) {
	// Generic CRUD поверх коллекции favorites
	app.Get("/favorites", s.GetFavorites)
	app.Post("/favorites", s.AddFavorite)
	app.Delete("/favorites/:id", s.DeleteFavorite)

	// Атомарное переключение; userId берётся из токена
	app.Post("/favorites/toggle", s.ToggleFavorite, middleware.AuthMiddleware())
}
