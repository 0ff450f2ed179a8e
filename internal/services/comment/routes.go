package comment

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API комментариев
func (s *CommentService) SetupRoutes(app *fiber.App) {
	app.Get("/comments", s.GetComments)
	app.Post("/comments", s.CreateComment, middleware.AuthMiddleware())
}
