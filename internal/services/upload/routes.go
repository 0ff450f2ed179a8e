package upload

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты загрузки
func (s *UploadService) SetupRoutes(app *fiber.App) {
	app.Post("/upload", s.UploadHandler)
}
