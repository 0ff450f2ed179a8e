package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"

	"github.com/rajivgeraev/renthub-api/internal/config"
	"github.com/rajivgeraev/renthub-api/internal/services/auth"
	"github.com/rajivgeraev/renthub-api/internal/services/comment"
	"github.com/rajivgeraev/renthub-api/internal/services/favorite"
	"github.com/rajivgeraev/renthub-api/internal/services/listing"
	"github.com/rajivgeraev/renthub-api/internal/services/upload"
	"github.com/rajivgeraev/renthub-api/internal/storage"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Открываем хранилище записей
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации хранилища: %v", err)
	}
	defer store.Close()

	// Создаём экземпляр Fiber
	// Лимит тела запроса должен быть выше лимита файла:
	// multipart-оболочка тоже занимает место, а 413 для слишком больших
	// файлов отдаёт сам обработчик загрузки
	app := fiber.New(fiber.Config{
		AppName:      "RentHub API",
		ErrorHandler: errorHandler,
		BodyLimit:    int(cfg.MaxUploadSize) + 1<<20,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Раздаём загруженные изображения
	app.Get("/uploads/*", static.New(cfg.UploadDir))

	// Создаём сервисы
	authService := auth.NewAuthService(store)
	listingService := listing.NewListingService(store)
	favoriteService := favorite.NewFavoriteService(store)
	commentService := comment.NewCommentService(store)

	uploadService, err := upload.NewUploadService(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации сервиса загрузки: %v", err)
	}

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	listingService.SetupRoutes(app)
	favoriteService.SetupRoutes(app)
	commentService.SetupRoutes(app)
	uploadService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ RentHub API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// openStore выбирает бэкенд хранилища по конфигурации
func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == "postgres" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Printf("Подключение к базе данных: %s", cfg.DatabaseURL)
		return storage.OpenPostgres(ctx, cfg.DatabaseURL)
	}

	log.Printf("Используем файловое хранилище: %s", cfg.DBFile)
	return storage.OpenJSON(cfg.DBFile)
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
