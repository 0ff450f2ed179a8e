package upload

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/config"
)

// Допускаются только распространённые растровые форматы. Проверяются
// и расширение файла, и заявленный content type — оба должны пройти
var (
	allowedExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
	allowedContentTypes = map[string]bool{
		"image/jpeg": true, "image/jpg": true, "image/png": true,
		"image/gif": true, "image/webp": true,
	}
)

// UploadService представляет сервис загрузки изображений.
// По умолчанию файлы сохраняются на диск и раздаются из /uploads;
// при UPLOAD_DRIVER=cloudinary изображения уходят в Cloudinary
type UploadService struct {
	cfg *config.Config
	cld *cloudinaryBackend // nil для локального хранилища
}

// NewUploadService создает новый экземпляр UploadService
func NewUploadService(cfg *config.Config) (*UploadService, error) {
	s := &UploadService{cfg: cfg}

	if cfg.UploadDriver == "cloudinary" {
		cld, err := newCloudinaryBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации Cloudinary: %w", err)
		}
		s.cld = cld
	}
	return s, nil
}

// UploadHandler принимает один файл в multipart-поле "image"
func (s *UploadService) UploadHandler(c fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Файл не загружен"})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if !allowedExtensions[ext] || !allowedContentTypes[contentType] {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Допускаются только изображения (jpeg, jpg, png, gif, webp)",
		})
	}

	if fh.Size > s.cfg.MaxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Файл больше 5MB",
		})
	}

	if s.cld != nil {
		url, filename, err := s.cld.upload(fh)
		if err != nil {
			log.Printf("Ошибка загрузки в Cloudinary: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка загрузки файла"})
		}
		return c.JSON(fiber.Map{
			"message":  "Файл успешно загружен",
			"url":      url,
			"filename": filename,
		})
	}

	// Имя файла: текущее время + случайный суффикс + исходное расширение
	filename := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), ext)

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		log.Printf("Ошибка создания каталога загрузок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения файла"})
	}
	if err := c.SaveFile(fh, filepath.Join(s.cfg.UploadDir, filename)); err != nil {
		log.Printf("Ошибка сохранения файла: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения файла"})
	}

	return c.JSON(fiber.Map{
		"message":  "Файл успешно загружен",
		"url":      s.cfg.PublicBaseURL + "/uploads/" + filename,
		"filename": filename,
	})
}
