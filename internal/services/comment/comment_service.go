package comment

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/models"
	"github.com/rajivgeraev/renthub-api/internal/storage"
)

// CommentService представляет сервис для работы с комментариями
type CommentService struct {
	store storage.Store
}

// NewCommentService создает новый экземпляр CommentService
func NewCommentService(store storage.Store) *CommentService {
	return &CommentService{store: store}
}

// GetComments возвращает комментарии: /comments?listingId=
func (s *CommentService) GetComments(c fiber.Ctx) error {
	listingID := 0
	if v := c.Query("listingId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат listingId"})
		}
		listingID = id
	}

	comments, err := s.store.Comments(c.Context(), listingID)
	if err != nil {
		log.Printf("Ошибка запроса комментариев: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения комментариев"})
	}
	return c.JSON(comments)
}

// CreateComment добавляет комментарий к объявлению.
// Автор определяется по токену, его имя денормализуется в запись
func (s *CommentService) CreateComment(c fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	var requestData struct {
		ListingID int    `json:"listingId"`
		Text      string `json:"text"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.ListingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID объявления не указан"})
	}
	if strings.TrimSpace(requestData.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст комментария обязателен"})
	}

	// Проверяем, что объявление существует
	if _, err := s.store.ListingByID(c.Context(), requestData.ListingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	user, err := s.store.UserByID(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка поиска пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	cm, err := s.store.InsertComment(c.Context(), models.Comment{
		ListingID: requestData.ListingID,
		UserID:    userID,
		UserName:  user.Name,
		Text:      requestData.Text,
		CreatedAt: time.Now().UTC(),
		Replies:   []models.Comment{},
	})
	if err != nil {
		log.Printf("Ошибка при создании комментария: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения комментария"})
	}

	return c.Status(fiber.StatusCreated).JSON(cm)
}
