package listing

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/models"
	"github.com/rajivgeraev/renthub-api/internal/storage"
)

// ListingService представляет сервис для работы с объявлениями
type ListingService struct {
	store storage.Store
}

// NewListingService создает новый экземпляр ListingService
func NewListingService(store storage.Store) *ListingService {
	return &ListingService{store: store}
}

// GetListings возвращает все объявления.
// Фильтрация, сортировка и пагинация выполняются на клиенте
func (s *ListingService) GetListings(c fiber.Ctx) error {
	listings, err := s.store.Listings(c.Context())
	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}
	return c.JSON(listings)
}

// GetListing возвращает одно объявление по ID
func (s *ListingService) GetListing(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	listing, err := s.store.ListingByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}
	return c.JSON(listing)
}

// CreateListing обрабатывает создание нового объявления
func (s *ListingService) CreateListing(c fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	var requestData struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Location    string   `json:"location"`
		State       string   `json:"state"`
		Pincode     string   `json:"pincode"`
		Price       float64  `json:"price"`
		Type        string   `json:"type"`
		Furnished   bool     `json:"furnished"`
		Amenities   []string `json:"amenities"`
		Image       string   `json:"image"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Валидация обязательных полей
	if strings.TrimSpace(requestData.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
	}
	if strings.TrimSpace(requestData.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Описание обязательно"})
	}
	if strings.TrimSpace(requestData.Location) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Адрес обязателен"})
	}
	if requestData.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Цена должна быть больше нуля"})
	}

	// Город, штат и индекс могут прийти отдельными полями —
	// склеиваем их в одну строку адреса, как это делала форма создания
	location := requestData.Location
	if requestData.State != "" {
		location = fmt.Sprintf("%s, %s - %s", requestData.Location, requestData.State, requestData.Pincode)
	}

	now := time.Now().UTC()
	listing, err := s.store.InsertListing(c.Context(), models.Listing{
		Title:       requestData.Title,
		Description: requestData.Description,
		Location:    location,
		Price:       requestData.Price,
		Type:        requestData.Type,
		Furnished:   requestData.Furnished,
		Amenities:   requestData.Amenities,
		Image:       requestData.Image,
		HostID:      userID,
		CreatedAt:   &now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Некорректные данные объявления"})
		}
		log.Printf("Ошибка вставки объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения объявления"})
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}
