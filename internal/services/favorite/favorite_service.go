package favorite

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/models"
	"github.com/rajivgeraev/renthub-api/internal/storage"
)

// FavoriteService представляет сервис для работы с избранными объявлениями
type FavoriteService struct {
	store storage.Store
}

// NewFavoriteService создает новый экземпляр FavoriteService
func NewFavoriteService(store storage.Store) *FavoriteService {
	return &FavoriteService{store: store}
}

// GetFavorites возвращает записи избранного с фильтром по равенству полей:
// /favorites?userId=&listingId=
func (s *FavoriteService) GetFavorites(c fiber.Ctx) error {
	var filter storage.FavoriteFilter

	if v := c.Query("userId"); v != "" {
		userID, err := strconv.Atoi(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат userId"})
		}
		filter.UserID = userID
	}
	if v := c.Query("listingId"); v != "" {
		listingID, err := strconv.Atoi(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат listingId"})
		}
		filter.ListingID = listingID
	}

	favorites, err := s.store.Favorites(c.Context(), filter)
	if err != nil {
		log.Printf("Ошибка запроса избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения избранного"})
	}
	return c.JSON(favorites)
}

// AddFavorite добавляет объявление в избранное. Операция идемпотентна:
// повторная вставка той же пары (userId, listingId) возвращает
// существующую запись, дубликат не создаётся
func (s *FavoriteService) AddFavorite(c fiber.Ctx) error {
	var requestData struct {
		UserID    int `json:"userId"`
		ListingID int `json:"listingId"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	fav, created, err := s.store.InsertFavorite(c.Context(), models.Favorite{
		UserID:    requestData.UserID,
		ListingID: requestData.ListingID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId и listingId обязательны"})
		}
		log.Printf("Ошибка добавления в избранное: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка добавления в избранное"})
	}

	status := fiber.StatusCreated
	if !created {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fav)
}

// DeleteFavorite удаляет запись избранного по её ID
func (s *FavoriteService) DeleteFavorite(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID записи"})
	}

	if err := s.store.DeleteFavorite(c.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Запись не найдена"})
		}
		log.Printf("Ошибка удаления из избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления из избранного"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ToggleFavorite атомарно переключает избранное по уникальному ключу
// (userId, listingId). Одна операция вместо пары «найти запись — удалить»,
// поэтому быстрые повторные переключения не гонятся друг с другом
func (s *FavoriteService) ToggleFavorite(c fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	var requestData struct {
		ListingID int `json:"listingId"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.ListingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID объявления не указан"})
	}

	favorited, err := s.store.ToggleFavorite(c.Context(), userID, requestData.ListingID)
	if err != nil {
		log.Printf("Ошибка переключения избранного: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка переключения избранного"})
	}

	return c.JSON(fiber.Map{
		"favorited": favorited,
		"listingId": requestData.ListingID,
	})
}
