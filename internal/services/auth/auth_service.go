package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/renthub-api/internal/models"
	"github.com/rajivgeraev/renthub-api/internal/storage"
	"github.com/rajivgeraev/renthub-api/internal/utils"
)

// AuthService – структура для обработки регистрации и входа
type AuthService struct {
	store storage.Store
}

// NewAuthService – конструктор AuthService
func NewAuthService(store storage.Store) *AuthService {
	return &AuthService{store: store}
}

// authResponse — ответ на успешный вход или регистрацию
type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

// RegisterHandler регистрирует нового пользователя
func (s *AuthService) RegisterHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if payload.Email == "" || payload.Password == "" || payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Все поля обязательны"})
	}

	if len(payload.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Пароль должен быть не короче 6 символов"})
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	user, err := s.store.InsertUser(c.Context(), models.User{
		Email:    payload.Email,
		Password: hash,
		Name:     payload.Name,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Пользователь уже существует"})
		}
		log.Printf("Ошибка при создании пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{
		AccessToken: utils.GenerateAccessToken(user.ID),
		User:        user.WithoutPassword(),
	})
}

// LoginHandler проверяет учётные данные и выдаёт токен доступа
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email и пароль обязательны"})
	}

	user, err := s.store.UserByEmail(c.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный email или пароль"})
		}
		log.Printf("Ошибка поиска пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	if !utils.CheckPassword(user.Password, payload.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный email или пароль"})
	}

	return c.JSON(authResponse{
		AccessToken: utils.GenerateAccessToken(user.ID),
		User:        user.WithoutPassword(),
	})
}
