package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// Ошибки хранилища. Сервисы транслируют их в HTTP-статусы на границе
var (
	ErrNotFound  = errors.New("запись не найдена")
	ErrDuplicate = errors.New("запись уже существует")
	ErrInvalid   = errors.New("некорректная запись")
)

// FavoriteFilter задаёт фильтр по равенству полей для коллекции избранного.
// Нулевое значение поля означает «любое»
type FavoriteFilter struct {
	UserID    int
	ListingID int
}

// Store — контракт хранилища записей. Единый документ с коллекциями
// users, listings, favorites, comments; целочисленные id назначаются
// как max(существующих)+1, либо 1 для пустой коллекции.
//
// Две реализации: JSONStore (файл db.json, запись всего документа
// целиком под единственным писателем) и PostgresStore (pgx)
type Store interface {
	Users(ctx context.Context) ([]models.User, error)
	UserByID(ctx context.Context, id int) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u models.User) (*models.User, error)

	Listings(ctx context.Context) ([]models.Listing, error)
	ListingByID(ctx context.Context, id int) (*models.Listing, error)
	InsertListing(ctx context.Context, l models.Listing) (*models.Listing, error)

	Favorites(ctx context.Context, f FavoriteFilter) ([]models.Favorite, error)
	// InsertFavorite идемпотентна: для уже существующей пары
	// (userId, listingId) возвращается существующая запись и created=false
	InsertFavorite(ctx context.Context, f models.Favorite) (fav *models.Favorite, created bool, err error)
	DeleteFavorite(ctx context.Context, id int) error
	// ToggleFavorite атомарно добавляет либо удаляет запись по уникальному
	// ключу (userId, listingId) и возвращает итоговое состояние
	ToggleFavorite(ctx context.Context, userID, listingID int) (favorited bool, err error)

	// Comments возвращает комментарии объявления; listingID == 0 — все
	Comments(ctx context.Context, listingID int) ([]models.Comment, error)
	InsertComment(ctx context.Context, cm models.Comment) (*models.Comment, error)

	Close()
}

// Валидация записей на границе хранилища

func validateUser(u models.User) error {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" || strings.TrimSpace(u.Name) == "" {
		return ErrInvalid
	}
	return nil
}

func validateListing(l models.Listing) error {
	if strings.TrimSpace(l.Title) == "" || l.Price <= 0 || l.HostID <= 0 {
		return ErrInvalid
	}
	return nil
}

func validateFavorite(f models.Favorite) error {
	if f.UserID <= 0 || f.ListingID <= 0 {
		return ErrInvalid
	}
	return nil
}

func validateComment(cm models.Comment) error {
	if cm.ListingID <= 0 || cm.UserID <= 0 || strings.TrimSpace(cm.Text) == "" {
		return ErrInvalid
	}
	return nil
}
