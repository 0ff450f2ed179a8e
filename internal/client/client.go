// Package client — типизированный клиент RentHub API: обёртки над HTTP,
// клиентское состояние сеанса (вход, избранное) с подпиской на изменения
// и конвейер просмотра каталога (поиск, сортировка, пагинация)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// Client выполняет типизированные запросы к RentHub API.
// У HTTP-клиента явный таймаут: зависший сервер не должен
// навсегда блокировать вызов
type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиент для указанного адреса сервера
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError — ошибка, возвращённая сервером
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: статус %d: %s", e.StatusCode, e.Message)
}

// AuthResponse — ответ сервера на вход или регистрацию
type AuthResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

// CreateListingRequest — данные формы создания объявления
type CreateListingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	State       string   `json:"state,omitempty"`
	Pincode     string   `json:"pincode,omitempty"`
	Price       float64  `json:"price"`
	Type        string   `json:"type"`
	Furnished   bool     `json:"furnished"`
	Amenities   []string `json:"amenities"`
	Image       string   `json:"image"`
}

// doJSON выполняет запрос и декодирует JSON-ответ в out (если out != nil)
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("ошибка разбора ответа: %w", err)
		}
	}
	return nil
}

// Login выполняет вход
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var resp AuthResponse
	payload := map[string]string{"email": email, "password": password, "name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/register", "", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Listings возвращает все объявления
func (c *Client) Listings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := c.doJSON(ctx, http.MethodGet, "/listings", "", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listing возвращает объявление по ID
func (c *Client) Listing(ctx context.Context, id int) (*models.Listing, error) {
	var listing models.Listing
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/listings/%d", id), "", nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateListing создаёт объявление от имени владельца токена
func (c *Client) CreateListing(ctx context.Context, token string, req CreateListingRequest) (*models.Listing, error) {
	var listing models.Listing
	if err := c.doJSON(ctx, http.MethodPost, "/listings", token, req, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// FavoritesByUser возвращает записи избранного пользователя
func (c *Client) FavoritesByUser(ctx context.Context, userID int) ([]models.Favorite, error) {
	var favorites []models.Favorite
	path := fmt.Sprintf("/favorites?userId=%d", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// ToggleFavorite атомарно переключает избранное и возвращает итоговое состояние
func (c *Client) ToggleFavorite(ctx context.Context, token string, listingID int) (favorited bool, err error) {
	var resp struct {
		Favorited bool `json:"favorited"`
		ListingID int  `json:"listingId"`
	}
	payload := map[string]int{"listingId": listingID}
	if err := c.doJSON(ctx, http.MethodPost, "/favorites/toggle", token, payload, &resp); err != nil {
		return false, err
	}
	return resp.Favorited, nil
}

// Comments возвращает комментарии объявления
func (c *Client) Comments(ctx context.Context, listingID int) ([]models.Comment, error) {
	var comments []models.Comment
	path := fmt.Sprintf("/comments?listingId=%d", listingID)
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// PostComment добавляет комментарий от имени владельца токена
func (c *Client) PostComment(ctx context.Context, token string, listingID int, text string) (*models.Comment, error) {
	var cm models.Comment
	payload := map[string]any{"listingId": listingID, "text": text}
	if err := c.doJSON(ctx, http.MethodPost, "/comments", token, payload, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}
