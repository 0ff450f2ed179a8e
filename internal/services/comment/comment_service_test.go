package comment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/renthub-api/internal/models"
	"github.com/rajivgeraev/renthub-api/internal/storage"
	"github.com/rajivgeraev/renthub-api/internal/utils"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.JSONStore) {
	t.Helper()

	store, err := storage.OpenJSON(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	app := fiber.New()
	NewCommentService(store).SetupRoutes(app)
	return app, store
}

func seedData(t *testing.T, store *storage.JSONStore) (*models.User, *models.Listing) {
	t.Helper()
	ctx := context.Background()

	user, err := store.InsertUser(ctx, models.User{
		Email:    "anna@example.com",
		Password: "secret123",
		Name:     "Анна",
	})
	require.NoError(t, err)

	listing, err := store.InsertListing(ctx, models.Listing{
		Title:  "Квартира",
		Price:  1200,
		HostID: user.ID,
	})
	require.NoError(t, err)

	return user, listing
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return resp
}

func TestCreateComment(t *testing.T) {
	app, store := newTestApp(t)
	user, listing := seedData(t, store)
	token := utils.GenerateAccessToken(user.ID)

	resp := doRequest(t, app, http.MethodPost, "/comments", token, fiber.Map{
		"listingId": listing.ID,
		"text":      "Отличное место",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var cm models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cm))

	assert.Equal(t, 1, cm.ID)
	assert.Equal(t, user.ID, cm.UserID)
	// Имя автора денормализуется в запись
	assert.Equal(t, "Анна", cm.UserName)
	assert.NotNil(t, cm.Replies)
	assert.WithinDuration(t, time.Now().UTC(), cm.CreatedAt, time.Minute)
}

func TestCreateComment_RequiresAuth(t *testing.T) {
	app, store := newTestApp(t)
	_, listing := seedData(t, store)

	resp := doRequest(t, app, http.MethodPost, "/comments", "", fiber.Map{
		"listingId": listing.ID,
		"text":      "Отличное место",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateComment_UnknownListing(t *testing.T) {
	app, store := newTestApp(t)
	user, _ := seedData(t, store)
	token := utils.GenerateAccessToken(user.ID)

	resp := doRequest(t, app, http.MethodPost, "/comments", token, fiber.Map{
		"listingId": 999,
		"text":      "Отличное место",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateComment_Validation(t *testing.T) {
	app, store := newTestApp(t)
	user, listing := seedData(t, store)
	token := utils.GenerateAccessToken(user.ID)

	tests := []struct {
		name    string
		payload fiber.Map
	}{
		{"без текста", fiber.Map{"listingId": listing.ID}},
		{"пустой текст", fiber.Map{"listingId": listing.ID, "text": "   "}},
		{"без объявления", fiber.Map{"text": "привет"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/comments", token, tt.payload)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetComments_FilterByListing(t *testing.T) {
	app, store := newTestApp(t)
	user, listing := seedData(t, store)
	token := utils.GenerateAccessToken(user.ID)

	second, err := store.InsertListing(context.Background(), models.Listing{
		Title: "Дом", Price: 900, HostID: user.ID,
	})
	require.NoError(t, err)

	for _, id := range []int{listing.ID, listing.ID, second.ID} {
		resp := doRequest(t, app, http.MethodPost, "/comments", token, fiber.Map{
			"listingId": id, "text": "комментарий",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, app, http.MethodGet, "/comments?listingId=1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var comments []models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comments))
	assert.Len(t, comments, 2)

	resp = doRequest(t, app, http.MethodGet, "/comments", "", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comments))
	assert.Len(t, comments, 3)
}
