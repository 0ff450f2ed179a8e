package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// stubServer — минимальный сервер API для клиентских тестов:
// один пользователь, избранное в памяти, атомарное переключение
type stubServer struct {
	mu        sync.Mutex
	favorites map[int]bool // listingId -> в избранном
	requests  []string     // метод+путь в порядке поступления

	// Необязательные каналы для удержания переключения «в полёте»:
	// обработчик сигналит в toggleStarted и ждёт закрытия toggleRelease
	toggleStarted chan struct{}
	toggleRelease chan struct{}
}

func newStubServer(t *testing.T) (*stubServer, *httptest.Server) {
	t.Helper()
	s := &stubServer{favorites: map[int]bool{10: true, 20: true}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /favorites", s.listFavorites)
	mux.HandleFunc("POST /favorites/toggle", s.toggle)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *stubServer) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	if payload.Password != "secret123" {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Неверный email или пароль"})
		return
	}
	_ = json.NewEncoder(w).Encode(AuthResponse{
		AccessToken: "token-7-1700000000000",
		User:        models.User{ID: 7, Email: payload.Email, Name: "Анна"},
	})
}

func (s *stubServer) listFavorites(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Favorite{}
	id := 1
	for listingID, ok := range s.favorites {
		if ok {
			out = append(out, models.Favorite{ID: id, UserID: 7, ListingID: listingID})
			id++
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *stubServer) toggle(w http.ResponseWriter, r *http.Request) {
	if s.toggleStarted != nil {
		s.toggleStarted <- struct{}{}
		<-s.toggleRelease
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Некорректный токен"})
		return
	}

	var payload struct {
		ListingID int `json:"listingId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	s.mu.Lock()
	s.favorites[payload.ListingID] = !s.favorites[payload.ListingID]
	favorited := s.favorites[payload.ListingID]
	s.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{
		"favorited": favorited,
		"listingId": payload.ListingID,
	})
}

func (s *stubServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func TestSession_Login(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))
	ctx := context.Background()

	require.False(t, session.LoggedIn())

	require.NoError(t, session.Login(ctx, "anna@example.com", "secret123"))

	assert.True(t, session.LoggedIn())
	require.NotNil(t, session.User())
	assert.Equal(t, 7, session.User().ID)

	// Вход загружает избранное целиком
	state := session.State()
	assert.Equal(t, []int{10, 20}, state.Favorites)
	assert.True(t, session.IsFavorite(10))
	assert.False(t, session.IsFavorite(30))
}

func TestSession_LoginRejected(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))

	err := session.Login(context.Background(), "anna@example.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, session.LoggedIn())
}

func TestSession_SubscribeReceivesSnapshotImmediately(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))

	var states []State
	unsubscribe := session.Subscribe(func(st State) {
		states = append(states, st)
	})
	defer unsubscribe()

	// Подписчик получает текущее состояние сразу, ещё до мутаций
	require.Len(t, states, 1)
	assert.False(t, states[0].LoggedIn)

	require.NoError(t, session.Login(context.Background(), "anna@example.com", "secret123"))
	require.Len(t, states, 2)
	assert.True(t, states[1].LoggedIn)
	assert.Equal(t, 7, states[1].UserID)
	assert.Equal(t, []int{10, 20}, states[1].Favorites)
}

func TestSession_Unsubscribe(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))

	calls := 0
	unsubscribe := session.Subscribe(func(State) { calls++ })
	require.Equal(t, 1, calls)

	unsubscribe()
	session.Logout()
	assert.Equal(t, 1, calls, "отписанный подписчик получил уведомление")
}

func TestSession_LogoutClearsWithoutNetwork(t *testing.T) {
	stub, srv := newStubServer(t)
	session := NewSession(New(srv.URL))
	ctx := context.Background()

	require.NoError(t, session.Login(ctx, "anna@example.com", "secret123"))
	before := stub.requestCount()

	session.Logout()

	assert.False(t, session.LoggedIn())
	assert.Nil(t, session.User())
	assert.Empty(t, session.Token())
	assert.Empty(t, session.State().Favorites)
	// Выход — чисто клиентская операция
	assert.Equal(t, before, stub.requestCount())
}

func TestSession_ToggleFavorite(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))
	ctx := context.Background()

	require.NoError(t, session.Login(ctx, "anna@example.com", "secret123"))

	favorited, err := session.ToggleFavorite(ctx, 30)
	require.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, session.IsFavorite(30))

	// Двойное переключение возвращает набор к исходному виду
	favorited, err = session.ToggleFavorite(ctx, 30)
	require.NoError(t, err)
	assert.False(t, favorited)
	assert.Equal(t, []int{10, 20}, session.State().Favorites)
}

func TestSession_LogoutDuringToggle(t *testing.T) {
	stub, srv := newStubServer(t)
	stub.toggleStarted = make(chan struct{})
	stub.toggleRelease = make(chan struct{})

	session := NewSession(New(srv.URL))
	ctx := context.Background()

	require.NoError(t, session.Login(ctx, "anna@example.com", "secret123"))

	done := make(chan error, 1)
	go func() {
		_, err := session.ToggleFavorite(ctx, 30)
		done <- err
	}()

	// Выходим, пока ответ переключения ещё в полёте
	<-stub.toggleStarted
	session.Logout()
	close(stub.toggleRelease)
	require.NoError(t, <-done)

	// Запоздавший ответ не должен воскресить избранное в анонимном сеансе
	assert.False(t, session.LoggedIn())
	assert.Empty(t, session.State().Favorites)
}

func TestSession_ToggleRequiresLogin(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))

	_, err := session.ToggleFavorite(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestGuards(t *testing.T) {
	_, srv := newStubServer(t)
	session := NewSession(New(srv.URL))
	ctx := context.Background()

	// Анонимный сеанс: защищённые страницы закрыты, /login открыт
	res := RequireAuth(session)
	assert.False(t, res.Allowed)
	assert.Equal(t, "/login", res.RedirectTo)
	assert.True(t, RequireAnon(session).Allowed)

	require.NoError(t, session.Login(ctx, "anna@example.com", "secret123"))

	assert.True(t, RequireAuth(session).Allowed)
	res = RequireAnon(session)
	assert.False(t, res.Allowed)
	assert.Equal(t, "/home", res.RedirectTo)
}
