package client

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// ErrNotAuthenticated возвращается действиями, требующими входа
var ErrNotAuthenticated = errors.New("требуется вход")

// State — снимок состояния сеанса, передаваемый подписчикам
type State struct {
	LoggedIn  bool
	UserID    int
	Favorites []int // id объявлений в избранном, по возрастанию
}

// Session — клиентское состояние сеанса: флаг входа и кэш избранного.
// Машина состояний: Unauthenticated (избранное пусто и неизменяемо)
// ⇄ Authenticated(userId, favoriteSet). Вход загружает набор избранного
// целиком, выход сбрасывает его без обращения к серверу.
//
// Любое число подписчиков наблюдает одно и то же состояние; уведомления
// рассылаются синхронно при каждой мутации
type Session struct {
	api *Client

	mu        sync.RWMutex
	token     string
	user      *models.User
	favorites map[int]struct{}

	subMutex    sync.RWMutex
	subscribers map[int]func(State)
	nextSubID   int

	// Переключения избранного сериализуются по id объявления: два быстрых
	// клика по одной карточке не должны гоняться друг с другом
	toggleMutex sync.Mutex
	toggles     map[int]*sync.Mutex
}

// NewSession создаёт сеанс в состоянии Unauthenticated
func NewSession(api *Client) *Session {
	return &Session{
		api:         api,
		favorites:   map[int]struct{}{},
		subscribers: map[int]func(State){},
		toggles:     map[int]*sync.Mutex{},
	}
}

// Subscribe регистрирует подписчика и сразу передаёт ему текущее
// состояние. Возвращает функцию отписки
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMutex.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMutex.Unlock()

	fn(s.State())

	return func() {
		s.subMutex.Lock()
		delete(s.subscribers, id)
		s.subMutex.Unlock()
	}
}

// notify рассылает снимок состояния всем подписчикам
func (s *Session) notify() {
	state := s.State()

	s.subMutex.RLock()
	defer s.subMutex.RUnlock()
	for _, fn := range s.subscribers {
		fn(state)
	}
}

// State возвращает снимок текущего состояния
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{LoggedIn: s.user != nil}
	if s.user != nil {
		state.UserID = s.user.ID
	}
	state.Favorites = make([]int, 0, len(s.favorites))
	for id := range s.favorites {
		state.Favorites = append(state.Favorites, id)
	}
	sort.Ints(state.Favorites)
	return state
}

// LoggedIn сообщает, авторизован ли сеанс
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User возвращает текущего пользователя или nil
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token возвращает токен доступа текущего сеанса
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsFavorite проверяет, находится ли объявление в избранном
func (s *Session) IsFavorite(listingID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[listingID]
	return ok
}

// Login выполняет вход и загружает избранное целиком
func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.establish(ctx, resp)
	return nil
}

// Register регистрирует пользователя; сервер сразу выдаёт токен,
// поэтому сеанс становится авторизованным
func (s *Session) Register(ctx context.Context, email, password, name string) error {
	resp, err := s.api.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	s.establish(ctx, resp)
	return nil
}

// establish переводит сеанс в Authenticated и подтягивает избранное
func (s *Session) establish(ctx context.Context, resp *AuthResponse) {
	user := resp.User

	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = &user
	s.favorites = map[int]struct{}{}
	s.mu.Unlock()

	if err := s.ReloadFavorites(ctx); err != nil {
		// Вход состоялся; избранное останется пустым до следующей загрузки
		log.Printf("Ошибка загрузки избранного: %v", err)
	}
	s.notify()
}

// ReloadFavorites заменяет кэш избранного данными сервера целиком
func (s *Session) ReloadFavorites(ctx context.Context) error {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		return ErrNotAuthenticated
	}

	records, err := s.api.FavoritesByUser(ctx, user.ID)
	if err != nil {
		return err
	}

	favorites := make(map[int]struct{}, len(records))
	for _, rec := range records {
		favorites[rec.ListingID] = struct{}{}
	}

	s.mu.Lock()
	s.favorites = favorites
	s.mu.Unlock()
	return nil
}

// Logout сбрасывает сеанс. Сетевых запросов нет: токен — просто маркер
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.favorites = map[int]struct{}{}
	s.mu.Unlock()

	s.notify()
}

// listingLock возвращает мьютекс переключений для объявления
func (s *Session) listingLock(listingID int) *sync.Mutex {
	s.toggleMutex.Lock()
	defer s.toggleMutex.Unlock()

	lock, ok := s.toggles[listingID]
	if !ok {
		lock = &sync.Mutex{}
		s.toggles[listingID] = lock
	}
	return lock
}

// ToggleFavorite переключает избранное для объявления и возвращает
// итоговое состояние. Последовательное двойное переключение возвращает
// набор к исходному виду
func (s *Session) ToggleFavorite(ctx context.Context, listingID int) (favorited bool, err error) {
	s.mu.RLock()
	token := s.token
	loggedIn := s.user != nil
	s.mu.RUnlock()

	if !loggedIn {
		return false, ErrNotAuthenticated
	}

	lock := s.listingLock(listingID)
	lock.Lock()
	defer lock.Unlock()

	favorited, err = s.api.ToggleFavorite(ctx, token, listingID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	// Пока запрос был в полёте, сеанс мог завершиться или смениться;
	// ответ старого сеанса не должен трогать чужой набор избранного
	if s.user == nil || s.token != token {
		s.mu.Unlock()
		return favorited, nil
	}
	if favorited {
		s.favorites[listingID] = struct{}{}
	} else {
		delete(s.favorites, listingID)
	}
	s.mu.Unlock()

	s.notify()
	return favorited, nil
}
