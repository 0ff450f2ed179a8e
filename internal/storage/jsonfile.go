package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// document — весь датасет одним JSON-документом, как в db.json
type document struct {
	Users     []models.User     `json:"users"`
	Listings  []models.Listing  `json:"listings"`
	Favorites []models.Favorite `json:"favorites"`
	Comments  []models.Comment  `json:"comments"`
}

// JSONStore — файловое хранилище: один JSON-документ, перезаписываемый
// целиком при каждой мутации. Все мутации сериализуются мьютексом
// (единственный писатель), запись на диск идёт через временный файл
// с последующим rename, чтобы не потерять документ при падении
type JSONStore struct {
	path string
	mu   sync.RWMutex
	doc  document
}

// OpenJSON открывает хранилище по пути к файлу; если файла нет,
// создаёт пустой документ
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
		}
		if err := s.flushLocked(); err != nil {
			return nil, err
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	return s, nil
}

// Close у файлового хранилища ничего не освобождает
func (s *JSONStore) Close() {}

// flushLocked записывает документ на диск. Вызывать только под mu
func (s *JSONStore) flushLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации документа: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("ошибка переименования %s: %w", tmp, err)
	}
	return nil
}

// nextID назначает следующий идентификатор: max(существующих)+1, либо 1
func nextID(ids []int) int {
	max := 0
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// ----- users -----

func (s *JSONStore) Users(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.doc.Users))
	copy(out, s.doc.Users)
	return out, nil
}

func (s *JSONStore) UserByID(_ context.Context, id int) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.doc.Users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Сравнение строгое, с учётом регистра
	for _, u := range s.doc.Users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONStore) InsertUser(_ context.Context, u models.User) (*models.User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Users {
		if existing.Email == u.Email {
			return nil, ErrDuplicate
		}
	}

	ids := make([]int, 0, len(s.doc.Users))
	for _, existing := range s.doc.Users {
		ids = append(ids, existing.ID)
	}
	u.ID = nextID(ids)

	s.doc.Users = append(s.doc.Users, u)
	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	return &u, nil
}

// ----- listings -----

func (s *JSONStore) Listings(_ context.Context) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, len(s.doc.Listings))
	copy(out, s.doc.Listings)
	return out, nil
}

func (s *JSONStore) ListingByID(_ context.Context, id int) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.doc.Listings {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONStore) InsertListing(_ context.Context, l models.Listing) (*models.Listing, error) {
	if err := validateListing(l); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.doc.Listings))
	for _, existing := range s.doc.Listings {
		ids = append(ids, existing.ID)
	}
	l.ID = nextID(ids)
	if l.Amenities == nil {
		l.Amenities = []string{}
	}

	s.doc.Listings = append(s.doc.Listings, l)
	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	return &l, nil
}

// ----- favorites -----

func (s *JSONStore) Favorites(_ context.Context, f FavoriteFilter) ([]models.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Favorite{}
	for _, fav := range s.doc.Favorites {
		if f.UserID != 0 && fav.UserID != f.UserID {
			continue
		}
		if f.ListingID != 0 && fav.ListingID != f.ListingID {
			continue
		}
		out = append(out, fav)
	}
	return out, nil
}

func (s *JSONStore) InsertFavorite(_ context.Context, f models.Favorite) (*models.Favorite, bool, error) {
	if err := validateFavorite(f); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Идемпотентность по уникальному ключу (userId, listingId)
	for _, existing := range s.doc.Favorites {
		if existing.UserID == f.UserID && existing.ListingID == f.ListingID {
			existing := existing
			return &existing, false, nil
		}
	}

	ids := make([]int, 0, len(s.doc.Favorites))
	for _, existing := range s.doc.Favorites {
		ids = append(ids, existing.ID)
	}
	f.ID = nextID(ids)

	s.doc.Favorites = append(s.doc.Favorites, f)
	if err := s.flushLocked(); err != nil {
		return nil, false, err
	}
	return &f, true, nil
}

func (s *JSONStore) DeleteFavorite(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, fav := range s.doc.Favorites {
		if fav.ID == id {
			s.doc.Favorites = append(s.doc.Favorites[:i], s.doc.Favorites[i+1:]...)
			return s.flushLocked()
		}
	}
	return ErrNotFound
}

func (s *JSONStore) ToggleFavorite(_ context.Context, userID, listingID int) (bool, error) {
	if userID <= 0 || listingID <= 0 {
		return false, ErrInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, fav := range s.doc.Favorites {
		if fav.UserID == userID && fav.ListingID == listingID {
			s.doc.Favorites = append(s.doc.Favorites[:i], s.doc.Favorites[i+1:]...)
			return false, s.flushLocked()
		}
	}

	ids := make([]int, 0, len(s.doc.Favorites))
	for _, existing := range s.doc.Favorites {
		ids = append(ids, existing.ID)
	}
	s.doc.Favorites = append(s.doc.Favorites, models.Favorite{
		ID:        nextID(ids),
		UserID:    userID,
		ListingID: listingID,
	})
	return true, s.flushLocked()
}

// ----- comments -----

func (s *JSONStore) Comments(_ context.Context, listingID int) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Comment{}
	for _, cm := range s.doc.Comments {
		if listingID != 0 && cm.ListingID != listingID {
			continue
		}
		out = append(out, cm)
	}
	return out, nil
}

func (s *JSONStore) InsertComment(_ context.Context, cm models.Comment) (*models.Comment, error) {
	if err := validateComment(cm); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.doc.Comments))
	for _, existing := range s.doc.Comments {
		ids = append(ids, existing.ID)
	}
	cm.ID = nextID(ids)
	if cm.Replies == nil {
		cm.Replies = []models.Comment{}
	}

	s.doc.Comments = append(s.doc.Comments, cm)
	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	return &cm, nil
}
