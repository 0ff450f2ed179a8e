package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// PostgresStore — хранилище записей поверх Postgres (pgx).
// Тот же контракт, что и у JSONStore, но мутации сериализует сама база
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres создаёт пул соединений и разворачивает схему
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close закрывает пул соединений
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// queryContext возвращает контекст с таймаутом для запросов к базе данных
func queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			furnished BOOLEAN NOT NULL DEFAULT FALSE,
			amenities TEXT[] NOT NULL DEFAULT '{}',
			image TEXT NOT NULL DEFAULT '',
			host_id INTEGER NOT NULL,
			created_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			listing_id INTEGER NOT NULL,
			UNIQUE (user_id, listing_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY,
			listing_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка при создании схемы: %w", err)
		}
	}
	return nil
}

// ----- users -----

func (s *PostgresStore) Users(ctx context.Context) ([]models.User, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT id, email, password, name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.Name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) UserByID(ctx context.Context, id int) (*models.User, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var u models.User
	err := s.pool.QueryRow(ctx, `SELECT id, email, password, name FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Password, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователя: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var u models.User
	err := s.pool.QueryRow(ctx, `SELECT id, email, password, name FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.Password, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователя: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) InsertUser(ctx context.Context, u models.User) (*models.User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, u.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки email: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, name)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3 FROM users
		RETURNING id
	`, u.Email, u.Password, u.Name).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}
	return &u, nil
}

// ----- listings -----

func (s *PostgresStore) Listings(ctx context.Context) ([]models.Listing, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, location, price, type, furnished, amenities, image, host_id, created_at
		FROM listings ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса объявлений: %w", err)
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Location, &l.Price,
			&l.Type, &l.Furnished, &l.Amenities, &l.Image, &l.HostID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		if l.Amenities == nil {
			l.Amenities = []string{}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) ListingByID(ctx context.Context, id int) (*models.Listing, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var l models.Listing
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, description, location, price, type, furnished, amenities, image, host_id, created_at
		FROM listings WHERE id = $1
	`, id).Scan(&l.ID, &l.Title, &l.Description, &l.Location, &l.Price,
		&l.Type, &l.Furnished, &l.Amenities, &l.Image, &l.HostID, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса объявления: %w", err)
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	return &l, nil
}

func (s *PostgresStore) InsertListing(ctx context.Context, l models.Listing) (*models.Listing, error) {
	if err := validateListing(l); err != nil {
		return nil, err
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	err := s.pool.QueryRow(ctx, `
		INSERT INTO listings (id, title, description, location, price, type, furnished, amenities, image, host_id, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $8, $9 FROM listings
		RETURNING id
	`, l.Title, l.Description, l.Location, l.Price, l.Type, l.Furnished,
		l.Amenities, l.Image, l.HostID, l.CreatedAt).Scan(&l.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании объявления: %w", err)
	}
	return &l, nil
}

// ----- favorites -----

func (s *PostgresStore) Favorites(ctx context.Context, f FavoriteFilter) ([]models.Favorite, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, listing_id FROM favorites
		WHERE ($1 = 0 OR user_id = $1) AND ($2 = 0 OR listing_id = $2)
		ORDER BY id
	`, f.UserID, f.ListingID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса избранного: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.ListingID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

func (s *PostgresStore) InsertFavorite(ctx context.Context, f models.Favorite) (*models.Favorite, bool, error) {
	if err := validateFavorite(f); err != nil {
		return nil, false, err
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		SELECT id FROM favorites WHERE user_id = $1 AND listing_id = $2
	`, f.UserID, f.ListingID).Scan(&f.ID)
	if err == nil {
		return &f, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("ошибка проверки избранного: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO favorites (id, user_id, listing_id)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2 FROM favorites
		RETURNING id
	`, f.UserID, f.ListingID).Scan(&f.ID)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка добавления в избранное: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &f, true, nil
}

func (s *PostgresStore) DeleteFavorite(ctx context.Context, id int) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления из избранного: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ToggleFavorite(ctx context.Context, userID, listingID int) (bool, error) {
	if userID <= 0 || listingID <= 0 {
		return false, ErrInvalid
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2
	`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления из избранного: %w", err)
	}

	favorited := false
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO favorites (id, user_id, listing_id)
			SELECT COALESCE(MAX(id), 0) + 1, $1, $2 FROM favorites
		`, userID, listingID)
		if err != nil {
			return false, fmt.Errorf("ошибка добавления в избранное: %w", err)
		}
		favorited = true
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return favorited, nil
}

// ----- comments -----

func (s *PostgresStore) Comments(ctx context.Context, listingID int) ([]models.Comment, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, listing_id, user_id, user_name, text, created_at FROM comments
		WHERE ($1 = 0 OR listing_id = $1)
		ORDER BY id
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса комментариев: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.ListingID, &cm.UserID, &cm.UserName, &cm.Text, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		cm.Replies = []models.Comment{}
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}

func (s *PostgresStore) InsertComment(ctx context.Context, cm models.Comment) (*models.Comment, error) {
	if err := validateComment(cm); err != nil {
		return nil, err
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	err := s.pool.QueryRow(ctx, `
		INSERT INTO comments (id, listing_id, user_id, user_name, text, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5 FROM comments
		RETURNING id
	`, cm.ListingID, cm.UserID, cm.UserName, cm.Text, cm.CreatedAt).Scan(&cm.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании комментария: %w", err)
	}
	if cm.Replies == nil {
		cm.Replies = []models.Comment{}
	}
	return &cm, nil
}
