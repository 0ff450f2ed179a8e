//go:build integration
// +build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// setupPostgres поднимает контейнер Postgres и открывает хранилище
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("renthub_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("ошибка запуска контейнера Postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("ошибка остановки контейнера: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ошибка получения строки подключения: %v", err)
	}

	store, err := OpenPostgres(ctx, connStr)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestPostgresStore_InsertUser(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	u1, err := store.InsertUser(ctx, models.User{Email: "a@b.com", Password: "secret", Name: "A"})
	if err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	if u1.ID != 1 {
		t.Errorf("первый id = %d, ожидался 1", u1.ID)
	}

	u2, err := store.InsertUser(ctx, models.User{Email: "c@d.com", Password: "secret", Name: "C"})
	if err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	if u2.ID != 2 {
		t.Errorf("второй id = %d, ожидался 2", u2.ID)
	}

	if _, err := store.InsertUser(ctx, models.User{Email: "a@b.com", Password: "x", Name: "B"}); err != ErrDuplicate {
		t.Errorf("дубликат email: err = %v, ожидался ErrDuplicate", err)
	}
}

func TestPostgresStore_InsertFavorite_Idempotent(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	first, created, err := store.InsertFavorite(ctx, models.Favorite{UserID: 1, ListingID: 10})
	if err != nil || !created {
		t.Fatalf("первая вставка: fav=%v created=%v err=%v", first, created, err)
	}

	second, created, err := store.InsertFavorite(ctx, models.Favorite{UserID: 1, ListingID: 10})
	if err != nil {
		t.Fatalf("повторная вставка: %v", err)
	}
	if created {
		t.Error("повторная вставка создала дубликат")
	}
	if second.ID != first.ID {
		t.Errorf("повторная вставка вернула другую запись: %d != %d", second.ID, first.ID)
	}

	all, err := store.Favorites(ctx, FavoriteFilter{})
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("в таблице %d записей, ожидалась 1", len(all))
	}
}

func TestPostgresStore_ToggleFavorite(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	favorited, err := store.ToggleFavorite(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !favorited {
		t.Error("первое переключение должно добавить запись")
	}

	favorited, err = store.ToggleFavorite(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if favorited {
		t.Error("второе переключение должно удалить запись")
	}

	all, err := store.Favorites(ctx, FavoriteFilter{UserID: 1})
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("после двойного переключения осталось %d записей", len(all))
	}
}

func TestPostgresStore_Listings(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	l, err := store.InsertListing(ctx, models.Listing{
		Title:     "Квартира у моря",
		Price:     1200,
		Amenities: []string{"wifi", "parking"},
		HostID:    1,
		CreatedAt: &now,
	})
	if err != nil {
		t.Fatalf("InsertListing: %v", err)
	}
	if l.ID != 1 {
		t.Errorf("id = %d, ожидался 1", l.ID)
	}

	got, err := store.ListingByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("ListingByID: %v", err)
	}
	if got.Title != "Квартира у моря" || len(got.Amenities) != 2 {
		t.Errorf("прочитано: %+v", got)
	}

	if _, err := store.ListingByID(ctx, 999); err != ErrNotFound {
		t.Errorf("несуществующий id: err = %v, ожидался ErrNotFound", err)
	}
}

func TestPostgresStore_DeleteFavorite_NotFound(t *testing.T) {
	store := setupPostgres(t)
	if err := store.DeleteFavorite(context.Background(), 42); err != ErrNotFound {
		t.Errorf("err = %v, ожидался ErrNotFound", err)
	}
}
