package models

import "time"

// Comment представляет комментарий на странице объявления.
// Имя автора денормализуется в момент записи, чтобы не ходить
// за пользователем при каждом чтении
type Comment struct {
	ID        int       `json:"id"`
	ListingID int       `json:"listingId"`
	UserID    int       `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Comment `json:"replies"`
}
