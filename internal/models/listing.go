package models

import "time"

// Listing представляет объявление об аренде
type Listing struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Price       float64    `json:"price"`
	Type        string     `json:"type"`
	Furnished   bool       `json:"furnished"`
	Amenities   []string   `json:"amenities"`
	Image       string     `json:"image"`
	HostID      int        `json:"hostId"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// CreatedAtOrZero возвращает время создания; для старых записей
// без createdAt — нулевое время (такие объявления считаются самыми старыми)
func (l Listing) CreatedAtOrZero() time.Time {
	if l.CreatedAt == nil {
		return time.Time{}
	}
	return *l.CreatedAt
}
