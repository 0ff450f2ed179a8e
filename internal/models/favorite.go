package models

// Favorite представляет запись «объявление в избранном у пользователя».
// Инвариант: не более одной записи на пару (userId, listingId)
type Favorite struct {
	ID        int `json:"id"`
	UserID    int `json:"userId"`
	ListingID int `json:"listingId"`
}
