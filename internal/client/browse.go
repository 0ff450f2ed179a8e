package client

import (
	"sort"
	"strings"

	"github.com/rajivgeraev/renthub-api/internal/models"
)

// SortKey — ключ сортировки каталога
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortTitle     SortKey = "title"
	SortType      SortKey = "type"
)

// FilterListings оставляет объявления, у которых поисковая строка
// (без учёта регистра) входит в адрес, заголовок или любое из удобств.
// Пустая строка — тождественный фильтр
func FilterListings(listings []models.Listing, term string) []models.Listing {
	if term == "" {
		out := make([]models.Listing, len(listings))
		copy(out, listings)
		return out
	}

	search := strings.ToLower(term)
	out := []models.Listing{}
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Location), search) ||
			strings.Contains(strings.ToLower(l.Title), search) {
			out = append(out, l)
			continue
		}
		for _, amenity := range l.Amenities {
			if strings.Contains(strings.ToLower(amenity), search) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// SortListings возвращает отсортированную копию. Под ключом newest
// объявления без createdAt считаются самыми старыми и уходят в конец
func SortListings(listings []models.Listing, key SortKey) []models.Listing {
	out := make([]models.Listing, len(listings))
	copy(out, listings)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAtOrZero().After(out[j].CreatedAtOrZero())
		})
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	case SortType:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	}
	return out
}

// PaginateListings режет последовательность на страницы фиксированного
// размера. Номер страницы ограничивается диапазоном [1, totalPages]
func PaginateListings(listings []models.Listing, page, pageSize int) (items []models.Listing, totalPages int) {
	if pageSize <= 0 {
		return []models.Listing{}, 0
	}

	totalPages = (len(listings) + pageSize - 1) / pageSize
	if totalPages == 0 {
		return []models.Listing{}, 0
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(listings) {
		end = len(listings)
	}

	items = make([]models.Listing, end-start)
	copy(items, listings[start:end])
	return items, totalPages
}

// Page — текущая страница каталога
type Page struct {
	Items      []models.Listing
	Number     int
	TotalPages int
	TotalItems int
}

// Browser держит состояние просмотра каталога: поисковую строку,
// ключ сортировки и текущую страницу поверх снимка всех объявлений.
// Сервер в фильтрации не участвует
type Browser struct {
	all      []models.Listing
	term     string
	sortKey  SortKey
	page     int
	pageSize int
}

// NewBrowser создаёт состояние просмотра с сортировкой по умолчанию
// (сначала новые) на первой странице
func NewBrowser(listings []models.Listing, pageSize int) *Browser {
	all := make([]models.Listing, len(listings))
	copy(all, listings)
	return &Browser{
		all:      all,
		sortKey:  SortNewest,
		page:     1,
		pageSize: pageSize,
	}
}

// SetSearch меняет поисковую строку. Любое изменение фильтра
// возвращает на первую страницу
func (b *Browser) SetSearch(term string) {
	b.term = term
	b.page = 1
}

// SetSort меняет ключ сортировки. Смена сортировки тоже возвращает
// на первую страницу; явная навигация по страницам — нет
func (b *Browser) SetSort(key SortKey) {
	b.sortKey = key
	b.page = 1
}

// GoToPage переходит на страницу, ограничивая номер допустимым диапазоном
func (b *Browser) GoToPage(page int) {
	_, totalPages := PaginateListings(b.filtered(), b.page, b.pageSize)
	if totalPages == 0 {
		b.page = 1
		return
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	b.page = page
}

// NextPage переходит на следующую страницу
func (b *Browser) NextPage() { b.GoToPage(b.page + 1) }

// PrevPage переходит на предыдущую страницу
func (b *Browser) PrevPage() { b.GoToPage(b.page - 1) }

func (b *Browser) filtered() []models.Listing {
	return SortListings(FilterListings(b.all, b.term), b.sortKey)
}

// Page возвращает текущую страницу каталога. Для пустой выборки
// TotalPages равен нулю, а Number остаётся единицей: «первая страница
// пустого каталога», как это отображала исходная вёрстка
func (b *Browser) Page() Page {
	filtered := b.filtered()
	items, totalPages := PaginateListings(filtered, b.page, b.pageSize)
	return Page{
		Items:      items,
		Number:     b.page,
		TotalPages: totalPages,
		TotalItems: len(filtered),
	}
}
