package domain

// Ограничения пагинации списков
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Page задает окно выборки для списков
type Page struct {
	Limit  int
	Offset int
}

// Normalize приводит параметры пагинации к допустимым значениям
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// List представляет страницу результатов вместе с общим количеством
type List[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}
