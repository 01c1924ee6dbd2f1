package entity

import (
	"strings"
	"time"
)

const (
	// CategorySkip ввод, означающий "без категории"
	CategorySkip = "-"
	// Uncategorized категория по умолчанию
	Uncategorized = "Без категории"
)

// ShoppingItem товар в списке покупок
type ShoppingItem struct {
	ID        int64
	UserID    int64
	Item      string
	Category  string
	CreatedAt time.Time
}

// NormalizeCategory возвращает непустую категорию для введённого текста.
func NormalizeCategory(input string) string {
	c := strings.TrimSpace(input)
	if c == "" || c == CategorySkip {
		return Uncategorized
	}
	return c
}
