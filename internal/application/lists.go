package app

import (
	"context"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

// CategoryGroup товары одной категории
type CategoryGroup struct {
	Category string
	Items    []entity.ShoppingItem
}

// ListService чтение напоминаний и списка покупок для меню
type ListService struct {
	store port.EventStore
}

func NewListService(store port.EventStore) *ListService {
	return &ListService{store: store}
}

// ActiveReminders возвращает активные напоминания по возрастанию времени
func (s *ListService) ActiveReminders(ctx context.Context, userID int64) ([]entity.Reminder, error) {
	return s.store.ListActiveReminders(ctx, userID)
}

// ShoppingList возвращает товары, сгруппированные по категориям в порядке хранилища
func (s *ListService) ShoppingList(ctx context.Context, userID int64) ([]CategoryGroup, error) {
	items, err := s.store.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	var groups []CategoryGroup
	for _, it := range items {
		if n := len(groups); n > 0 && groups[n-1].Category == it.Category {
			groups[n-1].Items = append(groups[n-1].Items, it)
			continue
		}
		groups = append(groups, CategoryGroup{Category: it.Category, Items: []entity.ShoppingItem{it}})
	}
	return groups, nil
}
