package entity

import "time"

// Step шаг диалога. Реализации закрыты внутри пакета, поэтому
// обработчик выбирается type switch'ем и двух совпадений быть не может.
type Step interface {
	Name() string
	step()
}

// AwaitingReminderText ожидание текста напоминания
type AwaitingReminderText struct{}

// AwaitingReminderDateTime ожидание даты и времени
type AwaitingReminderDateTime struct {
	Text string
}

// AwaitingReminderRepeat ожидание периодичности
type AwaitingReminderRepeat struct {
	Text  string
	DueAt time.Time
}

// AwaitingShoppingItem ожидание названия товара
type AwaitingShoppingItem struct{}

// AwaitingShoppingCategory ожидание категории товара
type AwaitingShoppingCategory struct {
	Item string
}

// AwaitingReminderDeleteID ожидание ID напоминания для удаления
type AwaitingReminderDeleteID struct{}

// AwaitingShoppingDeleteID ожидание ID товара для удаления
type AwaitingShoppingDeleteID struct{}

func (AwaitingReminderText) Name() string     { return "awaiting_text" }
func (AwaitingReminderDateTime) Name() string { return "awaiting_datetime" }
func (AwaitingReminderRepeat) Name() string   { return "awaiting_repeat" }
func (AwaitingShoppingItem) Name() string     { return "awaiting_item" }
func (AwaitingShoppingCategory) Name() string { return "awaiting_category" }
func (AwaitingReminderDeleteID) Name() string { return "awaiting_reminder_delete_id" }
func (AwaitingShoppingDeleteID) Name() string { return "awaiting_item_delete_id" }

func (AwaitingReminderText) step()     {}
func (AwaitingReminderDateTime) step() {}
func (AwaitingReminderRepeat) step()   {}
func (AwaitingShoppingItem) step()     {}
func (AwaitingShoppingCategory) step() {}
func (AwaitingReminderDeleteID) step() {}
func (AwaitingShoppingDeleteID) step() {}

// Conversation состояние незавершённого диалога пользователя.
// Живёт только в памяти процесса.
type Conversation struct {
	UserID int64
	ChatID int64
	Step   Step
}

// NewConversation создаёт диалог на первом шаге
func NewConversation(userID, chatID int64, step Step) *Conversation {
	return &Conversation{
		UserID: userID,
		ChatID: chatID,
		Step:   step,
	}
}

// Advance переводит диалог на следующий шаг
func (c *Conversation) Advance(step Step) {
	c.Step = step
}
