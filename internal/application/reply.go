package app

// Keyboard клавиатура, которую нужно показать вместе с ответом
type Keyboard int

const (
	KeyboardNone   Keyboard = iota // Клавиатура не меняется
	KeyboardMain                   // Главное меню
	KeyboardRepeat                 // Выбор периодичности
)

// Reply ответ пользователю
type Reply struct {
	Text     string
	Keyboard Keyboard
}

const (
	msgAskReminderText   = "Введите текст напоминания:"
	msgAskDateTime       = "Введите время и дату в формате ЧЧ:ММ ДД.ММ.ГГГГ (например, 14:30 31.12.2026).\nМожно написать только время или «завтра 09:00»."
	msgBadDateTime       = "Неверный формат! Используйте ЧЧ:ММ ДД.ММ.ГГГГ, «ЧЧ:ММ» или «завтра ЧЧ:ММ»."
	msgDateTimeInPast    = "Это время уже прошло. Введите время в будущем:"
	msgAskRepeat         = "Выберите периодичность:"
	msgBadRepeat         = "Выберите периодичность кнопкой на клавиатуре."
	msgEmptyText         = "Текст не может быть пустым. Попробуйте ещё раз:"
	msgReminderCreated   = "✅ Напоминание создано на %s (%s)"
	msgAskItem           = "Введите название товара:"
	msgAskCategory       = "Введите категорию товара (или «-», чтобы пропустить):"
	msgItemAdded         = "Товар «%s» добавлен в категорию «%s»!"
	msgAskReminderID     = "Введите ID напоминания для удаления:"
	msgAskItemID         = "Введите ID товара для удаления:"
	msgBadID             = "Неверный ID. Нужно было ввести число."
	msgReminderDeleted   = "Напоминание удалено!"
	msgReminderNotFound  = "Напоминание с таким ID не найдено."
	msgItemDeleted       = "Товар удален из списка!"
	msgItemNotFound      = "Товар с таким ID не найден."
	msgShoppingCleared   = "Список покупок очищен (удалено: %d)."
	msgCancelled         = "❌ Действие отменено."
	msgStorageFailure    = "⚠️ Не удалось выполнить операцию. Попробуйте позже."
	msgReminderDelivered = "⏰ Напоминание: %s\nВремя: %s"
)
