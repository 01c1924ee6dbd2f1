package port

import "context"

// Notifier отправляет сообщение пользователю
type Notifier interface {
	// Notify доставляет текст в чат. Ошибка означает, что сообщение не доставлено.
	Notify(ctx context.Context, chatID int64, text string) error
}
