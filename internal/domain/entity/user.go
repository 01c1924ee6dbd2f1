package entity

import "time"

// User запись реестра пользователей. Создаётся при первом обращении
// и этим модулем не удаляется.
type User struct {
	ID        int64     // Telegram User ID
	CreatedAt time.Time // Время первого обращения
}
