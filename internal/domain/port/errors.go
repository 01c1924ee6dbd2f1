package port

import "errors"

var (
	// ErrStorageUnavailable оборачивает любую ошибку хранилища
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound запись не найдена среди записей пользователя
	ErrNotFound = errors.New("not found")
)
