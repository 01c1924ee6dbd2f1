package app

import "errors"

var (
	// ErrNoDialog у пользователя нет активного диалога, сообщение — команда меню
	ErrNoDialog = errors.New("no active dialog")
	// ErrInputFormat неверный ввод; шаг диалога не меняется, пользователь получает повторный запрос
	ErrInputFormat = errors.New("invalid input")
	// ErrDialogAborted неисправимый ввод; диалог сброшен
	ErrDialogAborted = errors.New("dialog aborted")
	// ErrDelivery уведомление не доставлено
	ErrDelivery = errors.New("delivery failed")
)
