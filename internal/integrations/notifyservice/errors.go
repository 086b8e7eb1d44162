package notifyservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifyservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("notifyservice client: invalid response")

	// ErrNotification возвращается при сбое доставки уведомления
	// Уведомления best-effort: вызывающий логирует ошибку и продолжает работу
	ErrNotification = errors.New("notifyservice client: notification delivery failed")
)
