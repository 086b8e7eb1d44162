package calendarservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("calendarservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("calendarservice client: invalid response")

	// ErrCalendarSync возвращается, когда шлюз не смог обновить внешние артефакты
	// Состояние бронирования и календаря после этого расходится - вызывающий обязан
	// поднять ошибку наверх для ручной сверки, а не глотать её
	ErrCalendarSync = errors.New("calendarservice client: calendar sync failed")
)
