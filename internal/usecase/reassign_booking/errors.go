package reassign_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reassign_booking: booking not found")

	// ErrOrganizerNotFound возвращается, когда у бронирования нет текущего организатора
	ErrOrganizerNotFound = errors.New("reassign_booking: booking has no organizer")

	// ErrEventTypeNotFound возвращается, когда event type бронирования не найден
	ErrEventTypeNotFound = errors.New("reassign_booking: event type not found")

	// ErrNewOrganizerNotFound возвращается, когда кандидат в организаторы не найден
	ErrNewOrganizerNotFound = errors.New("reassign_booking: new organizer not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reassign_booking: invalid input data")

	// ErrConflict возвращается при конкурирующем переназначении того же бронирования
	// Вызывающий должен повторить операцию
	ErrConflict = errors.New("reassign_booking: concurrent reassignment conflict")

	// ErrCalendarSync возвращается, когда организатор уже переписан, а внешнее
	// календарное состояние обновить не удалось. Состояния разошлись - требуется
	// повтор операции целиком или ручная сверка
	ErrCalendarSync = errors.New("reassign_booking: calendar sync failed after booking update")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reassign_booking: internal error")
)
